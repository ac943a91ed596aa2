package theme

import "testing"

func TestSpendStages(t *testing.T) {
	th := FlexokiDark
	tests := []struct {
		ratio float64
		want  string
	}{
		{0, string(th.SpendLow)},
		{0.49, string(th.SpendLow)},
		{0.5, string(th.SpendMid)},
		{0.8, string(th.SpendHigh)},
		{1, string(th.SpendOver)},
		{2.5, string(th.SpendOver)},
	}
	for _, tt := range tests {
		if got := string(th.Spend(tt.ratio)); got != tt.want {
			t.Fatalf("Spend(%v) = %s, want %s", tt.ratio, got, tt.want)
		}
	}
}

func TestSigned(t *testing.T) {
	th := TokyoNight
	if got := th.Signed(0); got != th.Income {
		t.Fatalf("Signed(0) = %s, want income %s", got, th.Income)
	}
	if got := th.Signed(-0.01); got != th.Expense {
		t.Fatalf("Signed(-0.01) = %s, want expense %s", got, th.Expense)
	}
}

func TestThemesDefineEveryRole(t *testing.T) {
	for _, th := range All {
		roles := map[string]string{
			"Border": string(th.Border), "BorderFocus": string(th.BorderFocus),
			"Selection": string(th.Selection), "TextPrimary": string(th.TextPrimary),
			"Accent": string(th.Accent), "Income": string(th.Income),
			"Expense": string(th.Expense), "Danger": string(th.Danger),
			"SpendOver": string(th.SpendOver), "Hotkey": string(th.Hotkey),
		}
		for role, c := range roles {
			if c == "" {
				t.Fatalf("%s: %s is empty", th.Name, role)
			}
		}
		if th.Income == th.Expense {
			t.Fatalf("%s: income and expense share color %s", th.Name, th.Income)
		}
	}
}

func TestByNameFallsBack(t *testing.T) {
	if got := ByName("catppuccin-mocha").Name; got != "catppuccin-mocha" {
		t.Fatalf("ByName = %q, want catppuccin-mocha", got)
	}
	if got := ByName("nope").Name; got != FlexokiDark.Name {
		t.Fatalf("ByName(unknown) = %q, want %q", got, FlexokiDark.Name)
	}
}
