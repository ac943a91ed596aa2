// Package theme defines color themes for the finsight dashboard.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme maps the dashboard's color roles to concrete colors.
type Theme struct {
	Name string

	Border       lipgloss.Color // card outlines
	BorderFocus  lipgloss.Color // header, help and form frames
	Selection    lipgloss.Color // active tab and cursor row background
	TextDim      lipgloss.Color // hints, dates
	TextMuted    lipgloss.Color // labels, notes
	TextPrimary  lipgloss.Color
	Accent       lipgloss.Color // active states, flash messages
	AccentBright lipgloss.Color // brand and titles
	Hotkey       lipgloss.Color // key names in help

	Income  lipgloss.Color
	Expense lipgloss.Color
	Danger  lipgloss.Color // errors

	// Spending stages, from comfortably under income to over it.
	SpendLow  lipgloss.Color
	SpendMid  lipgloss.Color
	SpendHigh lipgloss.Color
	SpendOver lipgloss.Color
}

// Active is the currently selected theme.
var Active = FlexokiDark

// FlexokiDark is the default: warm paper tones on near-black.
var FlexokiDark = Theme{
	Name:         "flexoki-dark",
	Border:       lipgloss.Color("#403E3C"),
	BorderFocus:  lipgloss.Color("#3AA99F"),
	Selection:    lipgloss.Color("#282726"),
	TextDim:      lipgloss.Color("#575653"),
	TextMuted:    lipgloss.Color("#878580"),
	TextPrimary:  lipgloss.Color("#FFFCF0"),
	Accent:       lipgloss.Color("#3AA99F"),
	AccentBright: lipgloss.Color("#5BC8BE"),
	Hotkey:       lipgloss.Color("#24837B"),
	Income:       lipgloss.Color("#879A39"),
	Expense:      lipgloss.Color("#CE5D97"),
	Danger:       lipgloss.Color("#D14D41"),
	SpendLow:     lipgloss.Color("#879A39"),
	SpendMid:     lipgloss.Color("#D0A215"),
	SpendHigh:    lipgloss.Color("#DA702C"),
	SpendOver:    lipgloss.Color("#D14D41"),
}

// CatppuccinMocha is a soft pastel theme.
var CatppuccinMocha = Theme{
	Name:         "catppuccin-mocha",
	Border:       lipgloss.Color("#585B70"),
	BorderFocus:  lipgloss.Color("#89B4FA"),
	Selection:    lipgloss.Color("#45475A"),
	TextDim:      lipgloss.Color("#6C7086"),
	TextMuted:    lipgloss.Color("#A6ADC8"),
	TextPrimary:  lipgloss.Color("#CDD6F4"),
	Accent:       lipgloss.Color("#89B4FA"),
	AccentBright: lipgloss.Color("#B4D0FB"),
	Hotkey:       lipgloss.Color("#94E2D5"),
	Income:       lipgloss.Color("#A6E3A1"),
	Expense:      lipgloss.Color("#EBA0AC"),
	Danger:       lipgloss.Color("#F38BA8"),
	SpendLow:     lipgloss.Color("#A6E3A1"),
	SpendMid:     lipgloss.Color("#F9E2AF"),
	SpendHigh:    lipgloss.Color("#FAB387"),
	SpendOver:    lipgloss.Color("#F38BA8"),
}

// TokyoNight is a cool blue theme.
var TokyoNight = Theme{
	Name:         "tokyo-night",
	Border:       lipgloss.Color("#565F89"),
	BorderFocus:  lipgloss.Color("#7AA2F7"),
	Selection:    lipgloss.Color("#343A52"),
	TextDim:      lipgloss.Color("#565F89"),
	TextMuted:    lipgloss.Color("#A9B1D6"),
	TextPrimary:  lipgloss.Color("#C0CAF5"),
	Accent:       lipgloss.Color("#7AA2F7"),
	AccentBright: lipgloss.Color("#A9C1FF"),
	Hotkey:       lipgloss.Color("#7DCFFF"),
	Income:       lipgloss.Color("#9ECE6A"),
	Expense:      lipgloss.Color("#BB9AF7"),
	Danger:       lipgloss.Color("#F7768E"),
	SpendLow:     lipgloss.Color("#9ECE6A"),
	SpendMid:     lipgloss.Color("#E0AF68"),
	SpendHigh:    lipgloss.Color("#FF9E64"),
	SpendOver:    lipgloss.Color("#F7768E"),
}

// Terminal sticks to the 16 ANSI colors.
var Terminal = Theme{
	Name:         "terminal",
	Border:       lipgloss.Color("8"),
	BorderFocus:  lipgloss.Color("6"),
	Selection:    lipgloss.Color("8"),
	TextDim:      lipgloss.Color("8"),
	TextMuted:    lipgloss.Color("7"),
	TextPrimary:  lipgloss.Color("15"),
	Accent:       lipgloss.Color("6"),
	AccentBright: lipgloss.Color("14"),
	Hotkey:       lipgloss.Color("6"),
	Income:       lipgloss.Color("2"),
	Expense:      lipgloss.Color("5"),
	Danger:       lipgloss.Color("1"),
	SpendLow:     lipgloss.Color("2"),
	SpendMid:     lipgloss.Color("3"),
	SpendHigh:    lipgloss.Color("11"),
	SpendOver:    lipgloss.Color("1"),
}

// All available themes.
var All = []Theme{FlexokiDark, CatppuccinMocha, TokyoNight, Terminal}

// ByName returns a theme by its name, defaulting to FlexokiDark.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return FlexokiDark
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}

// Names lists the available theme names in display order.
func Names() []string {
	names := make([]string, len(All))
	for i, t := range All {
		names[i] = t.Name
	}
	return names
}

// Signed picks Income for non-negative amounts and Expense otherwise.
func (t Theme) Signed(v float64) lipgloss.Color {
	if v < 0 {
		return t.Expense
	}
	return t.Income
}

// Spend picks the stage color for expenses as a fraction of income.
func (t Theme) Spend(ratio float64) lipgloss.Color {
	switch {
	case ratio >= 1:
		return t.SpendOver
	case ratio >= 0.8:
		return t.SpendHigh
	case ratio >= 0.5:
		return t.SpendMid
	}
	return t.SpendLow
}
