package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/theirongolddev/finsight/internal/cli"
	"github.com/theirongolddev/finsight/internal/model"

	"github.com/spf13/cobra"
)

var (
	flagYear  int
	flagMonth int
)

var analyticsCmd = &cobra.Command{
	Use:       "analytics <daily|monthly|yearly|all>",
	Short:     "Show income, expenses and category breakdown for a period",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"daily", "monthly", "yearly", "all"},
	RunE:      runAnalytics,
}

func init() {
	analyticsCmd.Flags().IntVar(&flagYear, "year", 0, "Year (server default when omitted)")
	analyticsCmd.Flags().IntVar(&flagMonth, "month", 0, "Month 1-12 (server default when omitted)")
	analyticsCmd.Flags().BoolVar(&flagJSON, "json", false, "Print the payload as JSON")
	rootCmd.AddCommand(analyticsCmd)
}

func parsePeriod(kind string, year, month int) (model.AnalyticsPeriod, error) {
	if !model.ValidPeriodKind(kind) {
		return model.AnalyticsPeriod{}, fmt.Errorf("unknown period %q (want daily, monthly, yearly or all)", kind)
	}
	if month < 0 || month > 12 {
		return model.AnalyticsPeriod{}, errors.New("--month must be between 1 and 12")
	}
	if year < 0 {
		return model.AnalyticsPeriod{}, errors.New("--year must be positive")
	}
	return model.AnalyticsPeriod{Kind: model.PeriodKind(kind), Year: year, Month: month}, nil
}

func runAnalytics(_ *cobra.Command, args []string) error {
	period, err := parsePeriod(strings.ToLower(args[0]), flagYear, flagMonth)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cache := newCache(cfg, newLogger())

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout()+5*time.Second)
	defer cancel()

	progress("  Fetching %s analytics...\n", period.Kind)
	payload, err := cache.Analytics(ctx, period)
	if err != nil {
		return explain(err)
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}

	currency := cfg.Appearance.Currency
	s := payload.Stats
	fmt.Println()
	fmt.Println(cli.RenderTitle("ANALYTICS · " + strings.ToUpper(cli.FormatPeriod(string(period.Kind), period.Year, period.Month))))
	fmt.Println()
	fmt.Println(cli.RenderStats(model.Stats{TotalIncome: s.TotalIncome, TotalExpenses: s.TotalExpenses, Net: s.Net}, currency))
	fmt.Println(cli.RenderMuted(fmt.Sprintf("  %s transactions", cli.FormatNumber(int64(s.TransactionCount)))))
	fmt.Println()

	printBreakdown("Expenses by category", payload.ExpenseBreakdown, currency)
	printBreakdown("Income by category", payload.IncomeBreakdown, currency)
	return nil
}

func printBreakdown(title string, entries []model.CategoryBreakdown, currency string) {
	if len(entries) == 0 {
		return
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			cli.Truncate(e.CategoryName, 24),
			cli.FormatMoney(e.Amount, currency),
			cli.FormatPercent(e.Percentage),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   title,
		Headers: []string{"Category", "Amount", "Share"},
		Rows:    rows,
	}))

	var peak float64
	for _, e := range entries {
		peak = max(peak, e.Amount)
	}
	for _, e := range entries {
		fmt.Println(cli.RenderHorizontalBar(e.CategoryName, e.Amount, peak, 30))
	}
	fmt.Println()
}
