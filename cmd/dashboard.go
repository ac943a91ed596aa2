package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/theirongolddev/finsight/internal/cli"
	"github.com/theirongolddev/finsight/internal/model"

	"github.com/spf13/cobra"
)

var (
	flagForce bool
	flagJSON  bool
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show recent transactions and totals",
	RunE:  runDashboard,
}

func init() {
	dashboardCmd.Flags().BoolVarP(&flagForce, "force", "f", false, "Bypass the freshness window")
	dashboardCmd.Flags().BoolVar(&flagJSON, "json", false, "Print the snapshot as JSON")
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cache := newCache(cfg, newLogger())

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout()+5*time.Second)
	defer cancel()

	progress("  Fetching recent transactions...\n")
	snap := cache.Dashboard(ctx, flagForce)

	// A failed fetch is not fatal: the cache keeps whatever it had.
	if msg := cache.Err(); msg != "" && !snap.HasData() {
		return fmt.Errorf("%s (check `finsight config` and `finsight login`)", msg)
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}

	currency := cfg.Appearance.Currency
	fmt.Println()
	fmt.Println(cli.RenderTitle("FINSIGHT DASHBOARD"))
	fmt.Println()
	if msg := cache.Err(); msg != "" {
		fmt.Println(cli.RenderWarning(msg))
		fmt.Println()
	}
	fmt.Println(cli.RenderStats(snap.Stats, currency))
	fmt.Println()

	if !snap.HasData() {
		fmt.Println(cli.RenderMuted("  No transactions yet."))
		fmt.Println()
		return nil
	}

	fmt.Print(cli.RenderTable(transactionsTable(snap.Transactions, currency)))
	fmt.Println(cli.RenderMuted(fmt.Sprintf("  %d most recent · fetched %s",
		len(snap.Transactions), cli.FormatAge(snap.FetchedAt, time.Now()))))
	fmt.Println()
	return nil
}

func transactionsTable(txns []model.Transaction, currency string) cli.Table {
	rows := make([][]string, 0, len(txns))
	for _, t := range txns {
		rows = append(rows, []string{
			cli.Truncate(t.Label(), 32),
			cli.FormatDate(t.Date),
			cli.Truncate(t.Category(), 20),
			cli.RenderAmount(t, currency),
			t.ID,
		})
	}
	return cli.Table{
		Headers: []string{"Description", "Date", "Category", "Amount", "ID"},
		Rows:    rows,
	}
}
