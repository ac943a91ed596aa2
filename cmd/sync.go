package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/theirongolddev/finsight/internal/cli"
	"github.com/theirongolddev/finsight/internal/model"
	"github.com/theirongolddev/finsight/internal/txcache"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch the dashboard and the common analytics periods in parallel",
	RunE:  runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

// warmPeriods are the windows the TUI opens on first visit.
func warmPeriods(now time.Time) []model.AnalyticsPeriod {
	return []model.AnalyticsPeriod{
		{Kind: model.Daily},
		{Kind: model.Monthly, Year: now.Year(), Month: int(now.Month())},
		{Kind: model.Yearly, Year: now.Year()},
		{Kind: model.All},
	}
}

// syncReport is what one sync pass fetched.
type syncReport struct {
	Dashboard   model.DashboardSnapshot
	DashboardOK bool
	Analytics   []model.AnalyticsPayload
}

// syncAll forces a dashboard fetch and loads every period concurrently.
// Analytics failures cancel the remaining analytics fetches and are returned;
// the dashboard outcome is reported in DashboardOK either way.
func syncAll(ctx context.Context, cache *txcache.Cache, periods []model.AnalyticsPeriod) (syncReport, error) {
	report := syncReport{Analytics: make([]model.AnalyticsPayload, len(periods))}

	// The status message is shared with the analytics fetches, so success is
	// judged by whether FetchedAt moved.
	before := cache.LastFetched()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Parent ctx: an analytics failure must not cancel the dashboard.
		report.Dashboard = cache.Dashboard(ctx, true)
		report.DashboardOK = !report.Dashboard.FetchedAt.Equal(before)
		return nil
	})
	for i, p := range periods {
		g.Go(func() error {
			payload, err := cache.Analytics(gctx, p)
			if err != nil {
				return fmt.Errorf("%s analytics: %w", p.Kind, explain(err))
			}
			report.Analytics[i] = payload
			return nil
		})
	}
	err := g.Wait()
	return report, err
}

func runSync(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cache := newCache(cfg, newLogger())

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout()+10*time.Second)
	defer cancel()

	periods := warmPeriods(time.Now())
	progress("  Syncing dashboard and %d analytics periods...\n", len(periods))
	report, err := syncAll(ctx, cache, periods)
	if !report.DashboardOK {
		return fmt.Errorf("%s (check `finsight config` and `finsight login`)", txcache.MsgDashboardFailed)
	}
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("  Dashboard: %d transactions\n", len(report.Dashboard.Transactions))
	currency := cfg.Appearance.Currency
	for i, p := range periods {
		s := report.Analytics[i].Stats
		fmt.Printf("  %-22s %4d tx  net %s\n",
			cli.FormatPeriod(string(p.Kind), p.Year, p.Month),
			s.TransactionCount,
			cli.FormatSignedMoney(s.Net, currency))
	}
	fmt.Println()
	return nil
}
