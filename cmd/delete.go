package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/theirongolddev/finsight/internal/cli"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a transaction and show the refreshed totals",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cache := newCache(cfg, newLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.RequestTimeout()+5*time.Second)
	defer cancel()

	id := args[0]
	if err := cache.DeleteTransaction(ctx, id); err != nil {
		return explain(err)
	}

	// The process would exit before the background refetch lands.
	progress("  Deleted %s, refreshing totals...\n", id)
	cache.Wait()

	fmt.Println()
	if msg := cache.Err(); msg != "" {
		fmt.Println(cli.RenderWarning(msg))
		return nil
	}
	fmt.Println(cli.RenderStats(cache.Stats(), cfg.Appearance.Currency))
	fmt.Println()
	return nil
}
