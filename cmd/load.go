package cmd

import (
	"fmt"
	"time"

	"map-atlas/core/report"
	"map-atlas/core/store"
	"map-atlas/feature/atlas"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// loadCmd represents the load command
var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Build the atlas once and print its metrics",
	Long: `Resolves the content roots, loads every table, indexes the model and
renders all views. The model cache is used and refreshed unless --no-cache is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		startTime := time.Now()
		noCache, _ := cmd.Flags().GetBool("no-cache")
		showIssues, _ := cmd.Flags().GetBool("issues")

		cfg, logg, err := setup()
		if err != nil {
			return err
		}

		svc := atlas.NewService(cfg.Game, store.New(1), logg)
		build := svc.Load
		if noCache {
			build = svc.Reload
		}
		if _, err := build(cmd.Context(), logReporter{logger: logg}); err != nil {
			return fmt.Errorf("atlas build failed: %w", err)
		}

		sum, err := svc.Summary()
		if err != nil {
			return err
		}

		fmt.Println("\n=== Atlas Metrics ===")
		for _, r := range sum.Roots {
			fmt.Printf("Root: %s\n", r.Label())
		}
		fmt.Printf("Provinces: %d\n", sum.Tables.Provinces)
		fmt.Printf("States: %d\n", sum.Tables.States)
		fmt.Printf("Strategic Regions: %d\n", sum.Tables.Regions)
		fmt.Printf("Countries: %d\n", sum.Tables.Countries)
		fmt.Printf("Adjacencies: %d\n", sum.Tables.Adjacencies)
		fmt.Printf("Views: %v\n", sum.Views)
		for view, msg := range sum.ViewErrors {
			fmt.Printf("View %s failed: %s\n", view, msg)
		}
		fmt.Printf("Issues: %d\n", sum.Issues)
		fmt.Printf("Execution Time: %s\n", time.Since(startTime).String())

		if showIssues {
			snap, _ := svc.Current()
			for _, is := range snap.Report.Issues() {
				if is.Severity == report.SeverityError {
					logg.Warn(is.Message, zap.String("path", is.Path))
				} else {
					logg.Info(is.Message, zap.String("path", is.Path))
				}
			}
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(loadCmd)
	loadCmd.Flags().Bool("no-cache", false, "Ignore and do not write the model cache")
	loadCmd.Flags().Bool("issues", false, "Print every issue found while loading")
}
