package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"map-atlas/core/store"
	"map-atlas/feature/atlas"
	"map-atlas/feature/integrity"
	"map-atlas/feature/integrity/checks"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity [check...]",
	Short: "Run integrity checks on the map data",
	Long: `Builds the atlas and runs the named integrity checks, or all of them.
Outputs metrics by default or a detailed JSON report with --json.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		startTime := time.Now()
		jsonOutput, _ := cmd.Flags().GetBool("json")
		list, _ := cmd.Flags().GetBool("list")

		if list {
			for _, c := range checks.All {
				fmt.Printf("%-16s %s\n", c.Name, c.Description)
			}
			return nil
		}

		cfg, logg, err := setup()
		if err != nil {
			return err
		}

		svc := atlas.NewService(cfg.Game, store.New(1), logg)
		if _, err := svc.Load(cmd.Context(), nil); err != nil {
			return fmt.Errorf("atlas build failed: %w", err)
		}

		logg.Info("Running integrity checks...")
		rep, err := integrity.NewService(svc, logg).Run(cmd.Context(), args...)
		if err != nil {
			return fmt.Errorf("integrity check failed: %w", err)
		}

		if jsonOutput {
			filename := fmt.Sprintf("integrity_atlas_%d.json", time.Now().Unix())
			data, err := json.MarshalIndent(rep, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal JSON: %w", err)
			}
			if err := os.WriteFile(filename, data, 0644); err != nil {
				return fmt.Errorf("failed to save JSON file: %w", err)
			}
			logg.Info("Detailed JSON report saved", zap.String("file", filename), zap.Int("findings", rep.Findings))
		}

		fmt.Println("\n=== Atlas Integrity Metrics ===")
		for _, r := range rep.Results {
			fmt.Printf("%-16s %-7s %d\n", r.Name, r.Status, len(r.Findings))
		}
		fmt.Printf("Findings: %d\n", rep.Findings)
		fmt.Printf("Execution Time: %s\n", time.Since(startTime).String())

		if !rep.OK() {
			return errors.New("integrity checks failed")
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.Flags().Bool("json", false, "Save a detailed JSON report")
	integrityCmd.Flags().Bool("list", false, "List the available checks")
}
