package cmd

import (
	"fmt"

	"map-atlas/core/database"
	"map-atlas/core/reconcile"
	"map-atlas/core/storage"
	"map-atlas/core/store"
	"map-atlas/feature/atlas"
	"map-atlas/feature/export"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the atlas to storage or a database",
}

// exportStorageCmd represents the export storage command
var exportStorageCmd = &cobra.Command{
	Use:   "storage NAME",
	Short: "Upload views and tables to the storage bucket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logg, err := setup()
		if err != nil {
			return err
		}
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to create storage client: %w", err)
		}

		svc := atlas.NewService(cfg.Game, store.New(1), logg)
		if _, err := svc.Load(cmd.Context(), logReporter{logger: logg}); err != nil {
			return fmt.Errorf("atlas build failed: %w", err)
		}

		res, err := export.NewService(svc, client, cfg.Storage, nil, logg).ToStorage(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Uploaded %d of %d objects to %s/%s (%d unchanged, %d removed)\n",
			len(res.Uploaded), len(res.Objects), res.Bucket, res.Prefix, res.Unchanged, len(res.Removed))
		return nil
	},
}

// exportDatabaseCmd represents the export database command
var exportDatabaseCmd = &cobra.Command{
	Use:   "database",
	Short: "Write provinces, states, regions and countries to MySQL",
	RunE: func(cmd *cobra.Command, args []string) error {
		migrate, _ := cmd.Flags().GetBool("migrate")
		verify, _ := cmd.Flags().GetBool("verify")

		cfg, logg, err := setup()
		if err != nil {
			return err
		}
		db, err := database.Connect(cmd.Context(), cfg.Database)
		if err != nil {
			return fmt.Errorf("database connection required: %w", err)
		}

		if verify {
			missing, err := export.VerifySchema(db.WithContext(cmd.Context()))
			if err != nil {
				return err
			}
			if len(missing) == 0 {
				logg.Info("Atlas tables match the models.")
				return nil
			}
			for table, cols := range missing {
				logg.Warn("Missing Columns", zap.String("table", table), zap.Strings("columns", cols))
			}
			return fmt.Errorf("%d tables are missing columns, run with --migrate", len(missing))
		}

		svc := atlas.NewService(cfg.Game, store.New(1), logg)
		if _, err := svc.Load(cmd.Context(), logReporter{logger: logg}); err != nil {
			return fmt.Errorf("atlas build failed: %w", err)
		}

		res, err := export.NewService(svc, nil, cfg.Storage, db, logg).ToDatabase(cmd.Context(), migrate)
		if err != nil {
			return err
		}
		for table, n := range res.Upserted {
			fmt.Printf("%-16s upserted %d, deleted %d\n", table, n, res.Deleted[table])
		}
		return nil
	},
}

// exportDriftCmd represents the export drift command
var exportDriftCmd = &cobra.Command{
	Use:   "drift NAME",
	Short: "Show what an export would change, without writing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logg, err := setup()
		if err != nil {
			return err
		}

		var client storage.Client
		if c, err := storage.NewClient(cfg.Storage); err != nil {
			logg.Warn("Optional storage client failed", zap.Error(err))
		} else {
			client = c
		}
		var db *gorm.DB
		if conn, err := database.Connect(cmd.Context(), cfg.Database); err != nil {
			logg.Warn("Optional database connection failed", zap.Error(err))
		} else {
			db = conn
		}

		svc := atlas.NewService(cfg.Game, store.New(1), logg)
		if _, err := svc.Load(cmd.Context(), logReporter{logger: logg}); err != nil {
			return fmt.Errorf("atlas build failed: %w", err)
		}

		rep, err := export.NewService(svc, client, cfg.Storage, db, logg).Drift(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Println("\n=== Export Drift ===")
		if rep.Storage != nil {
			printDrift("storage", rep.Storage.Summary)
		}
		for _, table := range []string{"atlas_provinces", "atlas_states", "atlas_regions", "atlas_countries"} {
			if plan, ok := rep.Tables[table]; ok {
				printDrift(table, plan.Summary)
			}
		}
		return nil
	},
}

func printDrift(target string, s reconcile.Summary) {
	fmt.Printf("%-16s total %d, in sync %d, missing %d, stale %d, changed %d\n",
		target, s.Total, s.InSync, s.Missing, s.Stale, s.Mismatches)
}

func init() {
	RootCmd.AddCommand(exportCmd)
	exportCmd.AddCommand(exportStorageCmd, exportDatabaseCmd, exportDriftCmd)
	exportDatabaseCmd.Flags().Bool("migrate", false, "Create or update the atlas tables first")
	exportDatabaseCmd.Flags().Bool("verify", false, "Only compare the tables with the models")
}
