package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"map-atlas/core/raster"
	"map-atlas/core/store"
	"map-atlas/feature/atlas"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// renderCmd represents the render command
var renderCmd = &cobra.Command{
	Use:   "render [view...]",
	Short: "Render thematic maps to files",
	Long: `Builds the atlas and writes the requested views (province, state, region,
owner; all of them when none is given) to the output directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		formatName, _ := cmd.Flags().GetString("format")

		format, err := raster.ParseFormat(formatName)
		if err != nil {
			return err
		}
		views := raster.Views()
		if len(args) > 0 {
			views = views[:0:0]
			for _, a := range args {
				v, err := raster.ParseView(a)
				if err != nil {
					return err
				}
				views = append(views, v)
			}
		}

		cfg, logg, err := setup()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(out, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		svc := atlas.NewService(cfg.Game, store.New(1), logg)
		if _, err := svc.Load(cmd.Context(), logReporter{logger: logg}); err != nil {
			return fmt.Errorf("atlas build failed: %w", err)
		}

		failed := 0
		for _, v := range views {
			data, err := svc.RenderView(v, format)
			if err != nil {
				logg.Error("View not rendered", zap.String("view", string(v)), zap.Error(err))
				failed++
				continue
			}
			path := filepath.Join(out, string(v)+"."+string(format))
			if err := os.WriteFile(path, data, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			logg.Info("View written", zap.String("view", string(v)), zap.String("file", path))
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d views failed", failed, len(views))
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringP("out", "o", ".", "Output directory")
	renderCmd.Flags().StringP("format", "f", "png", "Image format (png or bmp)")
}
