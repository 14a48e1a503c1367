package cmd

import (
	"fmt"

	"map-atlas/core/logger"
	"map-atlas/core/script"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// parseCmd represents the parse command
var parseCmd = &cobra.Command{
	Use:   "parse FILE",
	Short: "Parse a script file and print it normalised",
	Long: `Reads a script file, prints the parsed tree in canonical form and logs
every recovery the parser had to make.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logg, err := logger.New(&logger.Config{Level: "info", Format: "console"})
		if err != nil {
			return err
		}
		doc, err := script.ReadFile(args[0])
		if err != nil {
			return err
		}
		for _, w := range doc.Warnings {
			logg.Warn(w.Msg, zap.String("file", args[0]), zap.Int("line", w.Line))
		}
		fmt.Print(script.Format(doc.Statements))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(parseCmd)
}
