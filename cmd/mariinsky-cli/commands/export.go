package commands

import (
	"log/slog"

	"mariinsky-counter/cmd/mariinsky-cli/globals"
	"mariinsky-counter/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Fill the workbook template with the csv reports.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		g := globals.Get(cmd.Context())

		tables, err := readTables(g)
		if err != nil {
			serviceutil.Fatal("failed to read reports", err)
		}
		paths, err := export(g, tables)
		if err != nil {
			serviceutil.Fatal("failed to export", err)
		}
		for _, p := range paths {
			slog.Info("wrote workbook", "path", p)
		}
	},
}
