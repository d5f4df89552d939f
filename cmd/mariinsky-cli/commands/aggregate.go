package commands

import (
	"log/slog"

	"mariinsky-counter/cmd/mariinsky-cli/globals"
	"mariinsky-counter/internal/components/telemetry"
	"mariinsky-counter/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(aggregateCmd)
}

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Build the per roster csv reports from the saved counters.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		g := globals.Get(cmd.Context())

		tables, err := aggregate(g, telemetry.SlogAPI{})
		if err != nil {
			serviceutil.Fatal("failed to aggregate", err)
		}
		for _, table := range tables {
			slog.Info(
				"wrote report",
				"path", g.Store.CSVPath(table.Category, table.Gender),
				"rows", len(table.Rows),
			)
		}
	},
}
