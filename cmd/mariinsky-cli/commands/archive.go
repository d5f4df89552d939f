package commands

import (
	"log/slog"
	"os"
	"time"

	"mariinsky-counter/cmd/mariinsky-cli/globals"
	"mariinsky-counter/lib/util/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	archiveCmd.AddCommand(archiveListCmd)
	rootCmd.AddCommand(archiveCmd)
}

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Store the csv reports of the period in the archive database.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		g := globals.Get(ctx)

		tables, err := readTables(g)
		if err != nil {
			serviceutil.Fatal("failed to read reports", err)
		}
		id, err := archiveTables(ctx, g, tables)
		if err != nil {
			serviceutil.Fatal("failed to archive", err)
		}
		slog.Info("archived reports", "id", id, "period", g.Period.String())
	},
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the archived runs.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		g := globals.Get(ctx)

		st, closeDb, err := openArchive(ctx, g)
		if err != nil {
			serviceutil.Fatal("failed to open archive", err)
		}
		defer closeDb()

		runs, err := st.Runs(ctx)
		if err != nil {
			serviceutil.Fatal("failed to list runs", err)
		}

		t := table.NewWriter()
		t.SetStyle(table.StyleRounded)
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Id", "Period", "Created"})
		for _, r := range runs {
			t.AppendRow(table.Row{r.Id, r.Period, r.CreatedAt.Format(time.DateTime)})
		}
		t.Render()
	},
}
