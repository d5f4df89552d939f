package commands

import (
	"fmt"
	"os"

	"mariinsky-counter/cmd/mariinsky-cli/globals"
	"mariinsky-counter/internal/attendance"
	"mariinsky-counter/internal/report"
	"mariinsky-counter/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

var showArchived bool

func init() {
	showCmd.Flags().BoolVar(&showArchived, "archived", false, "Show the latest archived report instead of the csv file.")
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show <category> <gender>",
	Short: "Print a report as a table.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		g := globals.Get(ctx)

		category, err := attendance.ParseCategory(args[0])
		if err != nil {
			serviceutil.Fatal("invalid category", err)
		}
		gender, err := attendance.ParseGender(args[1])
		if err != nil {
			serviceutil.Fatal("invalid gender", err)
		}

		var rows []report.Row
		if showArchived {
			st, closeDb, err := openArchive(ctx, g)
			if err != nil {
				serviceutil.Fatal("failed to open archive", err)
			}
			defer closeDb()
			rows, err = st.Latest(ctx, g.Period.String(), category, gender)
			if err != nil {
				serviceutil.Fatal("failed to read archive", err)
			}
		} else {
			f, err := os.Open(g.Store.CSVPath(category, gender))
			if err != nil {
				serviceutil.Fatal("failed to open report", err)
			}
			defer f.Close()
			rows, err = report.ReadCSV(f)
			if err != nil {
				serviceutil.Fatal("failed to read report", err)
			}
		}

		report.Render(os.Stdout, fmt.Sprintf("%s %s %s", category, gender, g.Period), rows)
	},
}
