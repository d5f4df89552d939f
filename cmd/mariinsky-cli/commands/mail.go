package commands

import (
	"errors"
	"log/slog"
	"os"

	"mariinsky-counter/cmd/mariinsky-cli/globals"
	"mariinsky-counter/internal/attendance"
	"mariinsky-counter/internal/mailer"
	"mariinsky-counter/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(mailCmd)
}

// workbooks lists the exported workbooks of the period that exist.
func workbooks(g *globals.Value) []string {
	var paths []string
	for _, category := range attendance.Categories {
		for _, gender := range attendance.Genders {
			path := g.Store.WorkbookPath(category, gender)
			_, err := os.Stat(path)
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			paths = append(paths, path)
		}
	}
	return paths
}

var mailCmd = &cobra.Command{
	Use:   "mail",
	Short: "Send the exported workbooks to the configured recipients.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		g := globals.Get(ctx)

		paths := workbooks(g)
		if len(paths) == 0 {
			serviceutil.Fatal("nothing to send", errors.New("no workbooks exported for the period"))
		}
		err := mailer.Send(ctx, g.Config.Mail.Smtp, g.Config.Mail.Recipients, g.Period.String(), paths)
		if err != nil {
			serviceutil.Fatal("failed to send mail", err)
		}
		slog.Info("sent workbooks", "count", len(paths), "recipients", g.Config.Mail.Recipients)
	},
}
