package commands

import (
	"log/slog"
	"time"

	"mariinsky-counter/cmd/mariinsky-cli/globals"
	"mariinsky-counter/internal/attendance"
	"mariinsky-counter/internal/components/telemetry"
	"mariinsky-counter/internal/mailer"
	"mariinsky-counter/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

var (
	runArchive bool
	runMail    bool
)

func init() {
	runCmd.Flags().BoolVar(&runArchive, "archive", false, "Also store the reports in the archive database.")
	runCmd.Flags().BoolVar(&runMail, "mail", false, "Also mail the workbooks.")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Discover, count, aggregate and export the whole period.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		g := globals.Get(ctx)
		start := time.Now()

		client, err := login(ctx, g)
		if err != nil {
			serviceutil.Fatal("failed to login to the portal", err)
		}
		err = discover(ctx, g, client, attendance.Categories)
		if err != nil {
			serviceutil.Fatal("failed to discover event codes", err)
		}
		err = newRunner(g, portalFetcher{client: client}).RunAll(ctx)
		if err != nil {
			serviceutil.Fatal("failed to count", err)
		}
		tables, err := aggregate(g, telemetry.SlogAPI{})
		if err != nil {
			serviceutil.Fatal("failed to aggregate", err)
		}
		paths, err := export(g, tables)
		if err != nil {
			serviceutil.Fatal("failed to export", err)
		}

		if runArchive {
			id, err := archiveTables(ctx, g, tables)
			if err != nil {
				serviceutil.Fatal("failed to archive", err)
			}
			slog.Info("archived reports", "id", id)
		}
		if runMail {
			err = mailer.Send(ctx, g.Config.Mail.Smtp, g.Config.Mail.Recipients, g.Period.String(), paths)
			if err != nil {
				serviceutil.Fatal("failed to send mail", err)
			}
		}

		slog.Info(
			"finished run",
			"period", g.Period.String(),
			"workbooks", len(paths),
			"seconds", time.Since(start).Seconds(),
		)
	},
}
