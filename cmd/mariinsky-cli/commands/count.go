package commands

import (
	"mariinsky-counter/cmd/mariinsky-cli/globals"
	"mariinsky-counter/internal/attendance"
	"mariinsky-counter/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(countCmd)
}

var countCmd = &cobra.Command{
	Use:   "count [category [action]]",
	Short: "Count appearances in the discovered events and save the counters.",
	Args:  cobra.MaximumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		g := globals.Get(ctx)

		client, err := login(ctx, g)
		if err != nil {
			serviceutil.Fatal("failed to login to the portal", err)
		}
		runner := newRunner(g, portalFetcher{client: client})

		if len(args) == 0 {
			err = runner.RunAll(ctx)
			if err != nil {
				serviceutil.Fatal("failed to count", err)
			}
			return
		}

		category, err := attendance.ParseCategory(args[0])
		if err != nil {
			serviceutil.Fatal("invalid category", err)
		}
		actions := attendance.Actions
		if len(args) == 2 {
			action, err := attendance.ParseAction(args[1])
			if err != nil {
				serviceutil.Fatal("invalid action", err)
			}
			actions = []attendance.Action{action}
		}
		for _, action := range actions {
			err = runner.Run(ctx, category, action)
			if err != nil {
				serviceutil.Fatal("failed to count", err)
			}
		}
	},
}
