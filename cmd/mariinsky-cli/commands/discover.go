package commands

import (
	"errors"
	"os"

	"mariinsky-counter/cmd/mariinsky-cli/globals"
	"mariinsky-counter/internal/attendance"
	"mariinsky-counter/lib/platforms/mariinsky/schedule"
	"mariinsky-counter/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

var discoverHtml string

func init() {
	discoverCmd.Flags().StringVar(&discoverHtml, "html", "", "Classify a saved schedule page instead of fetching it, requires a category.")
	rootCmd.AddCommand(discoverCmd)
}

var discoverCmd = &cobra.Command{
	Use:   "discover [category] [--html <schedule.html>]",
	Short: "Find the event codes of the period and save them per category and action.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		g := globals.Get(ctx)

		categories := attendance.Categories
		if len(args) == 1 {
			category, err := attendance.ParseCategory(args[0])
			if err != nil {
				serviceutil.Fatal("invalid category", err)
			}
			categories = []attendance.Category{category}
		}

		if discoverHtml != "" {
			if len(args) == 0 {
				serviceutil.Fatal("invalid arguments", errors.New("--html needs a category"))
			}
			f, err := os.Open(discoverHtml)
			if err != nil {
				serviceutil.Fatal("failed to open schedule page", err)
			}
			defer f.Close()
			anchors, err := schedule.ParseSchedule(ctx, f)
			if err != nil {
				serviceutil.Fatal("failed to parse schedule page", err)
			}
			err = saveCodes(ctx, g, categories[0], anchors)
			if err != nil {
				serviceutil.Fatal("failed to save codes", err)
			}
			return
		}

		client, err := login(ctx, g)
		if err != nil {
			serviceutil.Fatal("failed to login to the portal", err)
		}
		err = discover(ctx, g, client, categories)
		if err != nil {
			serviceutil.Fatal("failed to discover event codes", err)
		}
	},
}
