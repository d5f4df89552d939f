package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"mariinsky-counter/cmd/mariinsky-cli/globals"
	"mariinsky-counter/internal/components/chrono"
	"mariinsky-counter/internal/config"
	"mariinsky-counter/internal/store"
	"mariinsky-counter/lib/telemetry"
	"mariinsky-counter/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	startDate  string
	finalDate  string
	month      string
)

var rootCmd = &cobra.Command{
	Use:   "mariinsky-cli",
	Short: "mariinsky-cli counts performance and rehearsal appearances of the ballet and extras troupes.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)

		value, err := load()
		if err != nil {
			serviceutil.Fatal("failed to load config", err)
		}
		cmd.SetContext(globals.Set(cmd.Context(), value))
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "config.json5", "The config file, a .local variant next to it overrides it.")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Log debug messages.")
	flags.StringVar(&startDate, "start", "", "First day of the period (DD.MM.YYYY).")
	flags.StringVar(&finalDate, "final", "", "Last day of the period (DD.MM.YYYY).")
	flags.StringVar(&month, "month", "", "Count a whole month (MM.YYYY), overrides --start and --final.")
}

func load() (*globals.Value, error) {
	cfg, err := config.Read(configPath)
	if err != nil {
		return nil, err
	}
	if startDate != "" {
		cfg.StartDate = startDate
	}
	if finalDate != "" {
		cfg.FinalDate = finalDate
	}
	if month != "" {
		m, err := time.Parse("01.2006", month)
		if err != nil {
			return nil, fmt.Errorf("%w: month %q", config.ErrInvalidPeriod, month)
		}
		period := config.MonthPeriod(m.Year(), m.Month())
		cfg.StartDate = period.StartDate()
		cfg.FinalDate = period.FinalDate()
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	clock, err := chrono.NewStandardImpl()
	if err != nil {
		return nil, err
	}
	period, err := cfg.Period(clock)
	if err != nil {
		return nil, err
	}

	return &globals.Value{
		Config: cfg,
		Period: period,
		Store:  store.New(cfg.DataDir, period.String()),
	}, nil
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
