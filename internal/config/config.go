// Package config holds the settings of a counting run. A Config is read once
// by the CLI and handed to each component.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"mariinsky-counter/internal/attendance"
	"mariinsky-counter/internal/components/chrono"
	"mariinsky-counter/internal/mailer"
	"mariinsky-counter/internal/report"
	"mariinsky-counter/internal/roster"
	"mariinsky-counter/lib/configutil"
	configlibsql "mariinsky-counter/lib/configutil/libsql"
	"mariinsky-counter/lib/platforms/mariinsky/core"
	"mariinsky-counter/lib/platforms/mariinsky/schedule"
)

var ErrInvalidPeriod = errors.New("invalid period")

const DateLayout = "02.01.2006"

const (
	UsernameEnv = "MARIINSKY_USERNAME"
	PasswordEnv = "MARIINSKY_PASSWORD"
)

type PortalConfig struct {
	BaseUrl          string `json:"base_url"`
	SchedulePath     string `json:"schedule_path"`
	Username         string `json:"username"`
	Password         string `json:"password"`
	CloudflareBypass bool   `json:"cloudflare_bypass"`
	// DumpHttp is a directory that receives every HTTP exchange, it may
	// start with <dev_state>.
	DumpHttp string `json:"dump_http"`
}

type TallyConfig struct {
	Concurrency     int     `json:"concurrency"`
	MinDelaySeconds float64 `json:"min_delay_seconds"`
	MaxDelaySeconds float64 `json:"max_delay_seconds"`
	// SkipRoles are lowercase role fragments whose table rows are ignored.
	SkipRoles []string `json:"skip_roles"`
}

type ReportConfig struct {
	TemplatePath string        `json:"template_path"`
	Layout       report.Layout `json:"layout"`
}

type MailConfig struct {
	Smtp       mailer.SmtpConfig `json:"smtp"`
	Recipients []string          `json:"recipients"`
}

type Config struct {
	Portal    PortalConfig `json:"portal"`
	StartDate string       `json:"start_date"`
	FinalDate string       `json:"final_date"`
	DataDir   string       `json:"data_dir"`
	Tally     TallyConfig  `json:"tally"`
	Report    ReportConfig `json:"report"`
	// Keywords overrides the schedule keywords per category.
	Keywords map[string]schedule.Keywords `json:"keywords"`
	Rosters  roster.Table                 `json:"rosters"`
	Archive  configlibsql.Struct          `json:"archive"`
	Mail     MailConfig                   `json:"mail"`
}

func Defaults() Config {
	return Config{
		Portal: PortalConfig{
			SchedulePath: "/Home/Schedule",
		},
		DataDir: "data",
		Tally: TallyConfig{
			Concurrency:     1,
			MinDelaySeconds: 1,
			MaxDelaySeconds: 2,
			SkipRoles:       attendance.DefaultSkipRoles,
		},
		Report: ReportConfig{
			TemplatePath: "templates/excel/template.xlsx",
			Layout:       report.DefaultLayout,
		},
		Archive: configlibsql.Struct{
			File: "data/archive.db",
		},
		Mail: MailConfig{
			Smtp: mailer.SmtpConfig{Port: 587},
		},
	}
}

// Read loads the config file (and its .local override) over the defaults
// and fills missing credentials from the environment.
func Read(path string) (Config, error) {
	cfg, err := configutil.ReadConfigWithDefaults(path, Defaults())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, err
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if username, ok := os.LookupEnv(UsernameEnv); ok && c.Portal.Username == "" {
		c.Portal.Username = username
	}
	if password, ok := os.LookupEnv(PasswordEnv); ok && c.Portal.Password == "" {
		c.Portal.Password = password
	}
}

// Period is a closed range of days.
type Period struct {
	Start time.Time
	Final time.Time
}

// ParsePeriod parses two DD.MM.YYYY dates, the final date may not be before
// the start date.
func ParsePeriod(start, final string) (Period, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return Period{}, fmt.Errorf("%w: start date %q", ErrInvalidPeriod, start)
	}
	f, err := time.Parse(DateLayout, final)
	if err != nil {
		return Period{}, fmt.Errorf("%w: final date %q", ErrInvalidPeriod, final)
	}
	if f.Before(s) {
		return Period{}, fmt.Errorf("%w: %s is before %s", ErrInvalidPeriod, final, start)
	}
	return Period{Start: s, Final: f}, nil
}

// MonthPeriod covers every day of the month.
func MonthPeriod(year int, month time.Month) Period {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Period{
		Start: start,
		Final: start.AddDate(0, 1, -1),
	}
}

// PreviousMonth is the month before the current one in the clock's time zone.
func PreviousMonth(clock chrono.API) Period {
	now := clock.Now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, clock.Location())
	prev := first.AddDate(0, -1, 0)
	return MonthPeriod(prev.Year(), prev.Month())
}

func (p Period) StartDate() string {
	return p.Start.Format(DateLayout)
}

func (p Period) FinalDate() string {
	return p.Final.Format(DateLayout)
}

// String is the "DD.MM.YYYY-DD.MM.YYYY" form used in directory and file
// names.
func (p Period) String() string {
	return fmt.Sprintf("%s-%s", p.StartDate(), p.FinalDate())
}

// Period returns the configured dates, or the previous month when both are
// unset.
func (c Config) Period(clock chrono.API) (Period, error) {
	if c.StartDate == "" && c.FinalDate == "" {
		return PreviousMonth(clock), nil
	}
	return ParsePeriod(c.StartDate, c.FinalDate)
}

// KeywordsFor returns the configured keywords of a category, or the
// defaults.
func (c Config) KeywordsFor(category attendance.Category) schedule.Keywords {
	keywords, ok := c.Keywords[string(category)]
	if ok {
		return keywords
	}
	return schedule.DefaultKeywords(core.Department(category))
}

func (c Config) TallyOptions() attendance.TallyOptions {
	return attendance.TallyOptions{
		SkipRoles:   c.Tally.SkipRoles,
		Concurrency: c.Tally.Concurrency,
		MinDelay:    seconds(c.Tally.MinDelaySeconds),
		MaxDelay:    seconds(c.Tally.MaxDelaySeconds),
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Validate checks what every command needs.
func (c Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is empty")
	}
	if c.Tally.Concurrency < 0 {
		return fmt.Errorf("tally.concurrency must not be negative")
	}
	if c.Tally.MinDelaySeconds < 0 || c.Tally.MaxDelaySeconds < c.Tally.MinDelaySeconds {
		return fmt.Errorf(
			"tally delay range [%g, %g] is invalid",
			c.Tally.MinDelaySeconds, c.Tally.MaxDelaySeconds,
		)
	}
	if c.StartDate != "" || c.FinalDate != "" {
		_, err := ParsePeriod(c.StartDate, c.FinalDate)
		if err != nil {
			return err
		}
	}
	return nil
}

// ValidatePortal checks what commands talking to the portal need.
func (c Config) ValidatePortal() error {
	if c.Portal.BaseUrl == "" {
		return fmt.Errorf("portal.base_url is empty")
	}
	if c.Portal.Username == "" || c.Portal.Password == "" {
		return fmt.Errorf("portal credentials are missing, set them in the config or in %s and %s", UsernameEnv, PasswordEnv)
	}
	return nil
}
