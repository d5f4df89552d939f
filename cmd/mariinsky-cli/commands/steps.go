package commands

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"mariinsky-counter/cmd/mariinsky-cli/globals"
	"mariinsky-counter/internal/archive"
	"mariinsky-counter/internal/attendance"
	"mariinsky-counter/internal/components/telemetry"
	"mariinsky-counter/internal/report"
	"mariinsky-counter/internal/roster"
	"mariinsky-counter/internal/store"
	"mariinsky-counter/lib/htmlutil"
	"mariinsky-counter/lib/platforms/mariinsky/core"
	"mariinsky-counter/lib/platforms/mariinsky/schedule"
	"mariinsky-counter/lib/restyutil"
	libtelemetry "mariinsky-counter/lib/telemetry"
)

func login(ctx context.Context, g *globals.Value) (*core.Client, error) {
	cfg := g.Config.Portal
	err := g.Config.ValidatePortal()
	if err != nil {
		return nil, err
	}

	opts := core.ClientOptions{
		BaseUrl:          cfg.BaseUrl,
		CloudflareBypass: cfg.CloudflareBypass,
	}
	if cfg.DumpHttp != "" {
		output, err := restyutil.NewFilesystemOutput(cfg.DumpHttp)
		if err != nil {
			return nil, err
		}
		opts.HttpOutput = output
	}

	client, err := core.NewClient(opts)
	if err != nil {
		return nil, err
	}

	loginCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	err = client.LoginUsernamePassword(loginCtx, cfg.Username, cfg.Password)
	if err != nil {
		return nil, fmt.Errorf("login as %s: %w", cfg.Username, err)
	}
	slog.InfoContext(ctx, "logged in", "username", cfg.Username)
	return client, nil
}

// portalFetcher reads event tables through a logged in portal client.
type portalFetcher struct {
	client *core.Client
}

func (f portalFetcher) EventCells(ctx context.Context, category attendance.Category, id attendance.EventID) ([]string, error) {
	return f.client.EventCells(ctx, core.Department(category), string(id))
}

func toEventIDs(codes []string) []attendance.EventID {
	out := make([]attendance.EventID, len(codes))
	for i, c := range codes {
		out[i] = attendance.EventID(c)
	}
	return out
}

func saveCodes(ctx context.Context, g *globals.Value, category attendance.Category, anchors []htmlutil.Anchor) error {
	codes := schedule.Classify(anchors, g.Config.KeywordsFor(category))

	err := g.Store.SaveCodes(category, attendance.Performance, toEventIDs(codes.Performances))
	if err != nil {
		return err
	}
	err = g.Store.SaveCodes(category, attendance.Rehearsal, toEventIDs(codes.Rehearsals))
	if err != nil {
		return err
	}

	slog.InfoContext(
		ctx, "saved event codes",
		"category", category,
		"performances", len(codes.Performances),
		"rehearsals", len(codes.Rehearsals),
	)
	return nil
}

func discover(ctx context.Context, g *globals.Value, client *core.Client, categories []attendance.Category) error {
	sched := schedule.Client{
		Portal: client,
		Path:   g.Config.Portal.SchedulePath,
	}
	for _, category := range categories {
		anchors, err := sched.Fetch(ctx, core.Department(category), g.Period.StartDate(), g.Period.FinalDate())
		if err != nil {
			return err
		}
		err = saveCodes(ctx, g, category, anchors)
		if err != nil {
			return err
		}
	}
	return nil
}

func newRunner(g *globals.Value, fetcher attendance.Fetcher) attendance.Runner {
	opts := g.Config.TallyOptions()
	opts.Telemetry = telemetry.NewScopedAPI("count", telemetry.SlogAPI{})
	return attendance.Runner{
		Codes:    g.Store,
		Counters: g.Store,
		Fetcher:  fetcher,
		Options:  opts,
		AfterPass: func(ctx context.Context, category attendance.Category, action attendance.Action) {
			libtelemetry.LogPerfStats(ctx, fmt.Sprintf("%s_%s", category, action))
		},
	}
}

// aggregate builds the report tables of every roster from the saved counters
// and writes them as csv files.
func aggregate(g *globals.Value, tel telemetry.API) ([]archive.Table, error) {
	var tables []archive.Table
	for _, category := range attendance.Categories {
		counters, err := report.Load(g.Store, category)
		if err != nil {
			return nil, err
		}

		for _, s := range roster.Unlisted(g.Config.Rosters.Merged(category), counters[:]...) {
			tel.ReportWarning(
				"aggregate.unlisted",
				string(category), s.Name, s.Count, s.Closest,
			)
		}

		for _, gender := range attendance.Genders {
			names, err := g.Config.Rosters.Lookup(category, gender)
			if err != nil {
				return nil, err
			}
			rows := report.Aggregate(names, counters)

			var buf bytes.Buffer
			err = report.WriteCSV(&buf, rows)
			if err != nil {
				return nil, err
			}
			err = store.WriteFile(g.Store.CSVPath(category, gender), buf.Bytes())
			if err != nil {
				return nil, err
			}

			tables = append(tables, archive.Table{
				Category: category,
				Gender:   gender,
				Rows:     rows,
			})
		}
	}
	return tables, nil
}

// readTables reads back the csv files written by aggregate.
func readTables(g *globals.Value) ([]archive.Table, error) {
	var tables []archive.Table
	for _, category := range attendance.Categories {
		for _, gender := range attendance.Genders {
			path := g.Store.CSVPath(category, gender)
			f, err := os.Open(path)
			if err != nil {
				return nil, fmt.Errorf("%w: %s (run aggregate first)", store.ErrNotFound, path)
			}
			rows, err := report.ReadCSV(f)
			f.Close()
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", path, err)
			}
			tables = append(tables, archive.Table{
				Category: category,
				Gender:   gender,
				Rows:     rows,
			})
		}
	}
	return tables, nil
}

// export writes a workbook per table and returns their paths.
func export(g *globals.Value, tables []archive.Table) ([]string, error) {
	var paths []string
	for _, table := range tables {
		path := g.Store.WorkbookPath(table.Category, table.Gender)
		err := report.WriteWorkbook(
			g.Config.Report.TemplatePath,
			path,
			g.Period.String(),
			table.Rows,
			g.Config.Report.Layout,
		)
		if err != nil {
			return nil, fmt.Errorf("export %s %s: %w", table.Category, table.Gender, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func openArchive(ctx context.Context, g *globals.Value) (archive.Store, func(), error) {
	database, err := g.Config.Archive.OpenDB()
	if err != nil {
		return archive.Store{}, nil, err
	}
	st, err := archive.Open(ctx, database)
	if err != nil {
		database.Close()
		return archive.Store{}, nil, err
	}
	return st, func() { database.Close() }, nil
}

func archiveTables(ctx context.Context, g *globals.Value, tables []archive.Table) (string, error) {
	st, closeDb, err := openArchive(ctx, g)
	if err != nil {
		return "", err
	}
	defer closeDb()

	return st.Save(ctx, archive.Run{
		Period:    g.Period.String(),
		CreatedAt: time.Now(),
		Tables:    tables,
	})
}
