// Package archive keeps every generated report in a database so earlier
// periods can be listed and compared without the files on disk.
package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mariinsky-counter/internal/attendance"
	"mariinsky-counter/internal/report"

	_ "embed"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

//go:embed schema.sql
var Schema string

var tracer = otel.Tracer("mariinsky.internal.archive")

var ErrNoRun = errors.New("no archived run")

// Table is the report of one roster.
type Table struct {
	Category attendance.Category
	Gender   attendance.Gender
	Rows     []report.Row
}

type Run struct {
	Id        string
	Period    string
	CreatedAt time.Time
	Tables    []Table
}

type Store struct {
	db *sql.DB
}

// Open creates the schema if needed.
func Open(ctx context.Context, database *sql.DB) (Store, error) {
	_, err := database.ExecContext(ctx, Schema)
	if err != nil {
		return Store{}, fmt.Errorf("create archive schema: %w", err)
	}
	return Store{db: database}, nil
}

// Save writes the run and all of its rows, it assigns an id when the run has
// none and returns it.
func (s Store) Save(ctx context.Context, run Run) (string, error) {
	ctx, span := tracer.Start(ctx, "archive:Save")
	defer span.End()

	if run.Id == "" {
		run.Id = uuid.NewString()
	}
	span.SetAttributes(
		attribute.String("id", run.Id),
		attribute.String("period", run.Period),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to begin transaction")
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(
		ctx,
		"insert into report_run(id, period, created_at) values (?, ?, ?)",
		run.Id, run.Period, run.CreatedAt.Unix(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to insert run")
		return "", err
	}

	for _, table := range run.Tables {
		for i, r := range table.Rows {
			_, err = tx.ExecContext(
				ctx,
				`insert into report_row(
					run_id, category, gender, position, name,
					perf_feat, perf_secure, reh_feat, reh_secure
				) values (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				run.Id, string(table.Category), string(table.Gender), i, r.Name,
				r.Counts[0], r.Counts[1], r.Counts[2], r.Counts[3],
			)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "failed to insert row")
				return "", err
			}
		}
	}

	err = tx.Commit()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to commit")
		return "", err
	}
	return run.Id, nil
}

// RunInfo describes an archived run without its rows.
type RunInfo struct {
	Id        string
	Period    string
	CreatedAt time.Time
}

// Runs lists the archived runs, newest first.
func (s Store) Runs(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx, "select id, period, created_at from report_run order by created_at desc, rowid desc")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunInfo
	for rows.Next() {
		var info RunInfo
		var createdAt int64
		err := rows.Scan(&info.Id, &info.Period, &createdAt)
		if err != nil {
			return nil, err
		}
		info.CreatedAt = time.Unix(createdAt, 0)
		out = append(out, info)
	}
	return out, rows.Err()
}

// Latest returns the rows of the newest run of a period for one roster, in
// report order.
func (s Store) Latest(ctx context.Context, period string, category attendance.Category, gender attendance.Gender) ([]report.Row, error) {
	ctx, span := tracer.Start(ctx, "archive:Latest")
	defer span.End()

	var runId string
	err := s.db.QueryRowContext(
		ctx,
		"select id from report_run where period = ? order by created_at desc, rowid desc limit 1",
		period,
	).Scan(&runId)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w for %s", ErrNoRun, period)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to find run")
		return nil, err
	}

	rows, err := s.db.QueryContext(
		ctx,
		`select name, perf_feat, perf_secure, reh_feat, reh_secure
		from report_row
		where run_id = ? and category = ? and gender = ?
		order by position`,
		runId, string(category), string(gender),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to query rows")
		return nil, err
	}
	defer rows.Close()

	out := []report.Row{}
	for rows.Next() {
		var r report.Row
		err := rows.Scan(&r.Name, &r.Counts[0], &r.Counts[1], &r.Counts[2], &r.Counts[3])
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
