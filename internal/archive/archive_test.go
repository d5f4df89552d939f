package archive

import (
	"context"
	"testing"
	"time"

	"mariinsky-counter/internal/attendance"
	"mariinsky-counter/internal/report"
	"mariinsky-counter/lib/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) Store {
	t.Helper()

	database := testutil.SetupDB(t, testutil.DBParams{
		Name:   "archive",
		Schema: Schema,
	})
	store, err := Open(context.Background(), database)
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func TestLatestWithoutRuns(t *testing.T) {
	store := openStore(t)
	_, err := store.Latest(context.Background(), "01.04.2023-30.04.2023", attendance.Ballet, attendance.Women)
	require.ErrorIs(t, err, ErrNoRun)
}

func TestSaveAndLatest(t *testing.T) {
	store := openStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	period := "01.04.2023-30.04.2023"
	first := time.Date(2023, time.May, 1, 10, 0, 0, 0, time.UTC)

	firstId, err := store.Save(ctx, Run{
		Period:    period,
		CreatedAt: first,
		Tables: []Table{
			{
				Category: attendance.Ballet,
				Gender:   attendance.Women,
				Rows:     []report.Row{{Name: "X", Counts: [4]int{1, 0, 0, 0}}},
			},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	_, err = uuid.Parse(firstId)
	require.NoError(t, err)

	secondId, err := store.Save(ctx, Run{
		Period:    period,
		CreatedAt: first.Add(time.Hour),
		Tables: []Table{
			{
				Category: attendance.Ballet,
				Gender:   attendance.Women,
				Rows: []report.Row{
					{Name: "Y", Counts: [4]int{5, 0, 0, 0}},
					{Name: "X", Counts: [4]int{3, 2, 0, 0}},
				},
			},
			{
				Category: attendance.Extras,
				Gender:   attendance.Men,
				Rows:     []report.Row{{Name: "Z", Counts: [4]int{0, 0, 0, 1}}},
			},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	require.NotEqual(t, firstId, secondId)

	rows, err := store.Latest(ctx, period, attendance.Ballet, attendance.Women)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, []report.Row{
		{Name: "Y", Counts: [4]int{5, 0, 0, 0}},
		{Name: "X", Counts: [4]int{3, 2, 0, 0}},
	}, rows)

	rows, err = store.Latest(ctx, period, attendance.Extras, attendance.Women)
	if err != nil {
		t.Fatal(err)
	}
	require.Empty(t, rows)

	runs, err := store.Runs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, runs, 2)
	require.Equal(t, secondId, runs[0].Id)
	require.Equal(t, firstId, runs[1].Id)
}

func TestSaveIsAtomic(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	duplicate := report.Row{Name: "X", Counts: [4]int{1, 0, 0, 0}}
	_, err := store.Save(ctx, Run{
		Id:        "fixed",
		Period:    "p",
		CreatedAt: time.Unix(0, 0),
	})
	if err != nil {
		t.Fatal(err)
	}

	// a second run with the same id fails and leaves nothing behind
	_, err = store.Save(ctx, Run{
		Id:        "fixed",
		Period:    "q",
		CreatedAt: time.Unix(10, 0),
		Tables: []Table{{
			Category: attendance.Ballet,
			Gender:   attendance.Men,
			Rows:     []report.Row{duplicate},
		}},
	})
	require.Error(t, err)

	_, err = store.Latest(ctx, "q", attendance.Ballet, attendance.Men)
	require.ErrorIs(t, err, ErrNoRun)
}
