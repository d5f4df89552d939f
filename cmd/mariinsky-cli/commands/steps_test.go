package commands

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"mariinsky-counter/cmd/mariinsky-cli/globals"
	"mariinsky-counter/internal/archive"
	"mariinsky-counter/internal/attendance"
	"mariinsky-counter/internal/components/telemetry"
	"mariinsky-counter/internal/config"
	"mariinsky-counter/internal/report"
	"mariinsky-counter/internal/roster"
	"mariinsky-counter/internal/store"
	configlibsql "mariinsky-counter/lib/configutil/libsql"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const cell = `<td style="padding-left: 5px; border: 1px solid gray;">%s</td>`

func eventTable(rows ...[3]string) string {
	out := "<html><body><table>"
	for _, r := range rows {
		out += "<tr>"
		for _, c := range r {
			out += fmt.Sprintf(cell, c)
		}
		out += "</tr>"
	}
	return out + "</table></body></html>"
}

// newPortal serves one ballet performance (1), one ballet rehearsal (2), one
// extras performance (3) and a ballet class (4) that is not counted.
func newPortal(t *testing.T) *httptest.Server {
	t.Helper()

	schedules := map[string]string{
		"3": `<a href="/Home/MoreInfo/1">Жизель</a>
			<a href="/Home/MoreInfo/2">Реп. Жизель</a>
			<a href="/Home/MoreInfo/4">Урок балета</a>`,
		"6": `<a href="/Home/MoreInfo/3">Кармен</a>`,
	}
	events := map[string]string{
		"1?a=9": eventTable(
			[3]string{"Жизель", "Иванова", "Петрова"},
			[3]string{"Режиссер", "Орлов", ""},
		),
		"2?a=9": eventTable([3]string{"Жизель", "Петрова", "Иванова"}),
		"3?a=11": eventTable(
			[3]string{"Contrabandista", "Сидоров (ввод)", "Смирнов"},
			[3]string{"Миманс", "Козлов", ""},
		),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /Account/Login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "ok", Path: "/"})
		fmt.Fprint(w, "<html></html>")
	})
	mux.HandleFunc("POST /Home/Schedule", func(w http.ResponseWriter, r *http.Request) {
		err := r.ParseForm()
		if err != nil {
			t.Fatal(err)
		}
		fmt.Fprintf(w, "<html><body>%s</body></html>", schedules[r.PostForm.Get("dep")])
	})
	mux.HandleFunc("POST /Home/MoreInfo/{id}", func(w http.ResponseWriter, r *http.Request) {
		page, ok := events[r.PathValue("id")+"?a="+r.URL.Query().Get("a")]
		if !ok {
			page = eventTable()
		}
		fmt.Fprint(w, page)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func createTemplate(t *testing.T, dir string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	path := filepath.Join(dir, "template.xlsx")
	err := f.SaveAs(path)
	if err != nil {
		t.Fatal(err)
	}
	return path
}

func newGlobals(t *testing.T, baseUrl string) *globals.Value {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Defaults()
	cfg.Portal.BaseUrl = baseUrl
	cfg.Portal.Username = "user"
	cfg.Portal.Password = "secret"
	cfg.DataDir = filepath.Join(dir, "data")
	cfg.Tally.MinDelaySeconds = 0
	cfg.Tally.MaxDelaySeconds = 0
	cfg.Report.TemplatePath = createTemplate(t, dir)
	cfg.Archive = configlibsql.Struct{File: filepath.Join(dir, "archive.db")}
	cfg.Rosters = roster.Table{
		"ballet_women": {"Петрова", "Иванова", "Смирнова"},
		"ballet_men":   {"Орлов"},
		"extras_women": {},
		"extras_men":   {"Сидоров", "Смирнов", "Козлов"},
	}

	period, err := config.ParsePeriod("01.04.2023", "30.04.2023")
	if err != nil {
		t.Fatal(err)
	}
	return &globals.Value{
		Config: cfg,
		Period: period,
		Store:  store.New(cfg.DataDir, period.String()),
	}
}

func TestPipeline(t *testing.T) {
	server := newPortal(t)
	g := newGlobals(t, server.URL)
	ctx := context.Background()

	client, err := login(ctx, g)
	if err != nil {
		t.Fatal(err)
	}
	err = discover(ctx, g, client, attendance.Categories)
	if err != nil {
		t.Fatal(err)
	}

	codes, err := g.Store.LoadCodes(attendance.Ballet, attendance.Performance)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, []attendance.EventID{"1"}, codes)
	codes, err = g.Store.LoadCodes(attendance.Ballet, attendance.Rehearsal)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, []attendance.EventID{"2"}, codes)

	err = newRunner(g, portalFetcher{client: client}).RunAll(ctx)
	if err != nil {
		t.Fatal(err)
	}

	counter, err := g.Store.LoadCounter(attendance.Ballet, attendance.Primary, attendance.Performance)
	if err != nil {
		t.Fatal(err)
	}
	// event 1 from the ballet page, event 3 from the extras page
	require.Equal(t, attendance.Counter{"Иванова": 1, "Сидоров": 1}, counter)

	counter, err = g.Store.LoadCounter(attendance.Extras, attendance.Secondary, attendance.Performance)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, attendance.Counter{"Смирнов": 1}, counter)

	recorder := &telemetry.Recorder{}
	tables, err := aggregate(g, recorder)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, tables, 4)
	require.Empty(t, tables[0].Rows, "Орлов only appears as a director")
	require.Equal(t, archive.Table{
		Category: attendance.Ballet,
		Gender:   attendance.Women,
		Rows: []report.Row{
			{Name: "Иванова", Counts: [4]int{1, 0, 0, 1}},
			{Name: "Петрова", Counts: [4]int{0, 1, 1, 0}},
		},
	}, tables[1])
	require.Equal(t, archive.Table{
		Category: attendance.Extras,
		Gender:   attendance.Men,
		Rows: []report.Row{
			{Name: "Сидоров", Counts: [4]int{1, 0, 0, 0}},
			{Name: "Смирнов", Counts: [4]int{0, 1, 0, 0}},
		},
	}, tables[2])
	require.Empty(t, tables[3].Rows)

	// the extras dancers counted in the ballet pass are not on a ballet roster
	warnings := recorder.Reports("warning")
	require.Len(t, warnings, 2)
	require.Equal(t, "aggregate.unlisted", warnings[0].Id)

	read, err := readTables(g)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, tables[1].Rows, read[1].Rows)

	paths, err := export(g, read)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, paths, 4)
	for _, p := range paths {
		_, err := os.Stat(p)
		require.NoError(t, err)
	}
	require.Equal(t, paths, workbooks(g))

	id, err := archiveTables(ctx, g, read)
	if err != nil {
		t.Fatal(err)
	}
	require.NotEmpty(t, id)

	st, closeDb, err := openArchive(ctx, g)
	if err != nil {
		t.Fatal(err)
	}
	defer closeDb()
	rows, err := st.Latest(ctx, g.Period.String(), attendance.Ballet, attendance.Women)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, tables[1].Rows, rows)
}

func TestAggregateMissingCounters(t *testing.T) {
	g := newGlobals(t, "http://localhost")
	_, err := aggregate(g, &telemetry.Recorder{})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestReadTablesMissing(t *testing.T) {
	g := newGlobals(t, "http://localhost")
	_, err := readTables(g)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestLoginRequiresCredentials(t *testing.T) {
	g := newGlobals(t, "http://localhost")
	g.Config.Portal.Password = ""
	_, err := login(context.Background(), g)
	require.Error(t, err)
}
