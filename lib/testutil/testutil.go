package testutil

import (
	"database/sql"
	"fmt"
	"strings"
	"testing"

	configlibsql "mariinsky-counter/lib/configutil/libsql"
	"mariinsky-counter/lib/telemetry"
)

type DBParams struct {
	Name string
	// if unspecified, it will skip setting up the schema
	Schema string
	// if unspecified, it will use `:memory:`
	Path string
}

// SetupDB opens a database for a test with telemetry set up, the database is
// closed when the test ends.
func SetupDB(t testing.TB, params DBParams) *sql.DB {
	t.Helper()

	cleanup := telemetry.SetupForTesting(t, fmt.Sprintf("test:%s", params.Name))
	t.Cleanup(cleanup)

	path := params.Path
	if path == "" {
		path = ":memory:"
	}
	db, err := configlibsql.Struct{File: path}.OpenDB()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	if params.Schema != "" {
		_, err = db.Exec(params.Schema)
		if err != nil && !strings.Contains(err.Error(), "already exists") {
			t.Fatal(err)
		}
	}
	return db
}
