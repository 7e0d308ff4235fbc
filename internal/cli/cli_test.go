package cli

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/koustreak/schemaroute/internal/errs"
	"github.com/koustreak/schemaroute/internal/filestore"
	"github.com/koustreak/schemaroute/internal/filestore/memstore"
	"github.com/koustreak/schemaroute/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

type env struct {
	dir    string
	config string
}

func dsn(path string) string {
	return "file:" + path + "?_pragma=foreign_keys(1)"
}

// newEnv writes a config with two file-backed SQLite connections, main
// then reporting, and runs setup statements against each.
func newEnv(t *testing.T, mainDDL, reportingDDL []string) *env {
	t.Helper()
	dir := t.TempDir()

	for name, stmts := range map[string][]string{"main": mainDDL, "reporting": reportingDDL} {
		db, err := sql.Open("sqlite", dsn(filepath.Join(dir, name+".db")))
		require.NoError(t, err)
		for _, s := range stmts {
			_, err := db.Exec(s)
			require.NoError(t, err)
		}
		require.NoError(t, db.Close())
	}

	cfg := fmt.Sprintf(`log:
  level: error
connections:
  - name: main
    driver: sqlite
    dsn: %q
  - name: reporting
    driver: sqlite
    dsn: %q
snapshot:
  endpoint: memory
  bucket: catalogs-test
`, dsn(filepath.Join(dir, "main.db")), dsn(filepath.Join(dir, "reporting.db")))

	path := filepath.Join(dir, "schemaroute.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return &env{dir: dir, config: path}
}

func (e *env) run(args ...string) (string, error) {
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--config", e.config}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

var usersDDL = []string{
	`CREATE TABLE users (id INTEGER PRIMARY KEY, email TEXT NOT NULL UNIQUE, bio TEXT)`,
}

func TestTables_JSON(t *testing.T) {
	e := newEnv(t, usersDDL, []string{`CREATE TABLE events (id INTEGER PRIMARY KEY)`})

	out, err := e.run("tables", "-o", "json")
	require.NoError(t, err)

	var got map[string][]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []string{"users"}, got["main"])
	assert.Equal(t, []string{"events"}, got["reporting"])
}

func TestTables_Table(t *testing.T) {
	e := newEnv(t, usersDDL, nil)

	out, err := e.run("tables")
	require.NoError(t, err)
	assert.Contains(t, out, "main__users")
}

func TestDescribe(t *testing.T) {
	e := newEnv(t, usersDDL, nil)

	out, err := e.run("describe", "users", "-o", "json")
	require.NoError(t, err)

	var got []schema.ColumnDescriptor
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 3)
	assert.Equal(t, "id", got[0].Field)
	assert.Equal(t, "PRI", got[0].Key)
	assert.Equal(t, "UNI", got[1].Key)
	assert.Empty(t, got[2].Key)
}

func TestDescribe_YAML(t *testing.T) {
	e := newEnv(t, usersDDL, nil)

	out, err := e.run("describe", "main__users", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "field: email")
	assert.Contains(t, out, "key: UNI")
}

func TestResolve_LastMatchWins(t *testing.T) {
	e := newEnv(t, usersDDL, usersDDL)

	out, err := e.run("resolve", "users", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"connection":"reporting","table":"users"}`, out)

	out, err = e.run("resolve", "main__users", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"connection":"main","table":"users"}`, out)
}

func TestResolve_Unknown(t *testing.T) {
	e := newEnv(t, usersDDL, nil)

	_, err := e.run("resolve", "ghosts")
	require.Error(t, err)
	assert.True(t, errs.IsNoAcceptableConnection(err))
}

func TestExists(t *testing.T) {
	e := newEnv(t, usersDDL, []string{`CREATE TABLE events (id INTEGER PRIMARY KEY)`})

	out, err := e.run("exists", "users", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"exists":true}`, out)

	out, err = e.run("exists", "users", "ghosts", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"exists":false}`, out)
}

func TestExists_TablesSplitAcrossConnections(t *testing.T) {
	e := newEnv(t, usersDDL, []string{`CREATE TABLE events (id INTEGER PRIMARY KEY)`})

	out, err := e.run("exists", "users", "reporting__events", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"exists":false}`, out)
}

func TestExists_AllTablesOnOneConnection(t *testing.T) {
	e := newEnv(t, usersDDL, []string{
		`CREATE TABLE users (id INTEGER PRIMARY KEY)`,
		`CREATE TABLE events (id INTEGER PRIMARY KEY)`,
	})

	out, err := e.run("exists", "users", "reporting__events", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"exists":true}`, out)
}

func TestColumns(t *testing.T) {
	e := newEnv(t, usersDDL, nil)

	out, err := e.run("columns", "users", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `["id","email","bio"]`, out)

	_, err = e.run("column", "users", "nope")
	assert.True(t, errs.IsColumnNotFound(err))
}

func TestCreate(t *testing.T) {
	e := newEnv(t, nil, nil)

	spec := filepath.Join(e.dir, "widgets.yaml")
	require.NoError(t, os.WriteFile(spec, []byte(`name: widgets
columns:
  - {name: id, type: integer, autoincrement: true}
  - {name: label, type: string, length: 64}
primary_key: [id]
`), 0o600))

	_, err := e.run("create", "-f", spec)
	require.NoError(t, err)

	out, err := e.run("resolve", "widgets", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"connection":"main","table":"widgets"}`, out)
}

func TestUnknownOutputFormat(t *testing.T) {
	e := newEnv(t, usersDDL, nil)

	_, err := e.run("tables", "-o", "xml")
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
}

func useMemStore(t *testing.T) *memstore.Store {
	t.Helper()
	store := memstore.New()
	prev := openStore
	openStore = func(context.Context, *filestore.Config) (filestore.Store, error) { return store, nil }
	t.Cleanup(func() { openStore = prev })
	return store
}

func TestSnapshot_SaveListDiff(t *testing.T) {
	e := newEnv(t, usersDDL, nil)
	useMemStore(t)

	out, err := e.run("snapshot", "save", "-o", "json")
	require.NoError(t, err)
	var info filestore.ObjectInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Contains(t, info.Key, "catalogs/")

	out, err = e.run("snapshot", "list", "-o", "json")
	require.NoError(t, err)
	var objs []filestore.ObjectInfo
	require.NoError(t, json.Unmarshal([]byte(out), &objs))
	require.Len(t, objs, 1)

	out, err = e.run("snapshot", "diff", "-o", "json")
	require.NoError(t, err)
	var res DiffResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.Same)
	assert.Equal(t, "live", res.To)

	db, err := sql.Open("sqlite", dsn(filepath.Join(e.dir, "main.db")))
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE audit (line TEXT)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	out, err = e.run("snapshot", "diff", "-o", "json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.False(t, res.Same)
	assert.Contains(t, res.Report, "main__audit")

	_, err = e.run("snapshot", "diff", "--fail-on-drift")
	assert.Error(t, err)
}

func TestSnapshot_DiffWithoutCatalogs(t *testing.T) {
	e := newEnv(t, usersDDL, nil)
	useMemStore(t)

	_, err := e.run("snapshot", "diff")
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}

func TestNewRootCmd_Commands(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"tables", "describe", "columns", "column", "exists", "resolve", "create", "snapshot", "serve"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
		assert.NotEmpty(t, cmd.Short)
	}

	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	assert.NotNil(t, serve.Flags().Lookup("addr"))
}
