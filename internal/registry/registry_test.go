package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/koustreak/schemaroute/internal/config"
	"github.com/koustreak/schemaroute/internal/database"
	"github.com/koustreak/schemaroute/internal/database/dbtest"
	"github.com/koustreak/schemaroute/internal/errs"
	"github.com/koustreak/schemaroute/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Order(t *testing.T) {
	main, reporting := dbtest.New(), dbtest.New()
	r := New(
		Connection{Name: "main", Adapter: main},
		Connection{Name: "reporting", Adapter: reporting},
		Connection{Name: "main", Adapter: dbtest.New()},
	)

	assert.Equal(t, []string{"main", "reporting"}, r.Connections())
	assert.True(t, r.Has("reporting"))
	assert.False(t, r.Has("archive"))

	a, err := r.Adapter("reporting")
	require.NoError(t, err)
	assert.Same(t, reporting, a)

	name, def, err := r.Default()
	require.NoError(t, err)
	assert.Equal(t, "main", name)
	assert.Same(t, main, def)
}

func TestRegistry_UnknownConnection(t *testing.T) {
	r := New()

	_, err := r.Adapter("nope")
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))

	_, _, err = r.Default()
	assert.True(t, errs.IsInvalidInput(err))
	assert.Empty(t, r.Connections())
}

func TestRegistry_PingAndClose(t *testing.T) {
	healthy, broken := dbtest.New(), dbtest.New()
	broken.Err = errs.New(errs.ErrKindConnectionFailed, "refused")
	r := New(Connection{Name: "a", Adapter: healthy}, Connection{Name: "b", Adapter: broken})

	err := r.Ping(context.Background())
	require.Error(t, err)
	assert.True(t, errs.IsConnectionFailed(err))
	assert.Contains(t, err.Error(), "connection b unreachable")

	r.Close()
	assert.Equal(t, 1, healthy.Calls("Close"))
	assert.Equal(t, 1, broken.Calls("Close"))
}

func TestOpen_SQLite(t *testing.T) {
	cfg := &config.Config{Connections: []config.Connection{
		{Name: "scratch", Config: database.Config{Driver: database.DriverSQLite, DSN: ":memory:"}},
		{Name: "cache", Config: database.Config{Driver: database.DriverSQLite, DSN: "file::memory:?_pragma=foreign_keys(1)"}},
	}}

	r, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, []string{"scratch", "cache"}, r.Connections())

	cache, err := r.Adapter("cache")
	require.NoError(t, err)
	assert.Equal(t, database.DialectSQLite, cache.Dialect())
	assert.True(t, cache.SupportsForeignKeys())
	require.NoError(t, r.Ping(context.Background()))
}

func TestOpen_LogsConnectionNames(t *testing.T) {
	cfg := &config.Config{Connections: []config.Connection{
		{Name: "scratch", Config: database.Config{Driver: database.DriverSQLite, DSN: ":memory:"}},
		{Name: "cache", Config: database.Config{Driver: database.DriverSQLite, DSN: ":memory:"}},
	}}
	buf := &bytes.Buffer{}

	r, err := Open(context.Background(), cfg, logger.New(&logger.Config{Level: "info", Output: buf}))
	require.NoError(t, err)
	defer r.Close()

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "registry opened", entry["message"])
	assert.Equal(t, []any{"scratch", "cache"}, entry["connections"])
}

func TestOpen_ClosesOnFailure(t *testing.T) {
	opened := dbtest.New()
	orig := Factories
	t.Cleanup(func() { Factories = orig })
	Factories = map[database.Driver]Factory{
		database.DriverSQLite: func(context.Context, *database.Config) (database.Adapter, error) {
			return opened, nil
		},
		database.DriverPostgres: func(context.Context, *database.Config) (database.Adapter, error) {
			return nil, errs.New(errs.ErrKindConnectionFailed, "refused")
		},
	}

	cfg := &config.Config{Connections: []config.Connection{
		{Name: "local", Config: database.Config{Driver: database.DriverSQLite}},
		{Name: "main", Config: database.Config{Driver: database.DriverPostgres, DSN: "postgres://x"}},
	}}

	_, err := Open(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.True(t, errs.IsConnectionFailed(err))
	assert.Equal(t, 1, opened.Calls("Close"))
}

func TestOpen_UnknownDriver(t *testing.T) {
	cfg := &config.Config{Connections: []config.Connection{
		{Name: "legacy", Config: database.Config{Driver: "oracle", DSN: "x"}},
	}}

	_, err := Open(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
}
