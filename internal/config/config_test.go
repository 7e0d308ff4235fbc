package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/koustreak/schemaroute/internal/database"
	"github.com/koustreak/schemaroute/internal/errs"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
log:
  level: debug
  format: console
connections:
  - name: main
    driver: postgres
    dsn: postgres://localhost:5432/app
    max_conns: 4
    connect_timeout: 3s
  - name: reporting
    driver: mysql
    dsn: root:secret@tcp(localhost:3306)/reporting
server:
  addr: ":9090"
snapshot:
  endpoint: localhost:9000
  access_key: minio
  secret_key: minio123
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schemaroute.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_File(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML), nil)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, []string{"main", "reporting"}, cfg.ConnectionNames())

	main := cfg.Connections[0]
	assert.Equal(t, database.DriverPostgres, main.Driver)
	assert.Equal(t, int32(4), main.MaxConns)
	assert.Equal(t, 3*time.Second, main.ConnectTimeout)
	assert.Equal(t, "public", main.Schema)

	reporting := cfg.Connections[1]
	assert.Equal(t, int32(10), reporting.MaxConns)
	assert.Equal(t, 10*time.Second, reporting.ConnectTimeout)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "minio", cfg.Snapshot.AccessKey)
	assert.Equal(t, "schemaroute", cfg.Snapshot.Bucket)
}

func TestLoad_DefaultConnection(t *testing.T) {
	t.Setenv("SCHEMAROUTE_DSN", "root@tcp(localhost:3306)/app")

	cfg, err := Load(writeConfig(t, "log:\n  level: warn\n"), nil)
	require.NoError(t, err)

	require.Len(t, cfg.Connections, 1)
	assert.Equal(t, DefaultConnectionName, cfg.Connections[0].Name)
	assert.Equal(t, database.DriverMySQL, cfg.Connections[0].Driver)
	assert.Equal(t, "root@tcp(localhost:3306)/app", cfg.Connections[0].DSN)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("SCHEMAROUTE_LOG_LEVEL", "error")
	t.Setenv("SCHEMAROUTE_SNAPSHOT_SECRET_KEY", "from-env")

	cfg, err := Load(writeConfig(t, sampleYAML), nil)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, "from-env", cfg.Snapshot.SecretKey)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("SCHEMAROUTE_LOG_LEVEL", "error")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-level", "info", "")
	flags.String("log-format", "json", "")
	require.NoError(t, flags.Parse([]string{"--log-level=debug"}))

	cfg, err := Load(writeConfig(t, sampleYAML), flags)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	// unset flag keeps the file value
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
}

func TestConfig_Validate(t *testing.T) {
	conn := func(name string, driver database.Driver, dsn string) Connection {
		return Connection{Name: name, Config: database.Config{Driver: driver, DSN: dsn}}
	}

	tests := []struct {
		name    string
		conns   []Connection
		format  string
		wantErr string
	}{
		{name: "valid", conns: []Connection{conn("main", "postgres", "postgres://x"), conn("local", "sqlite", "")}},
		{name: "missing name", conns: []Connection{conn("", "mysql", "dsn")}, wantErr: "name is required"},
		{name: "separator in name", conns: []Connection{conn("main__db", "mysql", "dsn")}, wantErr: "must not contain"},
		{name: "duplicate", conns: []Connection{conn("a", "mysql", "dsn"), conn("a", "mysql", "dsn")}, wantErr: "duplicate name"},
		{name: "unknown driver", conns: []Connection{conn("a", "oracle", "dsn")}, wantErr: "unsupported driver"},
		{name: "missing dsn", conns: []Connection{conn("a", "postgres", "")}, wantErr: "dsn is required"},
		{name: "bad log format", conns: []Connection{conn("a", "mysql", "dsn")}, format: "xml", wantErr: "unsupported format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Connections: tt.conns}
			cfg.Log.Format = tt.format

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errs.IsInvalidInput(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "log.level", envKey("SCHEMAROUTE_LOG_LEVEL"))
	assert.Equal(t, "snapshot.access_key", envKey("SCHEMAROUTE_SNAPSHOT_ACCESS_KEY"))
	assert.Equal(t, "dsn", envKey("SCHEMAROUTE_DSN"))
}
