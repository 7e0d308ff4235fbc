// Package config loads schemaroute settings from, in increasing priority:
// built-in defaults, a YAML file, SCHEMAROUTE_* environment variables and
// explicitly set command-line flags.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/koustreak/schemaroute/internal/database"
	"github.com/koustreak/schemaroute/internal/errs"
	"github.com/koustreak/schemaroute/internal/filestore"
	"github.com/koustreak/schemaroute/internal/logger"
	"github.com/koustreak/schemaroute/internal/schema"
)

// DefaultConnectionName names the single connection used when the
// configuration lists none.
const DefaultConnectionName = "mysql"

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "SCHEMAROUTE_"

// Config is the fully resolved application configuration.
type Config struct {
	Log         logger.Config    `koanf:"log"`
	Connections []Connection     `koanf:"connections"`
	Server      Server           `koanf:"server"`
	Snapshot    filestore.Config `koanf:"snapshot"`

	// DSN backs the default connection when Connections is empty.
	DSN string `koanf:"dsn"`
}

// Connection is one named database connection. Order in the file is the
// registry order used for table resolution.
type Connection struct {
	Name            string `koanf:"name"`
	database.Config `koanf:",squash"`
}

// Server configures the HTTP facade.
type Server struct {
	Addr            string        `koanf:"addr"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// ApplyDefaults fills the default connection, per-connection pool settings
// and the snapshot store defaults.
func (c *Config) ApplyDefaults() {
	if len(c.Connections) == 0 {
		c.Connections = []Connection{{
			Name:   DefaultConnectionName,
			Config: database.Config{Driver: database.DriverMySQL, DSN: c.DSN},
		}}
	}
	for i := range c.Connections {
		c.Connections[i].ApplyDefaults()
	}
	c.Snapshot.ApplyDefaults()
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Connections))
	for i, conn := range c.Connections {
		switch {
		case conn.Name == "":
			return errs.Newf(errs.ErrKindInvalidInput, "connections[%d]: name is required", i)
		case strings.Contains(conn.Name, schema.Separator):
			return errs.Newf(errs.ErrKindInvalidInput, "connection %q: name must not contain %q", conn.Name, schema.Separator)
		case seen[conn.Name]:
			return errs.Newf(errs.ErrKindInvalidInput, "connection %q: duplicate name", conn.Name)
		case !conn.Driver.Valid():
			return errs.Newf(errs.ErrKindInvalidInput, "connection %q: unsupported driver %q", conn.Name, conn.Driver)
		case conn.DSN == "" && conn.Driver != database.DriverSQLite:
			return errs.Newf(errs.ErrKindInvalidInput, "connection %q: dsn is required", conn.Name)
		}
		seen[conn.Name] = true
	}

	switch c.Log.Format {
	case "", "json", "console":
	default:
		return errs.Newf(errs.ErrKindInvalidInput, "log.format: unsupported format %q", c.Log.Format)
	}
	return nil
}

// ConnectionNames returns connection names in configured order.
func (c *Config) ConnectionNames() []string {
	names := make([]string, len(c.Connections))
	for i, conn := range c.Connections {
		names[i] = conn.Name
	}
	return names
}

func (c Connection) String() string {
	return fmt.Sprintf("%s (%s)", c.Name, c.Driver)
}
