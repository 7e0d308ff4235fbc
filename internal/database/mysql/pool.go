package mysql

import (
	"database/sql"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/koustreak/schemaroute/internal/database"
	"github.com/koustreak/schemaroute/internal/errs"
)

// buildPool parses the DSN and configures a *sql.DB with pool settings.
// Introspection queries scope to DATABASE(), so the DSN must name one.
func buildPool(cfg *database.Config) (*sql.DB, error) {
	mc, err := gomysql.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "invalid DSN", err)
	}
	if mc.DBName == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "mysql DSN must select a database")
	}
	mc.ParseTime = true
	if cfg.ConnectTimeout > 0 {
		mc.Timeout = cfg.ConnectTimeout
	}

	connector, err := gomysql.NewConnector(mc)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "invalid DSN", err)
	}

	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(int(cfg.MaxConns))
	db.SetMaxIdleConns(int(cfg.MinConns))
	db.SetConnMaxLifetime(cfg.MaxConnLifetime)
	db.SetConnMaxIdleTime(cfg.MaxConnIdleTime)
	return db, nil
}
