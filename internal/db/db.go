package db

import (
	"errors"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to the database selected by the DSN. Postgres DSNs use the
// pgx-backed driver; anything else is treated as a SQLite path, which keeps
// tests and small deployments on a file database.
func Open(dsn string) (*gorm.DB, error) {
	trimmed := strings.TrimSpace(dsn)
	if trimmed == "" {
		return nil, errors.New("db: empty dsn")
	}

	var dialector gorm.Dialector
	if strings.HasPrefix(trimmed, "postgres://") ||
		strings.HasPrefix(trimmed, "postgresql://") ||
		strings.Contains(trimmed, "host=") {
		dialector = postgres.Open(trimmed)
	} else {
		dialector = sqlite.Open(trimmed)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if IsSQLite(conn) {
		if errPragma := conn.Exec("PRAGMA foreign_keys = ON").Error; errPragma != nil {
			return nil, errPragma
		}
	}
	return conn, nil
}
