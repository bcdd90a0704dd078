package db

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"gorm.io/gorm"

	"greek-row/chapterhouse/internal/logging"
)

// InitPostgres opens a sqlx pool, retrying while the database comes up.
func InitPostgres(dsn string) (*sqlx.DB, error) {
	var (
		conn *sqlx.DB
		err  error
	)

	for i := 0; i < 10; i++ {
		conn, err = sqlx.Connect("postgres", dsn)
		if err == nil {
			logging.Info("Connected to Postgres via sqlx")
			return conn, nil
		}
		time.Sleep(500 * time.Millisecond)
	}
	return nil, fmt.Errorf("failed to connect to postgres: %w", err)
}

// SqlxFromORM shares gorm's pool with sqlx so hand-written queries and the
// ORM see the same database (sqlite in tests and local mode).
func SqlxFromORM(orm *gorm.DB) (*sqlx.DB, error) {
	sqlDB, err := orm.DB()
	if err != nil {
		return nil, err
	}
	driver := "postgres"
	if orm.Dialector.Name() == "sqlite" {
		driver = "sqlite3"
	}
	return sqlx.NewDb(sqlDB, driver), nil
}
