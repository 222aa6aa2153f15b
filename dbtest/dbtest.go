// Package dbtest opens throwaway databases for tests.
package dbtest

import (
	"testing"

	"alarm_gateway/config"
	"alarm_gateway/database"
	"alarm_gateway/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Config returns a sqlite configuration with an unqualified schema and a
// single pooled connection, so an in-memory database survives between calls.
func Config() *config.Config {
	cfg := config.Default()
	cfg.Database.Driver = "sqlite"
	cfg.Database.Schema = ""
	cfg.Database.SQLite.Path = ":memory:"
	cfg.Database.ConnectionPool = config.PoolConfig{
		MaxIdleConns: 1,
		MaxOpenConns: 1,
	}
	return cfg
}

// SQLite opens an in-memory database with the gateway tables created.
func SQLite(t testing.TB) (*gorm.DB, *config.Config) {
	t.Helper()

	cfg := Config()
	db, err := database.Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	for name, model := range models.GetAllModels() {
		require.NoError(t, db.Table(name).AutoMigrate(model), "create table %s", name)
	}
	return db, cfg
}

// Postgres opens the postgres dialect over sqlmock. The schema stays
// "tam_25_26" so tests see the qualified table names.
func Postgres(t testing.TB) (*gorm.DB, sqlmock.Sqlmock, *config.Config) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	cfg := config.Default()
	dialector := postgres.New(postgres.Config{Conn: sqlDB})
	db, err := database.Open(dialector, cfg)
	require.NoError(t, err)
	return db, mock, cfg
}

// Seed inserts rows directly, bypassing the store.
func Seed(t testing.TB, db *gorm.DB, table string, rows interface{}) {
	t.Helper()
	require.NoError(t, db.Table(table).Create(rows).Error)
}

// Unreachable returns a handle whose pool is already closed.
func Unreachable(t testing.TB) (*gorm.DB, *config.Config) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Close(db))
	return db, Config()
}
