package database

import (
	"context"
	"fmt"
	"time"

	"alarm_gateway/apperror"
	"alarm_gateway/config"
	applog "alarm_gateway/logger"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectFailure prefixes every connection error returned to clients
const ConnectFailure = "Erro ao conectar à base de dados"

// Dialector returns the gorm dialector for the configured driver
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	dsn := cfg.GetDSN()

	// Select the appropriate driver based on configuration
	switch cfg.Database.Driver {
	case "mysql":
		return mysql.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
}

// Connect establishes a database connection based on the provided configuration
func Connect(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindConnection, ConnectFailure, err)
	}
	return Open(dialector, cfg)
}

// Open opens dialector with the gateway's gorm settings, sizes the pool and
// pings the server. Every failure is a connection error.
func Open(dialector gorm.Dialector, cfg *config.Config) (*gorm.DB, error) {
	debug := cfg.Logging.LogLevel == applog.DEBUG
	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}

	// Configure GORM with logger
	gormConfig := &gorm.Config{
		Logger: logger.New(gormWriter{debug: debug}, logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
		}),
		// every statement is a single autocommitted write or read
		SkipDefaultTransaction: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	// Connect to database
	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindConnection, ConnectFailure, err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, apperror.Wrap(apperror.KindConnection, ConnectFailure, err)
	}

	pool := cfg.Database.ConnectionPool
	sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(pool.ConnMaxLifetime) * time.Second)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, apperror.Wrap(apperror.KindConnection, ConnectFailure, err)
	}

	applog.Debugf("connected to %s database", dialector.Name())
	return db, nil
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// IsConnected checks if database is connected
func IsConnected(ctx context.Context, db *gorm.DB) bool {
	if db == nil {
		return false
	}

	sqlDB, err := db.DB()
	if err != nil {
		return false
	}

	return sqlDB.PingContext(ctx) == nil
}

// TableName qualifies table with schema. An empty schema leaves it bare.
func TableName(schema, table string) string {
	if schema == "" {
		return table
	}
	return schema + "." + table
}

// GetDatabaseInfo returns information about the connected database
func GetDatabaseInfo(ctx context.Context, db *gorm.DB, cfg *config.Config) map[string]interface{} {
	info := make(map[string]interface{})
	info["driver"] = cfg.Database.Driver
	info["schema"] = cfg.Database.Schema
	info["connected"] = IsConnected(ctx, db)

	if db != nil {
		sqlDB, err := db.DB()
		if err == nil {
			stats := sqlDB.Stats()
			info["max_open_connections"] = stats.MaxOpenConnections
			info["open_connections"] = stats.OpenConnections
			info["in_use"] = stats.InUse
			info["idle"] = stats.Idle
		}
	}

	switch cfg.Database.Driver {
	case "mysql":
		info["host"] = cfg.Database.MySQL.Host
		info["port"] = cfg.Database.MySQL.Port
		info["database"] = cfg.Database.MySQL.DBName
	case "postgres":
		info["host"] = cfg.Database.PostgreSQL.Host
		info["port"] = cfg.Database.PostgreSQL.Port
		info["database"] = cfg.Database.PostgreSQL.DBName
	case "sqlite":
		info["path"] = cfg.Database.SQLite.Path
	}

	return info
}

// gormWriter routes gorm's own log lines through the application logger.
// In debug mode gorm traces every statement, so those go out at debug level.
type gormWriter struct {
	debug bool
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	if w.debug {
		applog.Debugf(format, args...)
		return
	}
	applog.Warnf(format, args...)
}
