package core

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type LogLevel int

const (
	LogLevelSilent LogLevel = iota + 1
	LogLevelError
	LogLevelWarn
	LogLevelInfo
)

const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// ParseLogLevel maps a config value to a LogLevel, defaulting to warn.
func ParseLogLevel(level string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "silent":
		return LogLevelSilent
	case "error":
		return LogLevelError
	case "info":
		return LogLevelInfo
	}
	return LogLevelWarn
}

type Options struct {
	Driver         string
	DSN            string
	MaxConnections int
	LogLevel       LogLevel
	Logger         *zap.Logger
}

type DatabaseManager struct {
	DB       *gorm.DB
	SqlDB    *sql.DB
	LogLevel LogLevel
}

// New opens the pool for the configured driver. The manager is created once
// at start-up and handed to whatever needs the store.
func New(opts Options) (*DatabaseManager, error) {
	dialector, err := openDialector(opts.Driver, opts.DSN)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(opts.Logger, opts.LogLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to open pool: %w", err)
	}

	maxConnection := opts.MaxConnections
	if maxConnection <= 0 {
		maxConnection = 10
	}
	// sqlite allows a single writer, and every connection to ":memory:" is a
	// separate database.
	if opts.Driver == DriverSQLite {
		maxConnection = 1
	}
	sqlDB.SetMaxOpenConns(maxConnection)
	sqlDB.SetMaxIdleConns(maxConnection)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping pool: %w", err)
	}

	return &DatabaseManager{DB: db, SqlDB: sqlDB, LogLevel: opts.LogLevel}, nil
}

func openDialector(driver, dsn string) (gorm.Dialector, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("empty dsn for driver %q", driver)
	}
	switch driver {
	case DriverSQLite, "":
		return sqlite.Open(dsn), nil
	case DriverMySQL:
		return mysql.Open(dsn), nil
	case DriverPostgres:
		return postgres.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}

func newGormLogger(l *zap.Logger, level LogLevel) logger.Interface {
	// Map local LogLevel to GORM LogLevel
	gormLogLevel := logger.Warn
	switch level {
	case LogLevelError:
		gormLogLevel = logger.Error
	case LogLevelWarn:
		gormLogLevel = logger.Warn
	case LogLevelInfo:
		gormLogLevel = logger.Info
	case LogLevelSilent:
		gormLogLevel = logger.Silent
	}

	if l == nil {
		return logger.Default.LogMode(gormLogLevel)
	}
	return logger.New(zap.NewStdLog(l.Named("gorm")), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormLogLevel,
		IgnoreRecordNotFoundError: true,
	})
}

// Close closes the pool
func (dm *DatabaseManager) Close() error {
	return dm.SqlDB.Close()
}

// Exec runs fn with a session scoped to ctx.
func (dm *DatabaseManager) Exec(ctx context.Context, fn func(db *gorm.DB) error) error {
	return fn(dm.DB.WithContext(ctx))
}

// Transaction runs fn inside a transaction scoped to ctx. The transaction
// is rolled back when fn returns an error.
func (dm *DatabaseManager) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return dm.DB.WithContext(ctx).Transaction(fn)
}

func (dm *DatabaseManager) Ping(ctx context.Context) error {
	return dm.SqlDB.PingContext(ctx)
}

// Migrate creates or updates the tables for the given models.
func (dm *DatabaseManager) Migrate(ctx context.Context, models ...interface{}) error {
	for _, m := range models {
		if err := dm.DB.WithContext(ctx).AutoMigrate(m); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", m, err)
		}
	}
	return nil
}
