// Package database opens the relational backend behind the users table.
//
// It builds a gorm handle for the configured dialect (postgres, mysql or
// sqlite), sizes the shared connection pool and wires query logging and
// tracing into the driver. The resulting *Database is created once and
// passed explicitly to everything that talks to the backend.
//
// For postgres the connection goes through pgx's database/sql adapter so the
// pgx tracers (New Relic, local SQL logging) keep working under gorm.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/deppfellow/usercrud/internal/config"
	"github.com/deppfellow/usercrud/internal/errs"
	loggerConfig "github.com/deppfellow/usercrud/internal/logger"
	"github.com/deppfellow/usercrud/internal/sqlerr"
	mysqldriver "github.com/go-sql-driver/mysql"
	pgxzero "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/newrelic/go-agent/v3/integrations/nrpgx5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Database wraps the gorm handle and the pool underneath it.
type Database struct {
	ORM *gorm.DB
	SQL *sql.DB

	log            *zerolog.Logger
	connectTimeout time.Duration
}

// multiTracer chains several pgx tracers; pgx only has one Tracer slot.
type multiTracer struct {
	tracers []any
}

func (mt *multiTracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	for _, tracer := range mt.tracers {
		if t, ok := tracer.(interface {
			TraceQueryStart(context.Context, *pgx.Conn, pgx.TraceQueryStartData) context.Context
		}); ok {
			ctx = t.TraceQueryStart(ctx, conn, data)
		}
	}
	return ctx
}

func (mt *multiTracer) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	for _, tracer := range mt.tracers {
		if t, ok := tracer.(interface {
			TraceQueryEnd(context.Context, *pgx.Conn, pgx.TraceQueryEndData)
		}); ok {
			t.TraceQueryEnd(ctx, conn, data)
		}
	}
}

// New opens the backend for cfg.Database.Dialect.
//
// It does not ping: connectivity is checked per request by Authenticate so a
// database outage turns into error responses instead of a dead process.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*Database, error) {
	var (
		dialector gorm.Dialector
		err       error
	)

	switch cfg.Database.Dialect {
	case config.DialectPostgres:
		dialector, err = postgresDialector(cfg, logger, loggerService)
	case config.DialectMySQL:
		dialector = mysqlDialector(cfg.Database)
	case config.DialectSQLite:
		dialector = sqlite.Open(cfg.Database.Name)
	default:
		err = fmt.Errorf("unsupported database dialect %q", cfg.Database.Dialect)
	}
	if err != nil {
		return nil, err
	}

	orm, err := gorm.Open(dialector, &gorm.Config{
		Logger:               loggerConfig.NewGormLogger(*logger, cfg.Observability.SlowQueryThreshold),
		DisableAutomaticPing: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	database, err := Wrap(orm, logger, time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	if err != nil {
		return nil, err
	}

	database.SQL.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	database.SQL.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	database.SQL.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)
	database.SQL.SetConnMaxIdleTime(time.Duration(cfg.Database.ConnMaxIdleTime) * time.Second)

	logger.Info().
		Str("dialect", cfg.Database.Dialect).
		Str("database", cfg.Database.Name).
		Msg("database handle ready")

	return database, nil
}

// Wrap builds a Database around an already opened gorm handle.
func Wrap(orm *gorm.DB, logger *zerolog.Logger, connectTimeout time.Duration) (*Database, error) {
	sqlDB, err := orm.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to access connection pool")
	}

	return &Database{
		ORM:            orm,
		SQL:            sqlDB,
		log:            logger,
		connectTimeout: connectTimeout,
	}, nil
}

// postgresDialector opens a pgx-backed *sql.DB and hands it to gorm.
//
// New Relic instrumentation is attached when the agent runs; in local env
// every statement is also logged through pgx-zerolog.
func postgresDialector(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (gorm.Dialector, error) {
	query := url.Values{}
	query.Set("sslmode", cfg.Database.SSLMode)
	query.Set("connect_timeout", strconv.Itoa(cfg.Database.ConnectTimeout))

	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.Database.User, cfg.Database.Password),
		Host:     net.JoinHostPort(cfg.Database.Host, strconv.Itoa(cfg.Database.Port)),
		Path:     "/" + cfg.Database.Name,
		RawQuery: query.Encode(),
	}

	connConfig, err := pgx.ParseConfig(dsn.String())
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgx config: %w", err)
	}

	if loggerService.GetApplication() != nil {
		connConfig.Tracer = nrpgx5.NewTracer()
	}

	if cfg.Primary.Env == "local" {
		globalLevel := logger.GetLevel()
		localTracer := &tracelog.TraceLog{
			Logger:   pgxzero.NewLogger(loggerConfig.NewPgxLogger(globalLevel)),
			LogLevel: loggerConfig.GetPgxTraceLogLevel(globalLevel),
		}

		if connConfig.Tracer != nil {
			connConfig.Tracer = &multiTracer{
				tracers: []any{connConfig.Tracer, localTracer},
			}
		} else {
			connConfig.Tracer = localTracer
		}
	}

	return postgres.New(postgres.Config{Conn: stdlib.OpenDB(*connConfig)}), nil
}

func mysqlDialector(cfg config.DatabaseConfig) gorm.Dialector {
	mysqlConfig := mysqldriver.NewConfig()
	mysqlConfig.User = cfg.User
	mysqlConfig.Passwd = cfg.Password
	mysqlConfig.Net = "tcp"
	mysqlConfig.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	mysqlConfig.DBName = cfg.Name
	mysqlConfig.ParseTime = true
	mysqlConfig.Timeout = time.Duration(cfg.ConnectTimeout) * time.Second

	// The version probe would connect eagerly; connectivity is checked per
	// request instead.
	return mysql.New(mysql.Config{
		DSN:                       mysqlConfig.FormatDSN(),
		SkipInitializeWithVersion: true,
	})
}

// Authenticate checks that a pooled connection can be acquired and used,
// waiting at most the configured connect timeout.
func (db *Database) Authenticate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, db.connectTimeout)
	defer cancel()

	if err := db.SQL.PingContext(ctx); err != nil {
		mapped := sqlerr.HandleError(err)
		if errs.KindOf(mapped) == errs.KindConnection {
			return mapped
		}
		return errs.NewConnectionError("Unable to connect to the database", err)
	}
	return nil
}

// Close closes the connection pool.
func (db *Database) Close() error {
	db.log.Info().Msg("closing database connection pool")
	return db.SQL.Close()
}
