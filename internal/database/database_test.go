package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/deppfellow/usercrud/internal/config"
	"github.com/deppfellow/usercrud/internal/database"
	"github.com/deppfellow/usercrud/internal/errs"
	"github.com/deppfellow/usercrud/internal/logger"
	"github.com/deppfellow/usercrud/internal/testutil"
	"github.com/rs/zerolog"
)

func testConfig(dialect, name string) *config.Config {
	return &config.Config{
		Primary: config.Primary{Env: "test"},
		Database: config.DatabaseConfig{
			Dialect:         dialect,
			Host:            "127.0.0.1",
			Port:            1,
			User:            "app",
			Name:            name,
			SSLMode:         "disable",
			MaxOpenConns:    2,
			MaxIdleConns:    1,
			ConnMaxLifetime: 60,
			ConnMaxIdleTime: 60,
			ConnectTimeout:  1,
		},
		Observability: config.ObservabilityConfig{
			ServiceName:        "usercrud",
			LogFormat:          "console",
			SlowQueryThreshold: 100 * time.Millisecond,
		},
	}
}

func TestAuthenticate(t *testing.T) {
	db := testutil.OpenTestDB(t)

	if err := db.Authenticate(context.Background()); err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	if err := db.SQL.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	err := db.Authenticate(context.Background())
	if errs.KindOf(err) != errs.KindConnection {
		t.Fatalf("expected connection error, got %v", err)
	}
}

func TestNew_SQLite(t *testing.T) {
	log := zerolog.Nop()
	db, err := database.New(testConfig(config.DialectSQLite, "file:newsqlite?mode=memory&cache=shared"), &log, &logger.LoggerService{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.Authenticate(context.Background()); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got := db.SQL.Stats().MaxOpenConnections; got != 2 {
		t.Fatalf("max open conns = %d", got)
	}
}

// Opening a networked backend must not dial: an outage surfaces on the first
// request instead of at startup.
func TestNew_UnreachableBackendsOpenLazily(t *testing.T) {
	for _, dialect := range []string{config.DialectPostgres, config.DialectMySQL} {
		t.Run(dialect, func(t *testing.T) {
			log := zerolog.Nop()
			db, err := database.New(testConfig(dialect, "users"), &log, &logger.LoggerService{})
			if err != nil {
				t.Fatalf("new: %v", err)
			}
			t.Cleanup(func() { _ = db.Close() })

			err = db.Authenticate(context.Background())
			if errs.KindOf(err) != errs.KindConnection {
				t.Fatalf("expected connection error, got %v", err)
			}
		})
	}
}

func TestNew_UnknownDialect(t *testing.T) {
	log := zerolog.Nop()
	if _, err := database.New(testConfig("oracle", "users"), &log, &logger.LoggerService{}); err == nil {
		t.Fatal("expected an error")
	}
}
