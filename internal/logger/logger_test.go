package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/deppfellow/usercrud/internal/config"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestNewLogger_ProductionJSON(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.ObservabilityConfig{ServiceName: "usercrud", Environment: "production", LogFormat: "json"}

	log := newLogger(cfg, &LoggerService{}, &buf)
	log.Info().Str("route", "POST /create").Msg("handled")
	log.Debug().Msg("hidden")

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("expected a single JSON line, got %q: %v", buf.String(), err)
	}
	if line["service"] != "usercrud" || line["environment"] != "production" || line["route"] != "POST /create" {
		t.Fatalf("unexpected fields %+v", line)
	}
}

func TestNewLogger_Console(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.ObservabilityConfig{ServiceName: "usercrud", Environment: "development", LogFormat: "json"}

	log := newLogger(cfg, &LoggerService{}, &buf)
	log.Debug().Msg("visible in development")

	if !strings.Contains(buf.String(), "visible in development") {
		t.Fatalf("missing debug line: %q", buf.String())
	}
	if json.Valid(bytes.TrimSpace(buf.Bytes())) {
		t.Fatal("development should use the console format")
	}
}

func TestGetPgxTraceLogLevel(t *testing.T) {
	tests := map[zerolog.Level]tracelog.LogLevel{
		zerolog.DebugLevel: tracelog.LogLevelDebug,
		zerolog.InfoLevel:  tracelog.LogLevelInfo,
		zerolog.WarnLevel:  tracelog.LogLevelWarn,
		zerolog.ErrorLevel: tracelog.LogLevelError,
		zerolog.Disabled:   tracelog.LogLevelNone,
	}
	for in, want := range tests {
		if got := GetPgxTraceLogLevel(in); got != want {
			t.Errorf("%s: got %v, want %v", in, got, want)
		}
	}
}

func TestGormLogger_Trace(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf).Level(zerolog.DebugLevel)
	l := NewGormLogger(base, 50*time.Millisecond)
	ctx := context.Background()
	query := func() (string, int64) { return `SELECT * FROM "user"`, 1 }

	l.Trace(ctx, time.Now(), query, gorm.ErrRecordNotFound)
	if strings.Contains(buf.String(), "query failed") {
		t.Fatal("record not found logged as failure")
	}

	buf.Reset()
	l.Trace(ctx, time.Now(), query, errors.New("no such table"))
	if !strings.Contains(buf.String(), `"level":"error"`) || !strings.Contains(buf.String(), "query failed") {
		t.Fatalf("failure not logged: %q", buf.String())
	}

	buf.Reset()
	l.Trace(ctx, time.Now().Add(-time.Second), query, nil)
	if !strings.Contains(buf.String(), "slow query") {
		t.Fatalf("slow query not logged: %q", buf.String())
	}

	buf.Reset()
	l.LogMode(gormlogger.Silent).Trace(ctx, time.Now(), query, errors.New("ignored"))
	if buf.Len() != 0 {
		t.Fatalf("silent mode logged %q", buf.String())
	}
}
