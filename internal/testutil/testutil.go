// Package testutil opens throwaway databases for tests.
package testutil

import (
	"strings"
	"testing"
	"time"

	"github.com/deppfellow/usercrud/internal/database"
	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// UserTableDDL creates the users table the way a deployment provisions it.
const UserTableDDL = `CREATE TABLE "user" (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	full_name TEXT NOT NULL,
	role TEXT NOT NULL,
	efficiency INTEGER NOT NULL
)`

// OpenTestDB opens an in-memory SQLite database named after the test and
// creates the users table in it. The database is closed on cleanup.
func OpenTestDB(t *testing.T) *database.Database {
	t.Helper()

	orm, err := gorm.Open(sqlite.Open("file:"+dbName(t)+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	logger := zerolog.Nop()
	db, err := database.Wrap(orm, &logger, 5*time.Second)
	if err != nil {
		t.Fatalf("wrap test db: %v", err)
	}
	// One connection keeps the in-memory database alive and serializes access.
	db.SQL.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if err := orm.Exec(UserTableDDL).Error; err != nil {
		t.Fatalf("create user table: %v", err)
	}
	return db
}

func dbName(t *testing.T) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, t.Name())
}
