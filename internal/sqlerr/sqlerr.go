// Package sqlerr specifically handles database driver errors.
//
// It parses cryptic error codes from the database drivers (pgx, MySQL,
// SQLite) and converts them into application errors with user-friendly
// messages, e.g. a NOT NULL violation on user.role becomes
// "The Role is required".
package sqlerr
