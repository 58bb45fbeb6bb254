package sqlerr

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"

	"github.com/deppfellow/usercrud/internal/errs"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrCode reports the Code of err, or Other when err holds no *Error.
func ErrCode(err error) Code {
	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code
	}
	return Other
}

// ConvertPgError converts a raw Postgres error into an *Error.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// mysqlColumnRegex pulls the column out of messages like
// "Column 'full_name' cannot be null".
var mysqlColumnRegex = regexp.MustCompile(`'([^']+)'`)

// ConvertMySQLError converts a MySQL server error into an *Error.
//
// MySQL does not report table or column separately, so the column is taken
// from the message when the error is about a single column.
func ConvertMySQLError(src *mysql.MySQLError) *Error {
	code := MapMySQLNumber(src.Number)

	var column string
	if code == NotNullViolation {
		if m := mysqlColumnRegex.FindStringSubmatch(src.Message); len(m) > 1 {
			column = m[1]
		}
	}

	return &Error{
		Code:         code,
		Severity:     SeverityError,
		DatabaseCode: strconv.Itoa(int(src.Number)),
		Message:      src.Message,
		ColumnName:   column,
		driverErr:    src,
	}
}

// ConvertSQLiteError converts a SQLite error into an *Error.
//
// Constraint messages look like "NOT NULL constraint failed: user.full_name";
// the table and column are parsed from the part after the colon.
func ConvertSQLiteError(src sqlite3.Error) *Error {
	code := Other
	switch src.ExtendedCode {
	case sqlite3.ErrConstraintNotNull:
		code = NotNullViolation
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		code = UniqueViolation
	case sqlite3.ErrConstraintForeignKey:
		code = ForeignKeyViolation
	case sqlite3.ErrConstraintCheck:
		code = CheckViolation
	default:
		switch src.Code {
		case sqlite3.ErrCantOpen, sqlite3.ErrNotADB:
			code = ConnectionFailure
		case sqlite3.ErrAuth, sqlite3.ErrPerm:
			code = InvalidAuthorization
		}
	}

	message := src.Error()
	sqlErr := &Error{
		Code:         code,
		Severity:     SeverityError,
		DatabaseCode: strconv.Itoa(int(src.ExtendedCode)),
		Message:      message,
		driverErr:    src,
	}

	if idx := strings.LastIndex(message, ": "); idx >= 0 && code != Other {
		target := strings.TrimSpace(message[idx+2:])
		if code == CheckViolation {
			sqlErr.ConstraintName = target
		} else if table, column, ok := strings.Cut(target, "."); ok {
			sqlErr.TableName = table
			sqlErr.ColumnName = column
		}
	}

	return sqlErr
}

// convert finds a driver error in err's chain and normalizes it.
func convert(err error) (*Error, bool) {
	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return sqlErr, true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return ConvertPgError(pgErr), true
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return ConvertMySQLError(mysqlErr), true
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return ConvertSQLiteError(sqliteErr), true
	}

	return nil, false
}

// isConnectionError reports failures that happen before a statement reaches
// the server: dial errors, dead pooled connections, timeouts.
func isConnectionError(err error) bool {
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, mysql.ErrInvalidConn) ||
		errors.Is(err, context.DeadlineExceeded) ||
		pgconn.Timeout(err)
}

// generateErrorCode creates application error codes from DB errors.
//
// Output format is <DOMAIN>_<ACTION>, e.g. user + NotNullViolation =>
// USER_REQUIRED.
func generateErrorCode(tableName string, errType Code) string {
	if tableName == "" {
		tableName = "RECORD"
	}

	domain := strings.ToUpper(tableName)
	if strings.HasSuffix(domain, "S") && len(domain) > 1 {
		domain = domain[:len(domain)-1]
	}

	action := "ERROR"
	switch errType {
	case ForeignKeyViolation:
		action = "NOT_FOUND"
	case UniqueViolation:
		action = "ALREADY_EXISTS"
	case NotNullViolation:
		action = "REQUIRED"
	case CheckViolation:
		action = "INVALID"
	}

	return fmt.Sprintf("%s_%s", domain, action)
}

// formatUserFriendlyMessage produces the client-facing message.
func formatUserFriendlyMessage(sqlErr *Error) string {
	entityName := getEntityName(sqlErr.TableName, sqlErr.ColumnName)

	switch sqlErr.Code {
	case ForeignKeyViolation:
		return fmt.Sprintf("The referenced %s does not exist", entityName)

	case UniqueViolation:
		// "identifier" is replaced by the column name when it can be inferred.
		return fmt.Sprintf("A %s with this identifier already exists", entityName)

	case NotNullViolation:
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName == "" {
			fieldName = "field"
		}
		return fmt.Sprintf("The %s is required", fieldName)

	case CheckViolation:
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName != "" {
			return fmt.Sprintf("The %s value does not meet required conditions", fieldName)
		}
		return "One or more values do not meet required conditions"

	default:
		return "The database rejected the request"
	}
}

// getEntityName infers an entity name, preferring "<name>_id" columns, then
// the table name, then "record".
func getEntityName(tableName, columnName string) string {
	if columnName != "" && strings.HasSuffix(strings.ToLower(columnName), "_id") {
		entity := strings.TrimSuffix(strings.ToLower(columnName), "_id")
		return humanizeText(entity)
	}

	if tableName != "" {
		entity := tableName
		if strings.HasSuffix(entity, "s") && len(entity) > 1 {
			entity = entity[:len(entity)-1]
		}
		return humanizeText(entity)
	}

	return "record"
}

// humanizeText converts snake_case into Title Case: "full_name" -> "Full Name".
func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

var uniqueConstraintRegex = regexp.MustCompile(`_([^_]+)_(?:key|ukey)$`)

// extractColumnForUniqueViolation infers the column from constraint names
// following "unique_<table>_<column>" or "<table>_<column>_key".
func extractColumnForUniqueViolation(constraintName string) string {
	if constraintName == "" {
		return ""
	}

	if strings.HasPrefix(constraintName, "unique_") {
		parts := strings.Split(constraintName, "_")
		if len(parts) >= 3 {
			return parts[len(parts)-1]
		}
	}

	matches := uniqueConstraintRegex.FindStringSubmatch(constraintName)
	if len(matches) > 1 {
		return matches[1]
	}

	return ""
}

// isDataException reports Postgres class 22 (data exception) and the
// remaining class 23 (integrity) SQLSTATEs, e.g. a value too long for its
// column.
func isDataException(sqlErr *Error) bool {
	code := sqlErr.DatabaseCode
	return len(code) == 5 && (code[:2] == "22" || code[:2] == "23")
}

// HandleError converts a low-level database error into an *errs.Error.
//
//   - *errs.Error: returned unchanged
//   - NOT NULL / CHECK violations: ValidationError with a field error
//   - UNIQUE / FOREIGN KEY violations and data exceptions: BackendRejection
//   - connection and authentication failures: ConnectionError
//   - anything else: InternalError
func HandleError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *errs.Error
	if errors.As(err, &appErr) {
		return err
	}

	sqlErr, ok := convert(err)
	if !ok {
		if isConnectionError(err) {
			return errs.NewConnectionError("Could not connect to the database", err)
		}
		return errs.NewInternalServerError(err)
	}

	errorCode := generateErrorCode(sqlErr.TableName, sqlErr.Code)
	userMessage := formatUserFriendlyMessage(sqlErr)

	switch sqlErr.Code {
	case NotNullViolation:
		fieldErrors := []errs.FieldError{{
			Field: strings.ToLower(sqlErr.ColumnName),
			Error: "is required",
		}}
		return errs.NewBackendValidationError(userMessage, errorCode, fieldErrors, err)

	case CheckViolation:
		return errs.NewBackendValidationError(userMessage, errorCode, nil, err)

	case UniqueViolation:
		if columnName := extractColumnForUniqueViolation(sqlErr.ConstraintName); columnName != "" {
			userMessage = strings.ReplaceAll(userMessage, "identifier", humanizeText(columnName))
		}
		return errs.NewBackendRejection(userMessage, &errorCode, err)

	case ForeignKeyViolation:
		return errs.NewBackendRejection(userMessage, &errorCode, err)

	case ConnectionFailure:
		return errs.NewConnectionError("Could not connect to the database", err)

	case InvalidAuthorization:
		return errs.NewConnectionError("Database authentication failed", err)

	default:
		if isDataException(sqlErr) {
			return errs.NewBackendRejection(userMessage, &errorCode, err)
		}
		return errs.NewInternalServerError(err)
	}
}
