package sqlerr

import "fmt"

// Code is a driver-independent category of database failure.
type Code string

const (
	Other                Code = "other"
	NotNullViolation     Code = "not_null_violation"
	ForeignKeyViolation  Code = "foreign_key_violation"
	UniqueViolation      Code = "unique_violation"
	CheckViolation       Code = "check_violation"
	ConnectionFailure    Code = "connection_failure"
	InvalidAuthorization Code = "invalid_authorization"
)

// Severity mirrors the Postgres severity levels.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityFatal   Severity = "FATAL"
	SeverityPanic   Severity = "PANIC"
	SeverityWarning Severity = "WARNING"
	SeverityNotice  Severity = "NOTICE"
	SeverityDebug   Severity = "DEBUG"
	SeverityInfo    Severity = "INFO"
	SeverityLog     Severity = "LOG"
)

// Error is a normalized database error.
type Error struct {
	Code     Code
	Severity Severity

	// DatabaseCode is the native code: a SQLSTATE, a MySQL error number or
	// a SQLite extended result code.
	DatabaseCode string

	Message        string
	SchemaName     string
	TableName      string
	ColumnName     string
	DataTypeName   string
	ConstraintName string

	driverErr error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Severity, e.DatabaseCode, e.Message)
}

func (e *Error) Unwrap() error {
	return e.driverErr
}

// MapCode maps a Postgres SQLSTATE onto a Code.
func MapCode(sqlState string) Code {
	switch sqlState {
	case "23502":
		return NotNullViolation
	case "23503":
		return ForeignKeyViolation
	case "23505":
		return UniqueViolation
	case "23514":
		return CheckViolation
	case "28000", "28P01":
		return InvalidAuthorization
	}

	// Class 08: connection exception.
	if len(sqlState) == 5 && sqlState[:2] == "08" {
		return ConnectionFailure
	}
	return Other
}

// MapSeverity maps a Postgres severity string onto a Severity.
func MapSeverity(severity string) Severity {
	switch Severity(severity) {
	case SeverityError, SeverityFatal, SeverityPanic, SeverityWarning,
		SeverityNotice, SeverityDebug, SeverityInfo, SeverityLog:
		return Severity(severity)
	default:
		return SeverityError
	}
}

// MapMySQLNumber maps a MySQL server error number onto a Code.
func MapMySQLNumber(number uint16) Code {
	switch number {
	case 1048, 1364: // ER_BAD_NULL_ERROR, ER_NO_DEFAULT_FOR_FIELD
		return NotNullViolation
	case 1062: // ER_DUP_ENTRY
		return UniqueViolation
	case 1216, 1217, 1451, 1452:
		return ForeignKeyViolation
	case 3819: // ER_CHECK_CONSTRAINT_VIOLATED
		return CheckViolation
	case 1044, 1045: // access denied
		return InvalidAuthorization
	case 2002, 2003, 2006, 2013:
		return ConnectionFailure
	}
	return Other
}
