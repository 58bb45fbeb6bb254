// Package model holds the persisted entity and its column names.
package model

// TableName is the name of the users table.
const TableName = "user"

// Column names of the users table, in the order they are selected.
const (
	ColumnID         = "id"
	ColumnFullName   = "full_name"
	ColumnRole       = "role"
	ColumnEfficiency = "efficiency"
)

// Columns lists every column of the users table.
var Columns = []string{ColumnID, ColumnFullName, ColumnRole, ColumnEfficiency}

// User is a row of the users table.
//
// The id is assigned by the database and never changes; the other three
// columns are NOT NULL, so a stored user is always complete.
type User struct {
	ID         int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	FullName   string `gorm:"column:full_name;not null" json:"full_name"`
	Role       string `gorm:"column:role;not null" json:"role"`
	Efficiency int64  `gorm:"column:efficiency;not null" json:"efficiency"`
}

// TableName tells gorm to use the singular table name.
func (User) TableName() string {
	return TableName
}

// UserFields is a partial set of user columns.
//
// A nil field is left untouched by updates. Create requires all three.
type UserFields struct {
	FullName   *string
	Role       *string
	Efficiency *int64
}

// Updates returns the supplied fields keyed by column name.
func (f UserFields) Updates() map[string]any {
	updates := make(map[string]any, 3)
	if f.FullName != nil {
		updates[ColumnFullName] = *f.FullName
	}
	if f.Role != nil {
		updates[ColumnRole] = *f.Role
	}
	if f.Efficiency != nil {
		updates[ColumnEfficiency] = *f.Efficiency
	}
	return updates
}

// Filter is an equality filter keyed by column name. Empty means all rows.
type Filter map[string]any
