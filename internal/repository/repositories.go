// Package repository handles all interactions with the database.
//
// Repositories issue ORM calls against the shared *database.Database and
// translate driver failures into application errors before returning.
package repository

import (
	"github.com/deppfellow/usercrud/internal/database"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Users *UserRepository
}

// NewRepositories constructs the repository container around db.
func NewRepositories(db *database.Database) *Repositories {
	return &Repositories{
		Users: NewUserRepository(db),
	}
}
