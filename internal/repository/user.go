package repository

import (
	"context"
	"errors"

	"github.com/deppfellow/usercrud/internal/database"
	"github.com/deppfellow/usercrud/internal/model"
	"github.com/deppfellow/usercrud/internal/sqlerr"
	"gorm.io/gorm"
)

// UserRepository stores users in a single table.
type UserRepository struct {
	db *database.Database
}

func NewUserRepository(db *database.Database) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a user and returns the id the database assigned.
func (r *UserRepository) Create(ctx context.Context, fields model.UserFields) (int64, error) {
	user := model.User{}
	if fields.FullName != nil {
		user.FullName = *fields.FullName
	}
	if fields.Role != nil {
		user.Role = *fields.Role
	}
	if fields.Efficiency != nil {
		user.Efficiency = *fields.Efficiency
	}

	if err := r.db.ORM.WithContext(ctx).Create(&user).Error; err != nil {
		return 0, sqlerr.HandleError(err)
	}
	return user.ID, nil
}

// List returns the users matching every entry of filter, ordered by id.
// Filter keys that are not columns of the table are ignored.
func (r *UserRepository) List(ctx context.Context, filter model.Filter) ([]model.User, error) {
	query := r.db.ORM.WithContext(ctx).
		Model(&model.User{}).
		Select(model.Columns)

	for _, column := range model.Columns {
		if value, ok := filter[column]; ok {
			query = query.Where(map[string]any{column: value})
		}
	}

	users := make([]model.User, 0)
	if err := query.Order(model.ColumnID).Find(&users).Error; err != nil {
		return nil, sqlerr.HandleError(err)
	}
	return users, nil
}

// FindByID returns the user with id, or nil when there is none.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := r.db.ORM.WithContext(ctx).
		Select(model.Columns).
		Where(model.ColumnID+" = ?", id).
		Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}
	return &user, nil
}

// UpdateByID applies the supplied fields to the user with id and returns
// the updated row, or nil when no user has that id. With no fields set
// nothing is written.
func (r *UserRepository) UpdateByID(ctx context.Context, id int64, fields model.UserFields) (*model.User, error) {
	if updates := fields.Updates(); len(updates) > 0 {
		err := r.db.ORM.WithContext(ctx).
			Model(&model.User{}).
			Where(model.ColumnID+" = ?", id).
			Updates(updates).Error
		if err != nil {
			return nil, sqlerr.HandleError(err)
		}
	}

	return r.FindByID(ctx, id)
}

// DeleteByID removes the user with id and returns it as it was before the
// delete, or nil when it did not exist.
//
// id 0 means no id was supplied: every user is removed and nil is returned.
func (r *UserRepository) DeleteByID(ctx context.Context, id int64) (*model.User, error) {
	if id == 0 {
		if err := r.deleteAll(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	}

	user, err := r.FindByID(ctx, id)
	if err != nil || user == nil {
		return nil, err
	}

	err = r.db.ORM.WithContext(ctx).
		Where(model.ColumnID+" = ?", id).
		Delete(&model.User{}).Error
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}
	return user, nil
}

// deleteAll uses DELETE rather than TRUNCATE so auto-increment counters keep
// going and ids are not handed out twice.
func (r *UserRepository) deleteAll(ctx context.Context) error {
	err := r.db.ORM.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&model.User{}).Error
	if err != nil {
		return sqlerr.HandleError(err)
	}
	return nil
}
