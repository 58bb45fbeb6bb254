package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/deppfellow/usercrud/internal/errs"
	"github.com/deppfellow/usercrud/internal/model"
	"github.com/deppfellow/usercrud/internal/testutil"
)

func ptr[T any](v T) *T { return &v }

func fields(name, role string, efficiency int64) model.UserFields {
	return model.UserFields{FullName: ptr(name), Role: ptr(role), Efficiency: ptr(efficiency)}
}

func TestUserRepository_CRUD(t *testing.T) {
	repo := NewUserRepository(testutil.OpenTestDB(t))
	ctx := context.Background()

	id, err := repo.Create(ctx, fields("Ann Lee", "admin", 5))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id <= 0 {
		t.Fatalf("expected positive id, got %d", id)
	}

	got, err := repo.FindByID(ctx, id)
	if err != nil || got == nil {
		t.Fatalf("find by id: %v %+v", err, got)
	}
	want := model.User{ID: id, FullName: "Ann Lee", Role: "admin", Efficiency: 5}
	if *got != want {
		t.Fatalf("got %+v, want %+v", *got, want)
	}

	updated, err := repo.UpdateByID(ctx, id, model.UserFields{Role: ptr("owner")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	want.Role = "owner"
	if updated == nil || *updated != want {
		t.Fatalf("update returned %+v, want %+v", updated, want)
	}

	deleted, err := repo.DeleteByID(ctx, id)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted == nil || *deleted != want {
		t.Fatalf("delete returned %+v, want %+v", deleted, want)
	}

	gone, err := repo.FindByID(ctx, id)
	if err != nil || gone != nil {
		t.Fatalf("expected user deleted, got %+v err=%v", gone, err)
	}
}

func TestUserRepository_ListFilters(t *testing.T) {
	repo := NewUserRepository(testutil.OpenTestDB(t))
	ctx := context.Background()

	for _, f := range []model.UserFields{
		fields("Ann Lee", "admin", 5),
		fields("Bob Ray", "dev", 3),
		fields("Cid Moe", "dev", 5),
	} {
		if _, err := repo.Create(ctx, f); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter model.Filter
		want   []string
	}{
		{"empty filter lists all", model.Filter{}, []string{"Ann Lee", "Bob Ray", "Cid Moe"}},
		{"nil filter lists all", nil, []string{"Ann Lee", "Bob Ray", "Cid Moe"}},
		{"by role", model.Filter{"role": "dev"}, []string{"Bob Ray", "Cid Moe"}},
		{"conjunction", model.Filter{"role": "dev", "efficiency": int64(5)}, []string{"Cid Moe"}},
		{"unknown keys ignored", model.Filter{"nickname": "x", "role": "admin"}, []string{"Ann Lee"}},
		{"no match", model.Filter{"role": "ceo"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, err := repo.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if users == nil {
				t.Fatal("list returned nil slice")
			}
			if len(users) != len(tt.want) {
				t.Fatalf("got %d users, want %d: %+v", len(users), len(tt.want), users)
			}
			for i, u := range users {
				if u.FullName != tt.want[i] {
					t.Errorf("users[%d] = %q, want %q", i, u.FullName, tt.want[i])
				}
			}
		})
	}
}

func TestUserRepository_UpdateWithoutFieldsLeavesRow(t *testing.T) {
	repo := NewUserRepository(testutil.OpenTestDB(t))
	ctx := context.Background()

	id, err := repo.Create(ctx, fields("Ann Lee", "admin", 5))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.UpdateByID(ctx, id, model.UserFields{})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got == nil || got.FullName != "Ann Lee" || got.Role != "admin" || got.Efficiency != 5 {
		t.Fatalf("unexpected user after empty update: %+v", got)
	}
}

func TestUserRepository_MissingIDs(t *testing.T) {
	repo := NewUserRepository(testutil.OpenTestDB(t))
	ctx := context.Background()

	if u, err := repo.UpdateByID(ctx, 42, model.UserFields{Role: ptr("owner")}); err != nil || u != nil {
		t.Fatalf("update missing: %+v err=%v", u, err)
	}
	if u, err := repo.DeleteByID(ctx, 42); err != nil || u != nil {
		t.Fatalf("delete missing: %+v err=%v", u, err)
	}
}

func TestUserRepository_DeleteAllDoesNotReuseIDs(t *testing.T) {
	repo := NewUserRepository(testutil.OpenTestDB(t))
	ctx := context.Background()

	first, err := repo.Create(ctx, fields("Ann Lee", "admin", 5))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.Create(ctx, fields("Bob Ray", "dev", 3)); err != nil {
		t.Fatalf("create: %v", err)
	}

	if u, err := repo.DeleteByID(ctx, 0); err != nil || u != nil {
		t.Fatalf("delete all: %+v err=%v", u, err)
	}

	users, err := repo.List(ctx, nil)
	if err != nil || len(users) != 0 {
		t.Fatalf("expected empty table, got %+v err=%v", users, err)
	}

	next, err := repo.Create(ctx, fields("Cid Moe", "dev", 1))
	if err != nil {
		t.Fatalf("create after delete all: %v", err)
	}
	if next <= first+1 {
		t.Fatalf("id %d was handed out again after delete all (first was %d)", next, first)
	}
}

func TestUserRepository_BackendFailures(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	if err := db.ORM.Exec(`DROP TABLE "user"`).Error; err != nil {
		t.Fatalf("drop table: %v", err)
	}

	_, err := repo.Create(ctx, fields("Ann Lee", "admin", 5))
	if err == nil {
		t.Fatal("expected an error without a table")
	}
	var appErr *errs.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *errs.Error, got %T", err)
	}
}
