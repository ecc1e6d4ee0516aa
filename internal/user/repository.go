package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"

	"github.com/rokotuskortti/vaccination-erecord/internal/database"
	"github.com/rokotuskortti/vaccination-erecord/internal/fielddiff"
)

var (
	ErrNotFound          = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username exists already")
)

// Store is the persistence surface the handlers and the session gate use.
type Store interface {
	Create(ctx context.Context, nu NewUser) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	Update(ctx context.Context, id int64, changes fielddiff.Values) error
}

// Repository handles user data persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user. The username is checked for existence first;
// the unique index closes the remaining race window.
func (r *Repository) Create(ctx context.Context, nu NewUser) (*User, error) {
	existing, err := r.GetByUsername(ctx, nu.Username)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateUsername
	}

	dbUser := &database.User{
		Username:              nu.Username,
		PasswordHash:          nu.PasswordHash,
		DefaultReminderEmail:  nu.DefaultReminderEmail,
		YearBorn:              nu.YearBorn,
		ReminderDaysBeforeDue: nu.ReminderDaysBeforeDue,
	}

	_, err = r.db.NewInsert().
		Model(dbUser).
		Returning("*").
		Exec(ctx)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByUsername retrieves a user by username (case-sensitive exact match)
func (r *Repository) GetByUsername(ctx context.Context, username string) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("username = ?", username).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByID retrieves a user by ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// Update persists exactly the changed fields computed by the diff engine.
func (r *Repository) Update(ctx context.Context, id int64, changes fielddiff.Values) error {
	if len(changes) == 0 {
		return nil
	}

	q := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Where("id = ?", id)

	for column, value := range changes {
		q = q.Set("? = ?", bun.Ident(column), value)
	}
	q = q.Set("updated_at = NOW()")

	result, err := q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// mapDBUserToModel converts database model to domain model
func mapDBUserToModel(dbu *database.User) *User {
	return &User{
		ID:                    dbu.ID,
		Username:              dbu.Username,
		PasswordHash:          dbu.PasswordHash,
		DefaultReminderEmail:  dbu.DefaultReminderEmail,
		YearBorn:              dbu.YearBorn,
		ReminderDaysBeforeDue: dbu.ReminderDaysBeforeDue,
		CreatedAt:             dbu.CreatedAt,
		UpdatedAt:             dbu.UpdatedAt,
	}
}
