package vaccine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/rokotuskortti/vaccination-erecord/internal/database"
)

var ErrNotFound = errors.New("vaccine not found")

// Store is the persistence surface the vaccine handlers use.
type Store interface {
	ListVisibleTo(ctx context.Context, userID int64) ([]Vaccine, error)
	Get(ctx context.Context, id int64) (*Vaccine, error)
	Create(ctx context.Context, nv NewVaccine) (*Vaccine, error)
}

// Repository handles vaccine data persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// ListVisibleTo returns built-in vaccines plus the user's own ones,
// the user's own first.
func (r *Repository) ListVisibleTo(ctx context.Context, userID int64) ([]Vaccine, error) {
	var rows []database.Vaccine

	err := r.db.NewSelect().
		Model(&rows).
		Where("created_by_user_id IS NULL OR created_by_user_id = ?", userID).
		OrderExpr("created_by_user_id DESC NULLS LAST").
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list vaccines: %w", err)
	}

	vaccines := make([]Vaccine, 0, len(rows))
	for i := range rows {
		vaccines = append(vaccines, mapDBVaccineToModel(&rows[i]))
	}
	return vaccines, nil
}

// Get returns one vaccine by id regardless of ownership. Callers that
// care about visibility check CreatedByUserID themselves.
func (r *Repository) Get(ctx context.Context, id int64) (*Vaccine, error) {
	row := new(database.Vaccine)

	err := r.db.NewSelect().
		Model(row).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get vaccine: %w", err)
	}

	v := mapDBVaccineToModel(row)
	return &v, nil
}

// Create inserts a user-defined vaccine.
func (r *Repository) Create(ctx context.Context, nv NewVaccine) (*Vaccine, error) {
	row := &database.Vaccine{
		Name:            nv.Name,
		Abbreviation:    nv.Abbreviation,
		CreatedByUserID: &nv.CreatedByUserID,
	}

	_, err := r.db.NewInsert().
		Model(row).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create vaccine: %w", err)
	}

	v := mapDBVaccineToModel(row)
	return &v, nil
}

func mapDBVaccineToModel(row *database.Vaccine) Vaccine {
	return Vaccine{
		ID:              row.ID,
		Name:            row.Name,
		Abbreviation:    row.Abbreviation,
		CodeID:          row.CodeID,
		CreatedByUserID: row.CreatedByUserID,
	}
}
