package dose

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/rokotuskortti/vaccination-erecord/internal/database"
	"github.com/rokotuskortti/vaccination-erecord/internal/dates"
	"github.com/rokotuskortti/vaccination-erecord/internal/fielddiff"
)

var ErrNotFound = errors.New("dose not found")

// Store is the persistence surface the dose handlers and the reminder
// scanner use.
type Store interface {
	ListForUser(ctx context.Context, userID int64) ([]Dose, error)
	Find(ctx context.Context, userID, doseID int64) (*Dose, error)
	Create(ctx context.Context, nd NewDose) (*Dose, error)
	Update(ctx context.Context, id int64, changes fielddiff.Values) error
	ListFlaggedForReminder(ctx context.Context) ([]ReminderItem, error)
	ClearReminderFlag(ctx context.Context, doseID int64) error
}

// Repository handles dose data persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// ListForUser returns the user's doses, newest record first.
func (r *Repository) ListForUser(ctx context.Context, userID int64) ([]Dose, error) {
	var rows []database.Dose

	err := r.db.NewSelect().
		Model(&rows).
		Relation("Vaccine").
		Where("d.user_id = ?", userID).
		Order("d.created_at DESC").
		Order("d.id DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list doses: %w", err)
	}

	doses := make([]Dose, 0, len(rows))
	for i := range rows {
		doses = append(doses, mapDBDoseToModel(&rows[i]))
	}
	return doses, nil
}

// Find returns the dose only if it belongs to the user. A dose owned by
// someone else is indistinguishable from a missing one.
func (r *Repository) Find(ctx context.Context, userID, doseID int64) (*Dose, error) {
	row := new(database.Dose)

	err := r.db.NewSelect().
		Model(row).
		Relation("Vaccine").
		Where("d.id = ?", doseID).
		Where("d.user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find dose: %w", err)
	}

	d := mapDBDoseToModel(row)
	return &d, nil
}

// Create inserts a new dose record.
func (r *Repository) Create(ctx context.Context, nd NewDose) (*Dose, error) {
	row := &database.Dose{
		UserID:                 nd.UserID,
		VaccineID:              nd.VaccineID,
		DateTaken:              nd.DateTaken,
		BoosterDueDate:         nd.BoosterDueDate,
		BoosterEmailReminder:   nd.BoosterEmailReminder,
		BoosterReminderAddress: nd.BoosterReminderAddress,
		Comment:                nd.Comment,
	}

	_, err := r.db.NewInsert().
		Model(row).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create dose: %w", err)
	}

	d := mapDBDoseToModel(row)
	return &d, nil
}

// Update applies a changed-field set to the dose. Date values arrive as
// dates.Date and are stored as nullable DATE columns.
func (r *Repository) Update(ctx context.Context, id int64, changes fielddiff.Values) error {
	if len(changes) == 0 {
		return nil
	}

	q := r.db.NewUpdate().
		Model((*database.Dose)(nil)).
		Where("id = ?", id)

	for column, value := range changes {
		if d, ok := value.(dates.Date); ok {
			q = q.Set("? = ?", bun.Ident(column), dateColumnValue(d))
			continue
		}
		q = q.Set("? = ?", bun.Ident(column), value)
	}
	q = q.Set("updated_at = NOW()")

	res, err := q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update dose: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListFlaggedForReminder returns every dose whose reminder flag is still
// set, joined with user delivery details. Due-date filtering happens in
// the scanner, not here.
func (r *Repository) ListFlaggedForReminder(ctx context.Context) ([]ReminderItem, error) {
	var rows []database.Dose

	err := r.db.NewSelect().
		Model(&rows).
		Relation("Vaccine").
		Relation("User").
		Where("d.booster_email_reminder = TRUE").
		Order("d.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminder doses: %w", err)
	}

	items := make([]ReminderItem, 0, len(rows))
	for i := range rows {
		items = append(items, mapDBDoseToReminderItem(&rows[i]))
	}
	return items, nil
}

// ClearReminderFlag turns the one-shot reminder flag off after a
// successful delivery.
func (r *Repository) ClearReminderFlag(ctx context.Context, doseID int64) error {
	res, err := r.db.NewUpdate().
		Model((*database.Dose)(nil)).
		Set("booster_email_reminder = FALSE").
		Set("updated_at = NOW()").
		Where("id = ?", doseID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear reminder flag: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func dateColumnValue(d dates.Date) *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time
	return &t
}

func mapDBDoseToModel(row *database.Dose) Dose {
	d := Dose{
		ID:                     row.ID,
		UserID:                 row.UserID,
		VaccineID:              row.VaccineID,
		DateTaken:              row.DateTaken,
		BoosterDueDate:         row.BoosterDueDate,
		BoosterEmailReminder:   row.BoosterEmailReminder,
		BoosterReminderAddress: row.BoosterReminderAddress,
		Comment:                row.Comment,
		CreatedAt:              row.CreatedAt,
	}
	if row.Vaccine != nil {
		d.VaccineName = row.Vaccine.Name
		d.VaccineAbbreviation = row.Vaccine.Abbreviation
	}
	return d
}

func mapDBDoseToReminderItem(row *database.Dose) ReminderItem {
	item := ReminderItem{
		DoseID:  row.ID,
		UserID:  row.UserID,
		DueDate: row.BoosterDueDate,
	}
	if row.Vaccine != nil {
		item.VaccineName = row.Vaccine.Name
	}
	// Reminders go only to the address recorded on the dose. A dose
	// without one is skipped by the scanner, never rerouted.
	if row.BoosterReminderAddress != nil {
		item.Address = *row.BoosterReminderAddress
	}
	if row.User != nil {
		item.UserLeadDays = row.User.ReminderDaysBeforeDue
	}
	return item
}
