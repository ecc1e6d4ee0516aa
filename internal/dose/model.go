package dose

import "time"

// Dose is one vaccination event in a user's record.
type Dose struct {
	ID                     int64
	UserID                 int64
	VaccineID              int64
	VaccineName            string
	VaccineAbbreviation    *string
	DateTaken              *time.Time
	BoosterDueDate         *time.Time
	BoosterEmailReminder   bool
	BoosterReminderAddress *string
	Comment                *string
	CreatedAt              time.Time
}

// NewDose carries the fields accepted when a dose is recorded.
type NewDose struct {
	UserID                 int64
	VaccineID              int64
	DateTaken              *time.Time
	BoosterDueDate         *time.Time
	BoosterEmailReminder   bool
	BoosterReminderAddress *string
	Comment                *string
}

// ReminderItem is one dose flagged for a booster reminder, joined with
// the owning user's delivery details.
type ReminderItem struct {
	DoseID       int64
	UserID       int64
	VaccineName  string
	DueDate      *time.Time
	Address      string
	UserLeadDays *int
}
