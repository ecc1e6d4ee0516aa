package database

import (
	"time"

	"github.com/uptrace/bun"
)

// User is the users table row.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID                    int64      `bun:"id,pk,autoincrement"`
	Username              string     `bun:"username,notnull"`
	PasswordHash          string     `bun:"password_hash,notnull"`
	DefaultReminderEmail  *string    `bun:"default_reminder_email"`
	YearBorn              *int       `bun:"year_born"`
	ReminderDaysBeforeDue *int       `bun:"reminder_days_before_due"`
	CreatedAt             time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt             time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Vaccine is the vaccines table row. A NULL CreatedByUserID marks a
// built-in vaccine visible to every user.
type Vaccine struct {
	bun.BaseModel `bun:"table:vaccines,alias:v"`

	ID              int64     `bun:"id,pk,autoincrement"`
	Name            string    `bun:"name,notnull"`
	Abbreviation    *string   `bun:"abbreviation"`
	CodeID          *int      `bun:"code_id"`
	CreatedByUserID *int64    `bun:"created_by_user_id"`
	CreatedAt       time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt       time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Dose is the doses table row.
type Dose struct {
	bun.BaseModel `bun:"table:doses,alias:d"`

	ID                     int64      `bun:"id,pk,autoincrement"`
	UserID                 int64      `bun:"user_id,notnull"`
	VaccineID              int64      `bun:"vaccine_id,notnull"`
	DateTaken              *time.Time `bun:"date_taken"`
	BoosterDueDate         *time.Time `bun:"booster_due_date"`
	BoosterEmailReminder   bool       `bun:"booster_email_reminder"`
	BoosterReminderAddress *string    `bun:"booster_reminder_address"`
	Comment                *string    `bun:"comment"`
	CreatedAt              time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt              time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`

	User    *User    `bun:"rel:belongs-to,join:user_id=id"`
	Vaccine *Vaccine `bun:"rel:belongs-to,join:vaccine_id=id"`
}
