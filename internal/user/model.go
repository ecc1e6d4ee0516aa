package user

import "time"

// User is one registered account. The username doubles as the user's
// primary email address.
type User struct {
	ID                    int64   `json:"id"`
	Username              string  `json:"username"`
	PasswordHash          string  `json:"-"` // Never expose password hash in JSON
	DefaultReminderEmail  *string `json:"default_reminder_email"`
	YearBorn              *int    `json:"year_born"`
	ReminderDaysBeforeDue *int    `json:"reminder_days_before_due"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser carries the fields accepted at registration.
type NewUser struct {
	Username              string
	PasswordHash          string
	DefaultReminderEmail  *string
	YearBorn              *int
	ReminderDaysBeforeDue *int
}
