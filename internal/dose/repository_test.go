package dose

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rokotuskortti/vaccination-erecord/internal/database"
)

func reminderRow(address *string) *database.Dose {
	due := time.Date(2026, time.February, 3, 0, 0, 0, 0, time.UTC)
	email := "default@example.com"
	lead := 14
	return &database.Dose{
		ID:                     5,
		UserID:                 1,
		BoosterDueDate:         &due,
		BoosterEmailReminder:   true,
		BoosterReminderAddress: address,
		Vaccine:                &database.Vaccine{ID: 3, Name: "MPR"},
		User: &database.User{
			ID:                    1,
			Username:              "anna@example.com",
			DefaultReminderEmail:  &email,
			ReminderDaysBeforeDue: &lead,
		},
	}
}

func TestReminderItemUsesDoseAddressOnly(t *testing.T) {
	address := "booster@example.com"
	item := mapDBDoseToReminderItem(reminderRow(&address))

	assert.Equal(t, "booster@example.com", item.Address)
	assert.Equal(t, "MPR", item.VaccineName)
	assert.NotNil(t, item.DueDate)
	assert.Equal(t, 14, *item.UserLeadDays)
}

func TestReminderItemWithoutDoseAddressStaysUnaddressed(t *testing.T) {
	// User profile addresses are never substituted; the scanner skips
	// doses without their own delivery address.
	item := mapDBDoseToReminderItem(reminderRow(nil))

	assert.Empty(t, item.Address)
	assert.Equal(t, 14, *item.UserLeadDays)
}
