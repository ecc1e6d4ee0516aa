package fielddiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rokotuskortti/vaccination-erecord/internal/dates"
)

var testFields = []Field{
	{Name: "comment", Kind: Text},
	{Name: "year_born", Kind: Int},
	{Name: "booster_email_reminder", Kind: Bool},
	{Name: "date_taken", Kind: Date},
}

func TestChangedReportsOnlyDifferingFields(t *testing.T) {
	next := Values{"comment": "updated", "year_born": 1985}
	current := Values{"comment": "original", "year_born": 1985, "booster_email_reminder": true}

	changed := Changed(testFields, next, current)

	assert.Equal(t, Values{"comment": "updated"}, changed)
}

func TestChangedSkipsFieldsAbsentFromRequest(t *testing.T) {
	next := Values{}
	current := Values{"comment": "keep me", "year_born": 1985}

	changed := Changed(testFields, next, current)

	assert.Empty(t, changed)
}

func TestChangedSkipsFieldsOutsideAllowedSet(t *testing.T) {
	next := Values{"password_hash": "sneaky", "comment": "x"}
	current := Values{"password_hash": "stored", "comment": "x"}

	changed := Changed(testFields, next, current)

	assert.Empty(t, changed)
}

func TestChangedNilToValueIsAChange(t *testing.T) {
	next := Values{"year_born": 1985}
	current := Values{"year_born": nil}

	changed := Changed(testFields, next, current)

	assert.Equal(t, Values{"year_born": 1985}, changed)
}

func TestChangedSameCalendarDateDifferentTextIsNoop(t *testing.T) {
	codec, err := dates.NewCodec("D.M.YYYY")
	require.NoError(t, err)

	next := Values{"date_taken": codec.Parse("07.02.1985")}
	current := Values{"date_taken": codec.Parse("7.2.1985")}

	changed := Changed(testFields, next, current)

	assert.Empty(t, changed)
}

func TestChangedDifferentDateIsReported(t *testing.T) {
	codec, err := dates.NewCodec("D.M.YYYY")
	require.NoError(t, err)

	next := Values{"date_taken": codec.Parse("1.2.2003")}
	current := Values{"date_taken": codec.Parse("27.2.1985")}

	changed := Changed(testFields, next, current)

	require.Contains(t, changed, "date_taken")
	assert.True(t, dates.Equal(codec.Parse("1.2.2003"), changed["date_taken"].(dates.Date)))
}

func TestChangedInvalidDateEqualsNoDate(t *testing.T) {
	next := Values{"date_taken": dates.Invalid}
	current := Values{"date_taken": dates.Invalid}

	changed := Changed(testFields, next, current)

	assert.Empty(t, changed)
}

func TestChangedIsPure(t *testing.T) {
	next := Values{"comment": "new"}
	current := Values{"comment": "old"}

	Changed(testFields, next, current)

	assert.Equal(t, Values{"comment": "new"}, next)
	assert.Equal(t, Values{"comment": "old"}, current)
}

func TestFlags(t *testing.T) {
	flags := Flags(Values{"comment": "x", "year_born": 1985})

	assert.Equal(t, map[string]bool{"comment": true, "year_born": true}, flags)
	assert.Empty(t, Flags(Values{}))
}
