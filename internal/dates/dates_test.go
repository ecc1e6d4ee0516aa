package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCodec(t *testing.T, pattern string) *Codec {
	t.Helper()
	c, err := NewCodec(pattern)
	require.NoError(t, err)
	return c
}

func TestNewCodec(t *testing.T) {
	c := mustCodec(t, "D.M.YYYY")
	assert.Equal(t, "D.M.YYYY", c.Pattern())

	_, err := NewCodec("D.M.QQQQ")
	assert.Error(t, err)
}

func TestParseFormatRoundTrip(t *testing.T) {
	c := mustCodec(t, "D.M.YYYY")

	d := c.Parse("27.2.1985")
	require.True(t, d.Valid)
	assert.Equal(t, "27.2.1985", c.FormatDate(d))
}

func TestParseAcceptsPaddedInput(t *testing.T) {
	c := mustCodec(t, "D.M.YYYY")

	padded := c.Parse("07.02.1985")
	plain := c.Parse("7.2.1985")
	require.True(t, padded.Valid)
	require.True(t, plain.Valid)
	assert.True(t, Equal(padded, plain))
}

func TestParseSoftFails(t *testing.T) {
	c := mustCodec(t, "D.M.YYYY")

	assert.False(t, c.Parse("").Valid)
	assert.False(t, c.Parse("not a date").Valid)
	assert.False(t, c.Parse("31.2.2020").Valid)
	assert.Equal(t, "", c.FormatDate(c.Parse("nope")))
}

func TestIsoPattern(t *testing.T) {
	c := mustCodec(t, "YYYY-MM-DD")

	d := c.Parse("2022-12-31")
	require.True(t, d.Valid)
	assert.Equal(t, "2022-12-31", c.FormatDate(d))
}

func TestEqual(t *testing.T) {
	c := mustCodec(t, "D.M.YYYY")

	assert.True(t, Equal(Invalid, Invalid))
	assert.False(t, Equal(Invalid, c.Parse("1.1.2020")))
	assert.True(t, Equal(c.Parse("1.1.2020"), c.Parse("01.01.2020")))
	assert.False(t, Equal(c.Parse("1.1.2020"), c.Parse("2.1.2020")))
}

func TestFromTime(t *testing.T) {
	assert.False(t, FromTime(nil).Valid)

	zero := time.Time{}
	assert.False(t, FromTime(&zero).Valid)

	now := time.Now()
	d := FromTime(&now)
	require.True(t, d.Valid)
	assert.Equal(t, now, d.Time)
}

func TestDaysBetween(t *testing.T) {
	day := func(s string) time.Time {
		v, err := time.Parse("2006-01-02", s)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, 0, DaysBetween(day("2022-03-10"), day("2022-03-10")))
	assert.Equal(t, 40, DaysBetween(day("2022-03-10"), day("2022-01-29")))
	assert.Equal(t, -1, DaysBetween(day("2022-03-10"), day("2022-03-11")))

	// Time-of-day never shifts the whole-day count.
	late := day("2022-03-10").Add(23 * time.Hour)
	assert.Equal(t, 1, DaysBetween(late, day("2022-03-09")))
}
