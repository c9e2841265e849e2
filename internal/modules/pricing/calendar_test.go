package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	good := map[string]int{"00:00": 0, "9:05": 545, "23:59": 1439}
	for in, want := range good {
		got, err := parseClock(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"", "24:00", "12:60", "12", "ab:cd", "12:5"} {
		_, err := parseClock(in)
		assert.ErrorIs(t, err, ErrInvalidInput, in)
	}
}

func TestParseMonthDay(t *testing.T) {
	got, err := parseMonthDay("02-29")
	require.NoError(t, err)
	assert.Equal(t, 229, got)

	for _, in := range []string{"00-10", "13-01", "04-31", "2-3", "12/25"} {
		_, err := parseMonthDay(in)
		assert.ErrorIs(t, err, ErrInvalidInput, in)
	}
}

func TestInWindow(t *testing.T) {
	assert.True(t, inWindow(600, 540, 1020))
	assert.False(t, inWindow(1021, 540, 1020))
	assert.True(t, inWindow(1380, 1320, 360))
	assert.True(t, inWindow(0, 1320, 360))
	assert.False(t, inWindow(720, 1320, 360))
	assert.True(t, inWindow(500, 500, 500))
}

func TestDayOfWeek(t *testing.T) {
	wd, ok := DayOfWeek("Saturday").Weekday()
	require.True(t, ok)
	assert.Equal(t, time.Saturday, wd)

	_, ok = DayOfWeek("sat").Weekday()
	assert.False(t, ok)
}
