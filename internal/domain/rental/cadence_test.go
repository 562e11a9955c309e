package rental

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var anchor = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

func TestMaxHorizon(t *testing.T) {
	cases := []struct {
		cadence Cadence
		want    time.Time
	}{
		{CadenceHourly, anchor.AddDate(0, 0, 7)},
		{CadenceDaily, time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)},
		{CadenceWeekly, time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)},
		{CadenceMonthly, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{CadenceHalfYear, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{CadenceYearly, time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(string(tc.cadence), func(t *testing.T) {
			assert.Equal(t, tc.want, tc.cadence.MaxHorizon(anchor))
		})
	}
}

func TestEndDateForAddsCalendarUnits(t *testing.T) {
	start := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)

	end, err := CadenceMonthly.EndDateFor(3, start)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC), end)

	end, err = CadenceHourly.EndDateFor(5, start)
	require.NoError(t, err)
	assert.Equal(t, start.Add(5*time.Hour), end)

	end, err = CadenceWeekly.EndDateFor(2, start)
	require.NoError(t, err)
	assert.Equal(t, start.AddDate(0, 0, 14), end)

	end, err = CadenceHalfYear.EndDateFor(1, start)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC), end)

	end, err = CadenceYearly.EndDateFor(2, start)
	require.NoError(t, err)
	assert.Equal(t, start.AddDate(2, 0, 0), end)

	_, err = Cadence("fortnightly").EndDateFor(1, start)
	require.ErrorIs(t, err, ErrUnknownCadence)
}

func TestDefaultSliceCoverage(t *testing.T) {
	for _, c := range []Cadence{CadenceHourly, CadenceDaily, CadenceWeekly, CadenceMonthly} {
		step, ok := c.DefaultSlice()
		require.True(t, ok, c)
		assert.True(t, step(anchor).After(anchor))
	}
	for _, c := range []Cadence{CadenceHalfYear, CadenceYearly} {
		_, ok := c.DefaultSlice()
		assert.False(t, ok, c)
	}
}
