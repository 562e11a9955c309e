package interval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2025, time.January, d, 0, 0, 0, 0, time.UTC)
}

func TestNewRejectsInvertedBounds(t *testing.T) {
	_, err := New(day(5), day(5))
	require.ErrorIs(t, err, ErrInvalidInterval)

	_, err = New(day(5), day(3))
	require.ErrorIs(t, err, ErrInvalidInterval)

	_, err = New(time.Time{}, day(3))
	require.ErrorIs(t, err, ErrInvalidInterval)
}

func TestOverlapsIsSymmetric(t *testing.T) {
	cases := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"disjoint", Interval{day(1), day(3)}, Interval{day(5), day(7)}, false},
		{"touching endpoints", Interval{day(1), day(3)}, Interval{day(3), day(5)}, false},
		{"partial overlap", Interval{day(1), day(4)}, Interval{day(3), day(6)}, true},
		{"contained", Interval{day(1), day(10)}, Interval{day(4), day(5)}, true},
		{"identical", Interval{day(2), day(4)}, Interval{day(2), day(4)}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.a.Overlaps(tc.b))
			assert.Equal(t, tc.want, tc.b.Overlaps(tc.a))
		})
	}
}

func TestWithinHorizon(t *testing.T) {
	iv := Interval{Start: day(10), End: day(11)}
	assert.True(t, iv.WithinHorizon(day(10)))
	assert.True(t, iv.WithinHorizon(day(15)))
	assert.False(t, iv.WithinHorizon(day(9)))
}

func TestEqualMatchesExactBounds(t *testing.T) {
	a := Interval{Start: day(1), End: day(2)}
	assert.True(t, a.Equal(Interval{Start: day(1), End: day(2)}))
	assert.False(t, a.Equal(Interval{Start: day(1), End: day(3)}))
}
