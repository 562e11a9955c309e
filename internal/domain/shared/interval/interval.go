package interval

import (
	"errors"
	"time"
)

var ErrInvalidInterval = errors.New("interval: end must be after start")

// Interval represents a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

func New(start, end time.Time) (Interval, error) {
	iv := Interval{Start: start.UTC(), End: end.UTC()}
	if err := iv.Validate(); err != nil {
		return Interval{}, err
	}
	return iv, nil
}

func (iv Interval) Validate() error {
	if iv.Start.IsZero() || iv.End.IsZero() {
		return ErrInvalidInterval
	}
	if !iv.End.After(iv.Start) {
		return ErrInvalidInterval
	}
	return nil
}

// Overlaps reports a conflict between two half-open ranges. Touching
// endpoints do not conflict.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// WithinHorizon reports whether the interval starts on or before the horizon.
func (iv Interval) WithinHorizon(horizon time.Time) bool {
	return !iv.Start.After(horizon)
}

// Equal matches exact (Start, End) bounds.
func (iv Interval) Equal(other Interval) bool {
	return iv.Start.Equal(other.Start) && iv.End.Equal(other.End)
}

func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}
