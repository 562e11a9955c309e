package rental

import "time"

// Cadence is the booking granularity and horizon policy of an item. It is
// fixed at item creation: horizon and end-date math assume it never changes.
type Cadence string

const (
	CadenceHourly   Cadence = "hourly"
	CadenceDaily    Cadence = "daily"
	CadenceWeekly   Cadence = "weekly"
	CadenceMonthly  Cadence = "monthly"
	CadenceHalfYear Cadence = "half-year"
	CadenceYearly   Cadence = "yearly"
)

func (c Cadence) Valid() bool {
	switch c {
	case CadenceHourly, CadenceDaily, CadenceWeekly, CadenceMonthly, CadenceHalfYear, CadenceYearly:
		return true
	}
	return false
}

// MaxHorizon returns the furthest date a booking may start. Months and years
// are added calendrically.
func (c Cadence) MaxHorizon(now time.Time) time.Time {
	now = now.UTC()
	switch c {
	case CadenceHourly:
		return now.AddDate(0, 0, 7)
	case CadenceDaily:
		return now.AddDate(0, 3, 0)
	case CadenceWeekly:
		return now.AddDate(0, 6, 0)
	case CadenceMonthly:
		return now.AddDate(1, 0, 0)
	case CadenceHalfYear:
		return now.AddDate(1, 0, 0)
	case CadenceYearly:
		return now.AddDate(2, 0, 0)
	}
	return now
}

// DefaultSlice returns the step from a slice start to its end for cadences
// that generate default availability. half-year and yearly items carry no
// generator and must rely on owner-declared availability.
func (c Cadence) DefaultSlice() (func(time.Time) time.Time, bool) {
	switch c {
	case CadenceHourly:
		return func(t time.Time) time.Time { return t.Add(time.Hour) }, true
	case CadenceDaily:
		return func(t time.Time) time.Time { return t.AddDate(0, 0, 1) }, true
	case CadenceWeekly:
		return func(t time.Time) time.Time { return t.AddDate(0, 0, 7) }, true
	case CadenceMonthly:
		return func(t time.Time) time.Time { return t.AddDate(0, 1, 0) }, true
	}
	return nil, false
}

// EndDateFor adds units cadence-units to start.
func (c Cadence) EndDateFor(units int, start time.Time) (time.Time, error) {
	start = start.UTC()
	switch c {
	case CadenceHourly:
		return start.Add(time.Duration(units) * time.Hour), nil
	case CadenceDaily:
		return start.AddDate(0, 0, units), nil
	case CadenceWeekly:
		return start.AddDate(0, 0, units*7), nil
	case CadenceMonthly:
		return start.AddDate(0, units, 0), nil
	case CadenceHalfYear:
		return start.AddDate(0, units*6, 0), nil
	case CadenceYearly:
		return start.AddDate(units, 0, 0), nil
	}
	return time.Time{}, ErrUnknownCadence
}
