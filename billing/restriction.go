package billing

import (
	"evcdr/entity/tariff"
	"time"
)

const (
	clockLayout   = "15:04"
	dateLayout    = "2006-01-02"
	secondsPerDay = 24 * 60 * 60
)

// MatchContext the measurement a restriction is checked against; Instant is expected
// in the location's time zone
type MatchContext struct {
	Instant       time.Time
	CumulativeKwh float64
	PowerKw       float64
	// CurrentA is nil when the meter does not report current
	CurrentA *float64
	Duration time.Duration
}

var weekdays = map[time.Weekday]tariff.DayOfWeek{
	time.Monday:    tariff.Monday,
	time.Tuesday:   tariff.Tuesday,
	time.Wednesday: tariff.Wednesday,
	time.Thursday:  tariff.Thursday,
	time.Friday:    tariff.Friday,
	time.Saturday:  tariff.Saturday,
	time.Sunday:    tariff.Sunday,
}

// Matches reports whether every populated bound of the restriction holds; numeric and
// date bounds are inclusive-min exclusive-max, a time window with end before start wraps midnight
func Matches(r *tariff.Restrictions, ctx MatchContext) bool {
	if r.IsEmpty() {
		return true
	}
	return matchClock(r.StartTime, r.EndTime, ctx.Instant) &&
		matchDate(r.StartDate, r.EndDate, ctx.Instant) &&
		within(ctx.CumulativeKwh, r.MinKwh, r.MaxKwh) &&
		within(ctx.PowerKw, r.MinPower, r.MaxPower) &&
		matchCurrent(ctx.CurrentA, r.MinCurrent, r.MaxCurrent) &&
		matchDuration(ctx.Duration, r.MinDuration, r.MaxDuration) &&
		matchWeekday(r.DayOfWeek, ctx.Instant)
}

func matchClock(start, end string, at time.Time) bool {
	if start == "" && end == "" {
		return true
	}
	from, to := 0, secondsPerDay
	if start != "" {
		v, ok := parseClock(start)
		if !ok {
			return false
		}
		from = v
	}
	if end != "" {
		v, ok := parseClock(end)
		if !ok {
			return false
		}
		to = v
	}
	now := at.Hour()*3600 + at.Minute()*60 + at.Second()
	if start != "" && end != "" && to <= from {
		return now >= from || now < to
	}
	return now >= from && now < to
}

func parseClock(value string) (int, bool) {
	t, err := time.Parse(clockLayout, value)
	if err != nil {
		return 0, false
	}
	return t.Hour()*3600 + t.Minute()*60, true
}

func matchDate(start, end string, at time.Time) bool {
	day := at.Format(dateLayout)
	if start != "" && day < start {
		return false
	}
	if end != "" && day >= end {
		return false
	}
	return true
}

func within(value float64, min, max *float64) bool {
	if min != nil && value < *min {
		return false
	}
	if max != nil && value >= *max {
		return false
	}
	return true
}

// current bounds are not applied when the meter gave no current
func matchCurrent(current, min, max *float64) bool {
	if current == nil {
		return true
	}
	return within(*current, min, max)
}

func matchDuration(duration time.Duration, min, max *int) bool {
	seconds := duration.Seconds()
	if min != nil && seconds < float64(*min) {
		return false
	}
	if max != nil && seconds >= float64(*max) {
		return false
	}
	return true
}

func matchWeekday(days []tariff.DayOfWeek, at time.Time) bool {
	if len(days) == 0 {
		return true
	}
	today := weekdays[at.Weekday()]
	for _, day := range days {
		if day == today {
			return true
		}
	}
	return false
}
