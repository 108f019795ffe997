package tariff

import "fmt"

type DayOfWeek string

const (
	Monday    DayOfWeek = "MONDAY"
	Tuesday   DayOfWeek = "TUESDAY"
	Wednesday DayOfWeek = "WEDNESDAY"
	Thursday  DayOfWeek = "THURSDAY"
	Friday    DayOfWeek = "FRIDAY"
	Saturday  DayOfWeek = "SATURDAY"
	Sunday    DayOfWeek = "SUNDAY"
)

// Restrictions every populated field narrows the element; durations are in seconds
type Restrictions struct {
	StartTime   string      `json:"start_time,omitempty" bson:"start_time,omitempty" validate:"omitempty,datetime=15:04"`
	EndTime     string      `json:"end_time,omitempty" bson:"end_time,omitempty" validate:"omitempty,datetime=15:04"`
	StartDate   string      `json:"start_date,omitempty" bson:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate     string      `json:"end_date,omitempty" bson:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	MinKwh      *float64    `json:"min_kwh,omitempty" bson:"min_kwh,omitempty" validate:"omitempty,gte=0"`
	MaxKwh      *float64    `json:"max_kwh,omitempty" bson:"max_kwh,omitempty" validate:"omitempty,gte=0"`
	MinCurrent  *float64    `json:"min_current,omitempty" bson:"min_current,omitempty" validate:"omitempty,gte=0"`
	MaxCurrent  *float64    `json:"max_current,omitempty" bson:"max_current,omitempty" validate:"omitempty,gte=0"`
	MinPower    *float64    `json:"min_power,omitempty" bson:"min_power,omitempty" validate:"omitempty,gte=0"`
	MaxPower    *float64    `json:"max_power,omitempty" bson:"max_power,omitempty" validate:"omitempty,gte=0"`
	MinDuration *int        `json:"min_duration,omitempty" bson:"min_duration,omitempty" validate:"omitempty,gte=0"`
	MaxDuration *int        `json:"max_duration,omitempty" bson:"max_duration,omitempty" validate:"omitempty,gte=0"`
	DayOfWeek   []DayOfWeek `json:"day_of_week,omitempty" bson:"day_of_week,omitempty" validate:"omitempty,dive,oneof=MONDAY TUESDAY WEDNESDAY THURSDAY FRIDAY SATURDAY SUNDAY"`
}

func (r *Restrictions) IsEmpty() bool {
	if r == nil {
		return true
	}
	return r.StartTime == "" && r.EndTime == "" && r.StartDate == "" && r.EndDate == "" &&
		r.MinKwh == nil && r.MaxKwh == nil && r.MinCurrent == nil && r.MaxCurrent == nil &&
		r.MinPower == nil && r.MaxPower == nil && r.MinDuration == nil && r.MaxDuration == nil &&
		len(r.DayOfWeek) == 0
}

// CheckBounds verifies min <= max on every axis where both are given
func (r *Restrictions) CheckBounds() error {
	if r == nil {
		return nil
	}
	if err := checkRange("kwh", r.MinKwh, r.MaxKwh); err != nil {
		return err
	}
	if err := checkRange("current", r.MinCurrent, r.MaxCurrent); err != nil {
		return err
	}
	if err := checkRange("power", r.MinPower, r.MaxPower); err != nil {
		return err
	}
	if r.MinDuration != nil && r.MaxDuration != nil && *r.MinDuration > *r.MaxDuration {
		return fmt.Errorf("min_duration %d is greater than max_duration %d", *r.MinDuration, *r.MaxDuration)
	}
	if r.StartDate != "" && r.EndDate != "" && r.StartDate > r.EndDate {
		return fmt.Errorf("start_date %s is after end_date %s", r.StartDate, r.EndDate)
	}
	return nil
}

func checkRange(axis string, min, max *float64) error {
	if min != nil && max != nil && *min > *max {
		return fmt.Errorf("min_%s %v is greater than max_%s %v", axis, *min, axis, *max)
	}
	return nil
}
