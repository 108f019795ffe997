package cdr

import "time"

type DimensionType string

const (
	Energy      DimensionType = "ENERGY"
	Flat        DimensionType = "FLAT"
	MaxCurrent  DimensionType = "MAX_CURRENT"
	MinCurrent  DimensionType = "MIN_CURRENT"
	ParkingTime DimensionType = "PARKING_TIME"
	Time        DimensionType = "TIME"
)

type CdrDimension struct {
	Type   DimensionType `json:"type" bson:"type"`
	Volume float64       `json:"volume" bson:"volume"`
}

type ChargingPeriod struct {
	StartDateTime time.Time       `json:"start_date_time" bson:"start_date_time"`
	Dimensions    []*CdrDimension `json:"dimensions" bson:"dimensions"`
	TariffId      string          `json:"tariff_id,omitempty" bson:"tariff_id,omitempty"`
}

// Volume returns the volume of the given dimension, zero when absent
func (p *ChargingPeriod) Volume(dimension DimensionType) float64 {
	for _, d := range p.Dimensions {
		if d.Type == dimension {
			return d.Volume
		}
	}
	return 0
}
