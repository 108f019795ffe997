package entity

import "time"

type MeteringValueKind string

const (
	MeteringStart        MeteringValueKind = "Start"
	MeteringIntermediate MeteringValueKind = "Intermediate"
	MeteringTariffChange MeteringValueKind = "TariffChange"
	MeteringEnd          MeteringValueKind = "End"
)

// EnergyMeteringValue one register reading of a session; append-only while the session runs
type EnergyMeteringValue struct {
	Timestamp  time.Time         `json:"timestamp" bson:"timestamp" validate:"required"`
	WattHours  float64           `json:"watt_hours" bson:"watt_hours" validate:"gte=0"`
	Kind       MeteringValueKind `json:"kind" bson:"kind" validate:"required,oneof=Start Intermediate TariffChange End"`
	Amperes    *float64          `json:"amperes,omitempty" bson:"amperes,omitempty" validate:"omitempty,gte=0"`
	PlainData  string            `json:"plain_data,omitempty" bson:"plain_data,omitempty"`
	SignedData []byte            `json:"signed_data,omitempty" bson:"signed_data,omitempty"`
}

func NewMeteringValue(timestamp time.Time, wattHours float64, kind MeteringValueKind) EnergyMeteringValue {
	return EnergyMeteringValue{
		Timestamp: timestamp,
		WattHours: wattHours,
		Kind:      kind,
	}
}

func (v *EnergyMeteringValue) IsSigned() bool {
	return len(v.SignedData) > 0
}
