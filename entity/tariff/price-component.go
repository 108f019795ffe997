package tariff

type DimensionType string

const (
	Energy      DimensionType = "ENERGY"
	Flat        DimensionType = "FLAT"
	ParkingTime DimensionType = "PARKING_TIME"
	Time        DimensionType = "TIME"
)

// PriceComponent price is per kWh for ENERGY, per hour for TIME and PARKING_TIME;
// step size is in Wh for ENERGY and in seconds for time dimensions
type PriceComponent struct {
	Type     DimensionType `json:"type" bson:"type" validate:"required,oneof=ENERGY FLAT PARKING_TIME TIME"`
	Price    float64       `json:"price" bson:"price" validate:"gte=0"`
	Vat      *float64      `json:"vat,omitempty" bson:"vat,omitempty" validate:"omitempty,gte=0"`
	StepSize int           `json:"step_size" bson:"step_size" validate:"gte=1"`
}

func (p *PriceComponent) IsEnergy() bool {
	return p.Type == Energy
}
