package billing

import (
	"evcdr/entity/tariff"
	"math"
)

const (
	whPerKwh       = 1000.0
	secondsPerHour = 3600.0
	// tolerance for float noise when dividing a quantity by its step
	stepEpsilon = 1e-9
)

// Evaluate returns the cost of consuming quantity under the price component;
// quantity is Wh for ENERGY and seconds for TIME and PARKING_TIME, FLAT ignores it
func Evaluate(pc *tariff.PriceComponent, quantity float64) float64 {
	if pc == nil {
		return 0
	}
	switch pc.Type {
	case tariff.Flat:
		return pc.Price
	case tariff.Energy:
		return pc.Price * BillableQuantity(quantity, pc.StepSize) / whPerKwh
	case tariff.Time, tariff.ParkingTime:
		return pc.Price * BillableQuantity(quantity, pc.StepSize) / secondsPerHour
	}
	return 0
}

// BillableQuantity rounds quantity up to the next whole step
func BillableQuantity(quantity float64, stepSize int) float64 {
	if quantity <= 0 {
		return 0
	}
	if stepSize <= 1 {
		return quantity
	}
	step := float64(stepSize)
	return math.Ceil(quantity/step-stepEpsilon) * step
}

// Amount accumulates a cost with its VAT-inclusive counterpart
type Amount struct {
	ExclVat float64
	InclVat float64
	// VatMissing is set once a charged component had no VAT rate
	VatMissing bool
}

func (a *Amount) add(cost float64, vat *float64) {
	a.ExclVat += cost
	if vat == nil {
		if cost > 0 {
			a.VatMissing = true
		}
		return
	}
	a.InclVat += cost * (1 + *vat/100)
}

func (a Amount) Plus(b Amount) Amount {
	return Amount{
		ExclVat:    a.ExclVat + b.ExclVat,
		InclVat:    a.InclVat + b.InclVat,
		VatMissing: a.VatMissing || b.VatMissing,
	}
}

func (a Amount) HasVat() bool {
	return !a.VatMissing
}

type Costs struct {
	Fixed   Amount
	Energy  Amount
	Time    Amount
	Parking Amount
}

func (c *Costs) Total() Amount {
	return c.Fixed.Plus(c.Energy).Plus(c.Time).Plus(c.Parking)
}
