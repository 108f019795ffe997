package tariff

import (
	"evcdr/entity/common"
	"fmt"
	"time"
)

type Type string

const (
	AdHocPayment Type = "AD_HOC_PAYMENT"
	ProfileCheap Type = "PROFILE_CHEAP"
	ProfileFast  Type = "PROFILE_FAST"
	ProfileGreen Type = "PROFILE_GREEN"
	Regular      Type = "REGULAR"
)

type Tariff struct {
	CountryCode   string                `json:"country_code" bson:"country_code" validate:"required,len=2"`
	PartyId       string                `json:"party_id" bson:"party_id" validate:"required,max=3"`
	Id            string                `json:"id" bson:"id" validate:"required,max=36"`
	Currency      string                `json:"currency" bson:"currency" validate:"required,len=3"`
	Type          Type                  `json:"type,omitempty" bson:"type,omitempty" validate:"omitempty,oneof=AD_HOC_PAYMENT PROFILE_CHEAP PROFILE_FAST PROFILE_GREEN REGULAR"`
	AltText       []*common.DisplayText `json:"tariff_alt_text,omitempty" bson:"tariff_alt_text,omitempty" validate:"omitempty,dive"`
	AltUrl        string                `json:"tariff_alt_url,omitempty" bson:"tariff_alt_url,omitempty" validate:"omitempty,url"`
	Elements      []*Element            `json:"elements" bson:"elements" validate:"required,min=1,dive"`
	StartDateTime *time.Time            `json:"start_date_time,omitempty" bson:"start_date_time,omitempty"`
	EndDateTime   *time.Time            `json:"end_date_time,omitempty" bson:"end_date_time,omitempty"`
	LastUpdated   time.Time             `json:"last_updated" bson:"last_updated"`
}

type Element struct {
	PriceComponents []*PriceComponent `json:"price_components" bson:"price_components" validate:"required,min=1,dive"`
	Restrictions    *Restrictions     `json:"restrictions,omitempty" bson:"restrictions,omitempty" validate:"omitempty"`
}

// IsValidAt reports whether the tariff validity window [start_date_time, end_date_time) contains t
func (t *Tariff) IsValidAt(at time.Time) bool {
	if t.StartDateTime != nil && at.Before(*t.StartDateTime) {
		return false
	}
	if t.EndDateTime != nil && !at.Before(*t.EndDateTime) {
		return false
	}
	return true
}

// PricePerKwh sums the energy prices of the unrestricted elements
func (t *Tariff) PricePerKwh() float64 {
	var total float64
	for _, element := range t.Elements {
		if element.Restrictions != nil && !element.Restrictions.IsEmpty() {
			continue
		}
		for _, priceComponent := range element.PriceComponents {
			if priceComponent.IsEnergy() {
				total += priceComponent.Price
			}
		}
	}
	return total
}

// Description returns the alternative text in the requested language
func (t *Tariff) Description(language string) string {
	return common.DisplayTextFor(t.AltText, language)
}

// CheckBounds verifies the restriction ranges of every element
func (t *Tariff) CheckBounds() error {
	if t.StartDateTime != nil && t.EndDateTime != nil && !t.StartDateTime.Before(*t.EndDateTime) {
		return fmt.Errorf("tariff %s: start_date_time is not before end_date_time", t.Id)
	}
	for i, element := range t.Elements {
		if element == nil {
			return fmt.Errorf("tariff %s: element %d is empty", t.Id, i)
		}
		if err := element.Restrictions.CheckBounds(); err != nil {
			return fmt.Errorf("tariff %s: element %d: %w", t.Id, i, err)
		}
	}
	return nil
}
