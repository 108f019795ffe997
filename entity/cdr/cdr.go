package cdr

import (
	"evcdr/entity/location"
	"evcdr/entity/tariff"
	"time"
)

type AuthMethod string

const (
	AuthRequest AuthMethod = "AUTH_REQUEST"
	Command     AuthMethod = "COMMAND"
	Whitelist   AuthMethod = "WHITELIST"
)

type TokenType string

const (
	AdHocUser TokenType = "AD_HOC_USER"
	AppUser   TokenType = "APP_USER"
	Other     TokenType = "OTHER"
	RFID      TokenType = "RFID"
)

type CdrToken struct {
	CountryCode string    `json:"country_code,omitempty" bson:"country_code,omitempty"`
	PartyId     string    `json:"party_id,omitempty" bson:"party_id,omitempty"`
	Uid         string    `json:"uid" bson:"uid"`
	Type        TokenType `json:"type" bson:"type"`
	ContractId  string    `json:"contract_id" bson:"contract_id"`
}

// Price amount in the CDR currency; incl_vat is only present when every charged component carries a VAT rate
type Price struct {
	ExclVat float64  `json:"excl_vat" bson:"excl_vat"`
	InclVat *float64 `json:"incl_vat,omitempty" bson:"incl_vat,omitempty"`
}

// Cdr wire shape of the OCPI 2.2.1 CDR object; volumes are in kWh and hours
type Cdr struct {
	CountryCode            string                `json:"country_code" bson:"country_code"`
	PartyId                string                `json:"party_id" bson:"party_id"`
	Id                     string                `json:"id" bson:"id"`
	StartDateTime          time.Time             `json:"start_date_time" bson:"start_date_time"`
	EndDateTime            time.Time             `json:"end_date_time" bson:"end_date_time"`
	SessionId              string                `json:"session_id,omitempty" bson:"session_id,omitempty"`
	CdrToken               *CdrToken             `json:"cdr_token" bson:"cdr_token"`
	AuthMethod             AuthMethod            `json:"auth_method" bson:"auth_method"`
	AuthorizationReference string                `json:"authorization_reference,omitempty" bson:"authorization_reference,omitempty"`
	CdrLocation            *location.CdrLocation `json:"cdr_location" bson:"cdr_location"`
	MeterId                string                `json:"meter_id,omitempty" bson:"meter_id,omitempty"`
	Currency               string                `json:"currency" bson:"currency"`
	Tariffs                []*tariff.Tariff      `json:"tariffs,omitempty" bson:"tariffs,omitempty"`
	ChargingPeriods        []*ChargingPeriod     `json:"charging_periods" bson:"charging_periods"`
	SignedData             *SignedData           `json:"signed_data,omitempty" bson:"signed_data,omitempty"`
	TotalCost              Price                 `json:"total_cost" bson:"total_cost"`
	TotalFixedCost         *Price                `json:"total_fixed_cost,omitempty" bson:"total_fixed_cost,omitempty"`
	TotalEnergy            float64               `json:"total_energy" bson:"total_energy"`
	TotalEnergyCost        *Price                `json:"total_energy_cost,omitempty" bson:"total_energy_cost,omitempty"`
	TotalTime              float64               `json:"total_time" bson:"total_time"`
	TotalTimeCost          *Price                `json:"total_time_cost,omitempty" bson:"total_time_cost,omitempty"`
	TotalParkingTime       *float64              `json:"total_parking_time,omitempty" bson:"total_parking_time,omitempty"`
	TotalParkingCost       *Price                `json:"total_parking_cost,omitempty" bson:"total_parking_cost,omitempty"`
	Remark                 string                `json:"remark,omitempty" bson:"remark,omitempty"`
	LastUpdated            time.Time             `json:"last_updated" bson:"last_updated"`
}
