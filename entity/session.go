package entity

import (
	"evcdr/entity/cdr"
	"time"
)

// AuthIdentity the sources a session can be authorized with; the first populated one,
// in field order, becomes the CDR token uid
type AuthIdentity struct {
	TokenUid        string        `json:"token_uid,omitempty" bson:"token_uid,omitempty"`
	TokenType       cdr.TokenType `json:"token_type,omitempty" bson:"token_type,omitempty"`
	ContractId      string        `json:"contract_id,omitempty" bson:"contract_id,omitempty"`
	RemoteId        string        `json:"remote_id,omitempty" bson:"remote_id,omitempty"`
	PlugAndChargeId string        `json:"plug_and_charge_id,omitempty" bson:"plug_and_charge_id,omitempty"`
	QrCodeId        string        `json:"qr_code_id,omitempty" bson:"qr_code_id,omitempty"`
	PinId           string        `json:"pin_id,omitempty" bson:"pin_id,omitempty"`
	PublicKey       string        `json:"public_key,omitempty" bson:"public_key,omitempty"`
	EmspCountryCode string        `json:"emsp_country_code,omitempty" bson:"emsp_country_code,omitempty"`
	EmspPartyId     string        `json:"emsp_party_id,omitempty" bson:"emsp_party_id,omitempty"`
}

// ChargingSession a closed session as handed over by session tracking
type ChargingSession struct {
	Id                     string                `json:"id" bson:"id" validate:"required,max=36"`
	CdrId                  string                `json:"cdr_id,omitempty" bson:"cdr_id,omitempty" validate:"omitempty,max=39"`
	CountryCode            string                `json:"country_code" bson:"country_code"`
	PartyId                string                `json:"party_id" bson:"party_id"`
	EmspId                 string                `json:"emsp_id,omitempty" bson:"emsp_id,omitempty"`
	Start                  time.Time             `json:"start" bson:"start"`
	End                    *time.Time            `json:"end,omitempty" bson:"end,omitempty"`
	Auth                   AuthIdentity          `json:"auth" bson:"auth"`
	AuthMethod             cdr.AuthMethod        `json:"auth_method" bson:"auth_method"`
	AuthorizationReference string                `json:"authorization_reference,omitempty" bson:"authorization_reference,omitempty"`
	LocationId             string                `json:"location_id" bson:"location_id"`
	ChargingStationId      string                `json:"charging_station_id" bson:"charging_station_id"`
	EvseUid                string                `json:"evse_uid" bson:"evse_uid"`
	ConnectorId            string                `json:"connector_id" bson:"connector_id"`
	MeterId                string                `json:"meter_id,omitempty" bson:"meter_id,omitempty"`
	ConsumedEnergyWh       *float64              `json:"consumed_energy_wh,omitempty" bson:"consumed_energy_wh,omitempty"`
	MeteringValues         []EnergyMeteringValue `json:"metering_values" bson:"metering_values" validate:"dive"`
	SignatureEncoding      string                `json:"signature_encoding,omitempty" bson:"signature_encoding,omitempty"`
	SignaturePublicKey     string                `json:"signature_public_key,omitempty" bson:"signature_public_key,omitempty"`
}

// Duration returns zero while the session has no end time
func (s *ChargingSession) Duration() time.Duration {
	if s.End == nil {
		return 0
	}
	return s.End.Sub(s.Start)
}
