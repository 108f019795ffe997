package location

import (
	"evcdr/entity/common"
	"fmt"
)

// CdrLocation flat location snapshot carried by a CDR
type CdrLocation struct {
	Id                 string              `json:"id" bson:"id"`
	Name               string              `json:"name,omitempty" bson:"name,omitempty"`
	Address            string              `json:"address" bson:"address"`
	City               string              `json:"city" bson:"city"`
	PostalCode         string              `json:"postal_code,omitempty" bson:"postal_code,omitempty"`
	State              string              `json:"state,omitempty" bson:"state,omitempty"`
	Country            string              `json:"country" bson:"country"`
	Coordinates        *common.GeoLocation `json:"coordinates" bson:"coordinates"`
	EvseUid            string              `json:"evse_uid" bson:"evse_uid"`
	EvseId             string              `json:"evse_id" bson:"evse_id"`
	ConnectorId        string              `json:"connector_id" bson:"connector_id"`
	ConnectorStandard  ConnectorType       `json:"connector_standard" bson:"connector_standard"`
	ConnectorFormat    ConnectorFormat     `json:"connector_format" bson:"connector_format"`
	ConnectorPowerType PowerType           `json:"connector_power_type" bson:"connector_power_type"`
}

// CdrLocation converts a filtered location, holding exactly one evse and connector
func (l *Location) CdrLocation() (*CdrLocation, error) {
	if len(l.Evses) != 1 || l.Evses[0] == nil || len(l.Evses[0].Connectors) != 1 || l.Evses[0].Connectors[0] == nil {
		return nil, fmt.Errorf("location %s is not filtered to a single connector", l.Id)
	}
	evse := l.Evses[0]
	connector := evse.Connectors[0]
	coordinates := l.Coordinates
	if evse.Coordinates != nil {
		coordinates = evse.Coordinates
	}
	return &CdrLocation{
		Id:                 l.Id,
		Name:               l.Name,
		Address:            l.Address,
		City:               l.City,
		PostalCode:         l.PostalCode,
		State:              l.State,
		Country:            l.Country,
		Coordinates:        coordinates,
		EvseUid:            evse.Uid,
		EvseId:             evse.EvseId,
		ConnectorId:        connector.Id,
		ConnectorStandard:  connector.Standard,
		ConnectorFormat:    connector.Format,
		ConnectorPowerType: connector.PowerType,
	}, nil
}
