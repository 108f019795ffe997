package location

import (
	"evcdr/entity/common"
	"fmt"
	"time"
)

type Location struct {
	CountryCode string              `json:"country_code" bson:"country_code" validate:"required,len=2"`
	PartyId     string              `json:"party_id" bson:"party_id" validate:"required,max=3"`
	Id          string              `json:"id" bson:"id" validate:"required,max=36"`
	Publish     bool                `json:"publish" bson:"publish"`
	Name        string              `json:"name,omitempty" bson:"name,omitempty" validate:"omitempty,max=255"`
	Address     string              `json:"address" bson:"address" validate:"required,max=45"`
	City        string              `json:"city" bson:"city" validate:"required,max=45"`
	PostalCode  string              `json:"postal_code,omitempty" bson:"postal_code,omitempty" validate:"omitempty,max=10"`
	State       string              `json:"state,omitempty" bson:"state,omitempty" validate:"omitempty,max=20"`
	Country     string              `json:"country" bson:"country" validate:"required,len=3"`
	Coordinates *common.GeoLocation `json:"coordinates" bson:"coordinates" validate:"required"`
	Evses       []*Evse             `json:"evses,omitempty" bson:"evses,omitempty" validate:"omitempty,dive"`
	TimeZone    string              `json:"time_zone" bson:"time_zone" validate:"required,max=255"`
	LastUpdated time.Time           `json:"last_updated" bson:"last_updated"`
}

type Evse struct {
	Uid         string              `json:"uid" bson:"uid" validate:"required,max=36"`
	EvseId      string              `json:"evse_id,omitempty" bson:"evse_id,omitempty" validate:"omitempty,max=48"`
	Status      string              `json:"status" bson:"status"`
	Connectors  []*Connector        `json:"connectors" bson:"connectors" validate:"required,min=1,dive"`
	Coordinates *common.GeoLocation `json:"coordinates,omitempty" bson:"coordinates,omitempty"`
	LastUpdated time.Time           `json:"last_updated" bson:"last_updated"`
}

// Filter returns a copy of the location holding only the given evse with the given connector
func (l *Location) Filter(evseUid, connectorId string) (*Location, error) {
	evse := l.FindEvse(evseUid)
	if evse == nil {
		return nil, fmt.Errorf("evse %s not found in location %s", evseUid, l.Id)
	}
	connector := evse.FindConnector(connectorId)
	if connector == nil {
		return nil, fmt.Errorf("connector %s not found in evse %s", connectorId, evseUid)
	}
	filteredEvse := *evse
	filteredConnector := *connector
	filteredConnector.TariffIds = append([]string(nil), connector.TariffIds...)
	filteredEvse.Connectors = []*Connector{&filteredConnector}

	filtered := *l
	filtered.Evses = []*Evse{&filteredEvse}
	return &filtered, nil
}

func (l *Location) FindEvse(uid string) *Evse {
	for _, evse := range l.Evses {
		if evse != nil && evse.Uid == uid {
			return evse
		}
	}
	return nil
}

func (e *Evse) FindConnector(id string) *Connector {
	for _, connector := range e.Connectors {
		if connector != nil && connector.Id == id {
			return connector
		}
	}
	return nil
}

// TimeLocation resolves the IANA time zone of the location, UTC when not set
func (l *Location) TimeLocation() (*time.Location, error) {
	if l.TimeZone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(l.TimeZone)
	if err != nil {
		return time.UTC, fmt.Errorf("time zone %s: %w", l.TimeZone, err)
	}
	return loc, nil
}
