package internal

import (
	"context"
	"evcdr/entity"
	"evcdr/entity/cdr"
	"evcdr/entity/location"
	"evcdr/entity/tariff"
	"time"
)

type Database interface {
	WriteLogMessage(data Data) error
	ReadLog() (interface{}, error)
	GetLocation(ctx context.Context, id string) (*location.Location, error)
	SaveLocation(ctx context.Context, location *location.Location) error
	GetTariffIds(ctx context.Context, countryCode, partyId, locationId, evseUid, connectorId, emspId string) ([]string, error)
	GetTariff(ctx context.Context, id string, at time.Time, emspId string) (*tariff.Tariff, error)
	SaveTariff(ctx context.Context, tariff *tariff.Tariff) error
	GetSession(ctx context.Context, id string) (*entity.ChargingSession, error)
	SaveSession(ctx context.Context, session *entity.ChargingSession) error
	GetCdr(ctx context.Context, id string) (*cdr.Cdr, error)
	SaveCdr(ctx context.Context, record *cdr.Cdr) error
}

type Data interface {
	DataType() string
}
