package core

import (
	"context"
	"evcdr/entity/location"
	"evcdr/entity/tariff"
	"time"
)

// TariffCatalog returns tariff ids in priority order; GetTariff returns nil
// when no version of the tariff is effective at the given time
type TariffCatalog interface {
	GetTariffIds(ctx context.Context, countryCode, partyId, locationId, evseUid, connectorId, emspId string) ([]string, error)
	GetTariff(ctx context.Context, id string, at time.Time, emspId string) (*tariff.Tariff, error)
}

// LocationRepository returns nil when the location is unknown
type LocationRepository interface {
	GetLocation(ctx context.Context, id string) (*location.Location, error)
}
