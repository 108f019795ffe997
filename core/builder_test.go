package core_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"evcdr/core"
	"evcdr/entity"
	"evcdr/entity/cdr"
	"evcdr/entity/common"
	"evcdr/entity/location"
	"evcdr/entity/tariff"
	"evcdr/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	t0      = time.Date(2024, 3, 6, 10, 0, 0, 0, time.UTC)
	builtAt = time.Date(2024, 3, 6, 11, 0, 0, 0, time.UTC)
)

func fixedClock() time.Time {
	return builtAt
}

func testLocation() *location.Location {
	return &location.Location{
		CountryCode: "DE",
		PartyId:     "ABC",
		Id:          "LOC1",
		Name:        "Depot",
		Address:     "Hauptstrasse 1",
		City:        "Berlin",
		Country:     "DEU",
		Coordinates: &common.GeoLocation{Latitude: "52.520008", Longitude: "13.404954"},
		TimeZone:    "Europe/Berlin",
		Evses: []*location.Evse{
			{
				Uid:    "EVSE1",
				EvseId: "DE*ABC*E1",
				Connectors: []*location.Connector{
					{Id: "1", Standard: location.Iec62196T2, Format: location.FormatSocket, PowerType: location.AC3Phase, TariffIds: []string{"T1"}},
					{Id: "2", Standard: location.Iec62196T2Combo, Format: location.FormatCable, PowerType: location.DC},
				},
			},
			{
				Uid:    "EVSE2",
				EvseId: "DE*ABC*E2",
				Connectors: []*location.Connector{
					{Id: "1", Standard: location.Iec62196T2, Format: location.FormatSocket, PowerType: location.AC3Phase, TariffIds: []string{"BROKEN", "T1"}},
				},
			},
		},
	}
}

func energyTariff(id string, price float64) *tariff.Tariff {
	return &tariff.Tariff{
		CountryCode: "DE",
		PartyId:     "ABC",
		Id:          id,
		Currency:    "EUR",
		Elements: []*tariff.Element{
			{PriceComponents: []*tariff.PriceComponent{{Type: tariff.Energy, Price: price, StepSize: 1}}},
		},
	}
}

func newStore(t *testing.T) *internal.MemoryStore {
	ctx := context.Background()
	store := internal.NewMemoryStore()
	require.NoError(t, store.SaveLocation(ctx, testLocation()))
	require.NoError(t, store.SaveTariff(ctx, energyTariff("T1", 0.25)))
	broken := energyTariff("BROKEN", 0.10)
	broken.Elements[0].PriceComponents[0].StepSize = 0
	require.NoError(t, store.SaveTariff(ctx, broken))
	return store
}

func newSession() *entity.ChargingSession {
	end := t0.Add(30 * time.Minute)
	energy := 5000.0
	return &entity.ChargingSession{
		Id:                "S1",
		CountryCode:       "DE",
		PartyId:           "ABC",
		Start:             t0,
		End:               &end,
		Auth:              entity.AuthIdentity{TokenUid: "RFID0001"},
		AuthMethod:        cdr.Whitelist,
		LocationId:        "LOC1",
		ChargingStationId: "CS1",
		EvseUid:           "EVSE1",
		ConnectorId:       "1",
		ConsumedEnergyWh:  &energy,
		MeteringValues: []entity.EnergyMeteringValue{
			entity.NewMeteringValue(t0, 0, entity.MeteringStart),
			entity.NewMeteringValue(end, 5000, entity.MeteringEnd),
		},
	}
}

func newBuilder(t *testing.T, opts ...core.Option) *core.Builder {
	store := newStore(t)
	return core.NewBuilder(store, store, append([]core.Option{core.WithClock(fixedClock)}, opts...)...)
}

func TestBuildEndToEnd(t *testing.T) {
	result, err := newBuilder(t).Build(context.Background(), newSession())
	require.NoError(t, err)
	record := result.Cdr

	assert.Equal(t, "DE", record.CountryCode)
	assert.Equal(t, "ABC", record.PartyId)
	assert.Len(t, record.Id, 36)
	assert.Equal(t, "S1", record.SessionId)
	assert.Equal(t, t0, record.StartDateTime)
	assert.Equal(t, t0.Add(30*time.Minute), record.EndDateTime)
	assert.Equal(t, "EUR", record.Currency)
	assert.Equal(t, builtAt, record.LastUpdated)

	require.Len(t, record.ChargingPeriods, 1)
	assert.Equal(t, t0, record.ChargingPeriods[0].StartDateTime)
	assert.Equal(t, "T1", record.ChargingPeriods[0].TariffId)
	assert.InDelta(t, 5.0, record.ChargingPeriods[0].Volume(cdr.Energy), 1e-9)

	assert.InDelta(t, 5.0, record.TotalEnergy, 1e-9)
	assert.InDelta(t, 0.5, record.TotalTime, 1e-9)
	assert.Equal(t, 1.25, record.TotalCost.ExclVat)
	assert.Nil(t, record.TotalCost.InclVat)
	require.NotNil(t, record.TotalEnergyCost)
	assert.Equal(t, 1.25, record.TotalEnergyCost.ExclVat)
	assert.Nil(t, record.TotalFixedCost)
	assert.Nil(t, record.TotalParkingTime)

	require.NotNil(t, record.CdrToken)
	assert.Equal(t, "RFID0001", record.CdrToken.Uid)
	assert.Equal(t, cdr.RFID, record.CdrToken.Type)
	assert.Equal(t, cdr.Whitelist, record.AuthMethod)

	require.NotNil(t, record.CdrLocation)
	assert.Equal(t, "LOC1", record.CdrLocation.Id)
	assert.Equal(t, "EVSE1", record.CdrLocation.EvseUid)
	assert.Equal(t, "DE*ABC*E1", record.CdrLocation.EvseId)
	assert.Equal(t, "1", record.CdrLocation.ConnectorId)
	assert.Equal(t, location.Iec62196T2, record.CdrLocation.ConnectorStandard)

	require.Len(t, record.Tariffs, 1)
	assert.Nil(t, record.SignedData)
	assert.Empty(t, result.Warnings)
}

func TestBuildIsIdempotent(t *testing.T) {
	builder := newBuilder(t)
	first, err := builder.Build(context.Background(), newSession())
	require.NoError(t, err)
	second, err := builder.Build(context.Background(), newSession())
	require.NoError(t, err)

	assert.Equal(t, first.Cdr, second.Cdr)
	assert.Equal(t, first.Warnings, second.Warnings)
}

func TestBuildKeepsCallerCdrId(t *testing.T) {
	session := newSession()
	session.CdrId = "CDR-0001"
	result, err := newBuilder(t).Build(context.Background(), session)
	require.NoError(t, err)
	assert.Equal(t, "CDR-0001", result.Cdr.Id)
}

func TestBuildInsufficientData(t *testing.T) {
	session := newSession()
	session.MeteringValues = session.MeteringValues[:1]

	result, err := newBuilder(t).Build(context.Background(), session)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, core.ErrInsufficientData)
	assert.Equal(t, core.KindInsufficientData, core.KindOf(err))
}

func TestBuildInvalidOrdering(t *testing.T) {
	session := newSession()
	session.MeteringValues = []entity.EnergyMeteringValue{
		entity.NewMeteringValue(t0, 0, entity.MeteringStart),
		entity.NewMeteringValue(t0.Add(20*time.Minute), 3000, entity.MeteringIntermediate),
		entity.NewMeteringValue(t0.Add(10*time.Minute), 5000, entity.MeteringEnd),
	}
	_, err := newBuilder(t).Build(context.Background(), session)
	assert.ErrorIs(t, err, core.ErrInvalidOrdering)
}

func TestBuildValidationOrder(t *testing.T) {
	tests := []struct {
		name   string
		modify func(s *entity.ChargingSession)
		field  string
	}{
		{
			name: "operator before everything",
			modify: func(s *entity.ChargingSession) {
				s.CountryCode = ""
				s.End = nil
				s.ConnectorId = ""
			},
			field: "country_code",
		},
		{
			name: "end time before auth",
			modify: func(s *entity.ChargingSession) {
				s.End = nil
				s.Auth = entity.AuthIdentity{}
			},
			field: "end_date_time",
		},
		{
			name: "duration",
			modify: func(s *entity.ChargingSession) {
				end := s.Start
				s.End = &end
			},
			field: "duration",
		},
		{
			name: "auth identity before auth method",
			modify: func(s *entity.ChargingSession) {
				s.Auth = entity.AuthIdentity{}
				s.AuthMethod = ""
			},
			field: "cdr_token",
		},
		{
			name: "auth method before connector",
			modify: func(s *entity.ChargingSession) {
				s.AuthMethod = ""
				s.ConnectorId = ""
			},
			field: "auth_method",
		},
		{
			name: "connector before evse",
			modify: func(s *entity.ChargingSession) {
				s.ConnectorId = ""
				s.EvseUid = ""
			},
			field: "connector_id",
		},
		{
			name: "evse before charging station",
			modify: func(s *entity.ChargingSession) {
				s.EvseUid = ""
				s.ChargingStationId = ""
			},
			field: "evse_uid",
		},
		{
			name: "charging station before pool",
			modify: func(s *entity.ChargingSession) {
				s.ChargingStationId = ""
				s.LocationId = ""
			},
			field: "charging_station_id",
		},
		{
			name: "pool before consumed energy",
			modify: func(s *entity.ChargingSession) {
				s.LocationId = ""
				s.ConsumedEnergyWh = nil
			},
			field: "location_id",
		},
		{
			name: "consumed energy before metering values",
			modify: func(s *entity.ChargingSession) {
				s.ConsumedEnergyWh = nil
				s.MeteringValues = nil
			},
			field: "consumed_energy",
		},
		{
			name: "negative metering value",
			modify: func(s *entity.ChargingSession) {
				s.MeteringValues[1].WattHours = -1
			},
			field: "metering_values",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := newSession()
			tt.modify(session)
			result, err := newBuilder(t).Build(context.Background(), session)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, core.ErrValidation)

			var buildErr *core.Error
			require.True(t, errors.As(err, &buildErr))
			assert.Equal(t, tt.field, buildErr.Field)
		})
	}
}

func TestBuildNoTariffFound(t *testing.T) {
	session := newSession()
	session.ConnectorId = "2"
	_, err := newBuilder(t).Build(context.Background(), session)
	assert.ErrorIs(t, err, core.ErrNoTariffFound)
}

func TestBuildDropsInvalidTariff(t *testing.T) {
	session := newSession()
	session.EvseUid = "EVSE2"
	result, err := newBuilder(t).Build(context.Background(), session)
	require.NoError(t, err)

	require.Len(t, result.Cdr.Tariffs, 1)
	assert.Equal(t, "T1", result.Cdr.Tariffs[0].Id)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "tariffs", result.Warnings[0].Field)
	assert.Contains(t, result.Warnings[0].Message, "BROKEN")
}

func TestBuildOnlyInvalidTariffs(t *testing.T) {
	store := newStore(t)
	loc := testLocation()
	loc.Evses[1].Connectors[0].TariffIds = []string{"BROKEN"}
	require.NoError(t, store.SaveLocation(context.Background(), loc))

	session := newSession()
	session.EvseUid = "EVSE2"
	_, err := core.NewBuilder(store, store).Build(context.Background(), session)
	assert.ErrorIs(t, err, core.ErrNoTariffFound)
}

func TestBuildUnknownLocation(t *testing.T) {
	session := newSession()
	session.LocationId = "LOC9"
	_, err := newBuilder(t).Build(context.Background(), session)
	assert.ErrorIs(t, err, core.ErrLookup)
}

func TestBuildUnknownEvse(t *testing.T) {
	session := newSession()
	session.EvseUid = "EVSE9"
	_, err := newBuilder(t).Build(context.Background(), session)
	assert.ErrorIs(t, err, core.ErrValidation)
}

type failingCatalog struct {
	calls int
}

func (f *failingCatalog) GetTariffIds(_ context.Context, _, _, _, _, _, _ string) ([]string, error) {
	return []string{"T1", "T1"}, nil
}

func (f *failingCatalog) GetTariff(_ context.Context, _ string, _ time.Time, _ string) (*tariff.Tariff, error) {
	f.calls++
	return nil, errors.New("catalog unavailable")
}

func TestBuildLookupFailure(t *testing.T) {
	catalog := &failingCatalog{}
	_, err := core.NewBuilder(catalog, newStore(t)).Build(context.Background(), newSession())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrLookup)
	assert.Contains(t, err.Error(), "catalog unavailable")
	assert.Equal(t, 1, catalog.calls)
}

type countingCatalog struct {
	*internal.MemoryStore
	calls map[string]int
}

func (c *countingCatalog) GetTariffIds(_ context.Context, _, _, _, _, _, _ string) ([]string, error) {
	return []string{"T1", "T1", "T1"}, nil
}

func (c *countingCatalog) GetTariff(ctx context.Context, id string, at time.Time, emspId string) (*tariff.Tariff, error) {
	c.calls[id]++
	return c.MemoryStore.GetTariff(ctx, id, at, emspId)
}

func TestBuildFetchesEachTariffOnce(t *testing.T) {
	catalog := &countingCatalog{MemoryStore: newStore(t), calls: make(map[string]int)}
	result, err := core.NewBuilder(catalog, catalog).Build(context.Background(), newSession())
	require.NoError(t, err)
	assert.Equal(t, 1, catalog.calls["T1"])
	assert.Len(t, result.Cdr.Tariffs, 1)
}

func TestBuildUsesTariffAtSessionStart(t *testing.T) {
	store := newStore(t)
	change := t0.Add(10 * time.Minute)
	newer := energyTariff("T1", 0.50)
	newer.StartDateTime = &change
	require.NoError(t, store.SaveTariff(context.Background(), newer))

	result, err := core.NewBuilder(store, store).Build(context.Background(), newSession())
	require.NoError(t, err)
	assert.Equal(t, 1.25, result.Cdr.TotalCost.ExclVat)
}

func TestBuildKeepsSessionStartTariffAcrossVersionChange(t *testing.T) {
	store := newStore(t)
	change := t0.Add(10 * time.Minute)
	current := energyTariff("T1", 0.25)
	current.EndDateTime = &change
	next := energyTariff("T1", 0.50)
	next.StartDateTime = &change
	require.NoError(t, store.SaveTariff(context.Background(), current))
	require.NoError(t, store.SaveTariff(context.Background(), next))

	result, err := core.NewBuilder(store, store).Build(context.Background(), newSession())
	require.NoError(t, err)

	require.Len(t, result.Cdr.ChargingPeriods, 1)
	assert.Equal(t, "T1", result.Cdr.ChargingPeriods[0].TariffId)
	assert.Equal(t, 5.0, result.Cdr.TotalEnergy)
	assert.Equal(t, 1.25, result.Cdr.TotalCost.ExclVat)
	assert.Empty(t, result.Warnings)
}

func TestBuildCountsEnergyOfEqualTimestamps(t *testing.T) {
	session := newSession()
	session.MeteringValues = []entity.EnergyMeteringValue{
		entity.NewMeteringValue(t0, 0, entity.MeteringStart),
		entity.NewMeteringValue(t0.Add(10*time.Minute), 1000, entity.MeteringIntermediate),
		entity.NewMeteringValue(t0.Add(10*time.Minute), 2000, entity.MeteringIntermediate),
		entity.NewMeteringValue(t0.Add(30*time.Minute), 5000, entity.MeteringEnd),
	}
	result, err := newBuilder(t).Build(context.Background(), session)
	require.NoError(t, err)

	assert.Equal(t, 5.0, result.Cdr.TotalEnergy)
	assert.Equal(t, 1.25, result.Cdr.TotalCost.ExclVat)
	assert.Empty(t, result.Warnings)
}

func TestBuildPostProcessor(t *testing.T) {
	builder := newBuilder(t, core.WithPostProcessor(func(session *entity.ChargingSession, record *cdr.Cdr) (*cdr.Cdr, error) {
		record.Remark = "station " + session.ChargingStationId
		return record, nil
	}))
	result, err := builder.Build(context.Background(), newSession())
	require.NoError(t, err)
	assert.Equal(t, "station CS1", result.Cdr.Remark)

	failing := newBuilder(t, core.WithPostProcessor(func(_ *entity.ChargingSession, _ *cdr.Cdr) (*cdr.Cdr, error) {
		return nil, errors.New("rejected")
	}))
	_, err = failing.Build(context.Background(), newSession())
	assert.ErrorIs(t, err, core.ErrConversion)
}

func TestBuildSignedData(t *testing.T) {
	session := newSession()
	session.SignaturePublicKey = "PUBKEY"
	session.MeteringValues = []entity.EnergyMeteringValue{
		{Timestamp: t0, WattHours: 0, Kind: entity.MeteringStart, PlainData: "start", SignedData: []byte{1, 2}},
		{Timestamp: t0.Add(10 * time.Minute), WattHours: 2000, Kind: entity.MeteringTariffChange, PlainData: "change", SignedData: []byte{3}},
		{Timestamp: t0.Add(20 * time.Minute), WattHours: 3000, Kind: entity.MeteringIntermediate},
		{Timestamp: t0.Add(30 * time.Minute), WattHours: 5000, Kind: entity.MeteringEnd, PlainData: "end", SignedData: []byte{4}},
	}
	result, err := newBuilder(t, core.WithSignedDataEncoding("EDL40")).Build(context.Background(), session)
	require.NoError(t, err)

	signed := result.Cdr.SignedData
	require.NotNil(t, signed)
	assert.Equal(t, "EDL40", signed.EncodingMethod)
	assert.Equal(t, "PUBKEY", signed.PublicKey)
	require.Len(t, signed.SignedValues, 3)
	assert.Equal(t, cdr.NatureStart, signed.SignedValues[0].Nature)
	assert.Equal(t, "AQI=", signed.SignedValues[0].SignedData)
	assert.Equal(t, cdr.NatureIntermediate, signed.SignedValues[1].Nature)
	assert.Equal(t, cdr.NatureEnd, signed.SignedValues[2].Nature)
	assert.Len(t, result.Cdr.ChargingPeriods, 2)
}

func TestBuildWarnsOnEnergyMismatch(t *testing.T) {
	session := newSession()
	declared := 4000.0
	session.ConsumedEnergyWh = &declared
	result, err := newBuilder(t).Build(context.Background(), session)
	require.NoError(t, err)

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "consumed_energy", result.Warnings[0].Field)
	assert.InDelta(t, 5.0, result.Cdr.TotalEnergy, 1e-9)
}

func TestBuildWithVat(t *testing.T) {
	store := newStore(t)
	vat := 19.0
	taxed := energyTariff("T1", 0.25)
	taxed.Elements[0].PriceComponents[0].Vat = &vat
	require.NoError(t, store.SaveTariff(context.Background(), taxed))

	result, err := core.NewBuilder(store, store).Build(context.Background(), newSession())
	require.NoError(t, err)
	require.NotNil(t, result.Cdr.TotalCost.InclVat)
	assert.Equal(t, 1.4875, *result.Cdr.TotalCost.InclVat)
}

func TestBuildParkingTotals(t *testing.T) {
	store := newStore(t)
	parking := energyTariff("T1", 0.25)
	parking.Elements[0].PriceComponents = append(parking.Elements[0].PriceComponents,
		&tariff.PriceComponent{Type: tariff.ParkingTime, Price: 2.00, StepSize: 60},
		&tariff.PriceComponent{Type: tariff.Flat, Price: 1.00, StepSize: 1},
	)
	require.NoError(t, store.SaveTariff(context.Background(), parking))

	session := newSession()
	end := t0.Add(time.Hour)
	session.End = &end
	result, err := core.NewBuilder(store, store).Build(context.Background(), session)
	require.NoError(t, err)
	record := result.Cdr

	require.NotNil(t, record.TotalParkingTime)
	assert.InDelta(t, 0.5, *record.TotalParkingTime, 1e-9)
	assert.InDelta(t, 1.0, record.TotalTime, 1e-9)
	require.NotNil(t, record.TotalParkingCost)
	assert.Equal(t, 1.0, record.TotalParkingCost.ExclVat)
	require.NotNil(t, record.TotalFixedCost)
	assert.Equal(t, 1.0, record.TotalFixedCost.ExclVat)
	assert.Equal(t, 3.25, record.TotalCost.ExclVat)
}
