package core

import (
	"context"
	"errors"
	"evcdr/billing"
	"evcdr/entity"
	"evcdr/entity/cdr"
	"evcdr/entity/location"
	"evcdr/entity/tariff"
	"evcdr/internal"
	"evcdr/utility"
	"fmt"
	"math"
	"time"
)

const (
	moneyPlaces = 4
	// declared and metered energy may differ by this much before a warning
	energyToleranceWh = 1.0
	defaultEncoding   = "OCMF"
)

type Result struct {
	Cdr      *cdr.Cdr
	Warnings Warnings
}

// Builder converts closed charging sessions into CDRs; safe for concurrent use
// as long as the injected lookups are
type Builder struct {
	tariffs       TariffCatalog
	locations     LocationRepository
	clock         func() time.Time
	postProcessor PostProcessor
	encoding      string
	logger        internal.LogHandler
}

func NewBuilder(tariffs TariffCatalog, locations LocationRepository, opts ...Option) *Builder {
	b := &Builder{
		tariffs:   tariffs,
		locations: locations,
		clock:     time.Now,
		encoding:  defaultEncoding,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build validates the session, prices it with the tariffs effective at session start
// and assembles the CDR; any error means no CDR
func (b *Builder) Build(ctx context.Context, session *entity.ChargingSession) (*Result, error) {
	if session == nil {
		return nil, validationError("session", "is empty")
	}
	token, err := validateSession(session)
	if err != nil {
		b.logError(session, err)
		return nil, err
	}
	var warnings Warnings

	loc, cdrLocation, err := b.resolveLocation(ctx, session)
	if err != nil {
		b.logError(session, err)
		return nil, err
	}
	timeLocation, err := loc.TimeLocation()
	if err != nil {
		warnings.Add("time_zone", "%v, restrictions are evaluated in UTC", err)
	}

	tariffs, err := b.resolveTariffs(ctx, session, &warnings)
	if err != nil {
		b.logError(session, err)
		return nil, err
	}

	split, err := billing.NewSplitter(timeLocation).Split(session.MeteringValues, tariffs, session.Start, *session.End)
	if err != nil {
		err = splitError(err)
		b.logError(session, err)
		return nil, err
	}
	for _, warning := range split.Warnings {
		warnings.Add("charging_periods", "%s", warning)
	}
	if declared := *session.ConsumedEnergyWh; math.Abs(declared-split.TotalEnergyWh) > energyToleranceWh {
		warnings.Add("consumed_energy", "declared %.3f Wh, metering values sum to %.3f Wh", declared, split.TotalEnergyWh)
	}

	record := &cdr.Cdr{
		CountryCode:            session.CountryCode,
		PartyId:                session.PartyId,
		Id:                     cdrId(session),
		StartDateTime:          session.Start,
		EndDateTime:            *session.End,
		SessionId:              session.Id,
		CdrToken:               token,
		AuthMethod:             session.AuthMethod,
		AuthorizationReference: session.AuthorizationReference,
		CdrLocation:            cdrLocation,
		MeterId:                session.MeterId,
		Currency:               tariffs[0].Currency,
		Tariffs:                tariffs,
		ChargingPeriods:        split.Periods,
		SignedData:             signedData(session, b.encoding, &warnings),
		TotalEnergy:            split.TotalEnergyWh / 1000,
		TotalTime:              split.End.Sub(split.Start).Hours(),
		LastUpdated:            b.clock().UTC(),
	}
	applyCosts(record, split)

	if b.postProcessor != nil {
		processed, err := b.postProcessor(session, record)
		if err != nil {
			err = &Error{Kind: KindConversion, Field: "cdr", Message: "post processing failed", Err: err}
			b.logError(session, err)
			return nil, err
		}
		if processed != nil {
			record = processed
		}
	}

	if b.logger != nil {
		b.logger.FeatureEvent("cdr", session.Id, fmt.Sprintf("built %s: %.3f kWh, %d periods, %s, %d warnings",
			record.Id, record.TotalEnergy, len(record.ChargingPeriods), utility.FormatPrice(record.TotalCost.ExclVat, record.Currency), len(warnings)))
		for _, warning := range warnings {
			b.logger.Warn(fmt.Sprintf("session %s: %s", session.Id, warning))
		}
	}
	return &Result{Cdr: record, Warnings: warnings}, nil
}

// validateSession checks the required fields in a fixed order and stops at the first missing one
func validateSession(session *entity.ChargingSession) (*cdr.CdrToken, error) {
	if session.CountryCode == "" {
		return nil, validationError("country_code", "operator country code is missing")
	}
	if session.PartyId == "" {
		return nil, validationError("party_id", "operator party id is missing")
	}
	if session.End == nil {
		return nil, validationError("end_date_time", "session has not ended")
	}
	if !session.End.After(session.Start) {
		return nil, validationError("duration", fmt.Sprintf("session ends at %s, not after its start at %s",
			session.End.Format(time.RFC3339), session.Start.Format(time.RFC3339)))
	}
	token := deriveToken(session)
	if token == nil {
		return nil, validationError("cdr_token", "no authorization identity")
	}
	switch session.AuthMethod {
	case cdr.AuthRequest, cdr.Command, cdr.Whitelist:
	case "":
		return nil, validationError("auth_method", "authentication method is missing")
	default:
		return nil, validationError("auth_method", fmt.Sprintf("unknown authentication method %q", session.AuthMethod))
	}
	if session.ConnectorId == "" {
		return nil, validationError("connector_id", "connector is missing")
	}
	if session.EvseUid == "" {
		return nil, validationError("evse_uid", "evse is missing")
	}
	if session.ChargingStationId == "" {
		return nil, validationError("charging_station_id", "charging station is missing")
	}
	if session.LocationId == "" {
		return nil, validationError("location_id", "charging pool is missing")
	}
	if session.ConsumedEnergyWh == nil {
		return nil, validationError("consumed_energy", "consumed energy is missing")
	}
	if *session.ConsumedEnergyWh < 0 {
		return nil, validationError("consumed_energy", fmt.Sprintf("negative consumed energy %.3f Wh", *session.ConsumedEnergyWh))
	}
	if len(session.MeteringValues) < 2 {
		return nil, &Error{
			Kind:    KindInsufficientData,
			Field:   "metering_values",
			Message: fmt.Sprintf("%d metering values, at least 2 required", len(session.MeteringValues)),
			Err:     billing.ErrInsufficientData,
		}
	}
	for i, value := range session.MeteringValues {
		if value.WattHours < 0 {
			return nil, validationError("metering_values", fmt.Sprintf("value %d has negative energy %.3f Wh", i, value.WattHours))
		}
	}
	if err := utility.Validate(session); err != nil {
		return nil, &Error{Kind: KindValidation, Field: "session", Err: err}
	}
	return token, nil
}

// resolveLocation narrows the location to the evse and connector in use
func (b *Builder) resolveLocation(ctx context.Context, session *entity.ChargingSession) (*location.Location, *location.CdrLocation, error) {
	loc, err := b.locations.GetLocation(ctx, session.LocationId)
	if err != nil {
		return nil, nil, lookupError(fmt.Sprintf("location %s", session.LocationId), err)
	}
	if loc == nil {
		return nil, nil, &Error{Kind: KindLookup, Field: "location_id", Message: fmt.Sprintf("location %s not found", session.LocationId)}
	}
	filtered, err := loc.Filter(session.EvseUid, session.ConnectorId)
	if err != nil {
		return nil, nil, &Error{Kind: KindValidation, Field: "evse_uid", Err: err}
	}
	cdrLocation, err := filtered.CdrLocation()
	if err != nil {
		return nil, nil, &Error{Kind: KindConversion, Field: "cdr_location", Err: err}
	}
	return filtered, cdrLocation, nil
}

// resolveTariffs fetches every tariff once, as of session start; tariffs failing
// validation are dropped with a warning
func (b *Builder) resolveTariffs(ctx context.Context, session *entity.ChargingSession, warnings *Warnings) ([]*tariff.Tariff, error) {
	ids, err := b.tariffs.GetTariffIds(ctx, session.CountryCode, session.PartyId, session.LocationId, session.EvseUid, session.ConnectorId, session.EmspId)
	if err != nil {
		return nil, lookupError("tariff ids", err)
	}
	ids = utility.Unique(ids)
	if len(ids) == 0 {
		return nil, &Error{Kind: KindNoTariffFound, Field: "tariffs", Message: fmt.Sprintf("no tariff for connector %s/%s/%s", session.LocationId, session.EvseUid, session.ConnectorId)}
	}

	cache := make(map[string]*tariff.Tariff, len(ids))
	tariffs := make([]*tariff.Tariff, 0, len(ids))
	for _, id := range ids {
		t, ok := cache[id]
		if !ok {
			t, err = b.tariffs.GetTariff(ctx, id, session.Start, session.EmspId)
			if err != nil {
				return nil, lookupError(fmt.Sprintf("tariff %s", id), err)
			}
			cache[id] = t
		}
		if t == nil {
			warnings.Add("tariffs", "tariff %s is not effective at %s", id, session.Start.Format(time.RFC3339))
			continue
		}
		if err = checkTariff(t); err != nil {
			warnings.Add("tariffs", "%s: tariff %s dropped: %v", KindConversion, id, err)
			continue
		}
		if len(tariffs) > 0 && t.Currency != tariffs[0].Currency {
			warnings.Add("tariffs", "tariff %s dropped: currency %s differs from %s", id, t.Currency, tariffs[0].Currency)
			continue
		}
		tariffs = append(tariffs, t)
	}
	if len(tariffs) == 0 {
		return nil, &Error{Kind: KindNoTariffFound, Field: "tariffs", Message: fmt.Sprintf("none of %d tariffs is usable", len(ids))}
	}
	return tariffs, nil
}

func checkTariff(t *tariff.Tariff) error {
	if err := utility.Validate(t); err != nil {
		return err
	}
	return t.CheckBounds()
}

func splitError(err error) error {
	switch {
	case errors.Is(err, billing.ErrInsufficientData):
		return &Error{Kind: KindInsufficientData, Field: "metering_values", Err: err}
	case errors.Is(err, billing.ErrInvalidOrdering):
		return &Error{Kind: KindInvalidOrdering, Field: "metering_values", Err: err}
	}
	return &Error{Kind: KindConversion, Field: "charging_periods", Err: err}
}

// cdrId keeps the caller's id, otherwise derives a stable one so rebuilding yields the same CDR
func cdrId(session *entity.ChargingSession) string {
	if session.CdrId != "" {
		return session.CdrId
	}
	return utility.NameUUID(session.CountryCode, session.PartyId, session.Id)
}

func applyCosts(record *cdr.Cdr, split *billing.Split) {
	record.TotalCost = price(split.Costs.Total())
	record.TotalFixedCost = optionalPrice(split.Costs.Fixed)
	record.TotalEnergyCost = optionalPrice(split.Costs.Energy)
	record.TotalTimeCost = optionalPrice(split.Costs.Time)
	record.TotalParkingCost = optionalPrice(split.Costs.Parking)
	if split.ParkingSeconds > 0 {
		parking := split.ParkingSeconds / 3600
		record.TotalParkingTime = &parking
	}
}

func price(amount billing.Amount) cdr.Price {
	p := cdr.Price{ExclVat: utility.Round(amount.ExclVat, moneyPlaces)}
	if amount.HasVat() {
		inclVat := utility.Round(amount.InclVat, moneyPlaces)
		p.InclVat = &inclVat
	}
	return p
}

func optionalPrice(amount billing.Amount) *cdr.Price {
	if amount.ExclVat == 0 {
		return nil
	}
	p := price(amount)
	return &p
}

func (b *Builder) logError(session *entity.ChargingSession, err error) {
	if b.logger != nil {
		b.logger.Error(fmt.Sprintf("build cdr for session %s", session.Id), err)
	}
}
