package internal

import (
	"context"
	"evcdr/entity"
	"evcdr/entity/cdr"
	"evcdr/entity/location"
	"evcdr/entity/tariff"
	"sort"
	"sync"
	"time"
)

const memoryLogLimit = 1000

// MemoryStore keeps everything in process; used by the offline build command and tests
type MemoryStore struct {
	mu        sync.RWMutex
	locations map[string]*location.Location
	tariffs   map[string][]*tariff.Tariff
	sessions  map[string]*entity.ChargingSession
	cdrs      map[string]*cdr.Cdr
	log       []Data
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		locations: make(map[string]*location.Location),
		tariffs:   make(map[string][]*tariff.Tariff),
		sessions:  make(map[string]*entity.ChargingSession),
		cdrs:      make(map[string]*cdr.Cdr),
	}
}

func (s *MemoryStore) WriteLogMessage(data Data) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = append(s.log, data)
	if len(s.log) > memoryLogLimit {
		s.log = s.log[len(s.log)-memoryLogLimit:]
	}
	return nil
}

// ReadLog returns stored messages, newest first
func (s *MemoryStore) ReadLog() (interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	messages := make([]Data, 0, len(s.log))
	for i := len(s.log) - 1; i >= 0; i-- {
		messages = append(messages, s.log[i])
	}
	return messages, nil
}

func (s *MemoryStore) GetLocation(_ context.Context, id string) (*location.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.locations[id], nil
}

func (s *MemoryStore) SaveLocation(_ context.Context, loc *location.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations[loc.Id] = loc
	return nil
}

func (s *MemoryStore) GetTariffIds(_ context.Context, countryCode, partyId, locationId, evseUid, connectorId, _ string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	loc, ok := s.locations[locationId]
	if !ok || loc.CountryCode != countryCode || loc.PartyId != partyId {
		return nil, nil
	}
	return connectorTariffIds(loc, evseUid, connectorId), nil
}

// GetTariff returns the latest version valid at the given time
func (s *MemoryStore) GetTariff(_ context.Context, id string, at time.Time, _ string) (*tariff.Tariff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	versions := s.tariffs[id]
	for i := len(versions) - 1; i >= 0; i-- {
		if versions[i].IsValidAt(at) {
			return versions[i], nil
		}
	}
	return nil, nil
}

// SaveTariff adds a version, replacing one with the same start_date_time
func (s *MemoryStore) SaveTariff(_ context.Context, t *tariff.Tariff) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	versions := s.tariffs[t.Id]
	for i, version := range versions {
		if sameStart(version.StartDateTime, t.StartDateTime) {
			versions[i] = t
			return nil
		}
	}
	versions = append(versions, t)
	sort.SliceStable(versions, func(i, j int) bool {
		return startOf(versions[i]).Before(startOf(versions[j]))
	})
	s.tariffs[t.Id] = versions
	return nil
}

func (s *MemoryStore) GetSession(_ context.Context, id string) (*entity.ChargingSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[id], nil
}

func (s *MemoryStore) SaveSession(_ context.Context, session *entity.ChargingSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Id] = session
	return nil
}

func (s *MemoryStore) GetCdr(_ context.Context, id string) (*cdr.Cdr, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cdrs[id], nil
}

func (s *MemoryStore) SaveCdr(_ context.Context, record *cdr.Cdr) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cdrs[record.Id] = record
	return nil
}

func sameStart(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func startOf(t *tariff.Tariff) time.Time {
	if t.StartDateTime == nil {
		return time.Time{}
	}
	return *t.StartDateTime
}
