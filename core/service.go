package core

import (
	"context"
	"evcdr/entity"
	"evcdr/entity/cdr"
	"evcdr/internal"
	"evcdr/metrics/counters"
	"fmt"
)

type Pusher interface {
	PushCdr(record *cdr.Cdr, done func(err error))
}

// Service builds CDRs for incoming or stored sessions, then stores and pushes them
type Service struct {
	builder  *Builder
	database internal.Database
	pusher   Pusher
	logger   internal.LogHandler
}

func NewService(builder *Builder, database internal.Database) *Service {
	return &Service{
		builder:  builder,
		database: database,
	}
}

func (s *Service) SetPusher(pusher Pusher) {
	s.pusher = pusher
}

func (s *Service) SetLogger(logger internal.LogHandler) {
	s.logger = logger
}

// Process stores the session, builds its CDR and hands the CDR over to storage and push
func (s *Service) Process(ctx context.Context, session *entity.ChargingSession) (*Result, error) {
	if s.database != nil && session != nil && session.Id != "" {
		if err := s.database.SaveSession(ctx, session); err != nil {
			s.warn(fmt.Sprintf("save session %s: %v", session.Id, err))
		}
	}
	return s.build(ctx, session)
}

// ProcessStored rebuilds the CDR of a session already in the database
func (s *Service) ProcessStored(ctx context.Context, sessionId string) (*Result, error) {
	if s.database == nil {
		return nil, &Error{Kind: KindLookup, Field: "session_id", Message: "no session storage", Err: ErrNotFound}
	}
	session, err := s.database.GetSession(ctx, sessionId)
	if err != nil {
		counters.CountBuildError(string(KindLookup))
		return nil, lookupError(fmt.Sprintf("session %s", sessionId), err)
	}
	if session == nil {
		return nil, &Error{Kind: KindLookup, Field: "session_id", Message: fmt.Sprintf("session %s", sessionId), Err: ErrNotFound}
	}
	return s.build(ctx, session)
}

func (s *Service) GetCdr(ctx context.Context, id string) (*cdr.Cdr, error) {
	if s.database == nil {
		return nil, &Error{Kind: KindLookup, Field: "id", Message: "no cdr storage", Err: ErrNotFound}
	}
	record, err := s.database.GetCdr(ctx, id)
	if err != nil {
		return nil, lookupError(fmt.Sprintf("cdr %s", id), err)
	}
	if record == nil {
		return nil, &Error{Kind: KindLookup, Field: "id", Message: fmt.Sprintf("cdr %s", id), Err: ErrNotFound}
	}
	return record, nil
}

func (s *Service) ReadLog() (interface{}, error) {
	if s.database == nil {
		return []interface{}{}, nil
	}
	return s.database.ReadLog()
}

func (s *Service) build(ctx context.Context, session *entity.ChargingSession) (*Result, error) {
	result, err := s.builder.Build(ctx, session)
	if err != nil {
		counters.CountBuildError(string(KindOf(err)))
		return nil, err
	}
	record := result.Cdr
	counters.CountCdr(session.LocationId, record.Currency, record.TotalEnergy, record.TotalCost.ExclVat, len(record.ChargingPeriods), len(result.Warnings))

	if s.database != nil {
		if err = s.database.SaveCdr(ctx, record); err != nil {
			return nil, fmt.Errorf("save cdr %s: %w", record.Id, err)
		}
	}
	if s.pusher != nil {
		s.pusher.PushCdr(record, func(err error) {
			counters.CountPush(err == nil)
		})
	}
	return result, nil
}

func (s *Service) warn(text string) {
	if s.logger != nil {
		s.logger.Warn(text)
	}
}
