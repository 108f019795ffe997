package server

import (
	"encoding/json"
	"errors"
	"evcdr/core"
	"evcdr/entity"
	"fmt"
	"github.com/julienschmidt/httprouter"
	"net/http"
	"time"
)

// OCPI status codes used in responses
const (
	statusSuccess        = 1000
	statusInvalidParams  = 2001
	statusUnknown        = 2003
	statusServerError    = 3000
	statusUnableToUseApi = 3001
)

type response struct {
	Data          interface{}    `json:"data,omitempty"`
	Warnings      []core.Warning `json:"warnings,omitempty"`
	StatusCode    int            `json:"status_code"`
	StatusMessage string         `json:"status_message,omitempty"`
	Kind          core.Kind      `json:"kind,omitempty"`
	Field         string         `json:"field,omitempty"`
	Timestamp     time.Time      `json:"timestamp"`
}

func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var session entity.ChargingSession
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&session); err != nil {
		s.logger.Warn(fmt.Sprintf("api: error parsing session from %s: %s", r.RemoteAddr, err))
		s.writeJson(w, http.StatusBadRequest, &response{
			StatusCode:    statusInvalidParams,
			StatusMessage: fmt.Sprintf("invalid session: %v", err),
		})
		return
	}
	result, err := s.service.Process(r.Context(), &session)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJson(w, http.StatusOK, &response{Data: result.Cdr, Warnings: result.Warnings, StatusCode: statusSuccess})
}

func (s *Server) handleBuildStored(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	result, err := s.service.ProcessStored(r.Context(), params.ByName("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJson(w, http.StatusOK, &response{Data: result.Cdr, Warnings: result.Warnings, StatusCode: statusSuccess})
}

func (s *Server) handleGetCdr(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	record, err := s.service.GetCdr(r.Context(), params.ByName("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJson(w, http.StatusOK, &response{Data: record, StatusCode: statusSuccess})
}

func (s *Server) handleReadLog(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	messages, err := s.service.ReadLog()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJson(w, http.StatusOK, &response{Data: messages, StatusCode: statusSuccess})
}

// writeError maps build error kinds onto HTTP and OCPI status codes
func (s *Server) writeError(w http.ResponseWriter, err error) {
	res := &response{StatusMessage: err.Error()}
	status := http.StatusInternalServerError
	res.StatusCode = statusServerError

	var buildErr *core.Error
	if errors.As(err, &buildErr) {
		res.Kind = buildErr.Kind
		res.Field = buildErr.Field
		switch buildErr.Kind {
		case core.KindValidation, core.KindConversion, core.KindInsufficientData, core.KindInvalidOrdering:
			status, res.StatusCode = http.StatusBadRequest, statusInvalidParams
		case core.KindNoTariffFound:
			status, res.StatusCode = http.StatusUnprocessableEntity, statusInvalidParams
		case core.KindLookup:
			status, res.StatusCode = http.StatusBadGateway, statusUnableToUseApi
			if errors.Is(err, core.ErrNotFound) {
				status, res.StatusCode = http.StatusNotFound, statusUnknown
			}
		}
	} else {
		s.logger.Error("api", err)
	}
	s.writeJson(w, status, res)
}

func (s *Server) writeJson(w http.ResponseWriter, status int, res *response) {
	res.Timestamp = time.Now().UTC()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(res); err != nil {
		s.logger.Error("api: error encoding response", err)
	}
}
