package dentalink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"dental-dashboard/internal/platform/apperr"
)

// API is the upstream surface the proxy needs. *Client implements it.
type API interface {
	Configured() bool
	Patients(ctx context.Context) (PatientList, error)
	Appointments(ctx context.Context, date string) (json.RawMessage, error)
	Treatments(ctx context.Context, patientID string) (json.RawMessage, error)
	FinancialReport(ctx context.Context, startDate, endDate string) (json.RawMessage, error)
}

type Service interface {
	Dispatch(ctx context.Context, req ProxyRequest) (any, error)
}

type service struct {
	api    API
	logger *zap.Logger
}

func NewService(api API, logger *zap.Logger) Service {
	return &service{api: api, logger: logger}
}

// Dispatch runs one proxy action. Parameters are validated before any
// upstream call; getPatients degrades to the mock list instead of failing.
func (s *service) Dispatch(ctx context.Context, req ProxyRequest) (any, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	if !s.api.Configured() {
		return nil, apperr.New(apperr.CodeUnavailable, "Dentalink API token not configured")
	}

	switch req.Action {
	case ActionGetPatients:
		list, err := s.api.Patients(ctx)
		if err != nil {
			s.logger.Warn("dentalink patients unavailable, serving mock patients", zap.Error(err))
			return MockPatients(), nil
		}
		s.logger.Debug("dentalink patients fetched", zap.Int("count", len(list.Patients)))
		return list, nil
	case ActionGetAppointments:
		return s.upstream(s.api.Appointments(ctx, req.Date))
	case ActionGetTreatments:
		return s.upstream(s.api.Treatments(ctx, req.PatientID))
	case ActionGetFinancialData:
		return s.upstream(s.api.FinancialReport(ctx, req.StartDate, req.EndDate))
	default:
		return nil, apperr.WithMetadata(apperr.CodeInvalidField, "Unknown action: "+req.Action,
			map[string]string{"field": "action"})
	}
}

func (s *service) upstream(data json.RawMessage, err error) (any, error) {
	if err == nil {
		return data, nil
	}
	var se *StatusError
	if errors.As(err, &se) {
		return nil, apperr.Wrap(apperr.CodeUnavailable, fmt.Sprintf("Dentalink API error: %d", se.StatusCode), err)
	}
	return nil, apperr.Wrap(apperr.CodeUnavailable, "dentalink request failed", err)
}

func validate(req ProxyRequest) error {
	switch req.Action {
	case "":
		return missing("action")
	case ActionGetTreatments:
		if req.PatientID == "" {
			return missing("patientId")
		}
		return nil
	case ActionGetFinancialData:
		if req.StartDate == "" {
			return missing("startDate")
		}
		if req.EndDate == "" {
			return missing("endDate")
		}
	}
	return nil
}

func missing(field string) error {
	return apperr.WithMetadata(apperr.CodeMissingRequiredField, field+" is required",
		map[string]string{"field": field})
}
