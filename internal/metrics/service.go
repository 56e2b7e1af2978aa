package metrics

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"dental-dashboard/internal/platform/apperr"
)

// PatientSource fetches patient records from the clinic system.
type PatientSource interface {
	FetchPatients(ctx context.Context) ([]PatientRecord, error)
}

// Service loads patient records and aggregates them. Overlapping loads
// share a single upstream fetch.
type Service struct {
	source PatientSource
	agg    *Aggregator
	now    func() time.Time
	logger *zap.Logger
	group  singleflight.Group
}

func NewService(source PatientSource, agg *Aggregator, logger *zap.Logger) *Service {
	return &Service{
		source: source,
		agg:    agg,
		now:    time.Now,
		logger: logger,
	}
}

// Load never fails: source errors are logged and turned into a flagged
// fallback result.
func (s *Service) Load(ctx context.Context) Result {
	ch := s.group.DoChan("patients", func() (any, error) {
		// The fetch outlives any single caller that gave up waiting.
		records, err := s.source.FetchPatients(context.WithoutCancel(ctx))
		return s.resolve(records, err), nil
	})

	select {
	case res := <-ch:
		return res.Val.(Result)
	case <-ctx.Done():
		return s.resolve(nil, ctx.Err())
	}
}

// Campaigns returns the campaign snapshot.
func (s *Service) Campaigns() CampaignReport {
	return SampleCampaigns()
}

func (s *Service) resolve(records []PatientRecord, err error) Result {
	res := s.agg.Resolve(s.now(), records, err)
	switch {
	case err != nil:
		s.logger.Warn("patient source unavailable, serving fallback metrics",
			zap.String("reason", string(apperr.CodeSourceUnavailable)), zap.Error(err))
	case res.FallbackReason == apperr.CodeEmptySource:
		s.logger.Warn("patient source returned no records",
			zap.Bool("fallback", res.UsingFallbackData))
	default:
		s.logger.Debug("patient metrics computed",
			zap.Int("total", res.Metrics.TotalPatients.Value),
			zap.Int("active", res.Metrics.ActivePatients.Value))
	}
	return res
}
