package capture

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dental-dashboard/internal/platform/apperr"
)

type Service interface {
	Start(ctx context.Context) (uuid.UUID, State, error)
	Get(ctx context.Context, id uuid.UUID) (State, error)
	GrantConsent(ctx context.Context, id uuid.UUID) (State, error)
	AttachImage(ctx context.Context, id uuid.UUID, index int, ref string) (State, error)
	Retake(ctx context.Context, id uuid.UUID, index int) (State, error)
	GoToStep(ctx context.Context, id uuid.UUID, index int) (State, error)
	Next(ctx context.Context, id uuid.UUID) (State, error)
	Previous(ctx context.Context, id uuid.UUID) (State, error)
	Cancel(ctx context.Context, id uuid.UUID) error
	// Finish closes the flow once analysis may start and hands back the
	// captured steps. The session is gone afterwards.
	Finish(ctx context.Context, id uuid.UUID) ([]Step, error)
	PurgeIdle(ctx context.Context, maxIdle time.Duration) (int, error)
}

type service struct {
	repo   Repository
	steps  func() []Step
	now    func() time.Time
	logger *zap.Logger
}

// NewService builds the capture service. steps supplies the sequence for
// every new flow; nil means DefaultSteps.
func NewService(repo Repository, steps func() []Step, logger *zap.Logger) Service {
	if steps == nil {
		steps = DefaultSteps
	}
	return &service{
		repo:   repo,
		steps:  steps,
		now:    time.Now,
		logger: logger,
	}
}

func (s *service) Start(ctx context.Context) (uuid.UUID, State, error) {
	flow, err := NewFlow(s.steps())
	if err != nil {
		return uuid.Nil, State{}, err
	}
	now := s.now()
	sess := &Session{
		ID:        uuid.New(),
		Flow:      flow,
		CreatedAt: now,
	}
	sess.touch(now)
	if err := s.repo.Create(ctx, sess); err != nil {
		return uuid.Nil, State{}, err
	}
	s.logger.Info("capture flow started", zap.String("session_id", sess.ID.String()), zap.Int("steps", flow.Len()))
	return sess.ID, flow.Snapshot(), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (State, error) {
	return s.update(ctx, id, false, func(*Flow) error { return nil })
}

func (s *service) GrantConsent(ctx context.Context, id uuid.UUID) (State, error) {
	return s.update(ctx, id, true, func(f *Flow) error {
		f.GrantConsent()
		return nil
	})
}

func (s *service) AttachImage(ctx context.Context, id uuid.UUID, index int, ref string) (State, error) {
	return s.update(ctx, id, true, func(f *Flow) error {
		_, err := f.AttachImage(index, ref)
		return err
	})
}

func (s *service) Retake(ctx context.Context, id uuid.UUID, index int) (State, error) {
	return s.update(ctx, id, true, func(f *Flow) error {
		_, err := f.Retake(index)
		return err
	})
}

func (s *service) GoToStep(ctx context.Context, id uuid.UUID, index int) (State, error) {
	return s.update(ctx, id, true, func(f *Flow) error {
		return f.GoToStep(index)
	})
}

func (s *service) Next(ctx context.Context, id uuid.UUID) (State, error) {
	return s.update(ctx, id, true, func(f *Flow) error {
		f.Next()
		return nil
	})
}

func (s *service) Previous(ctx context.Context, id uuid.UUID) (State, error) {
	return s.update(ctx, id, true, func(f *Flow) error {
		f.Previous()
		return nil
	})
}

func (s *service) Cancel(ctx context.Context, id uuid.UUID) error {
	sess, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	sess.closed = true
	sess.mu.Unlock()

	s.logger.Info("capture flow cancelled", zap.String("session_id", id.String()))
	return s.repo.Delete(ctx, id)
}

func (s *service) Finish(ctx context.Context, id uuid.UUID) ([]Step, error) {
	sess, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.closed {
		return nil, closedErr(id)
	}
	if !sess.Flow.CanStartAnalysis() {
		return nil, apperr.New(apperr.CodeAnalysisNotReady, "required captures are incomplete")
	}
	sess.closed = true
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}

	s.logger.Info("capture flow finished", zap.String("session_id", id.String()))
	return sess.Flow.Steps(), nil
}

func (s *service) PurgeIdle(ctx context.Context, maxIdle time.Duration) (int, error) {
	n, err := s.repo.DeleteIdle(ctx, s.now().Add(-maxIdle))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("purged idle capture flows", zap.Int("count", n))
	}
	return n, nil
}

// update runs op under the session lock and returns the resulting snapshot.
func (s *service) update(ctx context.Context, id uuid.UUID, touch bool, op func(*Flow) error) (State, error) {
	sess, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return State{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.closed {
		return State{}, closedErr(id)
	}
	if err := op(sess.Flow); err != nil {
		s.logger.Debug("capture operation rejected",
			zap.String("session_id", id.String()),
			zap.String("code", string(apperr.CodeOf(err))),
			zap.Error(err))
		return State{}, err
	}
	if touch {
		sess.touch(s.now())
	}
	return sess.Flow.Snapshot(), nil
}

func closedErr(id uuid.UUID) error {
	return apperr.WithMetadata(apperr.CodeNotFound, "capture session not found",
		map[string]string{"id": id.String()})
}
