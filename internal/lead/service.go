package lead

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// publishTimeout bounds the event write so a slow broker cannot hold up
// the lead response.
const publishTimeout = 3 * time.Second

// Notifier delivers a text message to a chat.
type Notifier interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Publisher emits domain events.
type Publisher interface {
	Publish(ctx context.Context, eventType, key string, value any) error
}

type Service interface {
	Capture(ctx context.Context, req CreateLeadRequest) (*Lead, error)
}

type service struct {
	repo         Repository
	notifier     Notifier
	publisher    Publisher
	clinicChatID int64
	printer      *message.Printer
	logger       *zap.Logger
	now          func() time.Time
}

// NewService wires the lead sink. notifier and publisher may be nil; the
// notification is also skipped when clinicChatID is zero.
func NewService(repo Repository, notifier Notifier, publisher Publisher, clinicChatID int64, logger *zap.Logger) Service {
	return &service{
		repo:         repo,
		notifier:     notifier,
		publisher:    publisher,
		clinicChatID: clinicChatID,
		printer:      message.NewPrinter(language.LatinAmericanSpanish),
		logger:       logger,
		now:          time.Now,
	}
}

// Capture validates and stores a lead. Side effects after the insert are
// best effort and never fail the call.
func (s *service) Capture(ctx context.Context, req CreateLeadRequest) (*Lead, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	l := &Lead{
		ID:          uuid.New(),
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Age:         req.Age,
		UTMSource:   req.UTMSource,
		UTMCampaign: req.UTMCampaign,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.Save(ctx, l); err != nil {
		return nil, err
	}
	s.logger.Info("lead captured",
		zap.String("lead_id", l.ID.String()),
		zap.String("utm_source", l.UTMSource),
		zap.String("utm_campaign", l.UTMCampaign))

	s.notify(ctx, l)
	s.publish(ctx, l)
	return l, nil
}

func (s *service) notify(ctx context.Context, l *Lead) {
	if s.notifier == nil || s.clinicChatID == 0 {
		return
	}
	if err := s.notifier.SendMessage(ctx, s.clinicChatID, s.notification(l)); err != nil {
		s.logger.Warn("lead notification failed", zap.String("lead_id", l.ID.String()), zap.Error(err))
	}
}

func (s *service) publish(ctx context.Context, l *Lead) {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(ctx, EventCaptured, l.ID.String(), l.Event()); err != nil {
		s.logger.Warn("lead event not published", zap.String("lead_id", l.ID.String()), zap.Error(err))
	}
}

func (s *service) notification(l *Lead) string {
	text := s.printer.Sprintf("Nuevo lead de análisis de sonrisa\nNombre: %s\nEmail: %s", l.Name, l.Email)
	if l.Phone != "" {
		text += s.printer.Sprintf("\nTeléfono: %s", l.Phone)
	}
	if l.Age != nil {
		text += s.printer.Sprintf("\nEdad: %d años", *l.Age)
	}
	text += s.printer.Sprintf("\nOrigen: %s / %s", l.UTMSource, l.UTMCampaign)
	return text
}
