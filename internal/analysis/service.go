package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dental-dashboard/internal/capture"
	"dental-dashboard/internal/platform/apperr"
)

// DocumentSender delivers a file to a chat.
type DocumentSender interface {
	SendDocument(ctx context.Context, chatID int64, fileData []byte, fileName, caption string) error
}

type Service interface {
	// AnalyzeSession closes a capture flow whose analysis gate is open and
	// returns its report. The flow is discarded.
	AnalyzeSession(ctx context.Context, sessionID uuid.UUID) (Report, error)
	ReportPDF(ctx context.Context) ([]byte, error)
	SendReport(ctx context.Context) error
}

type service struct {
	flows        capture.Service
	analyzer     Analyzer
	renderer     *Renderer
	sender       DocumentSender
	clinicChatID int64
	logger       *zap.Logger
	now          func() time.Time
}

// NewService wires report generation. sender may be nil, in which case
// SendReport reports UNAVAILABLE.
func NewService(flows capture.Service, analyzer Analyzer, renderer *Renderer, sender DocumentSender, clinicChatID int64, logger *zap.Logger) Service {
	return &service{
		flows:        flows,
		analyzer:     analyzer,
		renderer:     renderer,
		sender:       sender,
		clinicChatID: clinicChatID,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *service) AnalyzeSession(ctx context.Context, sessionID uuid.UUID) (Report, error) {
	steps, err := s.flows.Finish(ctx, sessionID)
	if err != nil {
		return Report{}, err
	}
	rep, err := s.analyzer.Analyze(ctx, steps)
	if err != nil {
		return Report{}, fmt.Errorf("analyze session %s: %w", sessionID, err)
	}
	s.logger.Info("smile analysis generated",
		zap.String("session_id", sessionID.String()),
		zap.Int("captured_images", rep.CapturedImages),
		zap.Int("overall_score", rep.OverallScore))
	return rep, nil
}

func (s *service) ReportPDF(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.renderer.Render(SampleReport(s.now()))
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeUnavailable, "report rendering unavailable", err)
	}
	return data, nil
}

func (s *service) SendReport(ctx context.Context) error {
	if s.sender == nil || s.clinicChatID == 0 {
		return apperr.New(apperr.CodeUnavailable, "clinic chat not configured")
	}
	data, err := s.ReportPDF(ctx)
	if err != nil {
		return err
	}

	fileName := fmt.Sprintf("analisis_sonrisa_%s.pdf", s.now().Format("20060102_150405"))
	s.logger.Info("sending report to clinic chat", zap.Int64("chat_id", s.clinicChatID), zap.Int("bytes", len(data)))
	if err := s.sender.SendDocument(ctx, s.clinicChatID, data, fileName, "Análisis de sonrisa"); err != nil {
		return apperr.Wrap(apperr.CodeUnavailable, "report delivery failed", err)
	}
	return nil
}
