package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dental-dashboard/internal/capture"
	"dental-dashboard/internal/metrics"
	"dental-dashboard/internal/platform/apperr"
	"dental-dashboard/internal/platform/telegram"
)

var systemFonts = []string{
	"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
}

func availableFont(t *testing.T) string {
	t.Helper()
	for _, p := range systemFonts {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	t.Skip("no DejaVu font installed")
	return ""
}

type recordingSender struct {
	chatID   int64
	data     []byte
	fileName string
	err      error
}

func (s *recordingSender) SendDocument(ctx context.Context, chatID int64, fileData []byte, fileName, caption string) error {
	s.chatID = chatID
	s.data = fileData
	s.fileName = fileName
	return s.err
}

// readyFlow starts a capture and fills every required step.
func readyFlow(t *testing.T, flows capture.Service) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	id, state, err := flows.Start(ctx)
	require.NoError(t, err)
	_, err = flows.GrantConsent(ctx, id)
	require.NoError(t, err)
	for i, s := range state.Steps {
		if s.Required {
			_, err = flows.AttachImage(ctx, id, i, "data:image/jpeg;base64,AAAA")
			require.NoError(t, err)
		}
	}
	return id
}

func newTestService(flows capture.Service, fontPaths []string, sender DocumentSender, chatID int64) Service {
	return NewService(flows, NewStaticAnalyzer(), NewRenderer(fontPaths, zap.NewNop()), sender, chatID, zap.NewNop())
}

func TestSampleReport(t *testing.T) {
	at := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	rep := SampleReport(at)

	assert.Equal(t, 87, rep.OverallScore)
	assert.Equal(t, FacialProportions{GoldenRatio: 92, FacialThirds: 88, Symmetry: 85}, rep.FacialProportions)
	assert.Equal(t, SmileLineMedium, rep.SmileAnalysis.SmileLine)
	assert.Equal(t, 2.5, rep.SmileAnalysis.GingivalDisplayMM)
	assert.Equal(t, ConditionGood, rep.DentalFindings.Condition)
	assert.Len(t, rep.DentalFindings.Issues, 3)
	assert.Len(t, rep.DentalFindings.Recommendations, 3)
	assert.Equal(t, 95, rep.AestheticPotential)
	require.Len(t, rep.TreatmentOptions, 3)
	assert.Equal(t, []metrics.Priority{metrics.PriorityHigh, metrics.PriorityMedium, metrics.PriorityLow},
		[]metrics.Priority{rep.TreatmentOptions[0].Priority, rep.TreatmentOptions[1].Priority, rep.TreatmentOptions[2].Priority})
	assert.Equal(t, metrics.ProvenanceSimulated, rep.Provenance)
	assert.Equal(t, at, rep.GeneratedAt)
}

func TestAnalyzeSessionClosesFlow(t *testing.T) {
	flows := capture.NewService(capture.NewMemoryRepository(), nil, zap.NewNop())
	id := readyFlow(t, flows)
	svc := newTestService(flows, nil, nil, 0)

	rep, err := svc.AnalyzeSession(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 4, rep.CapturedImages)
	assert.Equal(t, metrics.ProvenanceSimulated, rep.Provenance)

	_, err = flows.Get(context.Background(), id)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	_, err = svc.AnalyzeSession(context.Background(), id)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}

func TestAnalyzeSessionRequiresCompleteCapture(t *testing.T) {
	flows := capture.NewService(capture.NewMemoryRepository(), nil, zap.NewNop())
	ctx := context.Background()
	id, _, err := flows.Start(ctx)
	require.NoError(t, err)
	_, err = flows.GrantConsent(ctx, id)
	require.NoError(t, err)

	_, err = newTestService(flows, nil, nil, 0).AnalyzeSession(ctx, id)

	assert.True(t, apperr.HasCode(err, apperr.CodeAnalysisNotReady))
	_, err = flows.Get(ctx, id)
	assert.NoError(t, err)
}

func TestRenderWithoutFont(t *testing.T) {
	_, err := NewRenderer([]string{"/nonexistent/font.ttf"}, zap.NewNop()).Render(SampleReport(time.Now()))

	assert.ErrorIs(t, err, ErrNoFont)
}

func TestReportPDFWithoutFontIsUnavailable(t *testing.T) {
	_, err := newTestService(nil, nil, nil, 0).ReportPDF(context.Background())

	assert.True(t, apperr.HasCode(err, apperr.CodeUnavailable))
	assert.ErrorIs(t, err, ErrNoFont)
}

func TestRenderPDF(t *testing.T) {
	font := availableFont(t)

	data, err := NewRenderer([]string{"/nonexistent/font.ttf", font}, zap.NewNop()).Render(SampleReport(time.Now()))

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestSendReport(t *testing.T) {
	font := availableFont(t)
	sender := &recordingSender{}

	err := newTestService(nil, []string{font}, sender, 99).SendReport(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(99), sender.chatID)
	assert.True(t, bytes.HasPrefix(sender.data, []byte("%PDF-")))
	assert.Contains(t, sender.fileName, "analisis_sonrisa_")
}

func TestSendReportDeliveryFailure(t *testing.T) {
	font := availableFont(t)
	sender := &recordingSender{err: errors.New("chat not found")}

	err := newTestService(nil, []string{font}, sender, 99).SendReport(context.Background())

	assert.True(t, apperr.HasCode(err, apperr.CodeUnavailable))
}

func TestSendReportWithoutChat(t *testing.T) {
	err := newTestService(nil, nil, &recordingSender{}, 0).SendReport(context.Background())

	assert.True(t, apperr.HasCode(err, apperr.CodeUnavailable))
}

func TestHandlerStartAnalysis(t *testing.T) {
	flows := capture.NewService(capture.NewMemoryRepository(), nil, zap.NewNop())
	id := readyFlow(t, flows)
	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(newTestService(flows, nil, nil, 0), zap.NewNop()))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/capture/"+id.String()+"/analysis", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var rep Report
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&rep))
	assert.Equal(t, 87, rep.OverallScore)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/capture/"+id.String()+"/analysis", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/capture/not-a-uuid/analysis", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerDownloadPDFWithoutFont(t *testing.T) {
	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(newTestService(nil, nil, nil, 0), zap.NewNop()))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analysis/report.pdf", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHandlerSendReportHidesBotToken(t *testing.T) {
	font := availableFont(t)
	bot := telegram.NewClient("123456:SECRET-BOT-TOKEN", telegram.WithBaseURL("http://127.0.0.1:1"))
	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(newTestService(nil, []string{font}, bot, 99), zap.NewNop()))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/analysis/report/send", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "report delivery failed")
	assert.NotContains(t, rec.Body.String(), "SECRET-BOT-TOKEN")
}
