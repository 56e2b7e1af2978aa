package analysis

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"dental-dashboard/internal/platform/apperr"
	"dental-dashboard/internal/platform/httpjson"
)

type Handler struct {
	svc    Service
	logger *zap.Logger
}

func NewHandler(svc Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) StartAnalysis(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.WriteError(w, h.logger, apperr.Wrap(apperr.CodeInvalidField, "invalid capture session id", err))
		return
	}

	rep, err := h.svc.AnalyzeSession(r.Context(), id)
	if err != nil {
		httpjson.WriteError(w, h.logger, err)
		return
	}
	httpjson.Write(w, http.StatusOK, rep)
}

func (h *Handler) DownloadPDF(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.ReportPDF(r.Context())
	if err != nil {
		httpjson.WriteError(w, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="analisis_sonrisa.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handler) SendReport(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.SendReport(r.Context()); err != nil {
		httpjson.WriteError(w, h.logger, err)
		return
	}
	httpjson.Write(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/capture/{id}/analysis", h.StartAnalysis)
	r.Get("/analysis/report.pdf", h.DownloadPDF)
	r.Post("/analysis/report/send", h.SendReport)
}
