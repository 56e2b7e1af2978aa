package lead

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"dental-dashboard/internal/platform/httpjson"
)

type Handler struct {
	svc    Service
	logger *zap.Logger
}

func NewHandler(svc Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// CreateLead stores a landing-page lead. UTM values missing from the body
// are read from the query string.
func (h *Handler) CreateLead(w http.ResponseWriter, r *http.Request) {
	var req CreateLeadRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.WriteError(w, h.logger, err)
		return
	}
	q := r.URL.Query()
	if req.UTMSource == "" {
		req.UTMSource = q.Get("utm_source")
	}
	if req.UTMCampaign == "" {
		req.UTMCampaign = q.Get("utm_campaign")
	}

	l, err := h.svc.Capture(r.Context(), req)
	if err != nil {
		httpjson.WriteError(w, h.logger, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, l)
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/leads", h.CreateLead)
}
