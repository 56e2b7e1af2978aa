package metrics

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"dental-dashboard/internal/platform/httpjson"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Patients(w http.ResponseWriter, r *http.Request) {
	httpjson.Write(w, http.StatusOK, h.svc.Load(r.Context()))
}

func (h *Handler) Campaigns(w http.ResponseWriter, r *http.Request) {
	httpjson.Write(w, http.StatusOK, h.svc.Campaigns())
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/metrics/patients", h.Patients)
	r.Get("/metrics/campaigns", h.Campaigns)
}
