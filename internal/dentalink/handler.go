package dentalink

import (
	"net/http"

	"github.com/go-chi/chi/v5"
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

func (h *Handler) Proxy(w http.ResponseWriter, r *http.Request) {
	var req ProxyRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	data, err := h.svc.Dispatch(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, ProxyResponse{Data: data})
}

// writeError keeps the proxy contract: request problems are 4xx, anything
// else is a 500 carrying the error message.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	code := apperr.CodeOf(err)
	status := code.HTTPStatus()
	if status >= http.StatusInternalServerError {
		status = http.StatusInternalServerError
	}
	h.logger.Error("dentalink proxy failed", append(httpjson.LogFields(err), zap.String("code", string(code)))...)
	httpjson.Write(w, status, httpjson.ErrorBody{Error: err.Error(), Code: code})
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/dentalink", h.Proxy)
}
