package capture

import (
	"encoding/base64"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"dental-dashboard/internal/platform/apperr"
	"dental-dashboard/internal/platform/httpjson"
)

const maxImageBytes = 10 << 20

// maxImageJSONBytes fits a base64 data URI of a maxImageBytes image.
const maxImageJSONBytes = maxImageBytes*4/3 + 1<<10

type Handler struct {
	svc    Service
	logger *zap.Logger
}

func NewHandler(svc Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

type StartResponse struct {
	SessionID string `json:"session_id"`
	State     State  `json:"state"`
}

type AttachImageRequest struct {
	Image string `json:"image"`
}

func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	id, state, err := h.svc.Start(r.Context())
	if err != nil {
		httpjson.WriteError(w, h.logger, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, StartResponse{SessionID: id.String(), State: state})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	h.respond(w)(h.svc.Get(r.Context(), id))
}

func (h *Handler) GrantConsent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	h.respond(w)(h.svc.GrantConsent(r.Context(), id))
}

// AttachImage accepts either a JSON body {"image": "..."} or a multipart
// form with an "image" file, which is stored as a data URL.
func (h *Handler) AttachImage(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	index, ok := h.stepIndex(w, r)
	if !ok {
		return
	}

	ref, err := readImageRef(w, r)
	if err != nil {
		httpjson.WriteError(w, h.logger, err)
		return
	}
	h.respond(w)(h.svc.AttachImage(r.Context(), id, index, ref))
}

func (h *Handler) Retake(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	index, ok := h.stepIndex(w, r)
	if !ok {
		return
	}
	h.respond(w)(h.svc.Retake(r.Context(), id, index))
}

func (h *Handler) GoToStep(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	index, ok := h.stepIndex(w, r)
	if !ok {
		return
	}
	h.respond(w)(h.svc.GoToStep(r.Context(), id, index))
}

func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	h.respond(w)(h.svc.Next(r.Context(), id))
}

func (h *Handler) Previous(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	h.respond(w)(h.svc.Previous(r.Context(), id))
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Cancel(r.Context(), id); err != nil {
		httpjson.WriteError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respond(w http.ResponseWriter) func(State, error) {
	return func(state State, err error) {
		if err != nil {
			httpjson.WriteError(w, h.logger, err)
			return
		}
		httpjson.Write(w, http.StatusOK, state)
	}
}

// sessionID parses the {id} route parameter, writing a 400 on failure.
func (h *Handler) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.WriteError(w, h.logger, apperr.Wrap(apperr.CodeInvalidField, "invalid capture session id", err))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) stepIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "index")
	index, err := strconv.Atoi(raw)
	if err != nil {
		httpjson.WriteError(w, h.logger, apperr.WithMetadata(apperr.CodeInvalidStepIndex,
			"step index is not a number", map[string]string{"index": raw}))
		return 0, false
	}
	return index, true
}

func readImageRef(w http.ResponseWriter, r *http.Request) (string, error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		var req AttachImageRequest
		if err := httpjson.DecodeLimit(w, r, &req, maxImageJSONBytes); err != nil {
			return "", err
		}
		return req.Image, nil
	}

	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		return "", apperr.Wrap(apperr.CodeInvalidImage, "invalid multipart upload", err)
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		return "", apperr.Wrap(apperr.CodeInvalidImage, "missing image file", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		return "", apperr.Wrap(apperr.CodeInvalidImage, "read image file", err)
	}
	if len(data) > maxImageBytes {
		return "", apperr.New(apperr.CodeInvalidImage, "image exceeds 10MB")
	}
	if len(data) == 0 {
		return "", apperr.New(apperr.CodeInvalidImage, "image file is empty")
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/capture", h.Start)
	r.Get("/capture/{id}", h.Get)
	r.Delete("/capture/{id}", h.Cancel)
	r.Post("/capture/{id}/consent", h.GrantConsent)
	r.Put("/capture/{id}/steps/{index}/image", h.AttachImage)
	r.Delete("/capture/{id}/steps/{index}/image", h.Retake)
	r.Post("/capture/{id}/goto/{index}", h.GoToStep)
	r.Post("/capture/{id}/next", h.Next)
	r.Post("/capture/{id}/previous", h.Previous)
}
