package lead

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"dental-dashboard/internal/platform/apperr"
)

const (
	DefaultUTMSource   = "direct"
	DefaultUTMCampaign = "smile-analysis"

	// EventCaptured is published after a lead is stored.
	EventCaptured = "lead.captured"
)

// Lead is a prospect who submitted the smile-analysis landing form.
type Lead struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	Age         *int      `json:"age,omitempty"`
	UTMSource   string    `json:"utm_source"`
	UTMCampaign string    `json:"utm_campaign"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateLeadRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Age         *int   `json:"age"`
	UTMSource   string `json:"utm_source"`
	UTMCampaign string `json:"utm_campaign"`
}

// CapturedEvent is the payload of EventCaptured.
type CapturedEvent struct {
	LeadID      uuid.UUID `json:"lead_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	UTMSource   string    `json:"utm_source"`
	UTMCampaign string    `json:"utm_campaign"`
	CapturedAt  time.Time `json:"captured_at"`
}

// Normalize trims the fields and applies the UTM defaults.
func (r CreateLeadRequest) Normalize() CreateLeadRequest {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.UTMSource = strings.TrimSpace(r.UTMSource)
	r.UTMCampaign = strings.TrimSpace(r.UTMCampaign)
	if r.UTMSource == "" {
		r.UTMSource = DefaultUTMSource
	}
	if r.UTMCampaign == "" {
		r.UTMCampaign = DefaultUTMCampaign
	}
	return r
}

// Validate runs on a normalized request.
func (r CreateLeadRequest) Validate() error {
	if r.Name == "" {
		return apperr.WithMetadata(apperr.CodeMissingRequiredField, "name is required",
			map[string]string{"field": "name"})
	}
	if r.Email == "" {
		return apperr.WithMetadata(apperr.CodeMissingRequiredField, "email is required",
			map[string]string{"field": "email"})
	}
	if r.Age != nil && *r.Age < 0 {
		return apperr.WithMetadata(apperr.CodeInvalidField, "age must be a non-negative integer",
			map[string]string{"field": "age"})
	}
	return nil
}

func (l Lead) Event() CapturedEvent {
	return CapturedEvent{
		LeadID:      l.ID,
		Name:        l.Name,
		Email:       l.Email,
		Phone:       l.Phone,
		UTMSource:   l.UTMSource,
		UTMCampaign: l.UTMCampaign,
		CapturedAt:  l.CreatedAt,
	}
}
