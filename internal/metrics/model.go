package metrics

import (
	"time"

	"dental-dashboard/internal/platform/apperr"
)

// Provenance says where a number came from. Consumers must never treat a
// simulated value as measured.
type Provenance string

const (
	ProvenanceReal      Provenance = "real"
	ProvenanceSimulated Provenance = "simulated"
)

// Metric is a value tagged with its provenance.
type Metric[T int | float64] struct {
	Value      T          `json:"value"`
	Provenance Provenance `json:"provenance"`
}

func measured[T int | float64](v T) Metric[T] { return Metric[T]{Value: v, Provenance: ProvenanceReal} }
func simulated[T int | float64](v T) Metric[T] { return Metric[T]{Value: v, Provenance: ProvenanceSimulated} }

// PatientRecord is a patient as read from the clinic-management system.
// LastVisitAt and UpdatedAt are nil when the source omits them.
type PatientRecord struct {
	ID          string     `json:"id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Phone       string     `json:"phone"`
	Email       string     `json:"email,omitempty"`
	Treatments  string     `json:"treatments,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	LastVisitAt *time.Time `json:"last_visit_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// FullName joins first and last name.
func (p PatientRecord) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	default:
		return p.FirstName + " " + p.LastName
	}
}

// PatientMetrics is recomputed in full on every load.
type PatientMetrics struct {
	TotalPatients        Metric[int]     `json:"total_patients"`
	ActivePatients       Metric[int]     `json:"active_patients"`
	InactivePatients     Metric[int]     `json:"inactive_patients"`
	NewThisMonth         Metric[int]     `json:"new_this_month"`
	ChurnRate            Metric[float64] `json:"churn_rate"`
	AverageLifetimeValue Metric[float64] `json:"average_lifetime_value"`
	NPSScore             Metric[int]     `json:"nps_score"`
}

// Priority is the reactivation urgency tag shown next to an inactive patient.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// OutreachPatient is an inactive patient listed for reactivation.
type OutreachPatient struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Phone      string     `json:"phone"`
	LastVisit  *time.Time `json:"last_visit,omitempty"`
	Treatments string     `json:"treatments,omitempty"`
	Value      float64    `json:"value,omitempty"`
	Priority   Priority   `json:"priority"`
	Provenance Provenance `json:"provenance"`
}

// Result is what the dashboard receives for one load cycle.
type Result struct {
	Metrics                     PatientMetrics    `json:"metrics"`
	UsingFallbackData           bool              `json:"using_fallback_data"`
	FallbackReason              apperr.Code       `json:"fallback_reason,omitempty"`
	InactivePatientsForOutreach []OutreachPatient `json:"inactive_patients_for_outreach"`
	GeneratedAt                 time.Time         `json:"generated_at"`
}

type CampaignMetrics struct {
	TotalCampaigns    int     `json:"total_campaigns"`
	ActiveCampaigns   int     `json:"active_campaigns"`
	ConversionRate    float64 `json:"conversion_rate"`
	ROI               float64 `json:"roi"`
	MessagesDelivered int     `json:"messages_delivered"`
	ResponsesReceived int     `json:"responses_received"`
}

type Campaign struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Channel   string `json:"channel"`
	Audience  int    `json:"audience"`
	Sent      int    `json:"sent"`
	Responded int    `json:"responded"`
	Status    string `json:"status"`
}

// CampaignReport has no live source yet; it is always simulated.
type CampaignReport struct {
	Metrics    CampaignMetrics `json:"metrics"`
	Campaigns  []Campaign      `json:"campaigns"`
	Provenance Provenance      `json:"provenance"`
}
