package analysis

import (
	"time"

	"dental-dashboard/internal/metrics"
)

type SmileLine string

const (
	SmileLineHigh   SmileLine = "high"
	SmileLineMedium SmileLine = "medium"
	SmileLineLow    SmileLine = "low"
)

type Condition string

const (
	ConditionExcellent Condition = "excellent"
	ConditionGood      Condition = "good"
	ConditionFair      Condition = "fair"
	ConditionPoor      Condition = "poor"
)

type FacialProportions struct {
	GoldenRatio  int `json:"golden_ratio"`
	FacialThirds int `json:"facial_thirds"`
	Symmetry     int `json:"symmetry"`
}

type SmileAnalysis struct {
	SmileLine         SmileLine `json:"smile_line"`
	GingivalDisplayMM float64   `json:"gingival_display_mm"`
	BuccalCorridor    int       `json:"buccal_corridor"`
	ToothProportions  int       `json:"tooth_proportions"`
}

type DentalFindings struct {
	Condition       Condition `json:"condition"`
	Issues          []string  `json:"issues"`
	Recommendations []string  `json:"recommendations"`
}

type TreatmentOption struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Duration    string           `json:"duration"`
	Cost        string           `json:"cost"`
	Priority    metrics.Priority `json:"priority"`
	Impact      int              `json:"impact"`
}

// Report is the smile analysis shown after a completed capture. Scores are
// percentages. The content is illustrative, so Provenance is always
// simulated.
type Report struct {
	OverallScore       int                `json:"overall_score"`
	FacialProportions  FacialProportions  `json:"facial_proportions"`
	SmileAnalysis      SmileAnalysis      `json:"smile_analysis"`
	DentalFindings     DentalFindings     `json:"dental_findings"`
	AestheticPotential int                `json:"aesthetic_potential"`
	TreatmentOptions   []TreatmentOption  `json:"treatment_options"`
	CapturedImages     int                `json:"captured_images"`
	Provenance         metrics.Provenance `json:"provenance"`
	GeneratedAt        time.Time          `json:"generated_at"`
}
