package capture

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Category groups capture steps by camera position.
type Category string

const (
	CategoryFrontal   Category = "frontal"
	CategoryLateral   Category = "lateral"
	CategoryIntraoral Category = "intraoral"
)

// Phase is the position of a flow in its lifecycle.
type Phase string

const (
	PhaseAwaitingConsent  Phase = "awaiting_consent"
	PhaseCapturing        Phase = "capturing"
	PhaseReadyForAnalysis Phase = "ready_for_analysis"
)

// Step is one photograph in the guided intake sequence.
// Completed is true exactly when Image is non-empty.
type Step struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Instruction string   `json:"instruction"`
	Category    Category `json:"category"`
	Required    bool     `json:"required"`
	Completed   bool     `json:"completed"`
	Image       string   `json:"image,omitempty"`
}

// State is a point-in-time copy of a flow, safe to hand to consumers.
type State struct {
	Steps            []Step  `json:"steps"`
	CurrentIndex     int     `json:"current_index"`
	ConsentGiven     bool    `json:"consent_given"`
	Phase            Phase   `json:"phase"`
	CanStartAnalysis bool    `json:"can_start_analysis"`
	ProgressRatio    float64 `json:"progress_ratio"`
}

// Session ties a flow to the visitor driving it over HTTP.
type Session struct {
	ID        uuid.UUID `json:"id"`
	Flow      *Flow     `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	mu      sync.Mutex
	closed  bool
	touched atomic.Int64
}

func (s *Session) touch(now time.Time) {
	s.UpdatedAt = now
	s.touched.Store(now.UnixNano())
}

// lastTouched is read without s.mu so the repository can sweep sessions
// while holding its own lock.
func (s *Session) lastTouched() time.Time {
	return time.Unix(0, s.touched.Load())
}

// DefaultSteps returns the clinic's standard smile-analysis sequence:
// four required facial shots followed by two optional intraoral shots.
func DefaultSteps() []Step {
	return []Step{
		{
			ID:          "frontal_neutral",
			Title:       "Rostro Frontal - Neutral",
			Description: "Foto frontal con labios cerrados y expresión relajada",
			Instruction: "Mantenga la cabeza recta, mire directamente a la cámara",
			Category:    CategoryFrontal,
			Required:    true,
		},
		{
			ID:          "frontal_smile",
			Title:       "Rostro Frontal - Sonrisa",
			Description: "Foto frontal mostrando su mejor sonrisa",
			Instruction: "Sonría ampliamente mostrando sus dientes",
			Category:    CategoryFrontal,
			Required:    true,
		},
		{
			ID:          "lateral_left",
			Title:       "Perfil Izquierdo",
			Description: "Foto de perfil desde el lado izquierdo",
			Instruction: "Gire 90° hacia la izquierda, mantenga la postura",
			Category:    CategoryLateral,
			Required:    true,
		},
		{
			ID:          "lateral_right",
			Title:       "Perfil Derecho",
			Description: "Foto de perfil desde el lado derecho",
			Instruction: "Gire 90° hacia la derecha, mantenga la postura",
			Category:    CategoryLateral,
			Required:    true,
		},
		{
			ID:          "intraoral_upper",
			Title:       "Arcada Superior",
			Description: "Vista intraoral de los dientes superiores",
			Instruction: "Abra la boca, enfoque los dientes superiores",
			Category:    CategoryIntraoral,
		},
		{
			ID:          "intraoral_lower",
			Title:       "Arcada Inferior",
			Description: "Vista intraoral de los dientes inferiores",
			Instruction: "Abra la boca, enfoque los dientes inferiores",
			Category:    CategoryIntraoral,
		},
	}
}
