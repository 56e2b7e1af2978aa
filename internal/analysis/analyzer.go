package analysis

import (
	"context"
	"time"

	"dental-dashboard/internal/capture"
	"dental-dashboard/internal/metrics"
)

// Analyzer turns a finished capture into a report. Callers must check the
// capture flow's analysis gate first.
type Analyzer interface {
	Analyze(ctx context.Context, steps []capture.Step) (Report, error)
}

type staticAnalyzer struct {
	now func() time.Time
}

// NewStaticAnalyzer returns an analyzer that ignores the images and always
// produces the same illustrative report.
func NewStaticAnalyzer() Analyzer {
	return &staticAnalyzer{now: time.Now}
}

func (a *staticAnalyzer) Analyze(ctx context.Context, steps []capture.Step) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	r := SampleReport(a.now())
	for _, s := range steps {
		if s.Completed {
			r.CapturedImages++
		}
	}
	return r, nil
}

// SampleReport is the fixed report content.
func SampleReport(generatedAt time.Time) Report {
	return Report{
		OverallScore: 87,
		FacialProportions: FacialProportions{
			GoldenRatio:  92,
			FacialThirds: 88,
			Symmetry:     85,
		},
		SmileAnalysis: SmileAnalysis{
			SmileLine:         SmileLineMedium,
			GingivalDisplayMM: 2.5,
			BuccalCorridor:    78,
			ToothProportions:  83,
		},
		DentalFindings: DentalFindings{
			Condition: ConditionGood,
			Issues: []string{
				"Ligero apiñamiento en incisivos inferiores",
				"Decoloración leve en dientes posteriores",
				"Asimetría menor en línea de sonrisa",
			},
			Recommendations: []string{
				"Ortodoncia invisible (6-8 meses)",
				"Blanqueamiento profesional",
				"Carillas estéticas (2-4 piezas)",
			},
		},
		AestheticPotential: 95,
		TreatmentOptions: []TreatmentOption{
			{
				ID:          "whitening",
				Name:        "Blanqueamiento Profesional",
				Description: "Mejora el color dental 3-5 tonos",
				Duration:    "2-3 semanas",
				Cost:        "$180.000 - $250.000",
				Priority:    metrics.PriorityHigh,
				Impact:      85,
			},
			{
				ID:          "aligners",
				Name:        "Ortodoncia Invisible",
				Description: "Corrige apiñamiento y alineación",
				Duration:    "6-8 meses",
				Cost:        "$1.200.000 - $1.800.000",
				Priority:    metrics.PriorityMedium,
				Impact:      92,
			},
			{
				ID:          "veneers",
				Name:        "Carillas Estéticas",
				Description: "Mejora forma, color y proporciones",
				Duration:    "2-3 citas",
				Cost:        "$280.000 - $450.000 por pieza",
				Priority:    metrics.PriorityLow,
				Impact:      98,
			},
		},
		Provenance:  metrics.ProvenanceSimulated,
		GeneratedAt: generatedAt,
	}
}
