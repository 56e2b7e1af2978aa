package analysis

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/signintech/gopdf"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"dental-dashboard/internal/metrics"
)

const (
	fontFamily = "DejaVu"
	textWidth  = 500.0
)

var ErrNoFont = errors.New("no usable TTF font found")

// Renderer writes reports as A4 PDF documents. The first loadable font in
// fontPaths is used.
type Renderer struct {
	fontPaths []string
	printer   *message.Printer
	logger    *zap.Logger
}

func NewRenderer(fontPaths []string, logger *zap.Logger) *Renderer {
	return &Renderer{
		fontPaths: fontPaths,
		printer:   message.NewPrinter(language.LatinAmericanSpanish),
		logger:    logger,
	}
}

func (r *Renderer) Render(rep Report) ([]byte, error) {
	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	if err := r.loadFont(&pdf); err != nil {
		return nil, err
	}

	w := &pdfWriter{pdf: &pdf}
	w.heading(20, "Análisis de Sonrisa")
	w.br(30)

	w.font(12)
	w.line(r.printer.Sprintf("Fecha: %s", rep.GeneratedAt.Format("02.01.2006 15:04")))
	w.line(r.printer.Sprintf("Puntuación general: %d/100", rep.OverallScore))
	w.line(r.printer.Sprintf("Potencial estético: %d%%", rep.AestheticPotential))
	if rep.CapturedImages > 0 {
		w.line(r.printer.Sprintf("Fotografías analizadas: %d", rep.CapturedImages))
	}
	w.br(10)

	w.heading(14, "Proporciones faciales")
	w.font(11)
	w.line(r.printer.Sprintf("Proporción áurea: %d%%", rep.FacialProportions.GoldenRatio))
	w.line(r.printer.Sprintf("Tercios faciales: %d%%", rep.FacialProportions.FacialThirds))
	w.line(r.printer.Sprintf("Simetría: %d%%", rep.FacialProportions.Symmetry))
	w.br(10)

	w.heading(14, "Análisis de sonrisa")
	w.font(11)
	w.line(r.printer.Sprintf("Línea de sonrisa: %s", smileLineLabel(rep.SmileAnalysis.SmileLine)))
	w.line(r.printer.Sprintf("Exposición gingival: %.1f mm", rep.SmileAnalysis.GingivalDisplayMM))
	w.line(r.printer.Sprintf("Corredor bucal: %d%%", rep.SmileAnalysis.BuccalCorridor))
	w.line(r.printer.Sprintf("Proporciones dentales: %d%%", rep.SmileAnalysis.ToothProportions))
	w.br(10)

	w.heading(14, "Hallazgos dentales")
	w.font(11)
	w.line("Estado: " + conditionLabel(rep.DentalFindings.Condition))
	for _, issue := range rep.DentalFindings.Issues {
		w.wrapped("- " + issue)
	}
	w.line("Recomendaciones:")
	for _, rec := range rep.DentalFindings.Recommendations {
		w.wrapped("- " + rec)
	}
	w.br(10)

	w.heading(14, "Opciones de tratamiento")
	w.font(11)
	for _, t := range rep.TreatmentOptions {
		w.wrapped(r.printer.Sprintf("%s (%s): %s. Duración %s, costo %s, impacto %d%%.",
			t.Name, priorityLabel(t.Priority), t.Description, t.Duration, t.Cost, t.Impact))
		w.br(4)
	}

	if rep.Provenance == metrics.ProvenanceSimulated {
		pdf.SetY(780)
		w.font(9)
		w.line("Resultados ilustrativos. Requieren evaluación clínica presencial.")
	}
	if w.err != nil {
		return nil, fmt.Errorf("failed to lay out PDF: %w", w.err)
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) loadFont(pdf *gopdf.GoPdf) error {
	var lastErr error
	for _, path := range r.fontPaths {
		if err := pdf.AddTTFFont(fontFamily, path); err != nil {
			lastErr = err
			continue
		}
		r.logger.Debug("report font loaded", zap.String("path", path))
		return nil
	}
	r.logger.Error("report font unavailable",
		zap.Strings("paths", r.fontPaths), zap.Error(lastErr))
	if lastErr == nil {
		return ErrNoFont
	}
	return fmt.Errorf("%w: %w", ErrNoFont, lastErr)
}

// pdfWriter keeps the first layout error so the render path reads linearly.
type pdfWriter struct {
	pdf *gopdf.GoPdf
	err error
}

func (w *pdfWriter) font(size int) {
	if w.err == nil {
		w.err = w.pdf.SetFont(fontFamily, "", size)
	}
}

func (w *pdfWriter) heading(size int, text string) {
	w.font(size)
	w.line(text)
}

func (w *pdfWriter) line(text string) {
	if w.err == nil {
		w.err = w.pdf.Cell(nil, text)
	}
	w.br(15)
}

func (w *pdfWriter) wrapped(text string) {
	if w.err != nil {
		return
	}
	lines, err := w.pdf.SplitText(text, textWidth)
	if err != nil {
		w.err = err
		return
	}
	for _, l := range lines {
		w.line(strings.TrimSpace(l))
	}
}

func (w *pdfWriter) br(h float64) {
	w.pdf.Br(h)
}

func smileLineLabel(s SmileLine) string {
	switch s {
	case SmileLineHigh:
		return "Alta"
	case SmileLineMedium:
		return "Media"
	case SmileLineLow:
		return "Baja"
	default:
		return string(s)
	}
}

func conditionLabel(c Condition) string {
	switch c {
	case ConditionExcellent:
		return "Excelente"
	case ConditionGood:
		return "Bueno"
	case ConditionFair:
		return "Regular"
	case ConditionPoor:
		return "Deficiente"
	default:
		return string(c)
	}
}

func priorityLabel(p metrics.Priority) string {
	switch p {
	case metrics.PriorityHigh:
		return "prioridad alta"
	case metrics.PriorityMedium:
		return "prioridad media"
	case metrics.PriorityLow:
		return "prioridad baja"
	default:
		return string(p)
	}
}
