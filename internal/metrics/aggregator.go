package metrics

import (
	"math"
	"time"

	"dental-dashboard/internal/platform/apperr"
)

const (
	ActivityWindow = 90 * 24 * time.Hour
	NewWindow      = 30 * 24 * time.Hour

	DefaultOutreachLimit = 4
)

// Aggregator turns patient records into dashboard metrics. It never reads
// the wall clock; callers pass the evaluation time.
type Aggregator struct {
	ranker          Ranker
	simulator       Simulator
	outreachLimit   int
	fallbackEnabled bool
}

type Option func(*Aggregator)

// WithRanker sets the reactivation priority strategy.
func WithRanker(r Ranker) Option { return func(a *Aggregator) { a.ranker = r } }

// WithSimulator sets the placeholder source for lifetime value and NPS.
// Without one those metrics are reported as zero.
func WithSimulator(s Simulator) Option { return func(a *Aggregator) { a.simulator = s } }

// WithOutreachLimit caps the reactivation list.
func WithOutreachLimit(n int) Option { return func(a *Aggregator) { a.outreachLimit = n } }

// WithFallback toggles substitution of the sample dataset.
func WithFallback(enabled bool) Option { return func(a *Aggregator) { a.fallbackEnabled = enabled } }

func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{
		ranker:          StaticRanker{Priority: PriorityMedium},
		outreachLimit:   DefaultOutreachLimit,
		fallbackEnabled: true,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.outreachLimit < 0 {
		a.outreachLimit = 0
	}
	return a
}

// Resolve is the aggregator boundary: a fetch error or an empty record set
// never propagates, it becomes a flagged fallback result.
func (a *Aggregator) Resolve(now time.Time, records []PatientRecord, fetchErr error) Result {
	switch {
	case fetchErr != nil:
		return a.fallback(now, apperr.CodeSourceUnavailable)
	case len(records) == 0:
		return a.fallback(now, apperr.CodeEmptySource)
	default:
		return a.Compute(now, records)
	}
}

// Compute derives metrics from records as of now. Counts are always real;
// lifetime value and NPS come from the simulator and are tagged so.
func (a *Aggregator) Compute(now time.Time, records []PatientRecord) Result {
	activeSince := now.Add(-ActivityWindow)
	newSince := now.Add(-NewWindow)

	total := len(records)
	var active, fresh int
	outreach := make([]OutreachPatient, 0, a.outreachLimit)
	for _, p := range records {
		if isActive(p, activeSince) {
			active++
		} else if len(outreach) < a.outreachLimit {
			outreach = append(outreach, a.outreachEntry(p, now))
		}
		if p.CreatedAt.After(newSince) {
			fresh++
		}
	}
	inactive := total - active

	m := PatientMetrics{
		TotalPatients:        measured(total),
		ActivePatients:       measured(active),
		InactivePatients:     measured(inactive),
		NewThisMonth:         measured(fresh),
		ChurnRate:            measured(ChurnRate(inactive, total)),
		AverageLifetimeValue: measured(0.0),
		NPSScore:             measured(0),
	}
	if a.simulator != nil && total > 0 {
		m.AverageLifetimeValue = simulated(a.simulator.AverageLifetimeValue())
		m.NPSScore = simulated(a.simulator.NPSScore())
	}

	return Result{
		Metrics:                     m,
		InactivePatientsForOutreach: outreach,
		GeneratedAt:                 now,
	}
}

func (a *Aggregator) fallback(now time.Time, reason apperr.Code) Result {
	if !a.fallbackEnabled {
		res := a.Compute(now, nil)
		res.FallbackReason = reason
		return res
	}
	outreach := FallbackOutreach()
	if len(outreach) > a.outreachLimit {
		outreach = outreach[:a.outreachLimit]
	}
	return Result{
		Metrics:                     FallbackMetrics(),
		UsingFallbackData:           true,
		FallbackReason:              reason,
		InactivePatientsForOutreach: outreach,
		GeneratedAt:                 now,
	}
}

func (a *Aggregator) outreachEntry(p PatientRecord, now time.Time) OutreachPatient {
	entry := OutreachPatient{
		ID:         p.ID,
		Name:       p.FullName(),
		Phone:      p.Phone,
		Treatments: p.Treatments,
		Priority:   a.ranker.Rank(p, now),
		Provenance: ProvenanceReal,
	}
	if last, ok := recencySignal(p); ok {
		entry.LastVisit = &last
	}
	return entry
}

// ChurnRate is inactive/total as a percentage with one decimal. It is zero
// when there are no patients.
func ChurnRate(inactive, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(inactive)/float64(total)*1000) / 10
}

// recencySignal prefers the last visit, then the last update. ok is false
// when neither is known.
func recencySignal(p PatientRecord) (time.Time, bool) {
	if p.LastVisitAt != nil && !p.LastVisitAt.IsZero() {
		return *p.LastVisitAt, true
	}
	if p.UpdatedAt != nil && !p.UpdatedAt.IsZero() {
		return *p.UpdatedAt, true
	}
	return time.Time{}, false
}

func isActive(p PatientRecord, since time.Time) bool {
	last, ok := recencySignal(p)
	return ok && last.After(since)
}
