package capture

import (
	"fmt"
	"strconv"
	"strings"

	"dental-dashboard/internal/platform/apperr"
)

// Flow is the capture-guide state machine. It is not safe for concurrent
// use; Service serializes access per session.
//
// Every failing operation returns before touching state.
type Flow struct {
	steps   []Step
	current int
	consent bool
}

// NewFlow builds a flow over steps in the given order. Completion state on
// the input is ignored: every step starts empty.
func NewFlow(steps []Step) (*Flow, error) {
	if len(steps) == 0 {
		return nil, apperr.New(apperr.CodeInvalidField, "capture flow needs at least one step")
	}
	seen := make(map[string]struct{}, len(steps))
	own := make([]Step, len(steps))
	for i, s := range steps {
		if strings.TrimSpace(s.ID) == "" {
			return nil, apperr.New(apperr.CodeMissingRequiredField, fmt.Sprintf("step %d has no id", i))
		}
		if _, dup := seen[s.ID]; dup {
			return nil, apperr.New(apperr.CodeInvalidField, fmt.Sprintf("duplicate step id %q", s.ID))
		}
		seen[s.ID] = struct{}{}
		s.Completed = false
		s.Image = ""
		own[i] = s
	}
	return &Flow{steps: own}, nil
}

// GrantConsent moves the flow out of awaiting_consent. Calling it again has
// no effect.
func (f *Flow) GrantConsent() {
	f.consent = true
}

// Phase reports the lifecycle state derived from consent and completion.
func (f *Flow) Phase() Phase {
	switch {
	case !f.consent:
		return PhaseAwaitingConsent
	case f.CanStartAnalysis():
		return PhaseReadyForAnalysis
	default:
		return PhaseCapturing
	}
}

// AttachImage marks step i completed with ref. When i is the focused step
// and not the last one, focus moves to the next step.
func (f *Flow) AttachImage(i int, ref string) (Step, error) {
	if err := f.checkIndex(i); err != nil {
		return Step{}, err
	}
	if err := f.checkConsent(); err != nil {
		return Step{}, err
	}
	if strings.TrimSpace(ref) == "" {
		return Step{}, apperr.WithMetadata(apperr.CodeInvalidImage, "image reference is empty",
			map[string]string{"index": strconv.Itoa(i)})
	}

	f.steps[i].Completed = true
	f.steps[i].Image = ref
	if i == f.current && f.current < len(f.steps)-1 {
		f.current++
	}
	return f.steps[i], nil
}

// Retake clears the image for step i. Focus does not move.
func (f *Flow) Retake(i int) (Step, error) {
	if err := f.checkIndex(i); err != nil {
		return Step{}, err
	}
	if err := f.checkConsent(); err != nil {
		return Step{}, err
	}
	f.steps[i].Completed = false
	f.steps[i].Image = ""
	return f.steps[i], nil
}

// GoToStep focuses step i. Once consent is granted any step may be visited
// in any order; before that it fails with CONSENT_REQUIRED like every other
// mutation.
func (f *Flow) GoToStep(i int) error {
	if err := f.checkIndex(i); err != nil {
		return err
	}
	if err := f.checkConsent(); err != nil {
		return err
	}
	f.current = i
	return nil
}

// Next focuses the following step; no-op on the last step or before consent.
func (f *Flow) Next() {
	if f.consent && f.current < len(f.steps)-1 {
		f.current++
	}
}

// Previous focuses the preceding step; no-op on the first step or before consent.
func (f *Flow) Previous() {
	if f.consent && f.current > 0 {
		f.current--
	}
}

// CanStartAnalysis reports whether every required step is completed.
// Optional steps never affect the answer.
func (f *Flow) CanStartAnalysis() bool {
	for _, s := range f.steps {
		if s.Required && !s.Completed {
			return false
		}
	}
	return true
}

// ProgressRatio is completed required steps over total required steps.
// A flow without required steps is fully progressed.
func (f *Flow) ProgressRatio() float64 {
	var total, done int
	for _, s := range f.steps {
		if !s.Required {
			continue
		}
		total++
		if s.Completed {
			done++
		}
	}
	if total == 0 {
		return 1
	}
	return float64(done) / float64(total)
}

// CurrentIndex returns the focused step index.
func (f *Flow) CurrentIndex() int { return f.current }

// Len returns the number of steps.
func (f *Flow) Len() int { return len(f.steps) }

// Steps returns a copy of the ordered step list.
func (f *Flow) Steps() []Step {
	out := make([]Step, len(f.steps))
	copy(out, f.steps)
	return out
}

// Snapshot returns a copy of the full flow state with derived values.
func (f *Flow) Snapshot() State {
	return State{
		Steps:            f.Steps(),
		CurrentIndex:     f.current,
		ConsentGiven:     f.consent,
		Phase:            f.Phase(),
		CanStartAnalysis: f.CanStartAnalysis(),
		ProgressRatio:    f.ProgressRatio(),
	}
}

func (f *Flow) checkIndex(i int) error {
	if i < 0 || i >= len(f.steps) {
		return apperr.WithMetadata(apperr.CodeInvalidStepIndex,
			fmt.Sprintf("step index %d out of range [0,%d)", i, len(f.steps)),
			map[string]string{"index": strconv.Itoa(i)})
	}
	return nil
}

func (f *Flow) checkConsent() error {
	if !f.consent {
		return apperr.New(apperr.CodeConsentRequired, "consent has not been granted")
	}
	return nil
}
