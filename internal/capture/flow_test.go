package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dental-dashboard/internal/platform/apperr"
)

func newConsentedFlow(t *testing.T) *Flow {
	t.Helper()
	f, err := NewFlow(DefaultSteps())
	require.NoError(t, err)
	f.GrantConsent()
	return f
}

func completeRequired(t *testing.T, f *Flow) {
	t.Helper()
	for i, s := range f.Steps() {
		if s.Required {
			_, err := f.AttachImage(i, "img-"+s.ID)
			require.NoError(t, err)
		}
	}
}

func TestNewFlowStartsEmpty(t *testing.T) {
	steps := DefaultSteps()
	steps[0].Completed = true
	steps[0].Image = "stale"

	f, err := NewFlow(steps)
	require.NoError(t, err)

	assert.Equal(t, PhaseAwaitingConsent, f.Phase())
	assert.Equal(t, 0, f.CurrentIndex())
	for _, s := range f.Steps() {
		assert.False(t, s.Completed)
		assert.Empty(t, s.Image)
	}
}

func TestNewFlowRejectsBadStepLists(t *testing.T) {
	_, err := NewFlow(nil)
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidField))

	_, err = NewFlow([]Step{{ID: "a"}, {ID: "a"}})
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidField))

	_, err = NewFlow([]Step{{ID: " "}})
	assert.True(t, apperr.HasCode(err, apperr.CodeMissingRequiredField))
}

func TestGrantConsentIsIdempotent(t *testing.T) {
	f := newConsentedFlow(t)
	f.Next()
	f.GrantConsent()

	assert.Equal(t, PhaseCapturing, f.Phase())
	assert.Equal(t, 1, f.CurrentIndex())
}

func TestOperationsRequireConsent(t *testing.T) {
	f, err := NewFlow(DefaultSteps())
	require.NoError(t, err)
	before := f.Snapshot()

	_, err = f.AttachImage(0, "img")
	assert.True(t, apperr.HasCode(err, apperr.CodeConsentRequired))
	_, err = f.Retake(0)
	assert.True(t, apperr.HasCode(err, apperr.CodeConsentRequired))
	assert.True(t, apperr.HasCode(f.GoToStep(2), apperr.CodeConsentRequired))
	f.Next()

	assert.Equal(t, before, f.Snapshot())
}

func TestAttachImageOnFocusedStepAdvances(t *testing.T) {
	f := newConsentedFlow(t)

	step, err := f.AttachImage(0, "data:image/jpeg;base64,AAA")
	require.NoError(t, err)

	assert.True(t, step.Completed)
	assert.Equal(t, "data:image/jpeg;base64,AAA", step.Image)
	assert.Equal(t, 1, f.CurrentIndex())
}

func TestAttachImageOnOtherStepKeepsFocus(t *testing.T) {
	f := newConsentedFlow(t)

	_, err := f.AttachImage(3, "img")
	require.NoError(t, err)

	assert.Equal(t, 0, f.CurrentIndex())
	assert.True(t, f.Steps()[3].Completed)
}

func TestAttachImageOnLastStepDoesNotAdvance(t *testing.T) {
	f := newConsentedFlow(t)
	last := f.Len() - 1
	require.NoError(t, f.GoToStep(last))

	_, err := f.AttachImage(last, "img")
	require.NoError(t, err)

	assert.Equal(t, last, f.CurrentIndex())
}

func TestAttachImageRejectsEmptyReference(t *testing.T) {
	f := newConsentedFlow(t)
	before := f.Snapshot()

	_, err := f.AttachImage(0, "  ")

	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidImage))
	assert.Equal(t, before, f.Snapshot())
}

func TestInvalidStepIndexLeavesStateUnchanged(t *testing.T) {
	f := newConsentedFlow(t)
	_, err := f.AttachImage(0, "img")
	require.NoError(t, err)
	before := f.Snapshot()

	for _, idx := range []int{-1, f.Len(), f.Len() + 7} {
		_, err := f.AttachImage(idx, "img")
		assert.True(t, apperr.HasCode(err, apperr.CodeInvalidStepIndex), "attach %d", idx)

		_, err = f.Retake(idx)
		assert.True(t, apperr.HasCode(err, apperr.CodeInvalidStepIndex), "retake %d", idx)

		err = f.GoToStep(idx)
		assert.True(t, apperr.HasCode(err, apperr.CodeInvalidStepIndex), "goto %d", idx)
	}

	assert.Equal(t, before, f.Snapshot())
}

func TestRetakeClearsStepAndKeepsFocus(t *testing.T) {
	f := newConsentedFlow(t)
	completeRequired(t, f)
	require.True(t, f.CanStartAnalysis())
	focus := f.CurrentIndex()

	step, err := f.Retake(1)
	require.NoError(t, err)

	assert.False(t, step.Completed)
	assert.Empty(t, step.Image)
	assert.Equal(t, focus, f.CurrentIndex())
	assert.False(t, f.CanStartAnalysis())
	assert.Equal(t, PhaseCapturing, f.Phase())
}

func TestRetakeOptionalStepKeepsAnalysisOpen(t *testing.T) {
	f := newConsentedFlow(t)
	completeRequired(t, f)
	_, err := f.AttachImage(4, "img")
	require.NoError(t, err)

	_, err = f.Retake(4)
	require.NoError(t, err)

	assert.True(t, f.CanStartAnalysis())
}

func TestCanStartAnalysisIgnoresOptionalSteps(t *testing.T) {
	f := newConsentedFlow(t)
	assert.False(t, f.CanStartAnalysis())

	_, err := f.AttachImage(4, "img")
	require.NoError(t, err)
	_, err = f.AttachImage(5, "img")
	require.NoError(t, err)
	assert.False(t, f.CanStartAnalysis(), "optional steps alone never open analysis")

	completeRequired(t, f)
	assert.True(t, f.CanStartAnalysis())
	assert.Equal(t, PhaseReadyForAnalysis, f.Phase())
}

func TestGoToStepAndBoundedNavigation(t *testing.T) {
	f := newConsentedFlow(t)

	f.Previous()
	assert.Equal(t, 0, f.CurrentIndex())

	require.NoError(t, f.GoToStep(4))
	assert.Equal(t, 4, f.CurrentIndex())

	f.Next()
	f.Next()
	assert.Equal(t, 5, f.CurrentIndex())

	f.Previous()
	assert.Equal(t, 4, f.CurrentIndex())
}

func TestProgressRatio(t *testing.T) {
	f := newConsentedFlow(t)
	assert.Equal(t, 0.0, f.ProgressRatio())

	_, err := f.AttachImage(0, "img")
	require.NoError(t, err)
	assert.InDelta(t, 0.25, f.ProgressRatio(), 1e-9)

	_, err = f.AttachImage(5, "img")
	require.NoError(t, err)
	assert.InDelta(t, 0.25, f.ProgressRatio(), 1e-9)

	completeRequired(t, f)
	assert.Equal(t, 1.0, f.ProgressRatio())
}

func TestProgressRatioWithoutRequiredSteps(t *testing.T) {
	f, err := NewFlow([]Step{{ID: "extra", Category: CategoryIntraoral}})
	require.NoError(t, err)

	assert.Equal(t, 1.0, f.ProgressRatio())
	assert.True(t, f.CanStartAnalysis())
}

func TestSnapshotIsDetached(t *testing.T) {
	f := newConsentedFlow(t)
	snap := f.Snapshot()

	snap.Steps[0].Completed = true
	snap.Steps[0].Image = "tampered"

	assert.False(t, f.Steps()[0].Completed)
}
