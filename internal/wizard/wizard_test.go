package wizard

import (
	"testing"

	"steprighthomes/internal/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustApply(t *testing.T, s State, e Event) State {
	t.Helper()
	next, err := Apply(s, e)
	require.NoError(t, err)
	return next
}

func completeWizard(t *testing.T) State {
	t.Helper()
	s := New()
	for _, v := range []string{"fencing", "medium", "standard", "moderate"} {
		s = mustApply(t, s, Select{Value: v})
		s = mustApply(t, s, Advance{})
	}
	return s
}

func TestNew(t *testing.T) {
	s := New()
	assert.Equal(t, StepService, s.Step)
	assert.Equal(t, Selections{}, s.Selections)
	assert.False(t, s.ResultVisible)
	assert.False(t, s.CanProceed())
	assert.Equal(t, 25, s.Progress())
}

func TestAdvance_BlockedUntilSelectionMade(t *testing.T) {
	s := New()

	next, err := Apply(s, Advance{})
	assert.ErrorIs(t, err, ErrCannotProceed)
	assert.Equal(t, s, next)

	s = mustApply(t, s, Select{Value: "roofing"})
	assert.True(t, s.CanProceed())
	assert.Equal(t, StepService, s.Step, "select must not auto-advance")

	s = mustApply(t, s, Advance{})
	assert.Equal(t, StepPropertySize, s.Step)
	assert.False(t, s.CanProceed())
}

func TestSelect_RejectsValueFromAnotherStep(t *testing.T) {
	s := New()

	next, err := Apply(s, Select{Value: "medium"})
	assert.ErrorIs(t, err, ErrInvalidSelection)
	assert.ErrorIs(t, err, pricing.ErrUnknownServiceType)
	assert.Equal(t, s, next)
}

func TestSelect_OverwritesCurrentStep(t *testing.T) {
	s := New()
	s = mustApply(t, s, Select{Value: "roofing"})
	s = mustApply(t, s, Select{Value: "plumbing"})
	assert.Equal(t, pricing.Plumbing, s.Selections.Service)
}

func TestCompletingWizard_ShowsMatchingEstimate(t *testing.T) {
	s := completeWizard(t)

	require.True(t, s.ResultVisible)
	require.NotNil(t, s.Result)
	assert.Equal(t, 100, s.Progress())

	want := pricing.Calculate(pricing.Factors{
		Service:      pricing.Fencing,
		PropertySize: pricing.Medium,
		Urgency:      pricing.Standard,
		Scope:        pricing.Moderate,
	})
	assert.Equal(t, want, *s.Result)
}

func TestEngineInvokedOncePerCompletedPass(t *testing.T) {
	calls := 0
	orig := calculate
	calculate = func(f pricing.Factors) pricing.Estimate {
		calls++
		return orig(f)
	}
	t.Cleanup(func() { calculate = orig })

	s := New()
	for _, v := range []string{"electrical", "small", "priority"} {
		s = mustApply(t, s, Select{Value: v})
		s = mustApply(t, s, Advance{})
	}
	assert.Zero(t, calls)

	s = mustApply(t, s, Select{Value: "major"})
	s = mustApply(t, s, Advance{})
	assert.Equal(t, 1, calls)

	_, err := Apply(s, Advance{})
	assert.ErrorIs(t, err, ErrAlreadyAtEstimate)
	assert.Equal(t, 1, calls)
}

func TestRetreat(t *testing.T) {
	t.Run("no-op at step one", func(t *testing.T) {
		s := mustApply(t, New(), Retreat{})
		assert.Equal(t, New(), s)
	})

	t.Run("steps back keeping selections", func(t *testing.T) {
		s := New()
		s = mustApply(t, s, Select{Value: "fencing"})
		s = mustApply(t, s, Advance{})
		s = mustApply(t, s, Select{Value: "large"})
		s = mustApply(t, s, Retreat{})

		assert.Equal(t, StepService, s.Step)
		assert.Equal(t, pricing.Large, s.Selections.PropertySize)
		assert.True(t, s.CanProceed())
	})

	t.Run("from estimate returns to scope step", func(t *testing.T) {
		done := completeWizard(t)
		s := mustApply(t, done, Retreat{})

		assert.Equal(t, StepScope, s.Step)
		assert.False(t, s.ResultVisible)
		assert.Nil(t, s.Result)
		assert.Equal(t, done.Selections, s.Selections)

		again := mustApply(t, s, Advance{})
		assert.Equal(t, *done.Result, *again.Result)
	})
}

func TestReset(t *testing.T) {
	s := New()
	s = mustApply(t, s, Select{Value: "fencing"})

	_, err := Apply(s, Reset{})
	assert.ErrorIs(t, err, ErrResetUnavailable)

	s = mustApply(t, completeWizard(t), Reset{})
	assert.Equal(t, New(), s)
}

func TestSelect_LockedWhileEstimateShown(t *testing.T) {
	s := completeWizard(t)
	_, err := Apply(s, Select{Value: "full"})
	assert.ErrorIs(t, err, ErrResultVisible)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, New(), State{}.Normalize())
	assert.Equal(t, New(), State{Step: 7}.Normalize())
	assert.Equal(t, New(), State{Step: StepService, Selections: Selections{Service: "pool"}}.Normalize())
	assert.Equal(t, New(), State{Step: StepScope, ResultVisible: true}.Normalize())

	done := completeWizard(t)
	assert.Equal(t, done, done.Normalize())

	partial := State{Step: StepUrgency, Selections: Selections{Service: pricing.Roofing, PropertySize: pricing.Small}}
	assert.Equal(t, partial, partial.Normalize())
}
