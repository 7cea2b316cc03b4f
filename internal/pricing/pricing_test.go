package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculate_KnownCombinations(t *testing.T) {
	tests := []struct {
		name     string
		factors  Factors
		min      int64
		max      int64
		duration string
	}{
		{
			name:     "fencing medium standard moderate",
			factors:  Factors{Service: Fencing, PropertySize: Medium, Urgency: Standard, Scope: Moderate},
			min:      640,
			max:      2590,
			duration: "1-2 days",
		},
		{
			name:     "roofing commercial emergency full",
			factors:  Factors{Service: Roofing, PropertySize: Commercial, Urgency: Emergency, Scope: Full},
			min:      12500,
			max:      52830,
			duration: "1-3 weeks",
		},
		{
			name:     "plumbing small standard minor rounds the tie up",
			factors:  Factors{Service: Plumbing, PropertySize: Small, Urgency: Standard, Scope: Minor},
			min:      50,
			max:      350,
			duration: "1-2 hours",
		},
		{
			name:     "electrical large priority major",
			factors:  Factors{Service: Electrical, PropertySize: Large, Urgency: Priority, Scope: Major},
			min:      700,
			max:      5060,
			duration: "1-2 days",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(tt.factors)
			assert.Equal(t, tt.min, got.MinPrice)
			assert.Equal(t, tt.max, got.MaxPrice)
			assert.Equal(t, tt.duration, got.EstimatedDuration)
			assert.Len(t, got.Factors, 4)
		})
	}
}

func TestCalculate_AllCombinationsHoldInvariants(t *testing.T) {
	all := AllFactors()
	require.Len(t, all, 192)

	durations := map[ServiceType]map[JobScope]bool{}
	for _, f := range all {
		est := Calculate(f)

		assert.LessOrEqual(t, est.MinPrice, est.MaxPrice, "%+v", f)
		assert.GreaterOrEqual(t, est.MinPrice, int64(0), "%+v", f)
		assert.Zero(t, est.MinPrice%10, "%+v", f)
		assert.Zero(t, est.MaxPrice%10, "%+v", f)
		assert.NotEmpty(t, est.EstimatedDuration)

		if durations[f.Service] == nil {
			durations[f.Service] = map[JobScope]bool{}
		}
		durations[f.Service][f.Scope] = true
	}

	count := 0
	for _, scopes := range durations {
		count += len(scopes)
	}
	assert.Equal(t, 16, count)
}

func TestCalculate_IsDeterministic(t *testing.T) {
	for _, f := range AllFactors() {
		assert.Equal(t, Calculate(f), Calculate(f))
	}
}

func TestCalculate_FactorsDependOnServiceOnly(t *testing.T) {
	a := Calculate(Factors{Service: Roofing, PropertySize: Small, Urgency: Standard, Scope: Minor})
	b := Calculate(Factors{Service: Roofing, PropertySize: Commercial, Urgency: Emergency, Scope: Full})
	assert.Equal(t, a.Factors, b.Factors)
	assert.Equal(t, "Roof material and pitch", a.Factors[0])
}

func TestCalculate_ReturnsFreshFactorSlices(t *testing.T) {
	f := Factors{Service: Fencing, PropertySize: Small, Urgency: Standard, Scope: Minor}

	first := Calculate(f)
	first.Factors[0] = "mutated"

	second := Calculate(f)
	assert.Equal(t, "Material type (timber, Colorbond, etc.)", second.Factors[0])
}

func TestCalculate_PanicsOnUnknownEnum(t *testing.T) {
	assert.Panics(t, func() {
		Calculate(Factors{Service: "landscaping", PropertySize: Small, Urgency: Standard, Scope: Minor})
	})
	assert.Panics(t, func() {
		Calculate(Factors{Service: Fencing, PropertySize: "tiny", Urgency: Standard, Scope: Minor})
	})
}

func TestParse(t *testing.T) {
	s, err := ParseServiceType("plumbing")
	require.NoError(t, err)
	assert.Equal(t, Plumbing, s)

	_, err = ParseServiceType("gardening")
	assert.ErrorIs(t, err, ErrUnknownServiceType)

	_, err = ParsePropertySize("huge")
	assert.ErrorIs(t, err, ErrUnknownPropertySize)

	_, err = ParseUrgencyLevel("")
	assert.ErrorIs(t, err, ErrUnknownUrgencyLevel)

	scope, err := ParseJobScope("full")
	require.NoError(t, err)
	assert.Equal(t, "Complete", scope.Label())
}

func TestFactors_Valid(t *testing.T) {
	assert.True(t, Factors{Service: Fencing, PropertySize: Small, Urgency: Standard, Scope: Minor}.Valid())
	assert.False(t, Factors{Service: Fencing, PropertySize: Small, Urgency: Standard}.Valid())
}
