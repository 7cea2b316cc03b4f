// Package pricing turns the four quote selections into an indicative price
// range. It is an approximation tool for the instant quote page, not a
// pricing engine for invoices.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency all estimates are expressed in.
const Currency = "AUD"

var (
	lowerVariance = decimal.RequireFromString("0.85")
	upperVariance = decimal.RequireFromString("1.15")
)

// Factors is the complete set of selections an estimate is computed from.
type Factors struct {
	Service      ServiceType  `json:"service"`
	PropertySize PropertySize `json:"propertySize"`
	Urgency      UrgencyLevel `json:"urgency"`
	Scope        JobScope     `json:"scope"`
}

// Valid reports whether every selection belongs to its closed set.
func (f Factors) Valid() bool {
	return f.Service.Valid() && f.PropertySize.Valid() && f.Urgency.Valid() && f.Scope.Valid()
}

type Estimate struct {
	MinPrice          int64    `json:"minPrice"`
	MaxPrice          int64    `json:"maxPrice"`
	EstimatedDuration string   `json:"estimatedDuration"`
	Factors           []string `json:"factors"`
}

// Calculate computes the estimate for f. It has no failure modes for valid
// input; an out-of-range enum value is a programming error and panics.
//
// Both bounds are rounded to the nearest 10, ties away from zero.
func Calculate(f Factors) Estimate {
	base := basePricing(f.Service)

	total := f.PropertySize.multiplier().
		Mul(f.Urgency.multiplier()).
		Mul(f.Scope.multiplier())

	minPrice := decimal.NewFromInt(base.min).Mul(total).Mul(lowerVariance).Round(-1)
	maxPrice := decimal.NewFromInt(base.max).Mul(total).Mul(upperVariance).Round(-1)

	return Estimate{
		MinPrice:          minPrice.IntPart(),
		MaxPrice:          maxPrice.IntPart(),
		EstimatedDuration: duration(f.Service, f.Scope),
		Factors:           serviceFactors(f.Service),
	}
}

// AllFactors enumerates every valid combination of selections in display order.
func AllFactors() []Factors {
	out := make([]Factors, 0, len(ServiceTypes)*len(PropertySizes)*len(UrgencyLevels)*len(JobScopes))
	for _, service := range ServiceTypes {
		for _, size := range PropertySizes {
			for _, urgency := range UrgencyLevels {
				for _, scope := range JobScopes {
					out = append(out, Factors{
						Service:      service,
						PropertySize: size,
						Urgency:      urgency,
						Scope:        scope,
					})
				}
			}
		}
	}
	return out
}

type priceRange struct {
	min int64
	max int64
}

func basePricing(s ServiceType) priceRange {
	switch s {
	case Fencing:
		return priceRange{min: 500, max: 1500}
	case Roofing:
		return priceRange{min: 800, max: 2500}
	case Electrical:
		return priceRange{min: 150, max: 800}
	case Plumbing:
		return priceRange{min: 120, max: 600}
	}
	panic(fmt.Sprintf("pricing: unhandled service type %q", string(s)))
}

func duration(s ServiceType, scope JobScope) string {
	switch s {
	case Fencing:
		return pick(scope, "1-2 hours", "1-2 days", "3-5 days", "1-2 weeks")
	case Roofing:
		return pick(scope, "2-4 hours", "1-2 days", "3-7 days", "1-3 weeks")
	case Electrical:
		return pick(scope, "1-2 hours", "2-4 hours", "1-2 days", "2-5 days")
	case Plumbing:
		return pick(scope, "1-2 hours", "2-4 hours", "1 day", "2-4 days")
	}
	panic(fmt.Sprintf("pricing: unhandled service type %q", string(s)))
}

func pick(scope JobScope, minor, moderate, major, full string) string {
	switch scope {
	case Minor:
		return minor
	case Moderate:
		return moderate
	case Major:
		return major
	case Full:
		return full
	}
	panic(fmt.Sprintf("pricing: unhandled job scope %q", string(scope)))
}

// serviceFactors returns the informational cost drivers shown next to an
// estimate. They depend on the service only.
func serviceFactors(s ServiceType) []string {
	switch s {
	case Fencing:
		return []string{
			"Material type (timber, Colorbond, etc.)",
			"Linear meters required",
			"Ground conditions",
			"Permit requirements",
		}
	case Roofing:
		return []string{
			"Roof material and pitch",
			"Accessibility",
			"Extent of damage",
			"Weather conditions",
		}
	case Electrical:
		return []string{
			"Complexity of wiring",
			"Switchboard condition",
			"Safety compliance needs",
			"Number of circuits",
		}
	case Plumbing:
		return []string{
			"Pipe material and age",
			"Access to plumbing",
			"Fixture quality",
			"Drainage requirements",
		}
	}
	panic(fmt.Sprintf("pricing: unhandled service type %q", string(s)))
}
