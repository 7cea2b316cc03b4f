package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownServiceType  = errors.New("unknown service type")
	ErrUnknownPropertySize = errors.New("unknown property size")
	ErrUnknownUrgencyLevel = errors.New("unknown urgency level")
	ErrUnknownJobScope     = errors.New("unknown job scope")
)

type ServiceType string

const (
	Fencing    ServiceType = "fencing"
	Roofing    ServiceType = "roofing"
	Electrical ServiceType = "electrical"
	Plumbing   ServiceType = "plumbing"
)

// ServiceTypes lists the trades in display order.
var ServiceTypes = []ServiceType{Fencing, Roofing, Electrical, Plumbing}

func ParseServiceType(v string) (ServiceType, error) {
	s := ServiceType(v)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownServiceType, v)
	}
	return s, nil
}

func (s ServiceType) Valid() bool {
	switch s {
	case Fencing, Roofing, Electrical, Plumbing:
		return true
	}
	return false
}

func (s ServiceType) Label() string {
	switch s {
	case Fencing:
		return "Fencing"
	case Roofing:
		return "Roofing"
	case Electrical:
		return "Electrical Works"
	case Plumbing:
		return "Plumbing Works"
	}
	return string(s)
}

type PropertySize string

const (
	Small      PropertySize = "small"
	Medium     PropertySize = "medium"
	Large      PropertySize = "large"
	Commercial PropertySize = "commercial"
)

var PropertySizes = []PropertySize{Small, Medium, Large, Commercial}

func ParsePropertySize(v string) (PropertySize, error) {
	p := PropertySize(v)
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPropertySize, v)
	}
	return p, nil
}

func (p PropertySize) Valid() bool {
	switch p {
	case Small, Medium, Large, Commercial:
		return true
	}
	return false
}

func (p PropertySize) Label() string {
	switch p {
	case Small:
		return "Small"
	case Medium:
		return "Medium"
	case Large:
		return "Large"
	case Commercial:
		return "Commercial"
	}
	return string(p)
}

func (p PropertySize) Description() string {
	switch p {
	case Small:
		return "Unit, apartment, or small home"
	case Medium:
		return "Standard 3-4 bedroom home"
	case Large:
		return "Large home or multi-story"
	case Commercial:
		return "Commercial or industrial property"
	}
	return ""
}

func (p PropertySize) multiplier() decimal.Decimal {
	switch p {
	case Small:
		return decimal.RequireFromString("1.0")
	case Medium:
		return decimal.RequireFromString("1.5")
	case Large:
		return decimal.RequireFromString("2.2")
	case Commercial:
		return decimal.RequireFromString("3.0")
	}
	panic(fmt.Sprintf("pricing: unhandled property size %q", string(p)))
}

type UrgencyLevel string

const (
	Standard  UrgencyLevel = "standard"
	Priority  UrgencyLevel = "priority"
	Emergency UrgencyLevel = "emergency"
)

var UrgencyLevels = []UrgencyLevel{Standard, Priority, Emergency}

func ParseUrgencyLevel(v string) (UrgencyLevel, error) {
	u := UrgencyLevel(v)
	if !u.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownUrgencyLevel, v)
	}
	return u, nil
}

func (u UrgencyLevel) Valid() bool {
	switch u {
	case Standard, Priority, Emergency:
		return true
	}
	return false
}

func (u UrgencyLevel) Label() string {
	switch u {
	case Standard:
		return "Standard"
	case Priority:
		return "Priority"
	case Emergency:
		return "Emergency"
	}
	return string(u)
}

func (u UrgencyLevel) Description() string {
	switch u {
	case Standard:
		return "Within 1-2 weeks"
	case Priority:
		return "Within 2-3 days"
	case Emergency:
		return "Same day / urgent"
	}
	return ""
}

func (u UrgencyLevel) multiplier() decimal.Decimal {
	switch u {
	case Standard:
		return decimal.RequireFromString("1.0")
	case Priority:
		return decimal.RequireFromString("1.25")
	case Emergency:
		return decimal.RequireFromString("1.75")
	}
	panic(fmt.Sprintf("pricing: unhandled urgency level %q", string(u)))
}

type JobScope string

const (
	Minor    JobScope = "minor"
	Moderate JobScope = "moderate"
	Major    JobScope = "major"
	Full     JobScope = "full"
)

var JobScopes = []JobScope{Minor, Moderate, Major, Full}

func ParseJobScope(v string) (JobScope, error) {
	j := JobScope(v)
	if !j.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownJobScope, v)
	}
	return j, nil
}

func (j JobScope) Valid() bool {
	switch j {
	case Minor, Moderate, Major, Full:
		return true
	}
	return false
}

func (j JobScope) Label() string {
	switch j {
	case Minor:
		return "Minor"
	case Moderate:
		return "Moderate"
	case Major:
		return "Major"
	case Full:
		return "Complete"
	}
	return string(j)
}

func (j JobScope) Description() string {
	switch j {
	case Minor:
		return "Small repair or fix"
	case Moderate:
		return "Standard repair or installation"
	case Major:
		return "Significant work required"
	case Full:
		return "Full installation or replacement"
	}
	return ""
}

func (j JobScope) multiplier() decimal.Decimal {
	switch j {
	case Minor:
		return decimal.RequireFromString("0.5")
	case Moderate:
		return decimal.RequireFromString("1.0")
	case Major:
		return decimal.RequireFromString("2.0")
	case Full:
		return decimal.RequireFromString("3.5")
	}
	panic(fmt.Sprintf("pricing: unhandled job scope %q", string(j)))
}
