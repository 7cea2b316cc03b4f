// Package wizard implements the four step instant quote flow as a pure state
// machine. The HTTP layer keeps the State in an encrypted cookie and feeds user
// actions through Apply.
package wizard

import (
	"errors"
	"fmt"

	"steprighthomes/internal/pricing"
)

var (
	ErrCannotProceed     = errors.New("current step has no selection")
	ErrInvalidSelection  = errors.New("invalid selection for current step")
	ErrResetUnavailable  = errors.New("reset is only available once the estimate is shown")
	ErrResultVisible     = errors.New("selections are locked while the estimate is shown")
	ErrAlreadyAtEstimate = errors.New("estimate is already shown")
	ErrUnknownEvent      = errors.New("unknown wizard event")
)

// calculate is swapped in tests to count engine invocations.
var calculate = pricing.Calculate

type Step int

const (
	StepService Step = iota + 1
	StepPropertySize
	StepUrgency
	StepScope
)

const TotalSteps = 4

func (s Step) Label() string {
	switch s {
	case StepService:
		return "Select Service"
	case StepPropertySize:
		return "Property Size"
	case StepUrgency:
		return "Urgency"
	case StepScope:
		return "Job Scope"
	}
	return ""
}

func (s Step) Valid() bool {
	return s >= StepService && s <= StepScope
}

// Selections accumulates the answers; a zero value field is unset.
type Selections struct {
	Service      pricing.ServiceType  `json:"service,omitempty"`
	PropertySize pricing.PropertySize `json:"propertySize,omitempty"`
	Urgency      pricing.UrgencyLevel `json:"urgency,omitempty"`
	Scope        pricing.JobScope     `json:"scope,omitempty"`
}

// Complete reports whether all four answers are present.
func (s Selections) Complete() bool {
	return s.Service != "" && s.PropertySize != "" && s.Urgency != "" && s.Scope != ""
}

func (s Selections) Factors() (pricing.Factors, bool) {
	if !s.Complete() {
		return pricing.Factors{}, false
	}
	return pricing.Factors{
		Service:      s.Service,
		PropertySize: s.PropertySize,
		Urgency:      s.Urgency,
		Scope:        s.Scope,
	}, true
}

type State struct {
	Step          Step              `json:"step"`
	Selections    Selections        `json:"selections"`
	ResultVisible bool              `json:"resultVisible"`
	Result        *pricing.Estimate `json:"result,omitempty"`
}

func New() State {
	return State{Step: StepService}
}

// Normalize returns s if it is a state the machine can reach and a fresh
// state otherwise. Used on state decoded from untrusted storage.
func (s State) Normalize() State {
	if !s.Step.Valid() {
		return New()
	}

	sel := s.Selections
	if (sel.Service != "" && !sel.Service.Valid()) ||
		(sel.PropertySize != "" && !sel.PropertySize.Valid()) ||
		(sel.Urgency != "" && !sel.Urgency.Valid()) ||
		(sel.Scope != "" && !sel.Scope.Valid()) {
		return New()
	}

	if s.ResultVisible && (!sel.Complete() || s.Step != StepScope || s.Result == nil) {
		return New()
	}

	if !s.ResultVisible {
		s.Result = nil
	}

	return s
}

// Current returns the value recorded for the current step, or "".
func (s State) Current() string {
	switch s.Step {
	case StepService:
		return string(s.Selections.Service)
	case StepPropertySize:
		return string(s.Selections.PropertySize)
	case StepUrgency:
		return string(s.Selections.Urgency)
	case StepScope:
		return string(s.Selections.Scope)
	}
	return ""
}

// CanProceed is the gating check for Advance.
func (s State) CanProceed() bool {
	return !s.ResultVisible && s.Current() != ""
}

// Progress is the percentage shown in the progress bar.
func (s State) Progress() int {
	if s.ResultVisible {
		return 100
	}
	return int(s.Step) * 100 / TotalSteps
}

// Event is a user action. The set is closed: Select, Advance, Retreat, Reset.
type Event interface {
	isEvent()
}

type Select struct {
	Value string
}

type Advance struct{}

type Retreat struct{}

type Reset struct{}

func (Select) isEvent()  {}
func (Advance) isEvent() {}
func (Retreat) isEvent() {}
func (Reset) isEvent()   {}

// Apply is the transition function. A rejected event returns s unchanged
// together with the reason.
func Apply(s State, e Event) (State, error) {
	switch ev := e.(type) {
	case Select:
		return applySelect(s, ev.Value)
	case Advance:
		return applyAdvance(s)
	case Retreat:
		return applyRetreat(s), nil
	case Reset:
		if !s.ResultVisible {
			return s, ErrResetUnavailable
		}
		return New(), nil
	}
	return s, fmt.Errorf("%w: %T", ErrUnknownEvent, e)
}

func applySelect(s State, value string) (State, error) {
	if s.ResultVisible {
		return s, ErrResultVisible
	}

	var err error
	next := s
	switch s.Step {
	case StepService:
		next.Selections.Service, err = pricing.ParseServiceType(value)
	case StepPropertySize:
		next.Selections.PropertySize, err = pricing.ParsePropertySize(value)
	case StepUrgency:
		next.Selections.Urgency, err = pricing.ParseUrgencyLevel(value)
	case StepScope:
		next.Selections.Scope, err = pricing.ParseJobScope(value)
	default:
		return s, fmt.Errorf("%w: step %d", ErrInvalidSelection, s.Step)
	}
	if err != nil {
		return s, fmt.Errorf("%w: %w", ErrInvalidSelection, err)
	}

	return next, nil
}

func applyAdvance(s State) (State, error) {
	if s.ResultVisible {
		return s, ErrAlreadyAtEstimate
	}
	if !s.CanProceed() {
		return s, ErrCannotProceed
	}

	if s.Step < StepScope {
		s.Step++
		return s, nil
	}

	factors, ok := s.Selections.Factors()
	if !ok {
		return s, ErrCannotProceed
	}

	est := calculate(factors)
	s.Result = &est
	s.ResultVisible = true
	return s, nil
}

func applyRetreat(s State) State {
	if s.ResultVisible {
		s.ResultVisible = false
		s.Result = nil
		return s
	}
	if s.Step > StepService {
		s.Step--
	}
	return s
}
