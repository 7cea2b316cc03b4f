package server

import (
	"context"
	"errors"
	"net/http"

	"steprighthomes/internal"
	"steprighthomes/internal/metrics"
	"steprighthomes/internal/pricing"
	"steprighthomes/internal/wizard"
	"steprighthomes/pkg/types"
)

func (s *Service) loadWizard(r *http.Request) wizard.State {
	var state wizard.State
	if !s.readCookie(r, internal.COOKIE_WIZARD_NAME, &state) {
		return wizard.New()
	}
	return state.Normalize()
}

func wizardQuestion(step wizard.Step) string {
	switch step {
	case wizard.StepService:
		return "What service do you need?"
	case wizard.StepPropertySize:
		return "What's your property size?"
	case wizard.StepUrgency:
		return "How urgent is this job?"
	case wizard.StepScope:
		return "What's the scope of work?"
	}
	return ""
}

func (s *Service) wizardOptions(ctx context.Context, state wizard.State) ([]types.OptionData, error) {
	current := state.Current()
	var options []types.OptionData

	switch state.Step {
	case wizard.StepService:
		services, err := s.catalog.Services(ctx)
		if err != nil {
			return nil, err
		}
		for _, svc := range services {
			if !pricing.ServiceType(svc.ID).Valid() {
				continue
			}
			options = append(options, types.OptionData{
				Value:       svc.ID,
				Label:       svc.Title,
				Description: svc.Description,
				Icon:        svc.Icon,
				Selected:    svc.ID == current,
			})
		}
	case wizard.StepPropertySize:
		for _, v := range pricing.PropertySizes {
			options = append(options, types.OptionData{Value: string(v), Label: v.Label(), Description: v.Description(), Selected: string(v) == current})
		}
	case wizard.StepUrgency:
		for _, v := range pricing.UrgencyLevels {
			options = append(options, types.OptionData{Value: string(v), Label: v.Label(), Description: v.Description(), Selected: string(v) == current})
		}
	case wizard.StepScope:
		for _, v := range pricing.JobScopes {
			options = append(options, types.OptionData{Value: string(v), Label: v.Label(), Description: v.Description(), Selected: string(v) == current})
		}
	}

	return options, nil
}

func estimateView(sel wizard.Selections, est *pricing.Estimate) *types.EstimateView {
	return &types.EstimateView{
		MinPrice:          formatAUD(est.MinPrice),
		MaxPrice:          formatAUD(est.MaxPrice),
		EstimatedDuration: est.EstimatedDuration,
		Factors:           est.Factors,
		Summary: []types.SummaryItem{
			{Label: "Service", Value: sel.Service.Label()},
			{Label: "Property", Value: sel.PropertySize.Label()},
			{Label: "Urgency", Value: sel.Urgency.Label()},
			{Label: "Scope", Value: sel.Scope.Label()},
		},
	}
}

func (s *Service) handleGetQuote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state := s.loadWizard(r)

	data := &types.QuoteWizardPageData{
		BasePageData:  types.BasePageData{Title: "Instant Quote Calculator"},
		Step:          int(state.Step),
		TotalSteps:    wizard.TotalSteps,
		StepLabel:     state.Step.Label(),
		Question:      wizardQuestion(state.Step),
		Progress:      state.Progress(),
		CanProceed:    state.CanProceed(),
		CanGoBack:     state.ResultVisible || state.Step > wizard.StepService,
		ResultVisible: state.ResultVisible,
		Policy:        types.Pricing,
		Error:         r.URL.Query().Get("error"),
	}

	if state.ResultVisible {
		data.Estimate = estimateView(state.Selections, state.Result)
	} else {
		options, err := s.wizardOptions(ctx, state)
		if err != nil {
			s.logger.WithError(err).Error("failed to load wizard options")
			s.internalServerError(w)
			return
		}
		data.Options = options
	}

	if err := s.renderTemplate(w, r, "page.quote", data); err != nil {
		s.logger.WithError(err).Error("failed to render quote page")
		s.internalServerError(w)
		return
	}
}

func wizardEvent(action types.WizardAction) (wizard.Event, bool) {
	switch action.Action {
	case types.WizardActionSelect:
		return wizard.Select{Value: action.Value}, true
	case types.WizardActionNext:
		return wizard.Advance{}, true
	case types.WizardActionBack:
		return wizard.Retreat{}, true
	case types.WizardActionReset:
		return wizard.Reset{}, true
	}
	return nil, false
}

func wizardErrorMessage(err error) string {
	switch {
	case errors.Is(err, wizard.ErrCannotProceed):
		return "Please choose an option to continue."
	case errors.Is(err, wizard.ErrInvalidSelection):
		return "That option isn't available for this step."
	case errors.Is(err, wizard.ErrResultVisible):
		return "Go back to change your answers."
	case errors.Is(err, wizard.ErrResetUnavailable):
		return "Finish the steps to see your estimate first."
	case errors.Is(err, wizard.ErrAlreadyAtEstimate):
		return "Your estimate is already shown."
	}
	return "Something went wrong, please try again."
}

func (s *Service) handlePostQuote(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.logger.WithError(err).Error("failed to parse form")
		http.Error(w, "invalid form payload", http.StatusBadRequest)
		return
	}

	var action types.WizardAction
	if err := decoder.Decode(&action, r.Form); err != nil {
		s.logger.WithError(err).Error("failed to decode form")
		http.Error(w, "invalid form payload", http.StatusBadRequest)
		return
	}

	event, ok := wizardEvent(action)
	if !ok {
		http.Error(w, "unknown action", http.StatusBadRequest)
		return
	}

	state := s.loadWizard(r)
	next, err := wizard.Apply(state, event)
	if err != nil {
		metrics.WizardTransitions.WithLabelValues(action.Action, "rejected").Inc()
		s.logger.WithError(err).WithField("action", action.Action).Info("wizard event rejected")
		s.redirectWithError(w, r, "/quote", wizardErrorMessage(err))
		return
	}

	metrics.WizardTransitions.WithLabelValues(action.Action, "accepted").Inc()
	if next.ResultVisible && !state.ResultVisible {
		metrics.EstimatesCalculated.WithLabelValues(string(next.Selections.Service), "wizard").Inc()
	}

	if err := s.writeCookie(w, internal.COOKIE_WIZARD_NAME, next, wizardCookieAge); err != nil {
		s.logger.WithError(err).Error("failed to encode wizard state")
		s.internalServerError(w)
		return
	}

	http.Redirect(w, r, "/quote", http.StatusSeeOther)
}
