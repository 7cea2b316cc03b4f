package server

import (
	"encoding/json"
	"io"
	"net/http"

	"steprighthomes/internal/metrics"
	"steprighthomes/internal/pricing"
	"steprighthomes/pkg/types"

	"github.com/xeipuuv/gojsonschema"
)

const maxEstimateBody = 16 << 10

var estimateSchema = mustEstimateSchema()

func enumOf[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func mustEstimateSchema() *gojsonschema.Schema {
	schema := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"service", "propertySize", "urgency", "scope"},
		"properties": map[string]any{
			"service":      map[string]any{"type": "string", "enum": enumOf(pricing.ServiceTypes)},
			"propertySize": map[string]any{"type": "string", "enum": enumOf(pricing.PropertySizes)},
			"urgency":      map[string]any{"type": "string", "enum": enumOf(pricing.UrgencyLevels)},
			"scope":        map[string]any{"type": "string", "enum": enumOf(pricing.JobScopes)},
		},
	}

	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		panic(err)
	}
	return compiled
}

type apiError struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

type estimateResponse struct {
	Factors  pricing.Factors  `json:"factors"`
	Estimate pricing.Estimate `json:"estimate"`
	Currency string           `json:"currency"`
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("failed to encode json response")
	}
}

func (s *Service) handleAPIServices(w http.ResponseWriter, r *http.Request) {
	services, err := s.catalog.Services(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to load services")
		s.writeJSON(w, http.StatusInternalServerError, apiError{Error: "internal server error"})
		return
	}

	if services == nil {
		services = []*types.Service{}
	}
	s.writeJSON(w, http.StatusOK, services)
}

func (s *Service) handleAPIEstimate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxEstimateBody))
	if err != nil {
		s.writeJSON(w, http.StatusRequestEntityTooLarge, apiError{Error: "request body too large"})
		return
	}

	result, err := estimateSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, apiError{Error: "request body is not valid json"})
		return
	}

	if !result.Valid() {
		details := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			details[i] = desc.String()
		}
		s.writeJSON(w, http.StatusUnprocessableEntity, apiError{Error: "invalid estimate request", Details: details})
		return
	}

	var req types.EstimateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, apiError{Error: "request body is not valid json"})
		return
	}

	factors := pricing.Factors{
		Service:      pricing.ServiceType(req.Service),
		PropertySize: pricing.PropertySize(req.PropertySize),
		Urgency:      pricing.UrgencyLevel(req.Urgency),
		Scope:        pricing.JobScope(req.Scope),
	}
	if !factors.Valid() {
		s.writeJSON(w, http.StatusUnprocessableEntity, apiError{Error: "invalid estimate request"})
		return
	}

	metrics.EstimatesCalculated.WithLabelValues(req.Service, "api").Inc()

	s.writeJSON(w, http.StatusOK, estimateResponse{
		Factors:  factors,
		Estimate: pricing.Calculate(factors),
		Currency: pricing.Currency,
	})
}
