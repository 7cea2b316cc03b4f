// Package catalog serves the list of trades the business offers.
package catalog

import (
	"context"
	"slices"

	"steprighthomes/pkg/types"
)

type Source interface {
	Services(ctx context.Context) ([]*types.Service, error)
	Service(ctx context.Context, id string) (*types.Service, error)
}

// DefaultServices is the built in catalog. Its IDs match the pricing
// service types and it is what `seed` writes to Postgres.
var DefaultServices = []types.Service{
	{
		ID:           "fencing",
		Title:        "Fencing",
		Description:  "Professional fencing installation, repairs, and custom designs for residential properties.",
		Icon:         "🏗️",
		DisplayOrder: 1,
		IsActive:     true,
	},
	{
		ID:           "roofing",
		Title:        "Roofing",
		Description:  "Complete roofing solutions including installations, repairs, inspections, and gutter maintenance.",
		Icon:         "🏠",
		DisplayOrder: 2,
		IsActive:     true,
	},
	{
		ID:           "electrical",
		Title:        "Electrical Works",
		Description:  "Licensed electrical services for installations, repairs, safety inspections, and lighting solutions.",
		Icon:         "⚡",
		DisplayOrder: 3,
		IsActive:     true,
	},
	{
		ID:           "plumbing",
		Title:        "Plumbing Works",
		Description:  "Expert plumbing services including installations, repairs, leak detection, and drain cleaning.",
		Icon:         "🔧",
		DisplayOrder: 4,
		IsActive:     true,
	},
}

// Static serves DefaultServices.
type Static struct{}

func (Static) Services(_ context.Context) ([]*types.Service, error) {
	out := make([]*types.Service, len(DefaultServices))
	for i := range DefaultServices {
		s := DefaultServices[i]
		out[i] = &s
	}
	return out, nil
}

func (Static) Service(_ context.Context, id string) (*types.Service, error) {
	i := slices.IndexFunc(DefaultServices, func(s types.Service) bool { return s.ID == id })
	if i < 0 {
		return nil, types.ErrServiceNotFound
	}
	s := DefaultServices[i]
	return &s, nil
}

var Stats = []types.Stat{
	{Value: 500, Suffix: "+", Label: "Projects Completed"},
	{Value: 10, Suffix: "+", Label: "Years Experience"},
	{Value: 100, Suffix: "%", Label: "Client Satisfaction"},
	{Value: 24, Suffix: "/7", Label: "Emergency Support"},
}

var Features = []types.Feature{
	{Title: "Licensed & Fully Insured", Description: "All our tradespeople are licensed and we carry comprehensive insurance for your peace of mind."},
	{Title: "Fast Response Times", Description: "We understand urgency. Our team responds quickly to all inquiries and emergency calls."},
	{Title: "Quality Guaranteed", Description: "We stand behind our work with a satisfaction guarantee on all services provided."},
}

var FAQs = []types.FAQ{
	{
		Question: "What areas do you service?",
		Answer:   "We provide property maintenance services throughout South Australia, with our base in Cowandilla. We can service Adelaide metropolitan areas and surrounding regions. Contact us to confirm coverage for your specific location.",
	},
	{
		Question: "What is your callout fee?",
		Answer:   "We charge a minimum callout fee of $250 which includes the first hour of work and quote preparation. If the issue can be resolved within the first hour, this is the total cost. If additional work is required, we will provide a detailed quote for the remaining work.",
	},
	{
		Question: "How quickly can you respond to emergency repairs?",
		Answer:   "For emergency repairs, we aim to respond within 2-4 hours during business hours. We also offer after-hours emergency services for urgent issues like burst pipes or electrical hazards. Call our emergency line for immediate assistance.",
	},
	{
		Question: "Are your tradespeople licensed and insured?",
		Answer:   "Absolutely. All our tradespeople are fully licensed and hold the appropriate certifications for their respective trades. We also carry comprehensive public liability insurance and workers compensation coverage for your peace of mind.",
	},
	{
		Question: "What payment methods do you accept?",
		Answer:   "We accept various payment methods including bank transfer, credit/debit cards, and cash. For larger projects, we can arrange payment plans. Payment terms are discussed and agreed upon before work commences.",
	},
	{
		Question: "Do you offer ongoing maintenance contracts?",
		Answer:   "Yes, we offer flexible maintenance contracts for property managers and homeowners who require regular upkeep. These contracts can be customized to your specific needs and often include priority scheduling and discounted rates.",
	},
	{
		Question: "Do you provide reports and documentation?",
		Answer:   "Yes, we provide comprehensive documentation for every job including pre-work inspections, photo documentation, completion reports, and compliance certificates where required. This is especially useful for property managers who need to keep landlords informed.",
	},
}
