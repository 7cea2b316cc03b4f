package types

import (
	"errors"
	"time"
)

var ErrServiceNotFound = errors.New("service not found")

// Service is one entry of the trade catalog shown on the services page, the
// first quote wizard step and the intake form dropdown.
type Service struct {
	ID           string    `db:"id" json:"id"`
	Title        string    `db:"title" json:"title"`
	Description  string    `db:"description" json:"description"`
	Icon         string    `db:"icon" json:"icon"`
	DisplayOrder int       `db:"display_order" json:"displayOrder"`
	IsActive     bool      `db:"is_active" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"-"`
}

type CompanyInfo struct {
	Name      string
	Address   string
	ABN       string
	Phone     string
	PhoneHref string
	Email     string
}

// PricingPolicy is displayed next to every quote; nothing computes with it.
type PricingPolicy struct {
	MinimumCallout            int
	MinimumCalloutDescription string
}

var Company = CompanyInfo{
	Name:      "Step Right Homes",
	Address:   "26 Spencer Street, Cowandilla SA 5033",
	ABN:       "74 692 705 267",
	Phone:     "0478 733 998",
	PhoneHref: "tel:+61478733998",
	Email:     "info@steprighthomes.com.au",
}

var Pricing = PricingPolicy{
	MinimumCallout:            250,
	MinimumCalloutDescription: "A minimum callout fee of $250 applies to every job. It includes the first hour of work and quote preparation.",
}

// Stat is one counter of the home page stats strip, e.g. "500+ Projects Completed".
type Stat struct {
	Value  int
	Suffix string
	Label  string
}

type Feature struct {
	Title       string
	Description string
}

type FAQ struct {
	Question string
	Answer   string
}
