// Package intake holds the quote request form: validation, the attachment
// list and its preview handles, and the submit protocol.
package intake

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"steprighthomes/internal/pricing"
	"steprighthomes/pkg/types"
)

// Service values accepted besides the four trades.
const (
	ServiceMultiple = "multiple"
	ServiceOther    = "other"
)

const (
	ContactPhone = "phone"
	ContactEmail = "email"
	ContactSMS   = "sms"
)

const MaxDescriptionLength = 2000

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// FieldErrors maps a form field name to the message shown beside it.
type FieldErrors map[string]string

func (e FieldErrors) Clear(field string) {
	delete(e, field)
}

func (e FieldErrors) Any() bool {
	return len(e) > 0
}

// NewQuoteRequest returns a blank form, optionally with a service already
// chosen by the page that opened it.
func NewQuoteRequest(preselected string) types.QuoteRequestForm {
	form := types.QuoteRequestForm{
		Urgency:          string(pricing.Standard),
		PreferredContact: ContactPhone,
	}
	if ValidService(preselected) {
		form.Service = preselected
	}
	return form
}

// ValidService reports whether v may be submitted as the service field.
func ValidService(v string) bool {
	if v == ServiceMultiple || v == ServiceOther {
		return true
	}
	return pricing.ServiceType(v).Valid()
}

// ServiceLabel is the display name for a service field value.
func ServiceLabel(v string) string {
	switch v {
	case ServiceMultiple:
		return "Multiple Services"
	case ServiceOther:
		return "Other"
	}
	return pricing.ServiceType(v).Label()
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ValidateQuoteRequest checks every rule at once and reports each failing
// field. An empty result means the form may be submitted.
func ValidateQuoteRequest(f types.QuoteRequestForm) FieldErrors {
	errs := FieldErrors{}

	if blank(f.Name) {
		errs["name"] = "Name is required"
	}

	switch {
	case blank(f.Email):
		errs["email"] = "Email is required"
	case !emailPattern.MatchString(strings.TrimSpace(f.Email)):
		errs["email"] = "Please enter a valid email"
	}

	if blank(f.Phone) {
		errs["phone"] = "Phone number is required"
	}

	if blank(f.Address) {
		errs["address"] = "Address is required"
	}

	if !ValidService(f.Service) {
		errs["service"] = "Please select a service"
	}

	switch {
	case blank(f.Description):
		errs["description"] = "Please describe the work required"
	case utf8.RuneCountInString(f.Description) > MaxDescriptionLength:
		errs["description"] = "Please keep the description under 2000 characters"
	}

	if f.Urgency != "" && !pricing.UrgencyLevel(f.Urgency).Valid() {
		errs["urgency"] = "Please select how urgent the work is"
	}

	switch f.PreferredContact {
	case "", ContactPhone, ContactEmail, ContactSMS:
	default:
		errs["preferredContact"] = "Please choose how we should contact you"
	}

	if !f.AgreeToTerms {
		errs["agreeToTerms"] = "You must agree to the terms"
	}

	if !f.AgreeToCalloutFee {
		errs["agreeToCalloutFee"] = "You must acknowledge the callout fee"
	}

	return errs
}

// Normalize trims free text and fills the defaults a browser may omit.
func Normalize(f types.QuoteRequestForm) types.QuoteRequestForm {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Address = strings.TrimSpace(f.Address)
	f.Description = strings.TrimSpace(f.Description)
	if f.Urgency == "" {
		f.Urgency = string(pricing.Standard)
	}
	if f.PreferredContact == "" {
		f.PreferredContact = ContactPhone
	}
	return f
}

// ValidateContact checks the general enquiry form on the contact page.
func ValidateContact(f types.ContactForm) FieldErrors {
	errs := FieldErrors{}

	if blank(f.Name) {
		errs["name"] = "Name is required"
	}

	switch {
	case blank(f.Email):
		errs["email"] = "Email is required"
	case !emailPattern.MatchString(strings.TrimSpace(f.Email)):
		errs["email"] = "Please enter a valid email"
	}

	if f.Service != "" && !ValidService(f.Service) {
		errs["service"] = "Please select a service"
	}

	if blank(f.Message) {
		errs["message"] = "Please enter a message"
	}

	return errs
}

func NormalizeContact(f types.ContactForm) types.ContactForm {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Message = strings.TrimSpace(f.Message)
	return f
}

// changedFields lists the fields whose value differs between two versions
// of the form.
func changedFields(prev, next types.QuoteRequestForm) []string {
	var out []string
	add := func(name string, changed bool) {
		if changed {
			out = append(out, name)
		}
	}
	add("name", prev.Name != next.Name)
	add("email", prev.Email != next.Email)
	add("phone", prev.Phone != next.Phone)
	add("address", prev.Address != next.Address)
	add("service", prev.Service != next.Service)
	add("urgency", prev.Urgency != next.Urgency)
	add("description", prev.Description != next.Description)
	add("preferredContact", prev.PreferredContact != next.PreferredContact)
	add("agreeToTerms", prev.AgreeToTerms != next.AgreeToTerms)
	add("agreeToCalloutFee", prev.AgreeToCalloutFee != next.AgreeToCalloutFee)
	return out
}
