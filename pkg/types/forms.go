package types

// QuoteRequestForm is the intake form posted from the quote request page.
type QuoteRequestForm struct {
	Name              string `form:"name" json:"name"`
	Email             string `form:"email" json:"email"`
	Phone             string `form:"phone" json:"phone"`
	Address           string `form:"address" json:"address"`
	Service           string `form:"service" json:"service"`
	Urgency           string `form:"urgency" json:"urgency"`
	Description       string `form:"description" json:"description"`
	PreferredContact  string `form:"preferredContact" json:"preferredContact"`
	AgreeToTerms      bool   `form:"agreeToTerms" json:"agreeToTerms"`
	AgreeToCalloutFee bool   `form:"agreeToCalloutFee" json:"agreeToCalloutFee"`
}

// QuoteRequestAction is posted alongside QuoteRequestForm by the form buttons.
type QuoteRequestAction struct {
	Action string `form:"action"`
	Index  int    `form:"index"`
}

const (
	QuoteActionUpload = "upload"
	QuoteActionRemove = "remove"
	QuoteActionSubmit = "submit"
	QuoteActionCancel = "cancel"
)

type ContactForm struct {
	Name    string `form:"name" json:"name"`
	Email   string `form:"email" json:"email"`
	Phone   string `form:"phone" json:"phone"`
	Service string `form:"service" json:"service"`
	Message string `form:"message" json:"message"`
}

// WizardAction is posted by every button of the instant quote wizard.
type WizardAction struct {
	Action string `form:"action"`
	Value  string `form:"value"`
}

const (
	WizardActionSelect = "select"
	WizardActionNext   = "next"
	WizardActionBack   = "back"
	WizardActionReset  = "reset"
)

// EstimateRequest is the body of POST /api/estimate.
type EstimateRequest struct {
	Service      string `json:"service"`
	PropertySize string `json:"propertySize"`
	Urgency      string `json:"urgency"`
	Scope        string `json:"scope"`
}
