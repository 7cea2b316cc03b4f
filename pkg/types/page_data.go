package types

type NavLink struct {
	Href   string
	Label  string
	Active bool
}

type BasePageData struct {
	Title   string
	Path    string
	Company CompanyInfo
	Nav     []NavLink
}

// BasePageDataSetter lets renderTemplate fill the shared layout fields.
type BasePageDataSetter interface {
	SetBase(path string, nav []NavLink)
}

func (d *BasePageData) SetBase(path string, nav []NavLink) {
	d.Path = path
	d.Company = Company
	d.Nav = nav
}

type HomePageData struct {
	BasePageData
	Notice   string
	Error    string
	Services []*Service
	Policy   PricingPolicy
	Stats    []Stat
	Features []Feature
	FAQs     []FAQ
}

type ServicesPageData struct {
	BasePageData
	Services []*Service
	Policy   PricingPolicy
}

type OptionData struct {
	Value       string
	Label       string
	Description string
	Icon        string
	Selected    bool
}

type EstimateView struct {
	MinPrice          string
	MaxPrice          string
	EstimatedDuration string
	Factors           []string
	Summary           []SummaryItem
}

type SummaryItem struct {
	Label string
	Value string
}

type QuoteWizardPageData struct {
	BasePageData
	Step          int
	TotalSteps    int
	StepLabel     string
	Question      string
	Progress      int
	Options       []OptionData
	CanProceed    bool
	CanGoBack     bool
	ResultVisible bool
	Estimate      *EstimateView
	Policy        PricingPolicy
	Error         string
}

type AttachmentView struct {
	Index int
	Name  string
	Kind  string
	URL   string
	Size  string
}

type QuoteRequestPageData struct {
	BasePageData
	Form            QuoteRequestForm
	FieldErrors     map[string]string
	Services        []*Service
	UrgencyOptions  []OptionData
	Attachments     []AttachmentView
	ImageCount      int
	VideoCount      int
	AttachmentCount int
	MaxAttachments  int
	CanAttachMore   bool
	Policy          PricingPolicy
	Error           string
	Notice          string
}

type QuoteSubmittedPageData struct {
	BasePageData
	Reference string
}

type ContactPageData struct {
	BasePageData
	Form        ContactForm
	FieldErrors map[string]string
	Services    []*Service
	Notice      string
	Error       string
}
