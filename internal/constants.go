package internal

const (
	COOKIE_WIZARD_NAME = "srh-wizard"
	COOKIE_DRAFT_NAME  = "srh-quote-draft"
)
