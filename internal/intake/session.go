package intake

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"steprighthomes/internal/leads"
	"steprighthomes/internal/metrics"
	"steprighthomes/internal/preview"
	"steprighthomes/internal/pricing"
	"steprighthomes/pkg/types"
)

var (
	ErrValidation         = errors.New("quote request has invalid fields")
	ErrSubmissionInFlight = errors.New("quote request is already being submitted")
	ErrSubmitFailed       = errors.New("quote request could not be sent")
	ErrAttachmentExpired  = errors.New("attachment preview has expired")
	ErrSessionClosed      = errors.New("quote request is closed")
	ErrPreviewCleanup     = errors.New("failed to release attachment previews")
)

// Messages shown when a send fails. The form and files are kept so the
// customer can simply try again.
const (
	RetryMessage   = "We couldn't send your request just now. Your details and files are still here, so please try again in a moment or give us a call."
	ExpiredMessage = "One of your files is no longer available. Please remove it and add it again, then resubmit."
)

type Status string

const (
	StatusEditing    Status = "editing"
	StatusSubmitting Status = "submitting"
	StatusSubmitted  Status = "submitted"
	StatusClosed     Status = "closed"
)

// Session is one quote request form instance. It owns the preview handle of
// every attachment it holds.
type Session struct {
	ID string

	reg *Registry

	// touched holds unix nanos and is accessed without mu.
	touched atomic.Int64

	mu          sync.Mutex
	form        types.QuoteRequestForm
	attachments Attachments
	errors      FieldErrors
	status      Status
	failure     string
	reference   string
}

// View is a copy of a session's state for rendering.
type View struct {
	ID          string
	Form        types.QuoteRequestForm
	Errors      FieldErrors
	Attachments Attachments
	Status      Status
	Failure     string
	Reference   string
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	errs := make(FieldErrors, len(s.errors))
	for k, v := range s.errors {
		errs[k] = v
	}

	return View{
		ID:          s.ID,
		Form:        s.form,
		Errors:      errs,
		Attachments: slices.Clone(s.attachments),
		Status:      s.status,
		Failure:     s.failure,
		Reference:   s.reference,
	}
}

func (s *Session) touch(t time.Time) {
	s.touched.Store(t.UnixNano())
}

func (s *Session) idleSince(cutoff time.Time) bool {
	return s.touched.Load() < cutoff.UnixNano()
}

// editable must be called with mu held.
func (s *Session) editable() error {
	switch s.status {
	case StatusSubmitting:
		return ErrSubmissionInFlight
	case StatusSubmitted, StatusClosed:
		return ErrSessionClosed
	}
	return nil
}

// Edit replaces the field values. The error of every field whose value
// changed is cleared.
func (s *Session) Edit(form types.QuoteRequestForm) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.editable(); err != nil {
		return err
	}

	for _, field := range changedFields(s.form, form) {
		s.errors.Clear(field)
	}
	s.form = form
	return nil
}

func (s *Session) AddFiles(ctx context.Context, files []Upload) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.editable(); err != nil {
		return 0, err
	}

	before := len(s.attachments)
	added, err := s.attachments.AddFiles(ctx, s.reg.store, files)
	for _, att := range s.attachments[before:] {
		metrics.AttachmentsStaged.WithLabelValues(string(att.Kind)).Inc()
	}
	return added, err
}

func (s *Session) Remove(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.editable(); err != nil {
		return err
	}

	before := len(s.attachments)
	err := s.attachments.Remove(ctx, s.reg.store, index)
	metrics.AttachmentsReleased.Add(float64(before - len(s.attachments)))
	return err
}

// Close abandons the form: every preview is released and the fields are
// cleared. It is refused while a submission is in flight. A closed session
// rejects every later edit, so a handler still holding it cannot stage files
// that nothing would release.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closeLocked(ctx)
}

// closeIfIdle closes the session only if it has not been touched since
// cutoff. It reports whether the session was closed.
func (s *Session) closeIfIdle(ctx context.Context, cutoff time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.idleSince(cutoff) {
		return false, nil
	}
	return true, s.closeLocked(ctx)
}

// closeLocked must be called with mu held.
func (s *Session) closeLocked(ctx context.Context) error {
	if s.status == StatusSubmitting {
		return ErrSubmissionInFlight
	}
	if s.status != StatusSubmitted {
		s.status = StatusClosed
	}
	return s.reset(ctx)
}

// reset must be called with mu held.
func (s *Session) reset(ctx context.Context) error {
	released := len(s.attachments)
	err := s.attachments.ResetAll(context.WithoutCancel(ctx), s.reg.store)
	metrics.AttachmentsReleased.Add(float64(released))

	s.form = NewQuoteRequest("")
	s.errors = FieldErrors{}
	s.failure = ""

	if err != nil {
		return fmt.Errorf("%w: %w", ErrPreviewCleanup, err)
	}
	return nil
}

// Submit validates the form and sends it with its files as one lead. Only
// one submission runs at a time; a second call while one is in flight gets
// ErrSubmissionInFlight. A failed send returns the session to editing with
// every attachment kept.
func (s *Session) Submit(ctx context.Context) (string, error) {
	s.mu.Lock()
	if err := s.editable(); err != nil {
		s.mu.Unlock()
		return "", err
	}

	s.form = Normalize(s.form)
	if errs := ValidateQuoteRequest(s.form); errs.Any() {
		s.errors = errs
		s.mu.Unlock()
		return "", ErrValidation
	}

	s.errors = FieldErrors{}
	s.failure = ""
	s.status = StatusSubmitting
	form := s.form
	files := slices.Clone(s.attachments)
	s.mu.Unlock()

	// The customer cannot abort a submission once it has started.
	ctx = context.WithoutCancel(ctx)

	lead, err := buildLead(ctx, s.reg.store, form, files)
	if err == nil {
		err = s.reg.send(ctx, lead)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.status = StatusEditing
		s.failure = RetryMessage
		if errors.Is(err, ErrAttachmentExpired) {
			s.failure = ExpiredMessage
		}
		metrics.LeadSubmissions.WithLabelValues(string(leads.KindQuoteRequest), metrics.ResultFailure).Inc()
		return "", fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}

	metrics.LeadSubmissions.WithLabelValues(string(leads.KindQuoteRequest), metrics.ResultSuccess).Inc()

	s.status = StatusSubmitted
	s.reference = lead.Reference
	if err := s.reset(ctx); err != nil {
		return lead.Reference, err
	}
	return lead.Reference, nil
}

func preferredContactLabel(v string) string {
	switch v {
	case ContactPhone:
		return "Phone call"
	case ContactEmail:
		return "Email"
	case ContactSMS:
		return "SMS"
	}
	return v
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// buildLead assembles the payload: field values in form order, then the raw
// bytes of every attachment in the order they were added.
func buildLead(ctx context.Context, store PreviewStore, form types.QuoteRequestForm, files Attachments) (*leads.Lead, error) {
	service := ServiceLabel(form.Service)
	urgency := pricing.UrgencyLevel(form.Urgency)

	lead := leads.NewLead(leads.KindQuoteRequest, fmt.Sprintf("Quote request: %s for %s", service, form.Name))
	lead.ReplyTo = form.Email

	lead.AddField("Name", form.Name)
	lead.AddField("Email", form.Email)
	lead.AddField("Phone", form.Phone)
	lead.AddField("Address", form.Address)
	lead.AddField("Service", service)
	lead.AddField("Urgency", fmt.Sprintf("%s (%s)", urgency.Label(), urgency.Description()))
	lead.AddField("Preferred contact", preferredContactLabel(form.PreferredContact))
	lead.AddField("Description", form.Description)
	lead.AddField("Agreed to terms", yesNo(form.AgreeToTerms))
	lead.AddField("Acknowledged callout fee", yesNo(form.AgreeToCalloutFee))

	for _, att := range files {
		obj, err := store.Open(ctx, att.Preview)
		if err != nil {
			if errors.Is(err, preview.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrAttachmentExpired, att.File.Name)
			}
			return nil, fmt.Errorf("failed to read attachment %s: %w", att.File.Name, err)
		}

		lead.Files = append(lead.Files, leads.File{
			Name:        att.File.Name,
			ContentType: att.File.ContentType,
			Data:        obj.Data,
		})
	}

	return lead, nil
}
