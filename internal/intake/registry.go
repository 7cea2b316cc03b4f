package intake

import (
	"context"
	"errors"
	"sync"
	"time"

	"steprighthomes/internal/leads"
	"steprighthomes/internal/metrics"
	"steprighthomes/internal/utils"
	"steprighthomes/pkg/types"

	"github.com/sirupsen/logrus"
)

var ErrSessionNotFound = errors.New("quote request not found")

const (
	DefaultSubmitTimeout = 20 * time.Second
	DefaultIdleTTL       = time.Hour
)

type Config struct {
	Store         PreviewStore
	Sender        leads.Sender
	SubmitTimeout time.Duration
	// Drafts untouched for longer than IdleTTL are abandoned and their
	// previews released.
	IdleTTL time.Duration
	Logger  *logrus.Logger
}

// Registry holds the open quote request drafts, keyed by the ID kept in the
// visitor's cookie.
type Registry struct {
	store   PreviewStore
	sender  leads.Sender
	timeout time.Duration
	ttl     time.Duration
	logger  *logrus.Logger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(cfg Config) *Registry {
	if cfg.SubmitTimeout <= 0 {
		cfg.SubmitTimeout = DefaultSubmitTimeout
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultIdleTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	return &Registry{
		store:    cfg.Store,
		sender:   cfg.Sender,
		timeout:  cfg.SubmitTimeout,
		ttl:      cfg.IdleTTL,
		logger:   cfg.Logger,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

func (r *Registry) Store() PreviewStore {
	return r.store
}

// Open starts a new draft.
func (r *Registry) Open(preselected string) *Session {
	s := &Session{
		ID:     utils.NewToken(),
		reg:    r,
		form:   NewQuoteRequest(preselected),
		errors: FieldErrors{},
		status: StatusEditing,
	}
	s.touch(r.now())

	r.mu.Lock()
	r.sessions[s.ID] = s
	metrics.DraftsActive.Set(float64(len(r.sessions)))
	r.mu.Unlock()

	return s
}

// Get looks up a draft and marks it as used. It never waits on the draft's
// own lock.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()

	if !ok {
		return nil, ErrSessionNotFound
	}

	s.touch(r.now())
	return s, nil
}

// Discard closes a draft and forgets it.
func (r *Registry) Discard(ctx context.Context, id string) error {
	s, err := r.Get(id)
	if err != nil {
		return err
	}

	if err := s.Close(ctx); err != nil {
		if errors.Is(err, ErrSubmissionInFlight) {
			return err
		}
		r.logger.WithError(err).WithField("draft_id", id).Warn("failed to release previews while closing draft")
	}

	r.forget(id)
	return nil
}

// Finish forgets a draft that has been submitted. Its previews were already
// released by Submit.
func (r *Registry) Finish(id string) {
	r.forget(id)
}

func (r *Registry) forget(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, id)
	metrics.DraftsActive.Set(float64(len(r.sessions)))
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep closes drafts idle for longer than the TTL. Drafts mid-submission
// are left alone. The registry lock is only held to copy the draft list, so
// lookups keep working while stale drafts are being released.
func (r *Registry) Sweep(ctx context.Context) int {
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	var stale []*Session
	for _, s := range r.sessions {
		if s.idleSince(cutoff) {
			stale = append(stale, s)
		}
	}
	r.mu.Unlock()

	removed := 0
	for _, s := range stale {
		closed, err := s.closeIfIdle(ctx, cutoff)
		if errors.Is(err, ErrSubmissionInFlight) || (!closed && err == nil) {
			continue
		}
		if err != nil {
			r.logger.WithError(err).WithField("draft_id", s.ID).Warn("failed to release previews of abandoned draft")
		}
		r.forget(s.ID)
		removed++
	}
	return removed
}

// Run sweeps abandoned drafts every interval until ctx is cancelled.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(ctx); n > 0 {
				r.logger.WithField("drafts", n).Info("closed abandoned quote request drafts")
			}
		}
	}
}

// Shutdown releases the previews of every open draft.
func (r *Registry) Shutdown(ctx context.Context) {
	r.mu.Lock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	for _, id := range ids {
		if err := r.Discard(ctx, id); err != nil {
			r.logger.WithError(err).WithField("draft_id", id).Warn("failed to discard draft on shutdown")
		}
	}
}

func (r *Registry) send(ctx context.Context, lead *leads.Lead) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	err := r.sender.Send(ctx, lead)
	metrics.LeadSendDuration.WithLabelValues(string(lead.Kind)).Observe(time.Since(start).Seconds())

	if err != nil {
		r.logger.WithError(err).WithFields(logrus.Fields{
			"reference": lead.Reference,
			"kind":      lead.Kind,
		}).Error("failed to send lead")
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"reference":   lead.Reference,
		"kind":        lead.Kind,
		"attachments": len(lead.Files),
	}).Info("lead sent")
	return nil
}

// SendContact validates and sends a general enquiry from the contact page.
func (r *Registry) SendContact(ctx context.Context, form types.ContactForm) (string, FieldErrors, error) {
	form = NormalizeContact(form)
	if errs := ValidateContact(form); errs.Any() {
		return "", errs, ErrValidation
	}

	subject := "Website enquiry from " + form.Name
	lead := leads.NewLead(leads.KindContact, subject)
	lead.ReplyTo = form.Email
	lead.AddField("Name", form.Name)
	lead.AddField("Email", form.Email)
	lead.AddField("Phone", form.Phone)
	if form.Service != "" {
		lead.AddField("Service", ServiceLabel(form.Service))
	}
	lead.AddField("Message", form.Message)

	if err := r.send(context.WithoutCancel(ctx), lead); err != nil {
		metrics.LeadSubmissions.WithLabelValues(string(leads.KindContact), metrics.ResultFailure).Inc()
		return "", nil, errors.Join(ErrSubmitFailed, err)
	}

	metrics.LeadSubmissions.WithLabelValues(string(leads.KindContact), metrics.ResultSuccess).Inc()
	return lead.Reference, nil, nil
}
