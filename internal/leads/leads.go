// Package leads delivers validated enquiries from the site to the office.
package leads

import (
	"context"
	"time"

	"steprighthomes/internal/utils"

	"github.com/sirupsen/logrus"
)

type Kind string

const (
	KindQuoteRequest Kind = "quote_request"
	KindContact      Kind = "contact"
)

type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// File is a raw attachment in the order the customer added it.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

type Lead struct {
	Reference   string
	Kind        Kind
	Subject     string
	ReplyTo     string
	Fields      []Field
	Files       []File
	SubmittedAt time.Time
}

// NewLead stamps a lead with a short reference the customer can quote back.
func NewLead(kind Kind, subject string) *Lead {
	return &Lead{
		Reference:   utils.NewReference(utils.ReferenceSize),
		Kind:        kind,
		Subject:     subject,
		SubmittedAt: time.Now().UTC(),
	}
}

func (l *Lead) AddField(label, value string) {
	l.Fields = append(l.Fields, Field{Label: label, Value: value})
}

func (l *Lead) AttachmentBytes() int64 {
	var total int64
	for _, f := range l.Files {
		total += int64(len(f.Data))
	}
	return total
}

// Sender delivers a lead. Implementations must honour ctx cancellation.
type Sender interface {
	Send(ctx context.Context, lead *Lead) error
}

// LogSender writes leads to the log instead of delivering them. Used in
// development and whenever no mail transport is configured.
type LogSender struct {
	logger *logrus.Logger
}

func NewLogSender(logger *logrus.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, lead *Lead) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fields := logrus.Fields{
		"reference":        lead.Reference,
		"kind":             lead.Kind,
		"subject":          lead.Subject,
		"attachments":      len(lead.Files),
		"attachment_bytes": lead.AttachmentBytes(),
	}
	for _, f := range lead.Fields {
		fields["field."+f.Label] = f.Value
	}

	s.logger.WithFields(fields).Info("lead received")
	return nil
}

// Fanout delivers through Primary and then pings every notifier. Only the
// primary result is returned; once the office has the lead a failed
// notification must not make the customer submit again.
type Fanout struct {
	Primary   Sender
	Notifiers []Sender
	Logger    *logrus.Logger
}

func (f *Fanout) Send(ctx context.Context, lead *Lead) error {
	if err := f.Primary.Send(ctx, lead); err != nil {
		return err
	}

	for _, n := range f.Notifiers {
		if err := n.Send(ctx, lead); err != nil && f.Logger != nil {
			f.Logger.WithError(err).WithField("reference", lead.Reference).Warn("lead notification failed")
		}
	}
	return nil
}
