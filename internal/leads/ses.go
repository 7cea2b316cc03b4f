package leads

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
)

type sesAPI interface {
	SendRawEmail(ctx context.Context, params *ses.SendRawEmailInput, optFns ...func(*ses.Options)) (*ses.SendRawEmailOutput, error)
}

// SESSender mails each lead to the office inbox with its attachments inline.
type SESSender struct {
	client sesAPI
	from   string
	to     string
}

func NewSESSender(client *ses.Client, from, to string) *SESSender {
	return &SESSender{client: client, from: from, to: to}
}

func (s *SESSender) Send(ctx context.Context, lead *Lead) error {
	raw, err := buildMessage(s.from, s.to, lead)
	if err != nil {
		return fmt.Errorf("failed to build message for lead %s: %w", lead.Reference, err)
	}

	_, err = s.client.SendRawEmail(ctx, &ses.SendRawEmailInput{
		Source:       aws.String(s.from),
		Destinations: []string{s.to},
		RawMessage:   &sestypes.RawMessage{Data: raw},
	})
	if err != nil {
		return fmt.Errorf("failed to send lead %s via ses: %w", lead.Reference, err)
	}

	return nil
}

func renderBody(lead *Lead) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Reference: %s\n", lead.Reference)
	fmt.Fprintf(&b, "Received: %s\n\n", lead.SubmittedAt.Format("Mon 2 Jan 2006 15:04 MST"))
	for _, f := range lead.Fields {
		fmt.Fprintf(&b, "%s: %s\n", f.Label, f.Value)
	}
	if len(lead.Files) > 0 {
		fmt.Fprintf(&b, "\n%d attachment(s)\n", len(lead.Files))
	}
	return b.String()
}

func buildMessage(from, to string, lead *Lead) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	if lead.ReplyTo != "" {
		fmt.Fprintf(&buf, "Reply-To: %s\r\n", lead.ReplyTo)
	}
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", lead.Subject))
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mw.Boundary())

	text, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"text/plain; charset=utf-8"},
		"Content-Transfer-Encoding": {"8bit"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := text.Write([]byte(renderBody(lead))); err != nil {
		return nil, err
	}

	for _, f := range lead.Files {
		contentType := f.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		part, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {contentType},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": f.Name})},
		})
		if err != nil {
			return nil, err
		}

		if err := writeBase64Lines(part, f.Data); err != nil {
			return nil, err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// writeBase64Lines wraps encoded output at 76 columns as RFC 2045 requires.
func writeBase64Lines(w io.Writer, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 76 {
		if _, err := w.Write([]byte(encoded[:76] + "\r\n")); err != nil {
			return err
		}
		encoded = encoded[76:]
	}
	if _, err := w.Write([]byte(encoded + "\r\n")); err != nil {
		return err
	}
	return nil
}
