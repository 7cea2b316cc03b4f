package leads

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// SNS rejects subjects that are not printable ASCII or run past 100
// characters.
const snsSubjectMax = 100

type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSNotifier publishes a short summary of each lead to a topic so the
// on-call phone gets pinged. Attachments are never published.
type SNSNotifier struct {
	client   snsAPI
	topicARN string
}

func NewSNSNotifier(client *sns.Client, topicARN string) *SNSNotifier {
	return &SNSNotifier{client: client, topicARN: topicARN}
}

type leadSummary struct {
	Reference   string            `json:"reference"`
	Kind        Kind              `json:"kind"`
	Subject     string            `json:"subject"`
	Fields      map[string]string `json:"fields"`
	Attachments int               `json:"attachments"`
}

func summarize(lead *Lead) leadSummary {
	fields := make(map[string]string, len(lead.Fields))
	for _, f := range lead.Fields {
		fields[f.Label] = f.Value
	}
	return leadSummary{
		Reference:   lead.Reference,
		Kind:        lead.Kind,
		Subject:     lead.Subject,
		Fields:      fields,
		Attachments: len(lead.Files),
	}
}

func (n *SNSNotifier) Send(ctx context.Context, lead *Lead) error {
	body, err := json.Marshal(summarize(lead))
	if err != nil {
		return fmt.Errorf("failed to encode lead %s: %w", lead.Reference, err)
	}

	_, err = n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Subject:  aws.String(snsSubject(lead.Subject)),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"kind": {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(lead.Kind)),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish lead %s: %w", lead.Reference, err)
	}

	return nil
}

// snsSubject strips accents, drops anything that is still not printable
// ASCII and cuts the result to snsSubjectMax characters.
func snsSubject(subject string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn))), subject)
	if err != nil {
		folded = subject
	}

	var b strings.Builder
	for _, r := range folded {
		if b.Len() == snsSubjectMax {
			break
		}
		switch {
		case r >= ' ' && r <= '~':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return "New website lead"
	}
	return out
}
