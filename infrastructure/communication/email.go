package communication

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	licensing "licensedesk.com/licensedesk/licensing/core"
)

type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// Email sends an SES message for the configured event kinds.
type Email struct {
	client SESAPI
	from   string
	to     []string
	kinds  map[licensing.EventKind]bool
}

func NewEmail(client SESAPI, from string, to []string, kinds ...licensing.EventKind) *Email {
	if len(kinds) == 0 {
		kinds = []licensing.EventKind{licensing.EventDeviceMismatch}
	}
	e := &Email{client: client, from: from, to: to, kinds: map[licensing.EventKind]bool{}}
	for _, k := range kinds {
		e.kinds[k] = true
	}
	return e
}

func NewSESClient(ctx context.Context) (*ses.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return ses.NewFromConfig(cfg), nil
}

func (e *Email) Notify(ctx context.Context, event licensing.Event) error {
	if !e.kinds[event.Kind] || len(e.to) == 0 {
		return nil
	}

	_, err := e.client.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(e.from),
		Destination: &types.Destination{ToAddresses: e.to},
		Message: &types.Message{
			Subject: &types.Content{
				Charset: aws.String("UTF-8"),
				Data:    aws.String(fmt.Sprintf("[licensedesk] %s %s", event.Kind, event.SerialNumber)),
			},
			Body: &types.Body{
				Text: &types.Content{
					Charset: aws.String("UTF-8"),
					Data:    aws.String(describe(event)),
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send email for %s: %w", event.SerialNumber, err)
	}
	return nil
}
