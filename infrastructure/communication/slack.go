package communication

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
	licensing "licensedesk.com/licensedesk/licensing/core"
)

type slackPoster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

type Slack struct {
	client  slackPoster
	options SlackOption
}

type SlackOption struct {
	InfoChannelID  string
	ErrorChannelID string
}

func NewSlack(token string, options SlackOption) *Slack {
	client := slack.New(token)
	return &Slack{client: client, options: options}
}

func (s *Slack) postMessage(ctx context.Context, channelID, message string) error {
	if channelID == "" {
		return nil
	}
	_, _, err := s.client.PostMessageContext(ctx,
		channelID,
		slack.MsgOptionText(message, false),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		return fmt.Errorf("failed to post message to Slack: %w", err)
	}
	return nil
}

func (s *Slack) Info(ctx context.Context, message string) error {
	return s.postMessage(ctx, s.options.InfoChannelID, message)
}

func (s *Slack) Error(ctx context.Context, message string) error {
	return s.postMessage(ctx, s.options.ErrorChannelID, message)
}

// Notify posts device mismatches to the error channel and everything else
// to the info channel.
func (s *Slack) Notify(ctx context.Context, event licensing.Event) error {
	if event.Kind == licensing.EventDeviceMismatch {
		return s.Error(ctx, describe(event))
	}
	return s.Info(ctx, describe(event))
}
