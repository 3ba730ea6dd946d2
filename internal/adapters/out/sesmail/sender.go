// Package sesmail sends customer notification emails through AWS SES.
package sesmail

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// Config holds the SES connection settings.
type Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Sender          string
}

// Sender implements notification.EmailSender on top of SES. The customer
// identifier is used as the recipient address; upstream services register
// customers by email.
type Sender struct {
	client *ses.Client
	from   string
}

// NewSender builds an SES client from static credentials and wraps it.
func NewSender(ctx context.Context, cfg Config) (*Sender, error) {
	if cfg.Sender == "" {
		return nil, fmt.Errorf("sender email address is not configured")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}

	return &Sender{
		client: ses.NewFromConfig(awsCfg),
		from:   cfg.Sender,
	}, nil
}

// Send delivers one plain-text email.
func (s *Sender) Send(ctx context.Context, customerID, subject, body string) error {
	if customerID == "" {
		return fmt.Errorf("recipient address is empty")
	}

	input := &ses.SendEmailInput{
		Source: aws.String(s.from),
		Destination: &types.Destination{
			ToAddresses: []string{customerID},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Charset: aws.String("UTF-8"),
				Data:    aws.String(subject),
			},
			Body: &types.Body{
				Text: &types.Content{
					Charset: aws.String("UTF-8"),
					Data:    aws.String(body),
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
