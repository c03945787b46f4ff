package mailing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/aoe-motors/lead-tracker/internal/pkg/logger"
)

// ErrSendingDisabled is returned when email delivery is not configured.
var ErrSendingDisabled = errors.New("email sending is disabled")

// Message is a rendered email ready for delivery.
type Message struct {
	RequestID string `json:"request_id"`
	Kind      Kind   `json:"kind"`
	To        string `json:"to"`
	ToName    string `json:"to_name"`
	Subject   string `json:"subject"`
	HTML      string `json:"html"`
	Text      string `json:"text"`
}

// Sender delivers rendered messages and returns the provider message id.
type Sender interface {
	Send(ctx context.Context, msg *Message) (string, error)
}

type sesAPI interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender sends emails via AWS SES using the SDK v2.
type SESSender struct {
	client           sesAPI
	fromAddress      string
	fromName         string
	configurationSet string
}

// SESOptions configures an SESSender.
type SESOptions struct {
	Region           string
	AccessKey        string
	SecretKey        string
	FromAddress      string
	FromName         string
	ConfigurationSet string
	Timeout          time.Duration
}

// NewSESSender creates an SES sender. Static credentials are used when both
// keys are set, otherwise the default AWS credential chain applies.
func NewSESSender(ctx context.Context, opts SESOptions) (*SESSender, error) {
	if opts.FromAddress == "" {
		return nil, ErrSendingDisabled
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(opts.Region)}
	if opts.AccessKey != "" && opts.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")))
	}
	if opts.Timeout > 0 {
		loadOpts = append(loadOpts, awsconfig.WithHTTPClient(awshttp.NewBuildableClient().WithTimeout(opts.Timeout)))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return newSESSender(sesv2.NewFromConfig(cfg), opts), nil
}

func newSESSender(client sesAPI, opts SESOptions) *SESSender {
	return &SESSender{
		client:           client,
		fromAddress:      opts.FromAddress,
		fromName:         opts.FromName,
		configurationSet: opts.ConfigurationSet,
	}
}

// Send delivers a single email through AWS SES.
func (s *SESSender) Send(ctx context.Context, msg *Message) (string, error) {
	if s == nil || s.client == nil {
		return "", ErrSendingDisabled
	}

	from := s.fromAddress
	if s.fromName != "" {
		from = fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)
	}
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination:      &types.Destination{ToAddresses: []string{msg.To}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(msg.HTML), Charset: aws.String("UTF-8")},
					Text: &types.Content{Data: aws.String(msg.Text), Charset: aws.String("UTF-8")},
				},
			},
		},
		EmailTags: []types.MessageTag{
			{Name: aws.String("request_id"), Value: aws.String(msg.RequestID)},
			{Name: aws.String("kind"), Value: aws.String(string(msg.Kind))},
		},
	}
	if s.configurationSet != "" {
		input.ConfigurationSetName = aws.String(s.configurationSet)
	}

	out, err := s.client.SendEmail(ctx, input)
	if err != nil {
		logger.Error("ses send failed", "request_id", msg.RequestID, "to", logger.RedactEmail(msg.To), "error", err)
		return "", fmt.Errorf("ses send: %w", err)
	}
	id := aws.ToString(out.MessageId)
	logger.Info("email sent", "request_id", msg.RequestID, "kind", string(msg.Kind), "to", logger.RedactEmail(msg.To), "message_id", id)
	return id, nil
}
