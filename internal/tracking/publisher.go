package tracking

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/aoe-motors/lead-tracker/internal/pkg/logger"
)

// Event is one tracking hit as handed to an Ingester and carried on SQS.
type Event struct {
	RequestID  string    `json:"request_id"`
	EventType  string    `json:"event_type"`
	ReceivedAt time.Time `json:"received_at"`
	IPAddress  string    `json:"ip_address,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
}

// Ingester accepts events from the tracking handler. Implementations must
// not fail the request: errors are theirs to log.
type Ingester interface {
	Ingest(ctx context.Context, ev Event)
}

type sqsSender interface {
	SendMessage(ctx context.Context, in *sqs.SendMessageInput, opts ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// Publisher is the sqs-mode Ingester. Sends run in the background so the
// tracking response is not held up by SQS.
type Publisher struct {
	client   sqsSender
	queueURL string
	timeout  time.Duration
	wg       sync.WaitGroup
}

// NewPublisher creates a Publisher for queueURL.
func NewPublisher(client sqsSender, queueURL string) *Publisher {
	return &Publisher{client: client, queueURL: queueURL, timeout: 5 * time.Second}
}

// Ingest implements Ingester.
func (p *Publisher) Ingest(_ context.Context, ev Event) {
	body, err := json.Marshal(ev)
	if err != nil {
		logger.Error("marshal tracking event", "request_id", ev.RequestID, "error", err)
		return
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()

		_, err := p.client.SendMessage(ctx, &sqs.SendMessageInput{
			QueueUrl:    aws.String(p.queueURL),
			MessageBody: aws.String(string(body)),
		})
		if err != nil {
			logger.Error("publish tracking event to SQS", "request_id", ev.RequestID, "event_type", ev.EventType, "error", err)
		}
	}()
}

// Close waits for in-flight sends.
func (p *Publisher) Close() {
	p.wg.Wait()
}
