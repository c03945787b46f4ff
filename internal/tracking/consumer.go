package tracking

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/aoe-motors/lead-tracker/internal/pkg/logger"
)

type sqsReceiver interface {
	ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput, opts ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, in *sqs.DeleteMessageInput, opts ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// ConsumerOptions tune the SQS long poll.
type ConsumerOptions struct {
	MaxMessages       int32
	WaitTimeSeconds   int32
	VisibilityTimeout int32
	ErrorBackoff      time.Duration
}

// Consumer drains the tracking queue into the scoring engine.
type Consumer struct {
	client   sqsReceiver
	queueURL string
	rec      EventRecorder
	opts     ConsumerOptions
	done     chan struct{}
	stopped  chan struct{}
}

// NewConsumer creates a Consumer. Zero options take SQS-friendly defaults.
func NewConsumer(client sqsReceiver, queueURL string, rec EventRecorder, opts ConsumerOptions) *Consumer {
	if opts.MaxMessages <= 0 {
		opts.MaxMessages = 10
	}
	if opts.WaitTimeSeconds <= 0 {
		opts.WaitTimeSeconds = 20
	}
	if opts.ErrorBackoff <= 0 {
		opts.ErrorBackoff = 5 * time.Second
	}
	return &Consumer{
		client:   client,
		queueURL: queueURL,
		rec:      rec,
		opts:     opts,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Start begins polling in the background until ctx ends or Stop is called.
func (c *Consumer) Start(ctx context.Context) {
	logger.Info("SQS tracking consumer started", "queue", c.queueURL)
	go c.poll(ctx)
}

// Stop ends polling and waits for the in-flight batch to finish.
func (c *Consumer) Stop() {
	close(c.done)
	<-c.stopped
}

func (c *Consumer) poll(ctx context.Context) {
	defer close(c.stopped)
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		default:
		}

		if _, err := c.PollOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("SQS receive error", "queue", c.queueURL, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-c.done:
				return
			case <-time.After(c.opts.ErrorBackoff):
			}
		}
	}
}

// PollOnce receives one batch and processes it. It returns the number of
// messages deleted.
func (c *Consumer) PollOnce(ctx context.Context) (int, error) {
	in := &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(c.queueURL),
		MaxNumberOfMessages: c.opts.MaxMessages,
		WaitTimeSeconds:     c.opts.WaitTimeSeconds,
	}
	if c.opts.VisibilityTimeout > 0 {
		in.VisibilityTimeout = c.opts.VisibilityTimeout
	}
	out, err := c.client.ReceiveMessage(ctx, in)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, msg := range out.Messages {
		c.handle(ctx, aws.ToString(msg.Body))
		if c.deleteMessage(ctx, msg.ReceiptHandle) {
			deleted++
		}
	}
	return deleted, nil
}

// handle scores one message body. Malformed bodies are logged and dropped;
// the engine absorbs collaborator failures itself, so every message is
// deleted once handled.
func (c *Consumer) handle(ctx context.Context, body string) {
	var ev Event
	if err := json.Unmarshal([]byte(body), &ev); err != nil {
		logger.Warn("SQS bad message", "error", err)
		return
	}
	record(ctx, c.rec, ev)
}

func (c *Consumer) deleteMessage(ctx context.Context, handle *string) bool {
	_, err := c.client.DeleteMessage(context.WithoutCancel(ctx), &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: handle,
	})
	if err != nil {
		logger.Error("SQS delete error", "queue", c.queueURL, "error", err)
		return false
	}
	return true
}
