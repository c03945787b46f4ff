package tracking

import (
	"context"
	"errors"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/aoe-motors/lead-tracker/internal/domain"
	"github.com/aoe-motors/lead-tracker/internal/service/scoring"
)

type captureIngester struct {
	mu     sync.Mutex
	events []Event
}

func (c *captureIngester) Ingest(_ context.Context, ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

type panicIngester struct{}

func (panicIngester) Ingest(context.Context, Event) { panic("store exploded") }

// countingStore is a LeadStore/InteractionLog pair that records every call.
type countingStore struct {
	mu      sync.Mutex
	calls   int
	score   map[string]int
	entries []domain.Interaction
}

func newCountingStore() *countingStore {
	return &countingStore{score: map[string]int{}}
}

func (s *countingStore) GetLead(_ context.Context, id string) (*domain.LeadScore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	v, ok := s.score[id]
	if !ok {
		return nil, scoring.ErrLeadNotFound
	}
	return &domain.LeadScore{RequestID: id, NumericScore: v, Tier: domain.TierForScore(v)}, nil
}

func (s *countingStore) UpdateLead(_ context.Context, id string, score int, _ domain.Tier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.score[id] = score
	return nil
}

func (s *countingStore) CountInteractions(_ context.Context, id, et string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	n := 0
	for _, e := range s.entries {
		if e.RequestID == id && string(e.EventType) == et {
			n++
		}
	}
	return n, nil
}

func (s *countingStore) AppendInteraction(_ context.Context, in *domain.Interaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.entries = append(s.entries, *in)
	return nil
}

type fakeSQS struct {
	mu       sync.Mutex
	sent     []string
	sendErr  error
	batches  [][]types.Message
	recvErr  error
	deleted  []string
	delErr   error
	received int
}

func (f *fakeSQS) SendMessage(_ context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, *in.MessageBody)
	return &sqs.SendMessageOutput{}, nil
}

func (f *fakeSQS) ReceiveMessage(ctx context.Context, _ *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.received++
	if f.recvErr != nil {
		return nil, f.recvErr
	}
	if len(f.batches) == 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return &sqs.ReceiveMessageOutput{}, nil
	}
	b := f.batches[0]
	f.batches = f.batches[1:]
	return &sqs.ReceiveMessageOutput{Messages: b}, nil
}

func (f *fakeSQS) DeleteMessage(_ context.Context, in *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delErr != nil {
		return nil, f.delErr
	}
	f.deleted = append(f.deleted, *in.ReceiptHandle)
	return &sqs.DeleteMessageOutput{}, nil
}

var errBoom = errors.New("boom")
