package scoring

import (
	"context"
	"sync"

	"github.com/aoe-motors/lead-tracker/internal/domain"
)

// mockStore is an in-memory LeadStore.
type mockStore struct {
	mu        sync.Mutex
	leads     map[string]*domain.LeadScore
	getErr    error
	updateErr error
	gets      int
	updates   int
}

func newMockStore(leads ...domain.LeadScore) *mockStore {
	m := &mockStore{leads: make(map[string]*domain.LeadScore)}
	for _, l := range leads {
		l := l
		m.leads[l.RequestID] = &l
	}
	return m
}

func (m *mockStore) GetLead(_ context.Context, requestID string) (*domain.LeadScore, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.getErr != nil {
		return nil, m.getErr
	}
	l, ok := m.leads[requestID]
	if !ok {
		return nil, ErrLeadNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *mockStore) UpdateLead(_ context.Context, requestID string, score int, tier domain.Tier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++
	if m.updateErr != nil {
		return m.updateErr
	}
	l, ok := m.leads[requestID]
	if !ok {
		return ErrLeadNotFound
	}
	l.NumericScore = score
	l.Tier = tier
	return nil
}

func (m *mockStore) lead(requestID string) domain.LeadScore {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.leads[requestID]
}

// atomicStore adds a store-side capped increment.
type atomicStore struct {
	*mockStore
	increments int
}

func (a *atomicStore) IncrementScore(_ context.Context, requestID string, points int) (*domain.LeadScore, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.increments++
	if a.updateErr != nil {
		return nil, a.updateErr
	}
	l, ok := a.leads[requestID]
	if !ok {
		return nil, ErrLeadNotFound
	}
	l.NumericScore = domain.ClampScore(l.NumericScore + points)
	l.Tier = domain.TierForScore(l.NumericScore)
	cp := *l
	return &cp, nil
}

// mockLog is an in-memory InteractionLog. Append honours context
// cancellation so tests can observe detached contexts.
type mockLog struct {
	mu        sync.Mutex
	entries   []domain.Interaction
	countErr  error
	appendErr error
	counts    int
}

func (m *mockLog) CountInteractions(_ context.Context, requestID, eventType string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts++
	if m.countErr != nil {
		return 0, m.countErr
	}
	n := 0
	for _, e := range m.entries {
		if e.RequestID == requestID && string(e.EventType) == eventType {
			n++
		}
	}
	return n, nil
}

func (m *mockLog) AppendInteraction(ctx context.Context, in *domain.Interaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	m.entries = append(m.entries, *in)
	return nil
}

func (m *mockLog) ListInteractions(_ context.Context, requestID string) ([]domain.Interaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Interaction
	for _, e := range m.entries {
		if e.RequestID == requestID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockLog) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *mockLog) add(requestID string, types ...domain.EventType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range types {
		m.entries = append(m.entries, domain.Interaction{RequestID: requestID, EventType: t})
	}
}

// mockClaimer is an in-memory FirstOccurrenceClaimer.
type mockClaimer struct {
	mu      sync.Mutex
	claimed map[string]bool
	err     error
}

func newMockClaimer() *mockClaimer {
	return &mockClaimer{claimed: make(map[string]bool)}
}

func (m *mockClaimer) ClaimFirstOccurrence(_ context.Context, requestID, eventType string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	k := requestID + ":" + eventType
	if m.claimed[k] {
		return false, nil
	}
	m.claimed[k] = true
	return true, nil
}

type mockNotifier struct {
	mu      sync.Mutex
	changes []domain.TierChange
	err     error
}

func (m *mockNotifier) NotifyTierChange(_ context.Context, c domain.TierChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.changes = append(m.changes, c)
	return m.err
}
