package scoring

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aoe-motors/lead-tracker/internal/domain"
	"github.com/aoe-motors/lead-tracker/internal/pkg/distlock"
)

func TestReplay(t *testing.T) {
	tests := []struct {
		name   string
		events []domain.EventType
		want   int
	}{
		{"empty", nil, 0},
		{"opens count once", []domain.EventType{"opened", "opened", "opened"}, 1},
		{"clicks add up", []domain.EventType{"opened", "clicked_pdf", "clicked_video"}, 5},
		{"unknown ignored", []domain.EventType{"bounced", "clicked_pdf"}, 2},
		{"capped", []domain.EventType{"clicked_pdf", "clicked_pdf", "clicked_pdf", "clicked_pdf", "clicked_pdf", "clicked_pdf", "clicked_pdf", "clicked_pdf", "opened"}, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var events []domain.Interaction
			for _, et := range tt.events {
				events = append(events, domain.Interaction{EventType: et})
			}
			assert.Equal(t, tt.want, Replay(events))
		})
	}
}

func TestRescore(t *testing.T) {
	store := newMockStore(lead("req-1", 9))
	log := &mockLog{}
	log.add("req-1", "opened", "opened", "clicked_pdf")

	r := NewRescorer(store, log, nil)

	res, err := r.Rescore(context.Background(), "req-1", true)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, 3, res.Score)
	assert.Equal(t, domain.TierCold, res.Tier)
	assert.Equal(t, 9, store.lead("req-1").NumericScore, "dry run does not write")

	res, err = r.Rescore(context.Background(), "req-1", false)
	require.NoError(t, err)
	assert.Equal(t, 3, store.lead("req-1").NumericScore)
	assert.Equal(t, domain.TierCold, store.lead("req-1").Tier)
	assert.Equal(t, 3, res.Events)

	res, err = r.Rescore(context.Background(), "req-1", false)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, 1, store.updates)
}

func TestRescore_UnknownLead(t *testing.T) {
	r := NewRescorer(newMockStore(), &mockLog{}, nil)
	_, err := r.Rescore(context.Background(), "ghost", false)
	assert.ErrorIs(t, err, ErrLeadNotFound)

	_, err = r.Rescore(context.Background(), "", false)
	assert.ErrorIs(t, err, ErrMissingRequestID)
}

func TestRescore_Locked(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	locks := func(key string) distlock.DistLock { return distlock.NewRedisLock(client, key, time.Minute) }
	store := newMockStore(lead("req-1", 0))
	log := &mockLog{}
	log.add("req-1", "clicked_video")
	r := NewRescorer(store, log, locks)

	holder := locks(distlock.LeadKey("req-1"))
	ok, err := holder.Acquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	_, err = r.Rescore(context.Background(), "req-1", false)
	assert.ErrorIs(t, err, distlock.ErrNotAcquired)
	assert.Zero(t, store.lead("req-1").NumericScore)

	require.NoError(t, holder.Release(context.Background()))
	res, err := r.Rescore(context.Background(), "req-1", false)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Score)
	assert.False(t, mr.Exists("lock:"+distlock.LeadKey("req-1")), "lock released after rescore")
}
