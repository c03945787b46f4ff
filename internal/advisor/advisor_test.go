package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aoe-motors/lead-tracker/internal/domain"
)

type fakeInvoker struct {
	req  bedrockRequest
	in   *bedrockruntime.InvokeModelInput
	body string
	err  error
}

func (f *fakeInvoker) InvokeModel(_ context.Context, in *bedrockruntime.InvokeModelInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.in = in
	if err := json.Unmarshal(in.Body, &f.req); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return &bedrockruntime.InvokeModelOutput{Body: []byte(f.body)}, nil
}

type fakeCompleter struct {
	system, user string
	temp         float64
	out          string
	err          error
	calls        int
}

func (f *fakeCompleter) Complete(_ context.Context, system, user string, temp float64) (string, error) {
	f.calls++
	f.system, f.user, f.temp = system, user, temp
	return f.out, f.err
}

func TestBedrockCompleter_Complete(t *testing.T) {
	inv := &fakeInvoker{body: `{"content":[{"type":"text","text":"Offer a "},{"type":"text","text":"free charger."}],"usage":{"input_tokens":10,"output_tokens":5}}`}
	c := NewBedrockCompleter(inv, "anthropic.claude-3-haiku", 0)

	out, err := c.Complete(context.Background(), "sys", "hello", 0.4)
	require.NoError(t, err)
	assert.Equal(t, "Offer a free charger.", out)

	assert.Equal(t, "anthropic.claude-3-haiku", *inv.in.ModelId)
	assert.Equal(t, anthropicVersion, inv.req.AnthropicVersion)
	assert.Equal(t, 1024, inv.req.MaxTokens)
	assert.Equal(t, "sys", inv.req.System)
	assert.Equal(t, 0.4, inv.req.Temperature)
	require.Len(t, inv.req.Messages, 1)
	assert.Equal(t, "user", inv.req.Messages[0].Role)
	assert.Equal(t, "hello", inv.req.Messages[0].Content[0].Text)
}

func TestBedrockCompleter_Errors(t *testing.T) {
	_, err := NewBedrockCompleter(&fakeInvoker{err: errors.New("throttled")}, "m", 10).Complete(context.Background(), "", "x", 0)
	assert.ErrorContains(t, err, "throttled")

	_, err = NewBedrockCompleter(&fakeInvoker{body: `{"content":[]}`}, "m", 10).Complete(context.Background(), "", "x", 0)
	assert.ErrorIs(t, err, ErrEmptyCompletion)

	_, err = NewBedrockCompleter(&fakeInvoker{body: `not json`}, "m", 10).Complete(context.Background(), "", "x", 0)
	assert.ErrorContains(t, err, "parse bedrock response")
}

func TestContextForBooking(t *testing.T) {
	lc := ContextForBooking(domain.Booking{
		FullName:         "Ada",
		Vehicle:          "AOE Volt",
		CurrentVehicle:   "Ford Focus",
		LeadScore:        "Warm",
		NumericLeadScore: 6,
		SalesNotes:       "asked about range",
	})
	assert.Equal(t, domain.Vehicles["AOE Volt"].Features, lc.VehicleFeatures)
	require.NotNil(t, lc.Competitor)
	assert.Equal(t, "Ford EV", lc.Competitor.ModelName)

	lc = ContextForBooking(domain.Booking{Vehicle: "Unknown", CurrentVehicle: "Ford Focus"})
	assert.Empty(t, lc.VehicleFeatures)
	assert.Nil(t, lc.Competitor)
}

func TestAdvisor_SuggestionsAndTalkingPoints(t *testing.T) {
	llm := &fakeCompleter{out: "1. Free charging"}
	a := New(llm)
	lc := LeadContext{CustomerName: "Ada", Vehicle: "AOE Volt", Tier: "Hot", Score: 12, SalesNotes: "keen"}

	out, err := a.Suggestions(context.Background(), lc)
	require.NoError(t, err)
	assert.Equal(t, "1. Free charging", out)
	assert.Contains(t, llm.user, "AOE Volt")
	assert.Contains(t, llm.user, "score 12 of 15")
	assert.Equal(t, 0.7, llm.temp)

	_, err = a.TalkingPoints(context.Background(), lc)
	require.NoError(t, err)
	assert.Contains(t, llm.user, "Sales notes: keen")
	assert.Equal(t, 0.5, llm.temp)

	llm.err = errors.New("down")
	_, err = a.Suggestions(context.Background(), lc)
	assert.ErrorContains(t, err, "suggestions: down")
}

func TestAdvisor_Sentiment(t *testing.T) {
	tests := []struct {
		notes string
		llm   string
		want  Sentiment
		calls int
	}{
		{"", "POSITIVE", SentimentNeutral, 0},
		{"loved it", "positive.", SentimentPositive, 1},
		{"not interested", " NEGATIVE ", SentimentNegative, 1},
		{"meh", "It is mixed", SentimentNeutral, 1},
	}
	for _, tt := range tests {
		llm := &fakeCompleter{out: tt.llm}
		got, err := New(llm).Sentiment(context.Background(), tt.notes)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.notes)
		assert.Equal(t, tt.calls, llm.calls)
	}
}
