// Package advisor asks an LLM for sales guidance on a single lead.
package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/aoe-motors/lead-tracker/internal/domain"
)

// Completer is a single-turn text completion backend.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error)
}

// Sentiment of a salesperson's notes.
type Sentiment string

const (
	SentimentPositive Sentiment = "POSITIVE"
	SentimentNeutral  Sentiment = "NEUTRAL"
	SentimentNegative Sentiment = "NEGATIVE"
)

// LeadContext is what the advisor knows about a lead.
type LeadContext struct {
	CustomerName    string
	Vehicle         string
	VehicleFeatures string
	CurrentVehicle  string
	Competitor      *domain.CompetitorModel
	Tier            string
	Score           int
	SalesNotes      string
}

// ContextForBooking fills a LeadContext from a booking and the catalog.
func ContextForBooking(b domain.Booking) LeadContext {
	lc := LeadContext{
		CustomerName:   b.FullName,
		Vehicle:        b.Vehicle,
		CurrentVehicle: b.CurrentVehicle,
		Tier:           b.LeadScore,
		Score:          b.NumericLeadScore,
		SalesNotes:     b.SalesNotes,
	}
	if v, ok := domain.Vehicles[b.Vehicle]; ok {
		lc.VehicleFeatures = v.Features
	}
	if brand, _, _ := strings.Cut(strings.TrimSpace(b.CurrentVehicle), " "); brand != "" {
		if m, ok := domain.Competitor(brand, b.Vehicle); ok {
			lc.Competitor = &m
		}
	}
	return lc
}

const systemPrompt = "You are a sales assistant for AOE Motors. Be concise and specific to the customer."

// Advisor produces sales guidance through a Completer.
type Advisor struct {
	llm Completer
}

// New creates an Advisor.
func New(llm Completer) *Advisor {
	return &Advisor{llm: llm}
}

// Suggestions proposes offers that could move the lead forward.
func (a *Advisor) Suggestions(ctx context.Context, lc LeadContext) (string, error) {
	prompt := describe(lc) + "\nSuggest up to three concrete offers or incentives for this customer."
	out, err := a.llm.Complete(ctx, systemPrompt, prompt, 0.7)
	if err != nil {
		return "", fmt.Errorf("suggestions: %w", err)
	}
	return out, nil
}

// TalkingPoints prepares points for the salesperson's next call.
func (a *Advisor) TalkingPoints(ctx context.Context, lc LeadContext) (string, error) {
	prompt := describe(lc) + "\nWrite short talking points for the next call with this customer."
	out, err := a.llm.Complete(ctx, systemPrompt, prompt, 0.5)
	if err != nil {
		return "", fmt.Errorf("talking points: %w", err)
	}
	return out, nil
}

// Sentiment classifies sales notes. Empty notes and unrecognised answers
// are neutral.
func (a *Advisor) Sentiment(ctx context.Context, notes string) (Sentiment, error) {
	if strings.TrimSpace(notes) == "" {
		return SentimentNeutral, nil
	}
	out, err := a.llm.Complete(ctx,
		"Classify the sentiment of sales notes. Answer with exactly one word: POSITIVE, NEUTRAL or NEGATIVE.",
		notes, 0)
	if err != nil {
		return SentimentNeutral, fmt.Errorf("sentiment: %w", err)
	}
	switch s := Sentiment(strings.ToUpper(strings.Trim(strings.TrimSpace(out), "."))); s {
	case SentimentPositive, SentimentNegative:
		return s, nil
	}
	return SentimentNeutral, nil
}

func describe(lc LeadContext) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Customer: %s\n", lc.CustomerName)
	fmt.Fprintf(&sb, "Interested in: %s\n", lc.Vehicle)
	if lc.VehicleFeatures != "" {
		fmt.Fprintf(&sb, "Features: %s\n", lc.VehicleFeatures)
	}
	if lc.CurrentVehicle != "" {
		fmt.Fprintf(&sb, "Currently drives: %s\n", lc.CurrentVehicle)
	}
	if lc.Competitor != nil {
		fmt.Fprintf(&sb, "Comparable %s model: %s (%s)\n", lc.Competitor.Brand, lc.Competitor.ModelName, lc.Competitor.Features)
	}
	fmt.Fprintf(&sb, "Lead tier: %s (score %d of %d)\n", lc.Tier, lc.Score, domain.MaxLeadScore)
	if lc.SalesNotes != "" {
		fmt.Fprintf(&sb, "Sales notes: %s\n", lc.SalesNotes)
	}
	return sb.String()
}
