// Package ingest turns inbound call events into persisted opportunities.
//
// One call event flows transcript → classifier → estimator → opportunity.
// The signal itself is ephemeral; its fields are snapshotted into the
// opportunity row and not kept anywhere else.
package ingest

import (
	"context"
	"fmt"

	"github.com/signalworks/pulse/internal/profile"
	"github.com/signalworks/pulse/internal/signal"
	"github.com/signalworks/pulse/internal/store"
	"github.com/signalworks/pulse/internal/value"
)

// CallEvent is one inbound call as delivered by the telephony layer. An
// empty transcript represents a missed or unanswered call.
type CallEvent struct {
	UserID     string `json:"user_id"`
	Transcript string `json:"transcript"`
}

// Engine classifies calls and writes the resulting opportunities.
type Engine struct {
	classifier *signal.Classifier
	st         store.Store
}

// NewEngine creates an intake engine. services is the business's known
// service-name list used for topic detection; may be nil.
func NewEngine(st store.Store, services []string) *Engine {
	return &Engine{classifier: signal.NewClassifier(services), st: st}
}

// HandleCall classifies one call event, estimates its value against the
// business price range, and persists a pending opportunity. Classification
// never fails; only the store write can.
func (e *Engine) HandleCall(ctx context.Context, event CallEvent, bp profile.BusinessProfile) (*store.Opportunity, error) {
	if event.UserID == "" {
		return nil, fmt.Errorf("handle call: user ID cannot be empty")
	}

	sig := e.classifier.Classify(event.Transcript)

	o := &store.Opportunity{
		UserID:         event.UserID,
		Transcript:     sig.RawText,
		Intent:         string(sig.Intent),
		Urgency:        string(sig.Urgency),
		Topic:          sig.Topic,
		EstimatedValue: value.Estimate(sig, bp.PriceRange),
		Priority:       priorityFor(sig.Urgency),
	}
	if err := e.st.CreateOpportunity(ctx, o); err != nil {
		return nil, fmt.Errorf("persisting opportunity: %w", err)
	}
	return o, nil
}

// Classify exposes the classifier for read-only use (no persistence).
func (e *Engine) Classify(transcript string) signal.Signal {
	return e.classifier.Classify(transcript)
}

// priorityFor maps signal urgency onto opportunity priority one-to-one.
func priorityFor(u signal.Urgency) string {
	switch u {
	case signal.UrgencyHigh:
		return "high"
	case signal.UrgencyMedium:
		return "medium"
	default:
		return "low"
	}
}
