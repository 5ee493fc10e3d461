// Package signal classifies raw call transcripts into structured signals.
//
// Classification is keyword-driven: an ordered list of rules is evaluated
// top to bottom and the first match wins, so tie-break order is explicit
// and testable. Classify is total over all string inputs — malformed or
// empty transcripts resolve to a safe low-urgency default, never an error.
package signal

import "strings"

// Intent is the caller's inferred reason for the call.
type Intent string

const (
	IntentEmergency      Intent = "emergency"
	IntentPricing        Intent = "pricing"
	IntentScheduling     Intent = "scheduling"
	IntentGeneralInquiry Intent = "general_inquiry"
)

// Urgency is how quickly the caller appears to need service.
type Urgency string

const (
	UrgencyHigh   Urgency = "high"
	UrgencyMedium Urgency = "medium"
	UrgencyLow    Urgency = "low"
)

// Signal is the structured result of classifying one transcript. Topic is
// empty when no service topic could be detected.
type Signal struct {
	RawText string  `json:"raw_text"`
	Intent  Intent  `json:"intent"`
	Urgency Urgency `json:"urgency"`
	Topic   string  `json:"topic,omitempty"`
}

// emergencyKeywords drive both the high-urgency check and the emergency
// intent check.
var emergencyKeywords = []string{
	"emergency", "urgent", "flooding", "leak", "broken", "asap", "immediate",
}

var mediumUrgencyKeywords = []string{"soon", "today", "tomorrow"}

// intentRules are evaluated in order; the first rule whose keyword list
// matches decides the intent.
type intentRule struct {
	intent   Intent
	keywords []string
}

var intentRules = []intentRule{
	{IntentEmergency, emergencyKeywords},
	{IntentPricing, []string{"quote", "estimate", "price", "cost"}},
	{IntentScheduling, []string{"schedule", "appointment"}},
}

// topicRule maps a transcript keyword to a canonical service topic. The
// built-in table is only consulted after the caller-supplied service list,
// and is evaluated in order.
type topicRule struct {
	keyword string
	topic   string
}

var builtinTopics = []topicRule{
	{"plumb", "plumbing"},
	{"electric", "electrical"},
	{"hvac", "HVAC"},
	{"heating", "HVAC"},
	{"cooling", "HVAC"},
	{"clean", "cleaning"},
	{"repair", "repair"},
}

// Classifier classifies transcripts against an optional list of known
// service names. Service names take precedence over the built-in topic
// table when both match.
type Classifier struct {
	services []string
}

// NewClassifier returns a classifier. services may be nil.
func NewClassifier(services []string) *Classifier {
	return &Classifier{services: services}
}

// Classify derives intent, urgency, and topic from a transcript. An empty
// transcript represents a missed or unanswered call and yields a
// low-urgency general inquiry with no topic.
func (c *Classifier) Classify(transcript string) Signal {
	if strings.TrimSpace(transcript) == "" {
		return Signal{
			RawText: transcript,
			Intent:  IntentGeneralInquiry,
			Urgency: UrgencyLow,
		}
	}

	text := strings.ToLower(transcript)

	return Signal{
		RawText: transcript,
		Intent:  classifyIntent(text),
		Urgency: classifyUrgency(text),
		Topic:   c.detectTopic(text),
	}
}

func classifyUrgency(text string) Urgency {
	if containsAny(text, emergencyKeywords) {
		return UrgencyHigh
	}
	if containsAny(text, mediumUrgencyKeywords) {
		return UrgencyMedium
	}
	return UrgencyLow
}

func classifyIntent(text string) Intent {
	for _, rule := range intentRules {
		if containsAny(text, rule.keywords) {
			return rule.intent
		}
	}
	return IntentGeneralInquiry
}

func (c *Classifier) detectTopic(text string) string {
	// Caller-supplied service names win over the built-in table.
	for _, svc := range c.services {
		name := strings.ToLower(strings.TrimSpace(svc))
		if name != "" && strings.Contains(text, name) {
			return strings.TrimSpace(svc)
		}
	}
	for _, rule := range builtinTopics {
		if strings.Contains(text, rule.keyword) {
			return rule.topic
		}
	}
	return ""
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
