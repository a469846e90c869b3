package domain

import (
	"fmt"
	"math"
	"time"
)

// Role identifies the author of a chat message.
type Role string

// Chat roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// FallbackAnswer is appended as the assistant reply when a question
// could not be answered because the remote call failed.
const FallbackAnswer = "Sorry, I encountered an error while processing your question. Please try again."

// Grounding indicator labels.
const (
	GroundedLabel           = "grounded"
	LimitedInformationLabel = "limited information"
)

// Citation is a supporting passage the service attached to an answer.
type Citation struct {
	// PageNumber is the 1-based page the snippet was taken from.
	PageNumber int

	// ChunkID identifies the retrieved chunk when the service reports it.
	ChunkID string

	// Snippet is a short excerpt of the passage.
	Snippet string

	// RelevanceScore is the retrieval score in [0,1].
	RelevanceScore float64
}

// RelevancePercent returns the score as a percentage rounded to one decimal.
func (c Citation) RelevancePercent() float64 {
	return math.Round(c.RelevanceScore*1000) / 10
}

// FormatRelevance renders the score as a percentage, e.g. "92.0%".
func (c Citation) FormatRelevance() string {
	return fmt.Sprintf("%.1f%%", c.RelevancePercent())
}

// AnswerResult is the service's response to a question.
type AnswerResult struct {
	Answer    string
	Citations []Citation

	// Grounded is nil when the service omitted the classification.
	Grounded *bool
}

// ChatMessage is one immutable entry of the transcript.
type ChatMessage struct {
	// ID uniquely identifies the message.
	ID string

	// Role is the author.
	Role Role

	// Content is the message text.
	Content string

	// Citations are present on assistant answers only, in service order.
	Citations []Citation

	// Grounded is nil when the response did not classify the answer.
	Grounded *bool

	// Timestamp is when the message was appended.
	Timestamp time.Time
}

// Clone returns a deep copy so callers cannot mutate transcript entries.
func (m ChatMessage) Clone() ChatMessage {
	out := m
	if m.Citations != nil {
		out.Citations = make([]Citation, len(m.Citations))
		copy(out.Citations, m.Citations)
	}
	if m.Grounded != nil {
		g := *m.Grounded
		out.Grounded = &g
	}
	return out
}

// GroundingLabel returns the indicator for the message's grounded flag,
// or an empty string when the flag is absent.
func (m ChatMessage) GroundingLabel() string {
	return GroundingLabel(m.Grounded)
}

// GroundingLabel maps an optional grounded flag to its display indicator.
func GroundingLabel(grounded *bool) string {
	if grounded == nil {
		return ""
	}
	if *grounded {
		return GroundedLabel
	}
	return LimitedInformationLabel
}

// ChatPhase is the state of a chat session.
type ChatPhase string

// Chat phases.
const (
	ChatIdle    ChatPhase = "idle"
	ChatWaiting ChatPhase = "waiting"
)
