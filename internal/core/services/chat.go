package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/policydesk/internal/core/domain"
	"github.com/custodia-labs/policydesk/internal/core/ports/driven"
	"github.com/custodia-labs/policydesk/internal/core/ports/driving"
	"github.com/custodia-labs/policydesk/internal/logger"
)

// Ensure ChatSession implements the interface.
var _ driving.ChatSession = (*ChatSession)(nil)

// rosterState is the part of the roster the chat session needs.
type rosterState interface {
	IsEmpty() bool
}

// ChatSession holds the conversation and serialises questions.
//
// The transcript is append-only between ClearAll calls. An answer that
// arrives after ClearAll is returned to the caller but not appended, so
// the transcript never holds a reply without its question.
type ChatSession struct {
	client   driven.IndexClient
	roster   rosterState
	notifier driven.Notifier
	archive  driven.TranscriptStore
	topK     int

	mu         sync.Mutex
	transcript []domain.ChatMessage
	phase      domain.ChatPhase
	draft      string
	epoch      uint64
}

// ChatOption configures a ChatSession.
type ChatOption func(*ChatSession)

// WithTopK sets the number of passages retrieved per question.
func WithTopK(k int) ChatOption {
	return func(c *ChatSession) {
		if k > 0 {
			c.topK = k
		}
	}
}

// WithTranscriptStore archives every appended message to store.
func WithTranscriptStore(store driven.TranscriptStore) ChatOption {
	return func(c *ChatSession) {
		c.archive = store
	}
}

// NewChatSession creates an empty chat session. notifier may be nil.
func NewChatSession(
	client driven.IndexClient,
	roster rosterState,
	notifier driven.Notifier,
	opts ...ChatOption,
) *ChatSession {
	c := &ChatSession{
		client:   client,
		roster:   roster,
		notifier: orNop(notifier),
		topK:     domain.DefaultTopK,
		phase:    domain.ChatIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Restore loads the archived transcript. It does nothing when no archive
// is configured or the session already holds messages.
func (c *ChatSession) Restore(ctx context.Context) error {
	if c.archive == nil {
		return nil
	}
	msgs, err := c.archive.List(ctx)
	if err != nil {
		return fmt.Errorf("restore transcript: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.transcript) > 0 {
		return nil
	}
	c.transcript = msgs
	logger.Debug("restored %d transcript messages", len(msgs))
	return nil
}

// Ask submits question and appends both the question and the reply.
//
// When the service cannot answer, a fallback reply is appended, an error
// notification is sent and the remote error is returned together with
// the fallback message.
func (c *ChatSession) Ask(ctx context.Context, question string) (domain.ChatMessage, error) {
	q := strings.TrimSpace(question)
	if q == "" {
		return domain.ChatMessage{}, domain.ErrEmptyQuestion
	}
	if c.roster.IsEmpty() {
		return domain.ChatMessage{}, domain.ErrNoDocuments
	}

	c.mu.Lock()
	if c.phase == domain.ChatWaiting {
		c.mu.Unlock()
		return domain.ChatMessage{}, domain.ErrQuestionPending
	}
	asked := newMessage(domain.RoleUser, q)
	c.transcript = append(c.transcript, asked)
	c.draft = ""
	c.phase = domain.ChatWaiting
	epoch := c.epoch
	c.mu.Unlock()

	logger.Section("Question")
	logger.Debug("question %q (top_k=%d)", q, c.topK)
	c.store(ctx, asked)

	done := logger.Timed("answer")
	result, err := c.client.SubmitQuestion(ctx, q, c.topK)
	done()

	var reply domain.ChatMessage
	if err != nil {
		logger.Warn("question failed: %v", err)
		reply = newMessage(domain.RoleAssistant, domain.FallbackAnswer)
	} else {
		reply = answerMessage(result)
	}

	c.mu.Lock()
	c.phase = domain.ChatIdle
	kept := c.epoch == epoch
	if kept {
		c.transcript = append(c.transcript, reply)
	}
	c.mu.Unlock()

	if kept {
		c.store(ctx, reply)
	} else {
		logger.Debug("transcript cleared while waiting; reply dropped")
	}

	if err != nil {
		c.notifier.Notify(domain.NewNotification(domain.LevelError, "Failed to get answer", err.Error()))
		return reply.Clone(), fmt.Errorf("ask question: %w", err)
	}
	return reply.Clone(), nil
}

// Transcript returns a copy of the conversation in append order.
func (c *ChatSession) Transcript() []domain.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.ChatMessage, len(c.transcript))
	for i, m := range c.transcript {
		out[i] = m.Clone()
	}
	return out
}

// Len returns the number of messages in the transcript.
func (c *ChatSession) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.transcript)
}

// Phase returns the current chat phase.
func (c *ChatSession) Phase() domain.ChatPhase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// SetDraft stores the pending question input.
func (c *ChatSession) SetDraft(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = text
}

// Draft returns the pending question input.
func (c *ChatSession) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// ClearAll empties the transcript and the archive.
func (c *ChatSession) ClearAll() {
	c.mu.Lock()
	c.transcript = nil
	c.draft = ""
	c.epoch++
	c.mu.Unlock()

	if c.archive == nil {
		return
	}
	if err := c.archive.Clear(context.Background()); err != nil {
		logger.Error("clear transcript archive: %v", err)
	}
}

// store archives msg. Archive failures never affect the conversation.
func (c *ChatSession) store(ctx context.Context, msg domain.ChatMessage) {
	if c.archive == nil {
		return
	}
	if err := c.archive.Append(context.WithoutCancel(ctx), msg); err != nil {
		logger.Error("archive message: %v", err)
	}
}

func newMessage(role domain.Role, content string) domain.ChatMessage {
	return domain.ChatMessage{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

func answerMessage(result *domain.AnswerResult) domain.ChatMessage {
	if result == nil {
		return newMessage(domain.RoleAssistant, "")
	}
	msg := newMessage(domain.RoleAssistant, result.Answer)
	if len(result.Citations) > 0 {
		msg.Citations = make([]domain.Citation, len(result.Citations))
		copy(msg.Citations, result.Citations)
	}
	if result.Grounded != nil {
		g := *result.Grounded
		msg.Grounded = &g
	}
	return msg
}
