package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/policydesk/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/policydesk/internal/core/domain"
)

type stubRoster struct{ empty bool }

func (s stubRoster) IsEmpty() bool { return s.empty }

func TestChatSession_EmptyQuestion(t *testing.T) {
	client := &mockIndexClient{}
	chat := NewChatSession(client, stubRoster{}, nil)

	for _, q := range []string{"", "   ", "\n\t"} {
		_, err := chat.Ask(context.Background(), q)
		assert.ErrorIs(t, err, domain.ErrEmptyQuestion)
	}

	_, _, _, asks := client.calls()
	assert.Equal(t, 0, asks)
	assert.Empty(t, chat.Transcript())
}

func TestChatSession_NoDocuments(t *testing.T) {
	client := &mockIndexClient{}
	chat := NewChatSession(client, stubRoster{empty: true}, nil)

	_, err := chat.Ask(context.Background(), "What is my deductible?")

	assert.ErrorIs(t, err, domain.ErrNoDocuments)
	_, _, _, asks := client.calls()
	assert.Equal(t, 0, asks)
	assert.Empty(t, chat.Transcript())
}

func TestChatSession_Ask_Success(t *testing.T) {
	client := &mockIndexClient{
		askFn: func(_ context.Context, question string, _ int) (*domain.AnswerResult, error) {
			assert.Equal(t, "What is my deductible?", question)
			return &domain.AnswerResult{
				Answer: "Your deductible is $500.",
				Citations: []domain.Citation{
					{PageNumber: 3, Snippet: "Annual deductible: $500", RelevanceScore: 0.92},
				},
				Grounded: boolPtr(true),
			}, nil
		},
	}
	chat := NewChatSession(client, stubRoster{}, nil)
	chat.SetDraft("What is my deductible?")

	reply, err := chat.Ask(context.Background(), "  What is my deductible?  ")

	require.NoError(t, err)
	assert.Equal(t, domain.RoleAssistant, reply.Role)
	assert.Equal(t, "Your deductible is $500.", reply.Content)
	assert.Equal(t, domain.GroundedLabel, reply.GroundingLabel())
	assert.Equal(t, "", chat.Draft())
	assert.Equal(t, domain.ChatIdle, chat.Phase())

	transcript := chat.Transcript()
	require.Len(t, transcript, 2)
	assert.Equal(t, domain.RoleUser, transcript[0].Role)
	assert.Equal(t, "What is my deductible?", transcript[0].Content)
	assert.Equal(t, domain.RoleAssistant, transcript[1].Role)
	require.Len(t, transcript[1].Citations, 1)
	assert.Equal(t, "92.0%", transcript[1].Citations[0].FormatRelevance())
	assert.NotEqual(t, transcript[0].ID, transcript[1].ID)
	assert.Equal(t, domain.DefaultTopK, client.lastTopK)
}

func TestChatSession_Ask_GroundingAbsent(t *testing.T) {
	client := &mockIndexClient{
		askFn: func(context.Context, string, int) (*domain.AnswerResult, error) {
			return &domain.AnswerResult{Answer: "Not sure."}, nil
		},
	}
	chat := NewChatSession(client, stubRoster{}, nil)

	reply, err := chat.Ask(context.Background(), "Is acupuncture covered?")

	require.NoError(t, err)
	assert.Nil(t, reply.Grounded)
	assert.Equal(t, "", reply.GroundingLabel())
}

func TestChatSession_Ask_RemoteFailure(t *testing.T) {
	remoteErr := &domain.ServiceError{Op: "submit question", Status: 500}
	client := &mockIndexClient{
		askFn: func(context.Context, string, int) (*domain.AnswerResult, error) { return nil, remoteErr },
	}
	notifier := &recordingNotifier{}
	chat := NewChatSession(client, stubRoster{}, notifier)

	reply, err := chat.Ask(context.Background(), "Is dental covered?")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrService)
	assert.Equal(t, domain.FallbackAnswer, reply.Content)
	assert.Equal(t, domain.ChatIdle, chat.Phase())
	assert.Equal(t, []domain.NotificationLevel{domain.LevelError}, notifier.levels())

	transcript := chat.Transcript()
	require.Len(t, transcript, 2)
	assert.Equal(t, "Is dental covered?", transcript[0].Content)
	assert.Equal(t, domain.FallbackAnswer, transcript[1].Content)
	assert.Empty(t, transcript[1].Citations)
	assert.Nil(t, transcript[1].Grounded)
}

func TestChatSession_Ask_PendingRejected(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	client := &mockIndexClient{
		askFn: func(context.Context, string, int) (*domain.AnswerResult, error) {
			close(entered)
			<-release
			return &domain.AnswerResult{Answer: "first"}, nil
		},
	}
	chat := NewChatSession(client, stubRoster{}, nil)

	done := make(chan error, 1)
	go func() {
		_, err := chat.Ask(context.Background(), "first")
		done <- err
	}()
	<-entered

	assert.Equal(t, domain.ChatWaiting, chat.Phase())
	_, err := chat.Ask(context.Background(), "second")
	assert.ErrorIs(t, err, domain.ErrQuestionPending)
	assert.ErrorIs(t, err, domain.ErrConflict)

	close(release)
	require.NoError(t, <-done)

	transcript := chat.Transcript()
	require.Len(t, transcript, 2)
	assert.Equal(t, "first", transcript[0].Content)
	assert.Equal(t, "first", transcript[1].Content)
}

func TestChatSession_TranscriptOrder(t *testing.T) {
	client := &mockIndexClient{
		askFn: func(_ context.Context, q string, _ int) (*domain.AnswerResult, error) {
			return &domain.AnswerResult{Answer: "re: " + q}, nil
		},
	}
	chat := NewChatSession(client, stubRoster{}, nil)

	for _, q := range []string{"one", "two", "three"} {
		_, err := chat.Ask(context.Background(), q)
		require.NoError(t, err)
	}

	var contents []string
	for _, m := range chat.Transcript() {
		contents = append(contents, m.Content)
	}
	assert.Equal(t, []string{"one", "re: one", "two", "re: two", "three", "re: three"}, contents)
}

func TestChatSession_ClearAllWhileWaitingDropsReply(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	client := &mockIndexClient{
		askFn: func(context.Context, string, int) (*domain.AnswerResult, error) {
			close(entered)
			<-release
			return &domain.AnswerResult{Answer: "late"}, nil
		},
	}
	chat := NewChatSession(client, stubRoster{}, nil)

	done := make(chan error, 1)
	go func() {
		_, err := chat.Ask(context.Background(), "question")
		done <- err
	}()
	<-entered
	chat.ClearAll()
	close(release)
	require.NoError(t, <-done)

	assert.Empty(t, chat.Transcript())
	assert.Equal(t, domain.ChatIdle, chat.Phase())
}

func TestChatSession_WithTopK(t *testing.T) {
	client := &mockIndexClient{}
	chat := NewChatSession(client, stubRoster{}, nil, WithTopK(8))

	_, err := chat.Ask(context.Background(), "q")

	require.NoError(t, err)
	assert.Equal(t, 8, client.lastTopK)
}

func TestChatSession_TranscriptIsCopy(t *testing.T) {
	client := &mockIndexClient{
		askFn: func(context.Context, string, int) (*domain.AnswerResult, error) {
			return &domain.AnswerResult{Answer: "a", Citations: []domain.Citation{{PageNumber: 1}}}, nil
		},
	}
	chat := NewChatSession(client, stubRoster{}, nil)
	_, err := chat.Ask(context.Background(), "q")
	require.NoError(t, err)

	transcript := chat.Transcript()
	transcript[1].Citations[0].PageNumber = 99
	transcript[0].Content = "changed"

	again := chat.Transcript()
	assert.Equal(t, 1, again[1].Citations[0].PageNumber)
	assert.Equal(t, "q", again[0].Content)
}

func TestChatSession_ArchiveAndRestore(t *testing.T) {
	store := memory.NewTranscriptStore()
	client := &mockIndexClient{}
	first := NewChatSession(client, stubRoster{}, nil, WithTranscriptStore(store))

	_, err := first.Ask(context.Background(), "Is vision covered?")
	require.NoError(t, err)

	second := NewChatSession(client, stubRoster{}, nil, WithTranscriptStore(store))
	require.NoError(t, second.Restore(context.Background()))

	restored := second.Transcript()
	require.Len(t, restored, 2)
	assert.Equal(t, "Is vision covered?", restored[0].Content)

	second.ClearAll()
	archived, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, archived)
}

func TestChatSession_ArchiveFailureDoesNotAffectConversation(t *testing.T) {
	store := failingTranscriptStore{err: errors.New("disk full")}
	chat := NewChatSession(&mockIndexClient{}, stubRoster{}, nil, WithTranscriptStore(store))

	_, err := chat.Ask(context.Background(), "q")

	require.NoError(t, err)
	assert.Len(t, chat.Transcript(), 2)
	assert.Error(t, chat.Restore(context.Background()))
}

func TestChatSession_RestoreWithoutArchive(t *testing.T) {
	chat := NewChatSession(&mockIndexClient{}, stubRoster{}, nil)
	assert.NoError(t, chat.Restore(context.Background()))
}
