package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/custodia-labs/policydesk/internal/core/domain"
	"github.com/custodia-labs/policydesk/internal/core/ports/driven"
)

// transcriptStore implements driven.TranscriptStore.
type transcriptStore struct {
	store *Store
}

var _ driven.TranscriptStore = (*transcriptStore)(nil)

// citationRecord is the archived form of a citation.
type citationRecord struct {
	Page    int     `msgpack:"p"`
	ChunkID string  `msgpack:"c,omitempty"`
	Snippet string  `msgpack:"s"`
	Score   float64 `msgpack:"r"`
}

// Append archives one message.
func (s *transcriptStore) Append(ctx context.Context, msg domain.ChatMessage) error {
	citations, err := encodeCitations(msg.Citations)
	if err != nil {
		return fmt.Errorf("encoding citations: %w", err)
	}

	var grounded sql.NullBool
	if msg.Grounded != nil {
		grounded = sql.NullBool{Bool: *msg.Grounded, Valid: true}
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO transcript (id, role, content, citations, grounded, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, msg.ID, string(msg.Role), msg.Content, citations, grounded, msg.Timestamp.UnixNano())
	if err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}
	return nil
}

// List returns archived messages in append order.
func (s *transcriptStore) List(ctx context.Context) ([]domain.ChatMessage, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, role, content, citations, grounded, created_at
		FROM transcript
		ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("querying transcript: %w", err)
	}
	defer rows.Close()

	var msgs []domain.ChatMessage
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

// Clear removes every archived message.
func (s *transcriptStore) Clear(ctx context.Context) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM transcript"); err != nil {
		return fmt.Errorf("clearing transcript: %w", err)
	}
	return nil
}

func scanMessage(rows *sql.Rows) (domain.ChatMessage, error) {
	var (
		msg       domain.ChatMessage
		role      string
		citations []byte
		grounded  sql.NullBool
		created   int64
	)
	if err := rows.Scan(&msg.ID, &role, &msg.Content, &citations, &grounded, &created); err != nil {
		return domain.ChatMessage{}, fmt.Errorf("scanning message: %w", err)
	}

	decoded, err := decodeCitations(citations)
	if err != nil {
		return domain.ChatMessage{}, fmt.Errorf("decoding citations of %s: %w", msg.ID, err)
	}

	msg.Role = domain.Role(role)
	msg.Citations = decoded
	msg.Timestamp = time.Unix(0, created)
	if grounded.Valid {
		g := grounded.Bool
		msg.Grounded = &g
	}
	return msg, nil
}

func encodeCitations(citations []domain.Citation) ([]byte, error) {
	if len(citations) == 0 {
		return nil, nil
	}
	records := make([]citationRecord, len(citations))
	for i, c := range citations {
		records[i] = citationRecord{
			Page:    c.PageNumber,
			ChunkID: c.ChunkID,
			Snippet: c.Snippet,
			Score:   c.RelevanceScore,
		}
	}
	return msgpack.Marshal(records)
}

func decodeCitations(data []byte) ([]domain.Citation, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var records []citationRecord
	if err := msgpack.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	citations := make([]domain.Citation, len(records))
	for i, r := range records {
		citations[i] = domain.Citation{
			PageNumber:     r.Page,
			ChunkID:        r.ChunkID,
			Snippet:        r.Snippet,
			RelevanceScore: r.Score,
		}
	}
	return citations, nil
}
