package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/esglens/esglens/internal/insights"
)

// Conversation is an archived model exchange.
type Conversation struct {
	ID        string             `json:"id"`
	UserID    string             `json:"userId"`
	Feature   string             `json:"feature"`
	Messages  []insights.Message `json:"messages"`
	Model     string             `json:"model"`
	Usage     insights.Usage     `json:"usage"`
	LatencyMs int64              `json:"latencyMs"`
	Rating    int                `json:"rating,omitempty"`
	Tags      []string           `json:"tags,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
}

func validateConversation(c Conversation) error {
	for i, m := range c.Messages {
		switch m.Role {
		case insights.RoleUser, insights.RoleAssistant, insights.RoleSystem:
		default:
			return fmt.Errorf("%w: message %d has role %q", ErrInvalidRole, i, m.Role)
		}
		if m.Content == "" {
			return fmt.Errorf("%w: message %d", ErrEmptyMessage, i)
		}
	}
	if c.Rating != 0 && (c.Rating < 1 || c.Rating > 5) {
		return fmt.Errorf("%w: got %d", ErrInvalidRating, c.Rating)
	}
	return nil
}

// SaveConversation validates and archives c, assigning its ID and
// timestamp.
func (s *Store) SaveConversation(ctx context.Context, c Conversation) (Conversation, error) {
	if err := validateConversation(c); err != nil {
		return Conversation{}, err
	}

	c.ID = uuid.NewString()
	c.CreatedAt = s.now().UTC().Truncate(time.Millisecond)
	if c.Messages == nil {
		c.Messages = []insights.Message{}
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}

	messages, err := marshalColumn("messages", c.Messages)
	if err != nil {
		return Conversation{}, err
	}
	tags, err := marshalColumn("tags", c.Tags)
	if err != nil {
		return Conversation{}, err
	}
	var rating sql.NullInt64
	if c.Rating != 0 {
		rating = sql.NullInt64{Int64: int64(c.Rating), Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conversations (id, user_id, feature, messages, model, input_tokens, output_tokens,
			total_tokens, latency_ms, rating, tags, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Feature, messages, c.Model, c.Usage.InputTokens, c.Usage.OutputTokens,
		c.Usage.TotalTokens, c.LatencyMs, rating, tags, toMillis(c.CreatedAt))
	if err != nil {
		return Conversation{}, fmt.Errorf("saving conversation: %w", err)
	}
	return c, nil
}

// GetConversation returns the conversation with id or ErrNotFound.
func (s *Store) GetConversation(ctx context.Context, id string) (Conversation, error) {
	var (
		c         Conversation
		messages  string
		tags      string
		rating    sql.NullInt64
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, feature, messages, model, input_tokens, output_tokens, total_tokens,
			latency_ms, rating, tags, created_at
		FROM conversations WHERE id = ?`, id).
		Scan(&c.ID, &c.UserID, &c.Feature, &messages, &c.Model, &c.Usage.InputTokens,
			&c.Usage.OutputTokens, &c.Usage.TotalTokens, &c.LatencyMs, &rating, &tags, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Conversation{}, ErrNotFound
	}
	if err != nil {
		return Conversation{}, fmt.Errorf("loading conversation: %w", err)
	}

	if err = unmarshalColumn("messages", messages, &c.Messages); err != nil {
		return Conversation{}, err
	}
	if err = unmarshalColumn("tags", tags, &c.Tags); err != nil {
		return Conversation{}, err
	}
	c.Rating = int(rating.Int64)
	c.CreatedAt = fromMillis(createdAt)
	return c, nil
}

// RecordExchange archives a model call as a conversation. It lets the
// store serve as the insight service's recorder.
func (s *Store) RecordExchange(ctx context.Context, ex insights.Exchange) error {
	_, err := s.SaveConversation(ctx, Conversation{
		UserID:    ex.UserID,
		Feature:   ex.Feature,
		Messages:  ex.Messages,
		Model:     ex.Model,
		Usage:     ex.Usage,
		LatencyMs: ex.Latency.Milliseconds(),
	})
	return err
}

var _ insights.Recorder = (*Store)(nil)
