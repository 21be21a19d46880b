package store

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// EventType is the kind of feedback a user gave on an AI answer.
type EventType string

// Accepted event types.
const (
	EventThumbsUp     EventType = "thumbs_up"
	EventThumbsDown   EventType = "thumbs_down"
	EventCopyResponse EventType = "copy_response"
	EventRegenerate   EventType = "regenerate"
	EventBugReport    EventType = "bug_report"
)

// EventTypes lists every accepted type.
func EventTypes() []EventType {
	return []EventType{EventThumbsUp, EventThumbsDown, EventCopyResponse, EventRegenerate, EventBugReport}
}

// Valid reports whether t is an accepted type.
func (t EventType) Valid() bool {
	return slices.Contains(EventTypes(), t)
}

// Event is one piece of user feedback.
type Event struct {
	ID             string         `json:"id"`
	UserID         string         `json:"userId"`
	ConversationID string         `json:"conversationId,omitempty"`
	Feature        string         `json:"feature"`
	Type           EventType      `json:"type"`
	Meta           map[string]any `json:"meta,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// SaveEvent validates and archives ev, assigning its ID and timestamp.
func (s *Store) SaveEvent(ctx context.Context, ev Event) (Event, error) {
	if !ev.Type.Valid() {
		return Event{}, fmt.Errorf("%w: %q", ErrInvalidEventType, ev.Type)
	}
	var convID sql.NullString
	if ev.ConversationID != "" {
		if _, err := uuid.Parse(ev.ConversationID); err != nil {
			return Event{}, fmt.Errorf("%w: %q", ErrInvalidConversationID, ev.ConversationID)
		}
		convID = sql.NullString{String: ev.ConversationID, Valid: true}
	}

	ev.ID = uuid.NewString()
	ev.CreatedAt = s.now().UTC().Truncate(time.Millisecond)
	meta := ev.Meta
	if meta == nil {
		meta = map[string]any{}
	}
	metaJSON, err := marshalColumn("meta", meta)
	if err != nil {
		return Event{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO ai_events (id, user_id, conversation_id, feature, type, meta, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.UserID, convID, ev.Feature, string(ev.Type), metaJSON, toMillis(ev.CreatedAt))
	if err != nil {
		return Event{}, fmt.Errorf("saving event: %w", err)
	}

	s.logger.Debug().
		Str("operation", "save_event").
		Str("event_type", string(ev.Type)).
		Str("feature", ev.Feature).
		Msg("event archived")
	return ev, nil
}

// ListEvents returns the newest events first.
func (s *Store) ListEvents(ctx context.Context, limit int) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, conversation_id, feature, type, meta, created_at
		FROM ai_events ORDER BY created_at DESC, id DESC LIMIT ?`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		var (
			ev        Event
			convID    sql.NullString
			evType    string
			meta      string
			createdAt int64
		)
		if err = rows.Scan(&ev.ID, &ev.UserID, &convID, &ev.Feature, &evType, &meta, &createdAt); err != nil {
			return nil, err
		}
		ev.ConversationID = convID.String
		ev.Type = EventType(evType)
		if err = unmarshalColumn("meta", meta, &ev.Meta); err != nil {
			return nil, err
		}
		ev.CreatedAt = fromMillis(createdAt)
		out = append(out, ev)
	}
	return out, rows.Err()
}

// CountEventsByType tallies feedback per type, optionally for one feature.
func (s *Store) CountEventsByType(ctx context.Context, feature string) (map[EventType]int, error) {
	query := `SELECT type, COUNT(*) FROM ai_events`
	args := []any{}
	if feature != "" {
		query += ` WHERE feature = ?`
		args = append(args, feature)
	}
	query += ` GROUP BY type`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("counting events: %w", err)
	}
	defer rows.Close()

	out := make(map[EventType]int)
	for rows.Next() {
		var (
			t string
			n int
		)
		if err = rows.Scan(&t, &n); err != nil {
			return nil, err
		}
		out[EventType(t)] = n
	}
	return out, rows.Err()
}
