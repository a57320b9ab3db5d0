package database

import (
	"context"
	"fmt"

	"github.com/eventzone/booking-backend/internal/models"
)

// ChatAutoReply is stored after every customer message
const ChatAutoReply = "Thanks for your message! We'll get back to you soon."

// ChatAutoReplySender is the sender recorded on automatic replies
const ChatAutoReplySender = "coordinator"

// ChatRepository handles coordinator chat storage
type ChatRepository struct {
	db DB
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// ListMessages returns a coordinator conversation in chronological order
func (r *ChatRepository) ListMessages(ctx context.Context, coordinatorID int64) ([]models.ChatMessage, error) {
	query := `
		SELECT id, coordinator_id, sender, message, created_at
		FROM chat_messages
		WHERE coordinator_id = $1
		ORDER BY created_at ASC, id ASC
	`

	messages := []models.ChatMessage{}
	err := r.db.WithConn(ctx, func(conn Conn) error {
		return conn.SelectContext(ctx, &messages, query, coordinatorID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	return messages, nil
}

// InsertWithAutoReply stores the message followed by the automatic coordinator reply
func (r *ChatRepository) InsertWithAutoReply(ctx context.Context, coordinatorID int64, sender, message string) error {
	query := `INSERT INTO chat_messages (coordinator_id, sender, message) VALUES ($1, $2, $3)`

	err := r.db.WithConn(ctx, func(conn Conn) error {
		if _, err := conn.ExecContext(ctx, query, coordinatorID, sender, message); err != nil {
			return err
		}
		_, err := conn.ExecContext(ctx, query, coordinatorID, ChatAutoReplySender, ChatAutoReply)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to store chat message: %w", err)
	}
	return nil
}
