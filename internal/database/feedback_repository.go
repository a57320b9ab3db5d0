package database

import (
	"context"
	"fmt"

	"github.com/eventzone/booking-backend/internal/models"
)

// FeedbackRepository handles feedback database operations
type FeedbackRepository struct {
	db DB
}

// NewFeedbackRepository creates a new feedback repository
func NewFeedbackRepository(db DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// CreateFeedback stores a feedback message. userID is nil for anonymous feedback.
func (r *FeedbackRepository) CreateFeedback(ctx context.Context, userID *int64, message string) (int64, error) {
	query := `INSERT INTO feedback (user_id, message, status) VALUES ($1, $2, $3) RETURNING id`

	var id int64
	err := r.db.WithConn(ctx, func(conn Conn) error {
		return conn.GetContext(ctx, &id, query, userID, message, models.FeedbackStatusNew)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create feedback: %w", err)
	}
	return id, nil
}

// ListFeedback returns every feedback entry, newest first
func (r *FeedbackRepository) ListFeedback(ctx context.Context) ([]models.Feedback, error) {
	query := `
		SELECT f.id, f.user_id, COALESCE(u.username, 'Anonymous') AS username, f.message, f.status, f.created_at
		FROM feedback f
		LEFT JOIN users u ON f.user_id = u.id
		ORDER BY f.created_at DESC, f.id DESC
	`

	feedback := []models.Feedback{}
	err := r.db.WithConn(ctx, func(conn Conn) error {
		return conn.SelectContext(ctx, &feedback, query)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	return feedback, nil
}

// AppendReply appends an already formatted reply block and marks the entry replied
func (r *FeedbackRepository) AppendReply(ctx context.Context, id int64, replyBlock string) (int64, error) {
	return execAffected(ctx, r.db, "feedback reply",
		`UPDATE feedback SET message = message || $1, status = $2 WHERE id = $3`,
		replyBlock, models.FeedbackStatusReplied, id)
}
