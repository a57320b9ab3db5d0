package models

import "time"

// ChatMessage is one line of a coordinator conversation
type ChatMessage struct {
	ID            int64     `json:"-" db:"id"`
	CoordinatorID int64     `json:"-" db:"coordinator_id"`
	Sender        string    `json:"sender" db:"sender"`
	Message       string    `json:"message" db:"message"`
	CreatedAt     time.Time `json:"timestamp" db:"created_at"`
}

// ChatRequest posts a chat message
type ChatRequest struct {
	Sender  string `json:"sender" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// Feedback statuses
const (
	FeedbackStatusNew     = "NEW"
	FeedbackStatusReplied = "REPLIED"
)

// Feedback is a customer message to the admins
type Feedback struct {
	ID        int64     `json:"feedback_id" db:"id"`
	UserID    *int64    `json:"user_id" db:"user_id"`
	Username  string    `json:"username" db:"username"`
	Message   string    `json:"message" db:"message"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// FeedbackRequest submits feedback
type FeedbackRequest struct {
	Message string `json:"message" binding:"required"`
}

// FeedbackReplyRequest is the admin reply form
type FeedbackReplyRequest struct {
	Reply string `json:"reply" binding:"required"`
}
