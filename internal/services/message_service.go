package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/eventzone/booking-backend/internal/database"
	"github.com/eventzone/booking-backend/internal/models"
	"github.com/eventzone/booking-backend/pkg/clock"
	"github.com/sirupsen/logrus"
)

// feedbackReplyLayout stamps admin replies appended to feedback
const feedbackReplyLayout = "2006-01-02 15:04"

// MessageService handles coordinator chat and customer feedback
type MessageService struct {
	chat     *database.ChatRepository
	feedback *database.FeedbackRepository
	clock    clock.Clock
	logger   logrus.FieldLogger
}

// NewMessageService creates a new message service
func NewMessageService(chat *database.ChatRepository, feedback *database.FeedbackRepository, c clock.Clock, logger logrus.FieldLogger) *MessageService {
	if c == nil {
		c = clock.NewRealClock()
	}
	return &MessageService{chat: chat, feedback: feedback, clock: c, logger: logger}
}

// ChatHistory returns a coordinator conversation, oldest first
func (s *MessageService) ChatHistory(ctx context.Context, coordinatorID int64) ([]models.ChatMessage, error) {
	messages, err := s.chat.ListMessages(ctx, coordinatorID)
	if err != nil {
		return nil, persistenceError(err, "failed to load chat")
	}
	return messages, nil
}

// PostChat stores a customer message and the coordinator's automatic reply
func (s *MessageService) PostChat(ctx context.Context, coordinatorID int64, req models.ChatRequest) error {
	sender := strings.TrimSpace(req.Sender)
	message := strings.TrimSpace(req.Message)
	if sender == "" || message == "" {
		return validationError("sender and message are required")
	}
	if err := s.chat.InsertWithAutoReply(ctx, coordinatorID, sender, message); err != nil {
		return persistenceError(err, "failed to send chat message")
	}
	return nil
}

// SubmitFeedback stores feedback. userID is nil for anonymous visitors.
func (s *MessageService) SubmitFeedback(ctx context.Context, userID *int64, message string) (int64, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return 0, validationError("message is required")
	}
	id, err := s.feedback.CreateFeedback(ctx, userID, message)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return 0, notFoundError("user does not exist")
		}
		return 0, persistenceError(err, "failed to submit feedback")
	}
	return id, nil
}

// ListFeedback returns all feedback, newest first
func (s *MessageService) ListFeedback(ctx context.Context) ([]models.Feedback, error) {
	feedback, err := s.feedback.ListFeedback(ctx)
	if err != nil {
		return nil, persistenceError(err, "failed to list feedback")
	}
	return feedback, nil
}

// ReplyToFeedback appends a timestamped admin reply and marks the feedback replied
func (s *MessageService) ReplyToFeedback(ctx context.Context, id int64, reply string) error {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return validationError("reply is required")
	}

	block := fmt.Sprintf("\n\n--- Reply (%s) ---\n%s", s.clock.Now().Format(feedbackReplyLayout), reply)
	n, err := s.feedback.AppendReply(ctx, id, block)
	if err != nil {
		return persistenceError(err, "failed to reply to feedback")
	}
	if n == 0 {
		return notFoundError("feedback %d not found", id)
	}

	s.logger.WithField("feedback_id", id).Info("Feedback replied")
	return nil
}
