package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/eventzone/booking-backend/internal/config"
	"github.com/eventzone/booking-backend/internal/models"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes booking lifecycle events to a single topic
type Producer struct {
	writer messageWriter
	topic  string
	logger logrus.FieldLogger
}

// NewProducer creates a synchronous producer for cfg.BookingTopic
func NewProducer(cfg config.KafkaConfig, logger logrus.FieldLogger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.BookingTopic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		WriteTimeout: 5 * time.Second,
		MaxAttempts:  3,
		RequiredAcks: kafka.RequireOne,
	}
	return newProducer(writer, cfg.BookingTopic, logger)
}

func newProducer(writer messageWriter, topic string, logger logrus.FieldLogger) *Producer {
	return &Producer{writer: writer, topic: topic, logger: logger}
}

// PublishBookingEvent writes one event keyed by booking id, so events of a booking stay ordered
func (p *Producer) PublishBookingEvent(ctx context.Context, event models.BookingEvent) error {
	msg, err := newBookingMessage(event)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write %s to kafka: %w", event.Type, err)
	}

	p.logger.WithFields(logrus.Fields{
		"topic":      p.topic,
		"type":       event.Type,
		"booking_id": event.BookingID,
	}).Debug("Booking event published")
	return nil
}

// Close flushes pending writes and closes the writer
func (p *Producer) Close() error {
	return p.writer.Close()
}

func newBookingMessage(event models.BookingEvent) (kafka.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal booking event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(strconv.FormatInt(event.BookingID, 10)),
		Value: payload,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
		},
	}, nil
}
