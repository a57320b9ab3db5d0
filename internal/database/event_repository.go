package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/eventzone/booking-backend/internal/models"
)

// EventRepository handles event database operations
type EventRepository struct {
	db DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db DB) *EventRepository {
	return &EventRepository{db: db}
}

// CreateEvent inserts an event and returns its id
func (r *EventRepository) CreateEvent(ctx context.Context, event *models.Event) (int64, error) {
	query := `
		INSERT INTO events (name, description, event_date, city, venue, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id int64
	err := r.db.WithConn(ctx, func(conn Conn) error {
		return conn.GetContext(ctx, &id, query,
			event.Name, event.Description, event.EventDate, event.City, event.Venue, event.CreatedBy)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create event: %w", err)
	}

	return id, nil
}

// ListEvents returns every event ordered by event date
func (r *EventRepository) ListEvents(ctx context.Context) ([]models.Event, error) {
	query := `
		SELECT id, name, description, event_date, city, venue, created_by
		FROM events
		ORDER BY event_date, id
	`

	events := []models.Event{}
	err := r.db.WithConn(ctx, func(conn Conn) error {
		return conn.SelectContext(ctx, &events, query)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// ListUpcoming returns events on or after the given day
func (r *EventRepository) ListUpcoming(ctx context.Context, from time.Time) ([]models.Event, error) {
	query := `
		SELECT id, name, description, event_date, city, venue, created_by
		FROM events
		WHERE event_date >= $1
		ORDER BY event_date, id
	`

	events := []models.Event{}
	err := r.db.WithConn(ctx, func(conn Conn) error {
		return conn.SelectContext(ctx, &events, query, from)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming events: %w", err)
	}
	return events, nil
}

// FindEventIDByName resolves an event id by case-insensitive name, or 0 if none matches
func (r *EventRepository) FindEventIDByName(ctx context.Context, name string) (int64, error) {
	query := `SELECT id FROM events WHERE LOWER(name) = LOWER($1) ORDER BY id LIMIT 1`

	var id int64
	err := r.db.WithConn(ctx, func(conn Conn) error {
		return conn.GetContext(ctx, &id, query, normalize(name))
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to find event: %w", err)
	}
	return id, nil
}

// DeleteEvent removes an event and, through the foreign keys, its bookings
func (r *EventRepository) DeleteEvent(ctx context.Context, id int64) (int64, error) {
	return execAffected(ctx, r.db, "event delete", `DELETE FROM events WHERE id = $1`, id)
}
