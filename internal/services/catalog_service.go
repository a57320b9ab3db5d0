package services

import (
	"context"
	"strings"

	"github.com/eventzone/booking-backend/internal/database"
	"github.com/eventzone/booking-backend/internal/models"
	"github.com/eventzone/booking-backend/pkg/validator"
	"github.com/sirupsen/logrus"
)

// CatalogService serves the event catalog and the landing page selections
type CatalogService struct {
	events     *database.EventRepository
	selections *database.SelectionRepository
	logger     logrus.FieldLogger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(events *database.EventRepository, selections *database.SelectionRepository, logger logrus.FieldLogger) *CatalogService {
	return &CatalogService{events: events, selections: selections, logger: logger}
}

// EventIDByName resolves an event id. Seeded catalog titles map to fixed ids.
func (s *CatalogService) EventIDByName(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, validationError("event name is required")
	}
	if id, ok := models.DefaultEventID(name); ok {
		return id, nil
	}

	id, err := s.events.FindEventIDByName(ctx, name)
	if err != nil {
		return 0, persistenceError(err, "failed to look up event")
	}
	if id == 0 {
		return 0, notFoundError("event %q not found", name)
	}
	return id, nil
}

// AddEvent creates an event from the public or admin form
func (s *CatalogService) AddEvent(ctx context.Context, req models.CreateEventRequest) (*models.Event, error) {
	name := strings.TrimSpace(req.Name)
	city := strings.TrimSpace(req.City)
	venue := strings.TrimSpace(req.Venue)
	if name == "" || city == "" || venue == "" {
		return nil, validationError("name, city and venue are required")
	}
	date, err := validator.ParseDate(req.EventDate)
	if err != nil {
		return nil, validationError("invalid event date %q: use YYYY-MM-DD", req.EventDate)
	}

	createdBy := strings.TrimSpace(req.CreatedBy)
	if createdBy == "" {
		createdBy = models.RoleAdmin
	}

	event := &models.Event{
		Name:        name,
		Description: req.Description,
		EventDate:   date,
		City:        city,
		Venue:       venue,
		CreatedBy:   createdBy,
	}
	id, err := s.events.CreateEvent(ctx, event)
	if err != nil {
		return nil, persistenceError(err, "failed to create event")
	}
	event.ID = id

	s.logger.WithFields(logrus.Fields{"event_id": id, "name": name, "created_by": createdBy}).Info("Event created")
	return event, nil
}

// ListEvents returns every event ordered by date
func (s *CatalogService) ListEvents(ctx context.Context) ([]models.Event, error) {
	events, err := s.events.ListEvents(ctx)
	if err != nil {
		return nil, persistenceError(err, "failed to list events")
	}
	return events, nil
}

// DeleteEvent removes an event and its bookings
func (s *CatalogService) DeleteEvent(ctx context.Context, id int64) error {
	n, err := s.events.DeleteEvent(ctx, id)
	if err != nil {
		return persistenceError(err, "failed to delete event")
	}
	if n == 0 {
		return notFoundError("event %d not found", id)
	}
	return nil
}

// SaveCity records the visitor's city choice
func (s *CatalogService) SaveCity(ctx context.Context, city string) error {
	if strings.TrimSpace(city) == "" {
		return validationError("city is required")
	}
	if err := s.selections.SaveCity(ctx, city); err != nil {
		return persistenceError(err, "failed to save city")
	}
	return nil
}

// LatestCity returns the last saved city, or "" when none was saved
func (s *CatalogService) LatestCity(ctx context.Context) (string, error) {
	city, err := s.selections.LatestCity(ctx)
	if err != nil {
		return "", persistenceError(err, "failed to load city")
	}
	return city, nil
}

// SaveDate records the visitor's date choice
func (s *CatalogService) SaveDate(ctx context.Context, value string) error {
	day, err := validator.ParseDate(value)
	if err != nil {
		return validationError("invalid date %q: use YYYY-MM-DD", value)
	}
	if err := s.selections.SaveDate(ctx, day); err != nil {
		return persistenceError(err, "failed to save date")
	}
	return nil
}

// LatestDate returns the last saved date as YYYY-MM-DD, or "" when none was saved
func (s *CatalogService) LatestDate(ctx context.Context) (string, error) {
	day, err := s.selections.LatestDate(ctx)
	if err != nil {
		return "", persistenceError(err, "failed to load date")
	}
	if day == nil {
		return "", nil
	}
	return day.Format(validator.DateLayout), nil
}
