package handlers

import (
	"net/http"

	"github.com/eventzone/booking-backend/internal/middleware"
	"github.com/eventzone/booking-backend/internal/models"
	"github.com/eventzone/booking-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CatalogHandler serves the event catalog and visitor selections
type CatalogHandler struct {
	catalog *services.CatalogService
	logger  logrus.FieldLogger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalog *services.CatalogService, logger logrus.FieldLogger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

// Cities handles GET /api/cities
func (h *CatalogHandler) Cities(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "cities": models.Cities})
}

// Highlights handles GET /api/highlights
func (h *CatalogHandler) Highlights(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "highlights": models.Highlights})
}

// Events handles GET /api/events, the seeded catalog only
func (h *CatalogHandler) Events(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "events": models.DefaultEvents})
}

// EventID handles GET /api/event-id/:name
func (h *CatalogHandler) EventID(c *gin.Context) {
	id, err := h.catalog.EventIDByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "eventId": id})
}

// AddEvent handles POST /api/add-event
func (h *CatalogHandler) AddEvent(c *gin.Context) {
	var req models.CreateEventRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.CreatedBy == "" {
		if userCtx, ok := middleware.GetUserContext(c); ok {
			req.CreatedBy = userCtx.Username
		}
	}

	event, err := h.catalog.AddEvent(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Event added successfully",
		"event":   event,
	})
}

// SaveCity handles POST /api/save-city
func (h *CatalogHandler) SaveCity(c *gin.Context) {
	var req models.SaveCityRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.catalog.SaveCity(c.Request.Context(), req.City); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "city": req.City})
}

// GetCity handles GET /api/get-city. city is null when nothing was saved.
func (h *CatalogHandler) GetCity(c *gin.Context) {
	city, err := h.catalog.LatestCity(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "city": nullable(city)})
}

// SaveDate handles POST /api/save-date
func (h *CatalogHandler) SaveDate(c *gin.Context) {
	var req models.SaveDateRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.catalog.SaveDate(c.Request.Context(), req.Date); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, "Date saved successfully")
}

// GetDate handles GET /api/get-date. date is null when nothing was saved.
func (h *CatalogHandler) GetDate(c *gin.Context) {
	date, err := h.catalog.LatestDate(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "date": nullable(date)})
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
