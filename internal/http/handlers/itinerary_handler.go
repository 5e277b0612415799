// Itinerary HTTP handlers.
//
// This file exposes the plan lifecycle endpoints:
//   - POST /api/itinerary/generate  (compose a plan, nothing persisted)
//   - POST /api/itinerary/save      (persist a plan as a trip)
//   - GET  /api/itinerary/load      (reload a stored trip with its plan)
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-trip-backend/internal/domain"
	"github.com/tbourn/go-trip-backend/internal/services"
)

//
// DTOs
//

// GenerateRequest is the JSON payload for plan generation.
type GenerateRequest struct {
	// Days is the trip length; must be >= 1.
	Days int `json:"days" example:"3"`
	// Nights overrides the days-1 default when present.
	Nights     *int     `json:"nights,omitempty" example:"2"`
	Companions string   `json:"companions" example:"partner"`
	StyleTags  []string `json:"style_tags" example:"food,art"`
	City       string   `json:"city" example:"Lisbon"`
	Budget     string   `json:"budget" example:"mid"`
}

// GenerateResponse wraps a freshly composed plan.
type GenerateResponse struct {
	OK   bool             `json:"ok"`
	Plan []domain.DayPlan `json:"plan"`
}

// TripHeader is the trip metadata supplied alongside a plan on save.
type TripHeader struct {
	Title      string   `json:"title" example:"Long weekend in Lisbon"`
	Days       int      `json:"days" example:"3"`
	Nights     int      `json:"nights" example:"2"`
	Companions string   `json:"companions" example:"partner"`
	Budget     string   `json:"budget" example:"mid"`
	StyleTags  []string `json:"style_tags" example:"food,art"`
	City       string   `json:"city" example:"Lisbon"`
	Country    string   `json:"country" example:"Portugal"`
}

// SaveTripRequest is the JSON payload for persisting a trip.
type SaveTripRequest struct {
	Trip TripHeader       `json:"trip"`
	Plan []domain.DayPlan `json:"plan"`
}

// SaveTripResponse returns the ID of the newly stored trip.
type SaveTripResponse struct {
	OK     bool   `json:"ok"`
	TripID string `json:"trip_id" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
}

// LoadTripResponse wraps a stored trip and its reconstructed plan.
type LoadTripResponse struct {
	Trip *domain.Trip     `json:"trip"`
	Plan []domain.DayPlan `json:"plan"`
}

//
// Handlers
//

// GenerateItinerary godoc
// @ID          generateItinerary
// @Summary     Generate an itinerary
// @Description Composes a day-by-day plan for the given city and parameters. Nothing is persisted.
// @Tags        Itinerary
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.GenerateRequest  true  "Generation parameters"
//
// @Success     200  {object}  handlers.GenerateResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     502  {object}  handlers.ErrorResponse  "Upstream model failure"
// @Router      /itinerary/generate [post]
func (h *Handlers) GenerateItinerary(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid JSON body")
		return
	}

	plan, err := h.itinSvc.Generate(c.Request.Context(), userID(c), services.GenerateInput{
		Days:       req.Days,
		Nights:     req.Nights,
		Companions: req.Companions,
		StyleTags:  req.StyleTags,
		City:       req.City,
		Budget:     req.Budget,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidDays):
			fail(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrAI):
			fail(c, http.StatusBadGateway, err.Error())
		default:
			fail(c, http.StatusInternalServerError, err.Error())
		}
		return
	}

	ok(c, http.StatusOK, GenerateResponse{OK: true, Plan: plan})
}

// SaveTrip godoc
// @ID          saveTrip
// @Summary     Save a trip
// @Description Persists a trip header and its plan atomically and returns the new trip ID.
// @Tags        Itinerary
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.SaveTripRequest  true  "Trip header and plan"
//
// @Success     200  {object}  handlers.SaveTripResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /itinerary/save [post]
func (h *Handlers) SaveTrip(c *gin.Context) {
	var req SaveTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid JSON body")
		return
	}

	tripID, err := h.itinSvc.Save(c.Request.Context(), userID(c), services.TripInput{
		Title:      req.Trip.Title,
		Days:       req.Trip.Days,
		Nights:     req.Trip.Nights,
		Companions: req.Trip.Companions,
		Budget:     req.Trip.Budget,
		StyleTags:  req.Trip.StyleTags,
		City:       req.Trip.City,
		Country:    req.Trip.Country,
	}, req.Plan)
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	ok(c, http.StatusOK, SaveTripResponse{OK: true, TripID: tripID})
}

// LoadTrip godoc
// @ID          loadTrip
// @Summary     Load a trip
// @Description Returns a stored trip and its full plan, days and blocks ordered.
// @Tags        Itinerary
// @Produce     json
//
// @Param       trip_id  query  string  true  "Trip ID (UUID)"  format(uuid)
//
// @Success     200  {object}  handlers.LoadTripResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing trip_id"
// @Failure     404  {object}  handlers.ErrorResponse  "Trip not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /itinerary/load [get]
func (h *Handlers) LoadTrip(c *gin.Context) {
	tripID := strings.TrimSpace(c.Query("trip_id"))
	if tripID == "" {
		fail(c, http.StatusBadRequest, "trip_id is required")
		return
	}

	trip, plan, err := h.itinSvc.Load(c.Request.Context(), tripID)
	if err != nil {
		if errors.Is(err, services.ErrTripNotFound) {
			fail(c, http.StatusNotFound, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	ok(c, http.StatusOK, LoadTripResponse{Trip: trip, Plan: plan})
}
