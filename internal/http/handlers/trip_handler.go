// Trip collection HTTP handlers.
//
// This file exposes the stored-trip collection endpoints:
//   - GET  /api/trips         (list summaries)
//   - POST /api/trips/delete  (cascade delete one trip)
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-trip-backend/internal/repo"
)

// DeleteTripRequest identifies the trip to remove.
type DeleteTripRequest struct {
	TripID string `json:"trip_id" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
}

// ListTripsResponse wraps the trip summary listing.
type ListTripsResponse struct {
	Trips []repo.TripSummary `json:"trips"`
}

// DeleteTripResponse confirms a cascade delete.
type DeleteTripResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message" example:"Trip deleted successfully"`
}

// ListTrips godoc
// @ID          listTrips
// @Summary     List trips
// @Description Returns the user's trips as summaries, newest first, capped at 50.
// @Tags        Trips
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
//
// @Success     200  {object}  handlers.ListTripsResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /trips [get]
func (h *Handlers) ListTrips(c *gin.Context) {
	trips, err := h.tripSvc.List(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	ok(c, http.StatusOK, ListTripsResponse{Trips: trips})
}

// DeleteTrip godoc
// @ID          deleteTrip
// @Summary     Delete a trip
// @Description Removes a trip together with its days, blocks, and diary entries in one transaction.
// @Tags        Trips
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.DeleteTripRequest  true  "Trip reference"
//
// @Success     200  {object}  handlers.DeleteTripResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing trip_id"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /trips/delete [post]
func (h *Handlers) DeleteTrip(c *gin.Context) {
	var req DeleteTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid JSON body")
		return
	}

	tripID := strings.TrimSpace(req.TripID)
	if tripID == "" {
		fail(c, http.StatusBadRequest, "trip_id is required")
		return
	}

	if err := h.tripSvc.Delete(c.Request.Context(), userID(c), tripID); err != nil {
		fail(c, http.StatusInternalServerError, "Failed to delete trip: "+err.Error())
		return
	}

	ok(c, http.StatusOK, DeleteTripResponse{OK: true, Message: "Trip deleted successfully"})
}
