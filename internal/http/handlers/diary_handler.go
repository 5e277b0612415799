// Diary HTTP handlers.
//
// This file exposes the journal endpoint:
//   - POST /api/diary/summarize  (turn a day's plan plus notes into a journal entry)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-trip-backend/internal/services"
)

// DiaryRequest is the JSON payload for summarizing one trip day.
type DiaryRequest struct {
	TripID    string `json:"trip_id" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
	DayIndex  int    `json:"day_index" example:"1"`
	Sentences string `json:"user_sentences" example:"The tram ride was the highlight."`
}

// DiaryResponse carries the generated journal text.
type DiaryResponse struct {
	LLMJournal string `json:"llm_journal"`
}

// isAIErr reports whether err originated at the model provider.
func isAIErr(err error) bool { return errors.Is(err, services.ErrAI) }

// SummarizeDay godoc
// @ID          summarizeDay
// @Summary     Summarize a trip day
// @Description Generates and stores a short journal entry for one day of a trip. An unknown day returns a plain-text 404 body, kept for client compatibility.
// @Tags        Diary
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.DiaryRequest  true  "Day reference and traveler notes"
//
// @Success     200  {object}  handlers.DiaryResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {string}  string  "day not found"
// @Failure     502  {object}  handlers.ErrorResponse  "Upstream model failure"
// @Router      /diary/summarize [post]
func (h *Handlers) SummarizeDay(c *gin.Context) {
	var req DiaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid JSON body")
		return
	}

	journal, err := h.diarySvc.Summarize(c.Request.Context(), req.TripID, req.DayIndex, req.Sentences)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDayNotFound):
			// Plain text, not the JSON envelope.
			c.String(http.StatusNotFound, "day not found")
		case isAIErr(err):
			fail(c, http.StatusBadGateway, err.Error())
		default:
			fail(c, http.StatusInternalServerError, err.Error())
		}
		return
	}

	ok(c, http.StatusOK, DiaryResponse{LLMJournal: journal})
}
