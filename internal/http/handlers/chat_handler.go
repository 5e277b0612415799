// Recommendation chat HTTP handlers.
//
// This file exposes the destination recommendation endpoints:
//   - GET  /api/chat/messages          (recent conversation, oldest first)
//   - POST /api/reco/next-destination  (one recommendation turn)
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ChatMessageView is the projection of a chat log row returned to clients.
type ChatMessageView struct {
	Role      string    `json:"role" example:"assistant"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatMessagesResponse wraps the conversation listing.
type ChatMessagesResponse struct {
	Messages []ChatMessageView `json:"messages"`
}

// RecoRequest is the JSON payload for a recommendation turn. An absent or
// empty message is allowed; the profile alone still produces suggestions.
type RecoRequest struct {
	UserMessage string `json:"user_message" example:"somewhere warm in October"`
}

// RecoResponse carries the assistant's markdown reply.
type RecoResponse struct {
	Text string `json:"text"`
}

// ChatMessages godoc
// @ID          chatMessages
// @Summary     List recent chat messages
// @Description Returns the last exchanges of the recommendation chat in chronological order.
// @Tags        Chat
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
//
// @Success     200  {object}  handlers.ChatMessagesResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /chat/messages [get]
func (h *Handlers) ChatMessages(c *gin.Context) {
	msgs, err := h.recoSvc.History(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]ChatMessageView, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, ChatMessageView{
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		})
	}
	ok(c, http.StatusOK, ChatMessagesResponse{Messages: out})
}

// Recommend godoc
// @ID          recommend
// @Summary     Recommend destinations
// @Description Runs one recommendation turn. The user message and the reply are appended to the chat log together; a model failure persists nothing.
// @Tags        Chat
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.RecoRequest  false "User message"
//
// @Success     200  {object}  handlers.RecoResponse
// @Failure     502  {object}  handlers.ErrorResponse  "Upstream model failure"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /reco/next-destination [post]
func (h *Handlers) Recommend(c *gin.Context) {
	// Tolerant bind: a missing or malformed body degrades to an empty
	// message rather than rejecting the turn.
	var req RecoRequest
	_ = c.ShouldBindJSON(&req)

	text, err := h.recoSvc.NextDestination(c.Request.Context(), userID(c), req.UserMessage)
	if err != nil {
		status := http.StatusInternalServerError
		if isAIErr(err) {
			status = http.StatusBadGateway
		}
		fail(c, status, err.Error())
		return
	}

	ok(c, http.StatusOK, RecoResponse{Text: text})
}
