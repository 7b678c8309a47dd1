package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"clinicdesk/internal/errors"
	"clinicdesk/internal/service"
)

// MessageHandler handles messaging endpoints.
type MessageHandler struct {
	messageService service.MessageService
}

// NewMessageHandler creates a new message handler.
func NewMessageHandler(messageService service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// SendMessageRequest represents an outgoing message. destinatario_id is
// ignored for patient senders, whose messages always go to the clinician.
type SendMessageRequest struct {
	RecipientID uint   `json:"destinatario_id"`
	Body        string `json:"conteudo"`
}

// Send godoc
// @Summary Send a message
// @Tags mensagens
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SendMessageRequest true "Message"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /mensagens [post]
func (h *MessageHandler) Send(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	var req SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	message, err := h.messageService.Send(c.Request().Context(), actor, req.RecipientID, req.Body)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":  "message sent successfully",
		"mensagem": message,
	})
}

// List godoc
// @Summary List a conversation
// @Description Returns the actor's conversation and marks returned messages addressed to the actor as read.
// @Tags mensagens
// @Produce json
// @Security BearerAuth
// @Param conversa_com query int false "Counterpart user ID (clinician/admin only)"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Router /mensagens [get]
func (h *MessageHandler) List(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	var counterpartID uint
	if raw := c.QueryParam("conversa_com"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return fail(c, errors.Validation("invalid conversa_com parameter"))
		}
		counterpartID = uint(parsed)
	}

	messages, err := h.messageService.ListMessages(c.Request().Context(), actor, counterpartID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"mensagens": messages})
}

// Conversations godoc
// @Summary List conversation summaries
// @Tags mensagens
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Router /conversas [get]
func (h *MessageHandler) Conversations(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	conversations, err := h.messageService.ListConversations(c.Request().Context(), actor)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"conversas": conversations})
}
