package handlers

import (
	"errors"

	"masonko-stokvel/internal/adapters/http/middleware"
	"masonko-stokvel/internal/core/domain"
	"masonko-stokvel/internal/core/services"
	"masonko-stokvel/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ChatHandler handles group chat endpoints
type ChatHandler struct {
	chatService *services.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// PostMessageRequest represents post chat message request
type PostMessageRequest struct {
	Message string `json:"message"`
}

// Post appends a message to the group chat
// @Summary Post chat message
// @Tags Chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body PostMessageRequest true "Message"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /chat [post]
func (h *ChatHandler) Post(c *fiber.Ctx) error {
	var req PostMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	caller := middleware.Identity(c)

	message, err := h.chatService.Post(c.Context(), caller.Name, req.Message)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return response.BadRequest(c, err.Error())
		}
		return response.InternalServerError(c, "Failed to post message")
	}

	return response.Created(c, "Message posted", message)
}

// List returns the chat history
// @Summary List chat messages
// @Tags Chat
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /chat [get]
func (h *ChatHandler) List(c *fiber.Ctx) error {
	messages, err := h.chatService.List(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list messages")
	}
	return response.Success(c, "", messages)
}
