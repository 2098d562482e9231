package handler

import (
	"studydesk/internal/dto"
	"studydesk/internal/service"
	"studydesk/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ChatHandler handles follow-up questions about saved materials
type ChatHandler struct {
	chatService service.ChatService
	validator   *validation.Validator
}

// NewChatHandler creates a new instance of ChatHandler
func NewChatHandler(chatService service.ChatService, validator *validation.Validator) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		validator:   validator,
	}
}

// Chat answers a follow-up question about a saved material.
// @Summary Chat about a material
// @Description Answers a question grounded in the material's analysis, using prior turns as context.
// @Tags chat
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path string true "Material ID"
// @Param request body dto.ChatRequest true "Question and prior conversation turns"
// @Success 200 {object} dto.ChatResponse
// @Failure 400 {object} middleware.ValidationErrorResponse "Invalid request"
// @Failure 404 {object} middleware.ErrorResponse "Material not found"
// @Router /materials/{id}/chat [post]
func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	materialID := c.Params("id")
	if errs := h.validator.ValidateID("id", materialID); len(errs) > 0 {
		return errs
	}

	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if errs := h.validator.ValidateChatRequest(req.Question); len(errs) > 0 {
		return errs
	}

	response, err := h.chatService.Chat(c.Context(), userID(c), materialID, &req)
	if err != nil {
		return err
	}
	return c.JSON(response)
}
