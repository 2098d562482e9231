package handler

import (
	"errors"

	"studydesk/internal/domain"
	"studydesk/internal/logger"
	"studydesk/internal/middleware"
	"studydesk/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetMyProfile retrieves the profile of the currently authenticated user.
// @Summary Get My Profile
// @Description Retrieves the profile information of the logged-in user.
// @Tags users
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.UserProfileResponse
// @Failure 401 {object} middleware.ErrorResponse "Unauthorized"
// @Failure 404 {object} middleware.ErrorResponse "User not found"
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /users/me [get]
func (h *UserHandler) GetMyProfile(c *fiber.Ctx) error {
	appLogger := logger.Get()
	userID, ok := c.Locals(middleware.UserIDKey).(string)
	if !ok || userID == "" {
		appLogger.Warn("User ID not found in context for GetMyProfile", zap.String("path", c.Path()))
		return c.Status(fiber.StatusUnauthorized).JSON(middleware.ErrorResponse{
			Code: "INVALID_USER_CONTEXT", Message: "User ID not found in context", Status: fiber.StatusUnauthorized,
		})
	}

	profile, err := h.userService.GetUserProfile(c.Context(), userID)
	if err != nil {
		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) && domainErr.Code == domain.CodeNotFound {
			appLogger.Info("User profile not found", zap.String("userID", userID), zap.Error(err))
			return c.Status(fiber.StatusNotFound).JSON(middleware.ErrorResponse{
				Code: "USER_PROFILE_NOT_FOUND", Message: err.Error(), Status: fiber.StatusNotFound,
			})
		}
		appLogger.Error("Failed to get user profile", zap.String("userID", userID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(middleware.ErrorResponse{
			Code: "GET_PROFILE_FAILED", Message: "Failed to retrieve user profile", Status: fiber.StatusInternalServerError,
		})
	}
	return c.JSON(profile)
}
