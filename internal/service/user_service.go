package service

import (
	"context"

	"studydesk/internal/domain"
	"studydesk/internal/dto"
)

// UserService defines the interface for user profile operations
type UserService interface {
	GetUserProfile(ctx context.Context, userID string) (*dto.UserProfileResponse, error)
}

type userServiceImpl struct {
	userRepo domain.UserRepository
}

// NewUserService creates a new instance of UserService
func NewUserService(userRepo domain.UserRepository) UserService {
	return &userServiceImpl{userRepo: userRepo}
}

func (s *userServiceImpl) GetUserProfile(ctx context.Context, userID string) (*dto.UserProfileResponse, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get user", err)
	}
	if user == nil {
		return nil, domain.NewNotFoundError("User not found: " + userID)
	}

	return &dto.UserProfileResponse{
		ID:                user.ID,
		Email:             user.Email,
		Name:              user.Name,
		ProfilePictureURL: user.ProfilePictureURL,
	}, nil
}
