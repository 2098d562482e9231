package memory

import (
	"context"
	"sync"

	"studydesk/internal/domain"
)

// UserRepository keeps user accounts in memory, indexed by both the internal
// id and the Google account id.
type UserRepository struct {
	mu         sync.RWMutex
	byID       map[string]*domain.User
	byGoogleID map[string]string
}

// NewUserRepository creates a new empty UserRepository
func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:       make(map[string]*domain.User),
		byGoogleID: make(map[string]string),
	}
}

func (r *UserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		return domain.NewInvalidInputError("user ID is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[user.ID]; exists {
		return domain.NewInvalidInputError("user already exists: " + user.ID)
	}
	copied := *user
	r.byID[user.ID] = &copied
	r.byGoogleID[user.GoogleID] = user.ID
	return nil
}

func (r *UserRepository) GetUserByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byGoogleID[googleID]
	if !ok {
		return nil, nil
	}
	copied := *r.byID[id]
	return &copied, nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[userID]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (r *UserRepository) UpdateUser(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[user.ID]
	if !ok {
		return domain.NewNotFoundError("User not found: " + user.ID)
	}
	copied := *user
	copied.CreatedAt = stored.CreatedAt
	r.byID[user.ID] = &copied
	r.byGoogleID[user.GoogleID] = user.ID
	return nil
}

var _ domain.UserRepository = (*UserRepository)(nil)
