package dto

import (
	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims are the JWT claims issued by the auth service
type AuthClaims struct {
	UserID    string `json:"user_id"`
	TokenType string `json:"token_type"` // "access" or "refresh"
	jwt.RegisteredClaims
}

// GoogleUserInfo is the profile returned by the Google userinfo endpoint
type GoogleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// TokenResponse carries a freshly issued token pair
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RefreshTokenRequest carries the refresh token to rotate
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// UserProfileResponse represents the authenticated user's profile
type UserProfileResponse struct {
	ID                string `json:"id"`
	Email             string `json:"email"`
	Name              string `json:"name,omitempty"`
	ProfilePictureURL string `json:"profile_picture_url,omitempty"`
}
