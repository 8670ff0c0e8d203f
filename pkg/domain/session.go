package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuthUser is the credential record held by the auth service. It is distinct
// from the profile row (User) and carries provider metadata.
type AuthUser struct {
	ID               uuid.UUID      `json:"id"`
	Email            string         `json:"email"`
	EmailConfirmedAt *time.Time     `json:"email_confirmed_at,omitempty"`
	UserMetadata     map[string]any `json:"user_metadata,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}

// MetadataString returns a string value from the provider metadata, or "".
func (u AuthUser) MetadataString(key string) string {
	if u.UserMetadata == nil {
		return ""
	}
	s, _ := u.UserMetadata[key].(string)
	return s
}

// TokenPair is the access/refresh token pair that identifies a session.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthSession represents an authenticated backend session.
type AuthSession struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	ExpiresAt    int64     `json:"expires_at"`
	User         *AuthUser `json:"user,omitempty"`
}

// Tokens returns the session's token pair.
func (s AuthSession) Tokens() TokenPair {
	return TokenPair{AccessToken: s.AccessToken, RefreshToken: s.RefreshToken}
}

// Expiry returns the access token expiry as a time.
func (s AuthSession) Expiry() time.Time {
	return time.Unix(s.ExpiresAt, 0)
}

// ExpiresWithin reports whether the access token expires within d of now.
func (s AuthSession) ExpiresWithin(now time.Time, d time.Duration) bool {
	if s.ExpiresAt == 0 {
		return false
	}
	return !now.Add(d).Before(s.Expiry())
}
