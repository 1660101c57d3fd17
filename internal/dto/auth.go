package dto

import "time"

// IssueTokenRequest is used by the operator CLI to mint a token.
type IssueTokenRequest struct {
	ActorID string `validate:"required"`
	Role    string `validate:"required,oneof=ADMIN SCHEDULER FACULTY STUDENT"`
}

// IssuedToken is a signed access token and its session.
type IssuedToken struct {
	AccessToken string    `json:"accessToken"`
	SessionID   string    `json:"sessionId"`
	ExpiresAt   time.Time `json:"expiresAt"`
}
