package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role represents the roles recognised by RBAC.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleScheduler Role = "SCHEDULER"
	RoleFaculty   Role = "FACULTY"
	RoleStudent   Role = "STUDENT"
)

// Actor is the authenticated identity handed to services.
type Actor struct {
	ID        string `json:"id"`
	Role      Role   `json:"role"`
	SessionID string `json:"session_id"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	Role      Role   `json:"role"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Session is the server-side record backing a token.
type Session struct {
	ID        string    `json:"id"`
	ActorID   string    `json:"actor_id"`
	Role      Role      `json:"role"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
