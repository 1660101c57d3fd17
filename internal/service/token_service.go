package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/repository"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type sessionStore interface {
	Create(ctx context.Context, session models.Session, ttl time.Duration) error
	Validate(ctx context.Context, id string) (*models.Session, error)
	Expire(ctx context.Context, id string) error
}

// TokenConfig configures token signing.
type TokenConfig struct {
	Secret     string
	Issuer     string
	Expiration time.Duration
	SessionTTL time.Duration
}

// TokenService signs access tokens and checks them against the session store.
// Credentials are verified upstream; this service only mints and validates.
type TokenService struct {
	sessions  sessionStore
	validator *validator.Validate
	logger    *zap.Logger
	cfg       TokenConfig
	now       func() time.Time
}

// NewTokenService constructs a TokenService.
func NewTokenService(sessions sessionStore, validate *validator.Validate, logger *zap.Logger, cfg TokenConfig) *TokenService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Expiration <= 0 {
		cfg.Expiration = 24 * time.Hour
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = cfg.Expiration
	}
	return &TokenService{sessions: sessions, validator: validate, logger: logger, cfg: cfg, now: time.Now}
}

// Issue opens a session for the actor and returns a signed token bound to it.
func (s *TokenService) Issue(ctx context.Context, req dto.IssueTokenRequest) (*dto.IssuedToken, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid token request")
	}
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.cfg.Expiration)
	session := models.Session{
		ID:        uuid.NewString(),
		ActorID:   req.ActorID,
		Role:      models.Role(req.Role),
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}
	if err := s.sessions.Create(ctx, session, s.cfg.SessionTTL); err != nil {
		return nil, internalError(err, "failed to create session")
	}

	claims := &models.JWTClaims{
		Role:      session.Role,
		SessionID: session.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   req.ActorID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, internalError(err, "failed to sign token")
	}
	withRequest(ctx, s.logger).Info("token issued", zap.String("actor_id", req.ActorID), zap.String("role", req.Role), zap.String("session_id", session.ID))
	return &dto.IssuedToken{AccessToken: signed, SessionID: session.ID, ExpiresAt: expiresAt}, nil
}

// Authenticate parses a bearer token and confirms its session is still live.
func (s *TokenService) Authenticate(ctx context.Context, tokenString string) (*models.Actor, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	}, jwt.WithIssuer(s.cfg.Issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}
	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid || claims.Subject == "" || claims.SessionID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	session, err := s.sessions.Validate(ctx, claims.SessionID)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session expired")
	}
	if err != nil {
		return nil, internalError(err, "failed to validate session")
	}
	if session.ActorID != claims.Subject {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session does not match token")
	}
	return &models.Actor{ID: claims.Subject, Role: claims.Role, SessionID: claims.SessionID}, nil
}

// Revoke expires the session behind a token.
func (s *TokenService) Revoke(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return appErrors.Clone(appErrors.ErrUnauthorized, "no active session")
	}
	if err := s.sessions.Expire(ctx, sessionID); err != nil {
		return internalError(err, "failed to expire session")
	}
	withRequest(ctx, s.logger).Info("session revoked", zap.String("session_id", sessionID))
	return nil
}
