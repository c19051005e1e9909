package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"resorthub/internal/apperror"
	"resorthub/internal/clock"
	"resorthub/internal/constants"
	"resorthub/internal/database"
	"resorthub/internal/logger"
	"resorthub/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Session struct {
	ID        string           `json:"id"`
	Principal models.Principal `json:"principal"`
	CreatedAt time.Time        `json:"createdAt"`
	ExpiresAt time.Time        `json:"expiresAt"`
}

// SessionStore persists sessions between requests.
type SessionStore interface {
	Save(ctx context.Context, session Session, ttl time.Duration) error
	Load(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

type sessionClaims struct {
	SessionID string               `json:"sid"`
	Kind      models.PrincipalKind `json:"kind"`
	jwt.RegisteredClaims
}

type SessionService struct {
	store  SessionStore
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
	log    logger.Logger
}

func NewSessionService(
	store SessionStore,
	secret string,
	ttl time.Duration,
	clk clock.Clock,
) *SessionService {
	return &SessionService{
		store:  store,
		secret: []byte(secret),
		ttl:    ttl,
		clock:  clk,
		log:    logger.New("sessionService"),
	}
}

// Create stores a new session for principal and returns the signed token.
func (s *SessionService) Create(
	ctx context.Context,
	principal models.Principal,
) (string, time.Time, error) {
	log := s.log.TraceFromContext(ctx).Function("Create")

	now := s.clock.Now()
	session := Session{
		ID:        uuid.NewString(),
		Principal: principal,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.store.Save(ctx, session, s.ttl); err != nil {
		return "", time.Time{}, log.Err("failed to store session", apperror.Store(err), "principal", principal.String())
	}

	claims := sessionClaims{
		SessionID: session.ID,
		Kind:      principal.Kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, log.Err("failed to sign session token", apperror.Store(err))
	}

	return token, session.ExpiresAt, nil
}

// Resolve validates the token and returns the principal of its live session.
func (s *SessionService) Resolve(ctx context.Context, token string) (models.Principal, error) {
	session, err := s.session(ctx, token)
	if err != nil {
		return models.Principal{}, err
	}
	return session.Principal, nil
}

// Revoke deletes the session behind token. Unknown sessions are not an error.
func (s *SessionService) Revoke(ctx context.Context, token string) error {
	log := s.log.TraceFromContext(ctx).Function("Revoke")

	claims, err := s.parse(token)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, claims.SessionID); err != nil {
		return log.Err("failed to delete session", apperror.Store(err), "sessionID", claims.SessionID)
	}
	return nil
}

func (s *SessionService) session(ctx context.Context, token string) (*Session, error) {
	log := s.log.TraceFromContext(ctx).Function("session")

	claims, err := s.parse(token)
	if err != nil {
		return nil, err
	}

	session, err := s.store.Load(ctx, claims.SessionID)
	if err != nil {
		return nil, log.Err("failed to load session", apperror.Store(err), "sessionID", claims.SessionID)
	}
	if session == nil || !session.ExpiresAt.After(s.clock.Now()) {
		return nil, apperror.ErrSessionExpired
	}
	if session.Principal.Kind != claims.Kind || session.Principal.ID.String() != claims.Subject {
		return nil, apperror.ErrSessionExpired
	}
	return session, nil
}

func (s *SessionService) parse(token string) (*sessionClaims, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return nil, apperror.ErrSessionExpired
	}

	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(
		token,
		claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperror.ErrSessionExpired.Wrap(err)
		}
		return nil, apperror.ErrSessionExpired.WithMessage("Invalid session token").Wrap(err)
	}
	if claims.SessionID == "" {
		return nil, apperror.ErrSessionExpired.WithMessage("Invalid session token")
	}
	return claims, nil
}

type valkeySessionStore struct {
	cache database.CacheClient
}

func NewValkeySessionStore(cache database.CacheClient) SessionStore {
	return &valkeySessionStore{cache: cache}
}

func (s *valkeySessionStore) Save(ctx context.Context, session Session, ttl time.Duration) error {
	return database.NewCacheBuilder(s.cache, session.ID).
		WithContext(ctx).
		WithHash(constants.SessionCachePrefix).
		WithStruct(session).
		WithTTL(ttl).
		Set()
}

func (s *valkeySessionStore) Load(ctx context.Context, id string) (*Session, error) {
	var session Session
	found, err := database.NewCacheBuilder(s.cache, id).
		WithContext(ctx).
		WithHash(constants.SessionCachePrefix).
		Get(&session)
	if err != nil || !found {
		return nil, err
	}
	return &session, nil
}

func (s *valkeySessionStore) Delete(ctx context.Context, id string) error {
	return database.NewCacheBuilder(s.cache, id).
		WithContext(ctx).
		WithHash(constants.SessionCachePrefix).
		Delete()
}
