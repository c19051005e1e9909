package middleware

import (
	"context"

	"resorthub/internal/logger"
	"resorthub/internal/models"
	"resorthub/internal/services"
)

// SessionResolver maps a bearer token to the principal of its live session.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (models.Principal, error)
}

type Middleware struct {
	sessions SessionResolver
	metrics  *services.Metrics
	log      logger.Logger
}

func New(sessions SessionResolver, metrics *services.Metrics) Middleware {
	return Middleware{
		sessions: sessions,
		metrics:  metrics,
		log:      logger.New("middleware"),
	}
}
