package http

import (
	"github.com/stress-shield-api/internal/application/history"
	"github.com/stress-shield-api/internal/application/ingest"
	"github.com/stress-shield-api/internal/application/session"
	"github.com/stress-shield-api/internal/application/user"
	"github.com/stress-shield-api/internal/realtime"
	"github.com/stress-shield-api/internal/transport/http/middleware"
	"go.uber.org/zap"
)

// Deps holds the services and shared components the router wires into handlers.
type Deps struct {
	UserSvc    user.Service
	SessionSvc session.Service
	IngestSvc  ingest.Service
	HistorySvc history.Service

	Hub      *realtime.Hub
	Verifier middleware.TokenVerifier
	Logger   *zap.Logger
}
