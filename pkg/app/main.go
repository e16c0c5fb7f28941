package app

import (
	"github.com/gorilla/sessions"

	"github.com/ghuser/orderdesk/pkg/auth"
	"github.com/ghuser/orderdesk/pkg/cache"
	"github.com/ghuser/orderdesk/pkg/config"
	"github.com/ghuser/orderdesk/pkg/database"
	"github.com/ghuser/orderdesk/pkg/events"
	"github.com/ghuser/orderdesk/pkg/logger"
	"github.com/ghuser/orderdesk/pkg/storage"
	"github.com/ghuser/orderdesk/pkg/telemetry"
)

// Application is the shared infrastructure handed to every service's New and
// route functions. The API fills all of it; the worker leaves SessionStore
// and Tokens nil. Services treat a nil Redis or Metrics as "feature off".
type Application struct {
	Config       *config.Config
	Db           *database.Database
	Logger       logger.Logger
	EventBus     *events.EventBus
	Redis        *cache.RedisClient
	SessionStore sessions.Store // Redis-backed session store; nil in worker process
	Storage      storage.Store
	Tokens       *auth.TokenIssuer
	Metrics      *telemetry.Metrics
}
