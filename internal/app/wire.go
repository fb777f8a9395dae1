package app

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/murealm/platform/internal/auth"
	"github.com/murealm/platform/internal/guard"
	"github.com/murealm/platform/internal/handler"
	"github.com/murealm/platform/internal/repository"
	"github.com/murealm/platform/internal/service"
)

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Pool               *pgxpool.Pool
	JWTMgr             *auth.JWTManager
	Logger             *slog.Logger
	SessionDuration    time.Duration
	TicketTTL          time.Duration
	CORSAllowedOrigins string
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) chi.Router {
	pool := deps.Pool
	jwtMgr := deps.JWTMgr
	logger := deps.Logger

	// Repositories
	accountRepo := repository.NewAccountRepository()
	ticketRepo := repository.NewTicketRepository()
	nodeRepo := repository.NewNodeRepository()
	characterRepo := repository.NewCharacterRepository()
	itemRepo := repository.NewItemRepository()
	mountRepo := repository.NewMountRepository()
	petRepo := repository.NewPetRepository()
	currencyRepo := repository.NewCurrencyRepository()
	skinRepo := repository.NewSkinRepository()
	defaultRepo := repository.NewDefaultCharacterRepository()
	outboxRepo := repository.NewOutboxRepository()

	// Services
	sessionSvc := service.NewSessionService(pool, accountRepo, ticketRepo, outboxRepo, deps.SessionDuration)
	characterSvc := service.NewCharacterService(pool, characterRepo, itemRepo, mountRepo, petRepo,
		currencyRepo, skinRepo, defaultRepo, outboxRepo)
	inventorySvc := service.NewInventoryService(pool, itemRepo, mountRepo, petRepo)
	nodeSvc := service.NewNodeService(pool, nodeRepo)

	// Handlers
	sessionHandler := handler.NewSessionHandler(sessionSvc)
	characterHandler := handler.NewCharacterHandler(characterSvc)
	inventoryHandler := handler.NewInventoryHandler(inventorySvc)
	nodeHandler := handler.NewNodeHandler(nodeSvc, sessionSvc, deps.TicketTTL)

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORSWithOrigins(deps.CORSAllowedOrigins))
	r.Use(handler.JSONContentType)

	// Health (no auth)
	r.Get("/health", handler.HealthHandler(pool))

	// Node-authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(auth.AuthenticateNode(jwtMgr))

		r.Route("/sessions", func(r chi.Router) {
			// world nodes retry validates aggressively on flaky links
			r.Use(handler.RateLimit(guard.NewRateLimiter(300, time.Minute)))
			r.Post("/tickets", nodeHandler.IssueTicket)
			r.Post("/validate", sessionHandler.Validate)
			r.Post("/renew", sessionHandler.Renew)
			r.Post("/release", sessionHandler.Release)
		})

		r.Route("/nodes", func(r chi.Router) {
			r.Get("/", nodeHandler.List)
			r.Post("/heartbeat", nodeHandler.Heartbeat)
		})

		r.Route("/accounts/{accountID}/characters", func(r chi.Router) {
			r.Get("/", characterHandler.List)
			r.Post("/", characterHandler.Create)
			r.Route("/{characterID}", func(r chi.Router) {
				r.Get("/", characterHandler.Get)
				r.Put("/", characterHandler.Save)
				r.Delete("/", characterHandler.Delete)
			})
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Post("/save", inventoryHandler.Save)
			r.Post("/delete", inventoryHandler.Delete)
		})
	})

	return r
}
