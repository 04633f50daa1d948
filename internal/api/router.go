// Package api wires the HTTP surface: middleware, documentation, health
// probes, the validation endpoints and the websocket stream.
package api

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"

	swagger "github.com/go-swagno/swagno-fiber/swagger"

	"github.com/adastrum/photogate/internal/api/docs"
	"github.com/adastrum/photogate/internal/api/handler"
	"github.com/adastrum/photogate/internal/api/middleware"
	"github.com/adastrum/photogate/internal/database"
	"github.com/adastrum/photogate/internal/pipeline"
	"github.com/adastrum/photogate/internal/repository"
	"github.com/adastrum/photogate/internal/ws"
)

type Dependencies struct {
	Pipeline *pipeline.Pipeline

	// DB is optional; nil disables the audit trail and the readiness
	// database check.
	DB *pgxpool.Pool
}

type Router struct {
	app     *fiber.App
	logger  *slog.Logger
	deps    *Dependencies
	streams *ws.Registry
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Photogate API",
	})

	return &Router{
		app:     app,
		logger:  logger,
		deps:    deps,
		streams: ws.NewRegistry(),
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Swagger documentation
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	// Health check endpoints
	var checks []handler.ReadinessCheck
	if r.deps.DB != nil {
		checks = append(checks, func(ctx context.Context) error {
			return database.HealthCheck(ctx, r.deps.DB)
		})
	}
	healthHandler := handler.NewHealthHandler(checks...)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	// Validation endpoints
	var audit handler.AuditRecorder
	if r.deps.DB != nil {
		audit = repository.NewValidationRepository(r.deps.DB)
	}
	validateHandler := handler.NewValidateHandler(r.deps.Pipeline, audit, r.logger)

	v1 := r.app.Group("/v1")
	v1.Post("/validate/photo", validateHandler.ValidatePhoto)
	v1.Post("/validate/upload", validateHandler.ValidateUpload)

	// Live guidance stream
	v1.Get("/stream", ws.UpgradeMiddleware(), ws.Handler(r.deps.Pipeline, r.streams, r.logger))
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	r.streams.CloseAll()
	return r.app.Shutdown()
}
