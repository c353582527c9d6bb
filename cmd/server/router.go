package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/receipt-api/internal/api"
	apiMiddleware "github.com/phrazzld/receipt-api/internal/api/middleware"
	"github.com/phrazzld/receipt-api/internal/api/shared"
	"github.com/phrazzld/receipt-api/internal/redact"
)

const healthPingTimeout = 2 * time.Second

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.Metrics(app.metrics))
	r.Use(apiMiddleware.CORS(apiMiddleware.CORSConfig{
		AllowedOrigins:   app.config.Server.AllowedOrigins,
		AllowCredentials: true,
	}))

	authHandler := api.NewAuthHandler(app.userService, app.jwtService, app.revoker, app.logger)
	businessHandler := api.NewBusinessHandler(app.businessService, app.logger)
	receiptHandler := api.NewReceiptHandler(app.documentService, app.logger)
	invoiceHandler := api.NewInvoiceHandler(app.documentService, app.logger)
	historyHandler := api.NewHistoryHandler(app.documentService, app.disputeService, app.logger)
	uploadHandler := api.NewUploadHandler(
		app.mediaService,
		app.businessService,
		app.config.Media.MaxUploadBytes,
		app.logger,
	)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService, app.revoker)

	limiter := apiMiddleware.NewRateLimiter(app.config.Auth.RateLimitRPS, app.config.Auth.RateLimitBurst)
	limiter.OnReject = app.metrics.RateLimited

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.With(limiter.Handler).Post("/auth/register", authHandler.Register)
		r.With(limiter.Handler).Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)
		r.Get("/health", app.healthCheck)

		r.Route("/history", func(r chi.Router) {
			r.With(limiter.Handler).Post("/challenge", historyHandler.CreateChallenge)

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.Authenticate)
				r.Get("/", historyHandler.List)
				r.Get("/challenges", historyHandler.ListChallenges)
				r.Patch("/challenges/{id}", historyHandler.ResolveChallenge)
			})
		})

		// Protected routes. Collections answer with and without a trailing slash.
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/auth/logout", authHandler.Logout)
			r.Get("/auth/me", authHandler.Me)

			r.Route("/business", func(r chi.Router) {
				r.Post("/", businessHandler.CreateOrUpdate)
				r.Get("/", businessHandler.Get)
				r.Patch("/", businessHandler.Update)
			})

			r.Route("/receipts", func(r chi.Router) {
				r.Post("/", receiptHandler.Create)
				r.Get("/", receiptHandler.List)
				r.Get("/{id}", receiptHandler.Get)
			})

			r.Route("/invoices", func(r chi.Router) {
				r.Post("/", invoiceHandler.Create)
				r.Get("/", invoiceHandler.List)
				r.Get("/{id}", invoiceHandler.Get)
				r.Patch("/{id}", invoiceHandler.Update)
			})

			r.Post("/upload/logo", uploadHandler.UploadLogo)
		})
	})

	if files := app.mediaFiles(); files != nil {
		r.Get(app.mediaPrefix()+"*", files.ServeHTTP)
	}

	r.Handle("/metrics", app.metrics.Handler())

	return r
}

func (app *application) mediaPrefix() string {
	return strings.TrimRight(app.config.Media.PublicPath, "/") + "/"
}

// mediaFiles serves locally stored uploads. It returns nil for remote backends.
func (app *application) mediaFiles() http.Handler {
	if app.localMediaDir == "" {
		return nil
	}
	return http.StripPrefix(app.mediaPrefix(), http.FileServer(http.Dir(app.localMediaDir)))
}

// healthCheck reports whether the API and its database are reachable.
func (app *application) healthCheck(w http.ResponseWriter, r *http.Request) {
	if app.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
		defer cancel()
		if err := app.db.PingContext(ctx); err != nil {
			app.logger.Warn("Health check database ping failed", "error", redact.Error(err))
			shared.RespondWithJSON(w, r, http.StatusServiceUnavailable, api.HealthResponse{Status: "unavailable"})
			return
		}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, api.HealthResponse{Status: "healthy"})
}
