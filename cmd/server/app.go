package main

import (
	"net/http"

	"github.com/diewo77/go-sourcing/internal/auth"
	"github.com/diewo77/go-sourcing/internal/config"
	"github.com/diewo77/go-sourcing/internal/events"
	"github.com/diewo77/go-sourcing/internal/gate"
	"github.com/diewo77/go-sourcing/internal/handlers"
	"github.com/diewo77/go-sourcing/internal/middleware"
	"github.com/diewo77/go-sourcing/internal/models"
	"github.com/diewo77/go-sourcing/internal/policy"
	"github.com/diewo77/go-sourcing/internal/sequence"
	"github.com/diewo77/go-sourcing/internal/services"
	"github.com/rs/cors"
	"gorm.io/gorm"
)

// App is the root HTTP handler with every route configured.
type App struct {
	mux      *http.ServeMux
	handler  http.Handler
	gate     *policy.AuthGate
	verifier *auth.Verifier
	limiter  *middleware.RateLimiter

	negotiations *handlers.NegotiationHandler
	quotations   *handlers.QuotationHandler
	favorites    *handlers.FavoritesHandler
	categories   *handlers.CategoryHandler
	health       *handlers.HealthHandler
}

// NewApp wires services and handlers on db. Accepted negotiations go to publisher.
func NewApp(cfg *config.Config, db *gorm.DB, publisher events.Publisher) *App {
	catalog := services.NewGormCatalog(db)
	engine := services.NewNegotiationEngine(db,
		services.WithPublisher(publisher),
		services.WithDefaultCommission(models.Commission{
			Mode:  models.CommissionMode(cfg.Commission.Mode),
			Value: cfg.Commission.Value,
		}),
	)

	a := &App{
		mux:        http.NewServeMux(),
		gate:       policy.NewAuthGate(),
		verifier:   auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer),
		limiter:    middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		favorites:  handlers.NewFavoritesHandler(services.NewFavoritesService(db, catalog)),
		categories: handlers.NewCategoryHandler(services.NewCategoryService(db, sequence.New(db))),
		health:     handlers.NewHealthHandler(db),
	}
	a.negotiations = handlers.NewNegotiationHandler(engine, a.gate)
	a.quotations = handlers.NewQuotationHandler(services.NewQuotationService(db, engine, catalog), a.gate)
	a.setupRoutes()

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: false,
	})
	a.handler = middleware.Chain(a.mux,
		middleware.RequestID,
		middleware.Logging,
		middleware.Recover,
		c.Handler,
		a.limiter.Limit,
		a.verifier.Middleware,
	)
	return a
}

func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

// protect requires a caller whose profile grants resource:action.
func (a *App) protect(resource string, action gate.Action, h http.HandlerFunc) http.Handler {
	return auth.RequireAuth(a.gate.RequirePermission(resource, action)(h))
}

func (a *App) setupRoutes() {
	a.mux.HandleFunc("GET /healthz", a.health.Check)

	qh := a.quotations
	a.mux.Handle("POST /api/quotations", a.protect(policy.ResourceQuotation, gate.ActionCreate, qh.Create))
	a.mux.Handle("GET /api/quotations/{requirementId}", a.protect(policy.ResourceQuotation, gate.ActionView, qh.Get))
	a.mux.Handle("POST /api/quotations/{requirementId}/quotes", a.protect(policy.ResourceQuotation, gate.ActionQuote, qh.Quote))
	a.mux.Handle("POST /api/quotations/{requirementId}/bargain", a.protect(policy.ResourceQuotation, gate.ActionBargain, qh.Bargain))

	nh := a.negotiations
	a.mux.Handle("POST /api/negotiations", a.protect(policy.ResourceNegotiation, gate.ActionCreate, nh.Create))
	a.mux.Handle("GET /api/negotiations/{id}", a.protect(policy.ResourceNegotiation, gate.ActionView, nh.Get))
	a.mux.Handle("GET /api/negotiation-refs/{negId}", a.protect(policy.ResourceNegotiation, gate.ActionView, nh.GetByRef))
	a.mux.Handle("GET /api/negotiations/{id}/history", auth.RequireAuth(a.gate.RequireAdmin()(http.HandlerFunc(nh.History))))
	a.mux.Handle("POST /api/negotiations/{id}/offers", a.protect(policy.ResourceNegotiation, gate.ActionOffer, nh.Offer))
	a.mux.Handle("POST /api/negotiations/{id}/accept", a.protect(policy.ResourceNegotiation, gate.ActionClose, nh.Accept))
	a.mux.Handle("POST /api/negotiations/{id}/reject", a.protect(policy.ResourceNegotiation, gate.ActionClose, nh.Reject))

	fh := a.favorites
	a.mux.Handle("POST /api/favorites/toggle", a.protect(policy.ResourceFavorites, gate.ActionToggle, fh.Toggle))
	a.mux.Handle("GET /api/favorites", a.protect(policy.ResourceFavorites, gate.ActionList, fh.List))

	ch := a.categories
	a.mux.Handle("POST /api/categories", a.protect(policy.ResourceCategory, gate.ActionCreate, ch.AddOrMerge))
	a.mux.Handle("GET /api/categories", a.protect(policy.ResourceCategory, gate.ActionList, ch.List))
	a.mux.Handle("DELETE /api/categories/{categoryId}", a.protect(policy.ResourceCategory, gate.ActionDelete, ch.Delete))
}
