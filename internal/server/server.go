package server

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Binayak012/StillGood/internal/config"
	"github.com/Binayak012/StillGood/internal/handlers"
	"github.com/Binayak012/StillGood/internal/middleware"
	"github.com/Binayak012/StillGood/internal/repository"
	"github.com/Binayak012/StillGood/internal/services"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Server struct {
	router  *chi.Mux
	config  config.Config
	sweeper *services.AlertSweeper
}

func New(database *sql.DB, cfg config.Config) (*Server, error) {
	userRepo := repository.NewUserRepository(database)
	householdRepo := repository.NewHouseholdRepository(database)
	ruleRepo := repository.NewRuleRepository(database)
	itemRepo := repository.NewItemRepository(database)
	alertRepo := repository.NewAlertRepository(database)
	analyticsRepo := repository.NewAnalyticsRepository(database)

	authService := services.NewAuthService(cfg, userRepo)
	freshnessService := services.NewFreshnessService(itemRepo, ruleRepo)
	itemService := services.NewItemService(itemRepo, analyticsRepo, freshnessService)
	analyticsService := services.NewAnalyticsService(analyticsRepo)
	sweeper := services.NewAlertSweeper(householdRepo, itemRepo, alertRepo, analyticsRepo, freshnessService)

	recipeService, err := services.NewRecipeService(itemRepo, freshnessService)
	if err != nil {
		return nil, fmt.Errorf("creating recipe service: %w", err)
	}

	authHandler := handlers.NewAuthHandler(authService, userRepo, householdRepo)
	householdHandler := handlers.NewHouseholdHandler(householdRepo, userRepo)
	itemHandler := handlers.NewItemHandler(itemService)
	alertHandler := handlers.NewAlertHandler(alertRepo, sweeper)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	recipeHandler := handlers.NewRecipeHandler(recipeService)
	integrationsHandler := handlers.NewIntegrationsHandler()
	calendarHandler := handlers.NewCalendarHandler(householdRepo, itemRepo, freshnessService)

	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Compress(5))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.ClientOrigin},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	router.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	})

	router.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(authService))
			r.Get("/me", authHandler.Me)
			r.Patch("/me", authHandler.UpdateMe)
		})
	})

	router.Route("/api/households", func(r chi.Router) {
		r.Use(middleware.RequireAuth(authService))

		r.Post("/", householdHandler.Create)
		r.Post("/join", householdHandler.Join)
		r.Get("/me", householdHandler.Me)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireHousehold(householdRepo))
			r.Use(middleware.RequireOwner)
			r.Delete("/members/{userId}", householdHandler.RemoveMember)
		})
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(authService))
		r.Use(middleware.RequireHousehold(householdRepo))

		r.Route("/api/items", func(r chi.Router) {
			r.Get("/", itemHandler.List)
			r.Post("/", itemHandler.Create)
			r.Patch("/{id}", itemHandler.Update)
			r.Delete("/{id}", itemHandler.Delete)
			r.Post("/{id}/open", itemHandler.Open)
			r.Post("/{id}/consume", itemHandler.Consume)
		})

		r.Route("/api/alerts", func(r chi.Router) {
			r.Get("/", alertHandler.List)
			r.Post("/{id}/read", alertHandler.MarkRead)
			r.Post("/sweep", alertHandler.Sweep)
		})

		r.Get("/api/analytics/summary", analyticsHandler.Summary)
		r.Get("/api/analytics/events", analyticsHandler.Events)
		r.Get("/api/recipes/suggestions", recipeHandler.Suggestions)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(authService))
		r.Get("/api/integrations/status", integrationsHandler.Status)
	})

	router.Get("/api/calendar/feed", calendarHandler.Feed)

	return &Server{
		router:  router,
		config:  cfg,
		sweeper: sweeper,
	}, nil
}

// Sweeper exposes the alert sweeper so main can hand it to the scheduler.
func (server *Server) Sweeper() *services.AlertSweeper {
	return server.sweeper
}

func (server *Server) Handler() http.Handler {
	return server.router
}

func (server *Server) Start() error {
	address := ":" + server.config.Port
	slog.Info("starting server", "address", address)
	return http.ListenAndServe(address, server.router)
}
