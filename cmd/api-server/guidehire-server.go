package main

import (
	"log"
	"net/http"

	"guidehire/db"
	"guidehire/db/migrations"
	"guidehire/internal/app"
	"guidehire/internal/config"
	"guidehire/internal/handlers"
	"guidehire/internal/notify"
	"guidehire/internal/offers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Cannot load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	dbConn, err := sqlx.Connect("postgres", cfg.PostgresConn)
	if err != nil {
		logger.Fatal("cannot connect to DB", zap.Error(err))
	}
	defer dbConn.Close()

	if err := migrations.Run(cfg.PostgresConn); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}

	store := db.NewStorage(dbConn)
	mailer := notify.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	lifecycle := offers.NewController(store, mailer, logger)
	h := handlers.NewHandler(store, lifecycle, logger)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", h.PingHandler)

		r.Group(func(r chi.Router) {
			r.Use(handlers.Authenticator(cfg.JWTSecret))

			// offer lifecycle
			r.Route("/offers", func(r chi.Router) {
				r.Post("/new", h.CreateOfferHandler)
				r.Post("/add-guides", h.AddGuidesToCampaignHandler)
				r.Post("/cancel", h.CancelCampaignHandler)
				r.Patch("/edit", h.EditOffersHandler)
				r.Get("/my", h.GetMyOffersHandler)
				r.Post("/{offerId}/accept", h.AcceptOfferHandler)
				r.Post("/{offerId}/reject", h.RejectOfferHandler)
				r.Post("/{offerId}/decline", h.DeclineOfferHandler)
				r.Post("/{offerId}/remind", h.RemindOfferHandler)
			})

			// commitments and ratings
			r.Get("/commitments/my", h.GetMyCommitmentsHandler)
			r.Post("/commitments/{commitmentId}/rating", h.RateCommitmentHandler)

			// directory
			r.Route("/guides", func(r chi.Router) {
				r.Get("/", h.GetGuidesHandler)
				r.Get("/{guideId}", h.GetGuideHandler)
				r.Get("/{guideId}/availability", h.CheckGuideAvailabilityHandler)
				r.Put("/{guideId}", h.UpdateGuideHandler)
				r.With(handlers.RequireRole(offers.RoleAdmin)).Post("/new", h.CreateGuideHandler)
				r.With(handlers.RequireRole(offers.RoleAdmin)).Delete("/{guideId}", h.DeleteGuideHandler)
			})
			r.Route("/companies", func(r chi.Router) {
				r.Get("/", h.GetCompaniesHandler)
				r.Get("/{companyId}", h.GetCompanyHandler)
				r.Put("/{companyId}", h.UpdateCompanyHandler)
				r.With(handlers.RequireRole(offers.RoleAdmin)).Post("/new", h.CreateCompanyHandler)
				r.With(handlers.RequireRole(offers.RoleAdmin)).Delete("/{companyId}", h.DeleteCompanyHandler)
				r.With(handlers.RequireRole(offers.RoleAdmin)).Get("/{companyId}/subscriptions", h.GetCompanySubscriptionsHandler)
				r.With(handlers.RequireRole(offers.RoleAdmin)).Get("/{companyId}/subscription-audit", h.GetSubscriptionAuditHandler)
			})

			// subscriptions (admin)
			r.With(handlers.RequireRole(offers.RoleAdmin)).Post("/subscriptions/new", h.CreateSubscriptionHandler)
		})
	})

	logger.Info("starting server", zap.String("addr", cfg.ServerAddress))
	if err := http.ListenAndServe(cfg.ServerAddress, r); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
