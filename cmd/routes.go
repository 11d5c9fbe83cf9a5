package main

import (
	"net/http"

	"github.com/commercive/dashboard-api/internal/affiliate"
	"github.com/commercive/dashboard-api/internal/appstate"
	"github.com/commercive/dashboard-api/internal/auth"
	"github.com/commercive/dashboard-api/internal/commission"
	"github.com/commercive/dashboard-api/internal/config"
	"github.com/commercive/dashboard-api/internal/inventory"
	"github.com/commercive/dashboard-api/internal/lead"
	"github.com/commercive/dashboard-api/internal/metrics"
	"github.com/commercive/dashboard-api/internal/middleware"
	"github.com/commercive/dashboard-api/internal/notification"
	"github.com/commercive/dashboard-api/internal/partner"
	"github.com/commercive/dashboard-api/internal/payout"
	"github.com/commercive/dashboard-api/internal/referral"
	"github.com/commercive/dashboard-api/internal/store"
	"github.com/commercive/dashboard-api/internal/user"
	"github.com/commercive/dashboard-api/internal/utils"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type application struct {
	router   *mux.Router
	backfill *affiliate.Backfill
	limiter  *middleware.RateLimiter
}

func build(cfg config.Config, db *gorm.DB, tokens auth.TokenStore, m *metrics.Metrics, log zerolog.Logger) *application {
	// Repositories
	users := user.NewRepository(db)
	affiliates := affiliate.NewRepository(db)
	settings := commission.NewRepository(db)
	referrals := referral.NewRepository(db)
	leads := lead.NewRepository(db)
	payouts := payout.NewRepository(db)
	stores := store.NewRepository(db)
	items := inventory.NewRepository(db)

	// Services
	notifier := notification.NewNotifier(cfg.Webhooks.AdminSignupURL, cfg.Webhooks.EmailURL, cfg.Webhooks.Timeout, log)
	affiliateSvc := affiliate.NewService(affiliates, cfg.PublicBaseURL)
	backfill := affiliate.NewBackfill(affiliateSvc, m, log)
	authSvc := &auth.Service{
		Users:      users,
		Affiliates: affiliateSvc,
		Mailer:     notifier,
		Tokens:     tokens,
		Sessions:   auth.NewSessionRepository(db),
		Issuer:     auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL),
		RefreshTTL: cfg.Auth.RefreshTokenTTL,
		BaseURL:    cfg.PublicBaseURL,
		Log:        log.With().Str("component", "auth").Logger(),
	}
	payoutSvc := payout.NewService(payouts, referrals, affiliates, cfg.Payouts.Minimum, cfg.Payouts.StrictTransitions, m, log)
	importer := referral.NewImporter(referrals, settings, m, log)
	state := appstate.NewContainer(users, affiliates, stores)

	// Handlers
	authHandler := auth.NewHandler(authSvc, cfg.Auth.CookieSecure)
	userHandler := user.NewHandler(users)
	affiliateHandler := affiliate.NewHandler(affiliateSvc, affiliates, backfill)
	commissionHandler := commission.NewHandler(settings)
	referralHandler := referral.NewHandler(referrals, importer)
	leadHandler := lead.NewHandler(leads)
	payoutHandler := payout.NewHandler(payoutSvc, payouts)
	partnerHandler := partner.NewHandler(affiliates, referrals, leads, payoutSvc, cfg.PublicBaseURL)
	storeHandler := store.NewHandler(stores)
	inventoryHandler := inventory.NewHandler(items)

	limiter := middleware.NewRateLimiter(cfg.Auth.RateLimitRPS, cfg.Auth.RateLimitBurst)

	r := mux.NewRouter()
	r.Use(m.Instrument)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		utils.Fail(w, http.StatusNotFound, utils.ErrNotFound.Msg)
	})

	r.Handle("/metrics", m.Handler()).Methods("GET")
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		utils.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	// Public routes
	public := r.NewRoute().Subrouter()
	public.Use(limiter.Handler)
	public.HandleFunc("/auth/signup", authHandler.Signup).Methods("POST")
	public.HandleFunc("/auth/confirm", authHandler.Confirm).Methods("POST")
	public.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	public.HandleFunc("/auth/refresh", authHandler.Refresh).Methods("POST")
	public.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST")
	public.HandleFunc("/auth/password/forgot", authHandler.Forgot).Methods("POST")
	public.HandleFunc("/auth/password/reset", authHandler.Reset).Methods("POST")
	public.HandleFunc("/auth/signup-request", authHandler.RequestSignup).Methods("POST")
	public.HandleFunc("/affiliate-form", leadHandler.Submit).Methods("POST")

	authenticate := auth.Authenticate(authSvc.Issuer)

	// Signed-in account
	me := r.NewRoute().Subrouter()
	me.Use(authenticate, state.Attach)
	me.HandleFunc("/me", appstate.Me).Methods("GET")
	me.HandleFunc("/partners/me/affiliate", affiliateHandler.Mine).Methods("GET")
	me.HandleFunc("/partners/me/affiliate", affiliateHandler.Enroll).Methods("POST")

	// Partner area, needs an approved affiliate with the partners page
	partners := r.PathPrefix("/partners/me").Subrouter()
	partners.Use(authenticate, state.Attach, appstate.RequirePage(user.PagePartners))
	partners.HandleFunc("/link", affiliateHandler.RegenerateLink).Methods("POST")
	partners.HandleFunc("/dashboard", partnerHandler.Dashboard).Methods("GET")
	partners.HandleFunc("/referrals", partnerHandler.ListReferrals).Methods("GET")
	partners.HandleFunc("/leads", partnerHandler.ListLeads).Methods("GET")
	partners.HandleFunc("/balance", payoutHandler.Balance).Methods("GET")
	partners.HandleFunc("/payouts", payoutHandler.Mine).Methods("GET")
	partners.HandleFunc("/payouts", payoutHandler.Request).Methods("POST")
	partners.HandleFunc("/payment-preferences", payoutHandler.SavePreferences).Methods("PUT")

	// Inventory
	inv := r.NewRoute().Subrouter()
	inv.Use(authenticate, state.Attach, appstate.RequirePage(user.PageInventory))
	inv.HandleFunc("/inventory", inventoryHandler.List).Methods("GET")

	// Admin
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(authenticate, auth.RequireAdmin, state.Attach)

	admin.HandleFunc("/users", userHandler.List).Methods("GET")
	admin.HandleFunc("/users/{id}", userHandler.Get).Methods("GET")
	admin.HandleFunc("/users/{id}", userHandler.Update).Methods("PUT")
	admin.HandleFunc("/users/{id}", userHandler.Delete).Methods("DELETE")
	admin.HandleFunc("/users/{userID}/stores", storeHandler.ReplaceLinks).Methods("PUT")
	admin.HandleFunc("/signup-requests", userHandler.ListSignupRequests).Methods("GET")
	admin.HandleFunc("/signup-requests/{id}", userHandler.UpdateSignupRequest).Methods("PATCH")

	admin.HandleFunc("/affiliates", affiliateHandler.List).Methods("GET")
	admin.HandleFunc("/affiliates/backfill", affiliateHandler.RunBackfill).Methods("POST")
	admin.HandleFunc("/affiliates/{id}/status", affiliateHandler.UpdateStatus).Methods("PATCH")
	admin.HandleFunc("/affiliates/{affiliateID}/settings", commissionHandler.List).Methods("GET")
	admin.HandleFunc("/affiliates/{affiliateID}/settings", commissionHandler.Upsert).Methods("PUT")
	admin.HandleFunc("/affiliates/{affiliateID}/settings/{customerID}", commissionHandler.Delete).Methods("DELETE")

	admin.HandleFunc("/referrals", referralHandler.List).Methods("GET")
	admin.HandleFunc("/referrals", referralHandler.Create).Methods("POST")
	admin.HandleFunc("/referrals/summary", referralHandler.Summary).Methods("GET")
	admin.HandleFunc("/referrals/template", referralHandler.Template).Methods("GET")
	admin.HandleFunc("/referrals/import", referralHandler.Import).Methods("POST")
	admin.HandleFunc("/referrals/import/preview", referralHandler.Preview).Methods("POST")
	admin.HandleFunc("/referrals/{id}", referralHandler.Update).Methods("PUT")
	admin.HandleFunc("/referrals/{id}", referralHandler.Delete).Methods("DELETE")

	admin.HandleFunc("/leads", leadHandler.List).Methods("GET")

	admin.HandleFunc("/payouts", payoutHandler.List).Methods("GET")
	admin.HandleFunc("/payouts/{id}/status", payoutHandler.UpdateStatus).Methods("PATCH")

	admin.HandleFunc("/stores", storeHandler.List).Methods("GET")
	admin.HandleFunc("/stores", storeHandler.Create).Methods("POST")
	admin.HandleFunc("/stores/{id}", storeHandler.Update).Methods("PUT")
	admin.HandleFunc("/stores/{id}", storeHandler.Delete).Methods("DELETE")
	admin.HandleFunc("/stores/{id}/users/{userID}", storeHandler.Link).Methods("POST")
	admin.HandleFunc("/stores/{id}/users/{userID}", storeHandler.Unlink).Methods("DELETE")

	admin.HandleFunc("/inventory", inventoryHandler.Create).Methods("POST")
	admin.HandleFunc("/inventory/{id}", inventoryHandler.Update).Methods("PUT")
	admin.HandleFunc("/inventory/{id}", inventoryHandler.Delete).Methods("DELETE")

	return &application{router: r, backfill: backfill, limiter: limiter}
}
