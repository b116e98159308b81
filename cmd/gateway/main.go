package main

import (
	"log"
	"net/http"
	"time"

	api "github.com/brightpath/brightpath-lms/internal/api/http"
	auth "github.com/brightpath/brightpath-lms/internal/auth/middleware"
	"github.com/brightpath/brightpath-lms/internal/config"
	"github.com/brightpath/brightpath-lms/internal/dashboard"
	"github.com/brightpath/brightpath-lms/internal/grading"
	"github.com/brightpath/brightpath-lms/internal/learning"
	rbac "github.com/brightpath/brightpath-lms/internal/rbac"
	"github.com/brightpath/brightpath-lms/internal/tenant"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func main() {
	cfg := config.FromEnv()

	// --- Tenant connections ---
	router := tenant.NewRouter(tenant.Driver(cfg.DBDriver), cfg.TenantDSNTemplate, cfg.TenantCacheSize)
	defer router.Close()

	// --- Collaborators ---
	grader := grading.NewAIClient(cfg.AIGraderURL, cfg.AIGraderKey, cfg.AIGraderTimeout)
	enricher := dashboard.NewEnricher(cfg.RedisAddr)
	svc := learning.NewService(router, grader, cfg.AIGraderEnabled, enricher)

	// --- Auth (local JWT for dev; front with your IdP in production) ---
	authSvc := auth.NewAuthService(cfg.AuthHMACSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Accept-Language"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.EnableLocalAuth {
		r.Post("/auth/login", auth.LoginHandler(authSvc, auth.LoginOptions{AdminPassHash: cfg.AdminPassHash}))
	}

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		// Catalog with per-student lock state
		pr.With(rbac.Require("content:view")).
			Get("/modules", api.ListModulesHandler(svc))
		pr.With(rbac.Require("content:view")).
			Get("/modules/{moduleID}/chapters", api.ListChaptersHandler(svc))

		// Learner flow
		pr.With(rbac.Require("module:start")).
			Post("/modules/{moduleID}/start", api.StartModuleHandler(svc))
		pr.With(rbac.Require("chapter:start")).
			Post("/chapters/{chapterID}/start", api.StartChapterHandler(svc))
		pr.With(rbac.Require("chapter:complete")).
			Post("/chapters/{chapterID}/complete", api.MarkChapterCompleteHandler(svc))

		// Quiz attempts
		pr.With(rbac.Require("attempt:create")).
			Post("/quiz-groups/{groupID}/attempts", api.StartAttemptHandler(svc))
		pr.With(rbac.Require("attempt:submit")).
			Post("/attempts/{attemptID}/submit", api.SubmitAttemptHandler(svc))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/attempts/{attemptID}", api.GetAttemptHandler(svc))
		pr.With(rbac.Require("attempt:view-own")).
			Get("/me/attempts", api.ListAttemptsHandler(svc))

		pr.With(rbac.Require("dashboard:view")).
			Get("/me/dashboard", api.DashboardHandler(svc))

		// Authoring (teacher/admin)
		pr.With(rbac.Require("content:author")).
			Put("/modules/{moduleID}", api.UpsertModuleHandler(svc))
		pr.With(rbac.Require("content:author")).
			Put("/chapters/{chapterID}", api.UpsertChapterHandler(svc))
		pr.With(rbac.Require("content:author")).
			Put("/quiz-groups/{groupID}", api.UpsertQuizGroupHandler(svc))
	})

	log.Printf("gateway listening on %s (driver=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
