package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/jmoiron/sqlx"

	"coastal-guardian-backend-go/internal/analysis"
	"coastal-guardian-backend-go/internal/config"
	"coastal-guardian-backend-go/internal/models"
	"coastal-guardian-backend-go/internal/services"
)

type Server struct {
	DB         *sqlx.DB
	Config     config.Config
	Tokens     services.TokenService
	MetricsHub *services.MetricsHub
	Bridge     analysis.Bridge
}

func NewServer(db *sqlx.DB, cfg config.Config, hub *services.MetricsHub) *Server {
	tokens := services.TokenService{
		Secret:     []byte(cfg.JWTSecret),
		Issuer:     cfg.JWTIssuer,
		AccessTTL:  time.Duration(cfg.AccessTTLSeconds) * time.Second,
		RefreshTTL: time.Duration(cfg.RefreshTTLSeconds) * time.Second,
	}
	return &Server{
		DB:         db,
		Config:     cfg,
		Tokens:     tokens,
		MetricsHub: hub,
		Bridge:     analysis.NewBridge(cfg.AnalystCommand, time.Duration(cfg.AnalysisTimeoutSeconds)*time.Second),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	if len(s.Config.CorsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.Config.CorsOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	auth := WithAuth(s.DB, s.Tokens)
	moderator := RequireRole(models.RoleAuthority, models.RoleAdmin)
	admin := RequireRole(models.RoleAdmin)

	r.Route("/api", func(api chi.Router) {
		// the logger wrapper does not support hijacking, so it stays off
		// the websocket route
		api.Use(RequestLogger)
		api.Use(httprate.LimitByIP(s.Config.RateLimitMax, time.Duration(s.Config.RateLimitWindowMinutes)*time.Minute))

		api.Get("/health", s.Health)

		api.Route("/auth", func(ar chi.Router) {
			ar.Post("/register", s.Register)
			ar.Post("/login", s.Login)
			ar.Post("/refresh", s.Refresh)
			ar.Post("/logout", s.Logout)
			ar.With(auth).Get("/me", s.Me)
			ar.With(auth).Put("/profile", s.UpdateProfile)
		})

		api.Route("/alerts", func(alerts chi.Router) {
			alerts.Get("/", s.ListAlerts)
			alerts.Get("/{alertId}", s.GetAlert)
			alerts.Post("/{alertId}/comments", s.AddAlertComment)
			alerts.With(auth, moderator).Post("/", s.CreateAlert)
			alerts.With(auth, moderator).Put("/{alertId}", s.UpdateAlert)
			alerts.With(auth, moderator).Delete("/{alertId}", s.DeleteAlert)
		})

		api.Route("/requests", func(requests chi.Router) {
			requests.Post("/", s.SubmitRequest)
			requests.With(auth, moderator).Get("/", s.ListRequests)
			requests.With(auth, moderator).Get("/{requestId}", s.GetRequest)
			requests.With(auth, moderator).Put("/{requestId}/status", s.ReviewRequest)
			requests.With(auth, moderator).Delete("/{requestId}", s.DeleteRequest)
		})

		api.Route("/algae", func(algae chi.Router) {
			algae.Use(auth)
			algae.Use(moderator)
			algae.Get("/", s.ListAlgae)
			algae.Get("/latest", s.LatestAlgae)
			algae.Get("/heatmap", s.AlgaeHeatmap)
			algae.Post("/", s.CreateAlgae)
			algae.Put("/{algaeId}", s.UpdateAlgae)
		})

		api.Route("/calamity", func(calamity chi.Router) {
			calamity.Use(auth)
			calamity.Use(moderator)
			calamity.Get("/", s.ListCalamity)
			calamity.Get("/latest", s.LatestCalamity)
			calamity.Get("/heatmap", s.CalamityHeatmap)
			calamity.Post("/", s.CreateCalamity)
			calamity.Put("/{calamityId}", s.UpdateCalamity)
		})

		api.Route("/dashboard", func(dash chi.Router) {
			dash.Use(auth)
			dash.Use(moderator)
			dash.Get("/stats", s.DashboardStats)
			dash.Get("/activity", s.RecentActivity)
			dash.Get("/alerts-distribution", s.AlertsDistribution)
			dash.Get("/analytics", s.AnalyticsTimeSeries)
		})

		// uploads stay public so anonymous citizen reports can attach media
		api.Route("/upload", func(upload chi.Router) {
			upload.Get("/assets/{assetId}/content", s.ServeAsset)
			upload.Post("/single", s.UploadSingle)
			upload.Post("/multiple", s.UploadMultiple)
		})

		api.Route("/gee", func(gee chi.Router) {
			gee.Get("/health", s.AnalysisHealth)
			gee.With(auth).Get("/results", s.AnalysisResults)
			gee.With(auth, moderator).Post("/analyze", s.RunAnalysis)
			gee.With(auth, moderator).Post("/analyze-all", s.RunAllAnalysis)
		})

		api.Route("/admin", func(ar chi.Router) {
			ar.Use(auth)
			ar.Use(admin)
			ar.Get("/metrics/history", s.MetricsHistory)
		})
	})

	r.Get("/ws/metrics", s.MetricsSocket)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusNotFound, "Route not found")
	})
	return r
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := s.DB.PingContext(r.Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	WriteData(w, code, map[string]interface{}{
		"status": status,
		"time":   time.Now().UTC(),
	})
}
