package httpapi

import (
	"net/http"

	"coastal-guardian-backend-go/internal/services"
)

func (s *Server) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := services.DashboardStatsFor(r.Context(), s.DB)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteData(w, http.StatusOK, stats)
}

func (s *Server) RecentActivity(w http.ResponseWriter, r *http.Request) {
	limit := parseInt(r.URL.Query().Get("limit"), 20)
	if limit > 100 {
		limit = 100
	}
	days := parseInt(r.URL.Query().Get("days"), 7)
	items, err := services.RecentActivityFeed(r.Context(), s.DB, limit, days)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteData(w, http.StatusOK, items)
}

func (s *Server) AlertsDistribution(w http.ResponseWriter, r *http.Request) {
	rows, err := services.AlertsDistribution(s.DB)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteData(w, http.StatusOK, rows)
}

func (s *Server) AnalyticsTimeSeries(w http.ResponseWriter, r *http.Request) {
	days := parseInt(r.URL.Query().Get("days"), 30)
	if days > 365 {
		days = 365
	}
	series, err := services.AnalyticsTimeSeries(r.Context(), s.DB, days)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteData(w, http.StatusOK, series)
}
