package services

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
)

type DashboardStats struct {
	ActiveAlerts       int     `json:"activeAlerts"`
	PendingRequests    int     `json:"pendingRequests"`
	ResolvedIssues     int     `json:"resolvedIssues"`
	TotalAlerts        int     `json:"totalAlerts"`
	TotalRequests      int     `json:"totalRequests"`
	ApprovedRequests   int     `json:"approvedRequests"`
	RejectedRequests   int     `json:"rejectedRequests"`
	HighSeverityAlerts int     `json:"highSeverityAlerts"`
	RecentActivity     int     `json:"recentActivity"`
	ResponseRate       float64 `json:"responseRate"`
}

type ActivityItem struct {
	ID          string    `json:"id"`
	Kind        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Author      string    `json:"author"`
	Severity    string    `json:"severity,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

type TypeDistribution struct {
	Type     string `db:"type" json:"type"`
	Count    int    `db:"count" json:"count"`
	Active   int    `db:"active" json:"active"`
	Resolved int    `db:"resolved" json:"resolved"`
}

type DayCount struct {
	Date  string `db:"date" json:"date"`
	Count int    `db:"count" json:"count"`
}

type TimeSeries struct {
	Alerts   []DayCount `json:"alerts"`
	Requests []DayCount `json:"requests"`
}

// DashboardStatsFor runs every count query concurrently and derives the
// composite figures.
func DashboardStatsFor(ctx context.Context, db *sqlx.DB) (DashboardStats, error) {
	var stats DashboardStats
	var resolvedAlerts int
	dayAgo := time.Now().UTC().Add(-24 * time.Hour)

	g, ctx := errgroup.WithContext(ctx)
	count := func(dest *int, query string, args ...interface{}) {
		g.Go(func() error {
			return db.GetContext(ctx, dest, query, args...)
		})
	}
	count(&stats.ActiveAlerts, `SELECT count(*) FROM alerts WHERE status = 'active'`)
	count(&stats.PendingRequests, `SELECT count(*) FROM requests WHERE status = 'pending'`)
	count(&resolvedAlerts, `SELECT count(*) FROM alerts WHERE status = 'resolved'`)
	count(&stats.TotalAlerts, `SELECT count(*) FROM alerts`)
	count(&stats.TotalRequests, `SELECT count(*) FROM requests`)
	count(&stats.ApprovedRequests, `SELECT count(*) FROM requests WHERE status = 'approved'`)
	count(&stats.RejectedRequests, `SELECT count(*) FROM requests WHERE status = 'rejected'`)
	count(&stats.HighSeverityAlerts, `SELECT count(*) FROM alerts WHERE severity IN ('High','Critical')`)
	count(&stats.RecentActivity, `
SELECT (SELECT count(*) FROM alerts WHERE created_at >= $1)
     + (SELECT count(*) FROM requests WHERE created_at >= $1)`, dayAgo)
	if err := g.Wait(); err != nil {
		return DashboardStats{}, err
	}

	stats.ResolvedIssues = resolvedAlerts + stats.ApprovedRequests
	stats.ResponseRate = ResponseRate(stats.ApprovedRequests, stats.RejectedRequests, stats.TotalRequests)
	return stats, nil
}

// ResponseRate is (reviewed/total)*100 rounded to one decimal; 0 when no
// requests exist.
func ResponseRate(approved, rejected, total int) float64 {
	if total == 0 {
		return 0
	}
	rate := float64(approved+rejected) / float64(total) * 100
	return math.Round(rate*10) / 10
}

// RecentActivityFeed merges recent alerts and requests into one feed,
// newest first, truncated to limit.
func RecentActivityFeed(ctx context.Context, db *sqlx.DB, limit, days int) ([]ActivityItem, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)

	alertRows := []struct {
		ID          string    `db:"id"`
		Type        string    `db:"type"`
		Location    string    `db:"location"`
		Description string    `db:"description"`
		Severity    string    `db:"severity"`
		Status      string    `db:"status"`
		Author      string    `db:"author"`
		CreatedAt   time.Time `db:"created_at"`
	}{}
	if err := db.SelectContext(ctx, &alertRows, `
SELECT a.id, a.type, a.location, a.description, a.severity, a.status, u.username AS author, a.created_at
FROM alerts a
JOIN users u ON u.id = a.authority_id
WHERE a.created_at >= $1
ORDER BY a.created_at DESC
LIMIT $2
`, since, limit); err != nil {
		return nil, err
	}

	requestRows := []struct {
		ID          string    `db:"id"`
		Type        string    `db:"type"`
		Location    string    `db:"location"`
		Description string    `db:"description"`
		Reporter    string    `db:"reporter"`
		Status      string    `db:"status"`
		CreatedAt   time.Time `db:"created_at"`
	}{}
	if err := db.SelectContext(ctx, &requestRows, `
SELECT id, type, location, description, reporter, status, created_at
FROM requests
WHERE created_at >= $1
ORDER BY created_at DESC
LIMIT $2
`, since, limit); err != nil {
		return nil, err
	}

	items := make([]ActivityItem, 0, len(alertRows)+len(requestRows))
	for _, row := range alertRows {
		items = append(items, ActivityItem{
			ID:          row.ID,
			Kind:        "alert",
			Title:       row.Type + " - " + row.Location,
			Description: row.Description,
			Author:      row.Author,
			Severity:    row.Severity,
			Status:      row.Status,
			CreatedAt:   row.CreatedAt,
		})
	}
	for _, row := range requestRows {
		items = append(items, ActivityItem{
			ID:          row.ID,
			Kind:        "request",
			Title:       row.Type + " Report - " + row.Location,
			Description: row.Description,
			Author:      row.Reporter,
			Status:      row.Status,
			CreatedAt:   row.CreatedAt,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func AlertsDistribution(db *sqlx.DB) ([]TypeDistribution, error) {
	rows := []TypeDistribution{}
	err := db.Select(&rows, `
SELECT type,
       count(*) AS count,
       count(*) FILTER (WHERE status = 'active') AS active,
       count(*) FILTER (WHERE status = 'resolved') AS resolved
FROM alerts
GROUP BY type
ORDER BY count DESC
`)
	return rows, err
}

// AnalyticsTimeSeries groups alert and request creation per calendar day
// over the trailing window.
func AnalyticsTimeSeries(ctx context.Context, db *sqlx.DB, days int) (TimeSeries, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)
	series := TimeSeries{Alerts: []DayCount{}, Requests: []DayCount{}}

	g, ctx := errgroup.WithContext(ctx)
	perDay := func(dest *[]DayCount, table string) {
		g.Go(func() error {
			return db.SelectContext(ctx, dest, `
SELECT to_char(created_at, 'YYYY-MM-DD') AS date, count(*) AS count
FROM `+table+`
WHERE created_at >= $1
GROUP BY 1
ORDER BY 1
`, since)
		})
	}
	perDay(&series.Alerts, "alerts")
	perDay(&series.Requests, "requests")
	if err := g.Wait(); err != nil {
		return TimeSeries{}, err
	}
	return series, nil
}
