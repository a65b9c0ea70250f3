package httpapi

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coastal-guardian-backend-go/internal/analysis"
	"coastal-guardian-backend-go/internal/config"
	"coastal-guardian-backend-go/internal/services"
)

func sampleTime() time.Time {
	return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
}

var userColumns = []string{
	"id", "email", "password_hash", "username", "role", "organization",
	"is_active", "created_at", "updated_at", "last_login_at",
}

func newTestServer(t *testing.T) (*Server, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := sqlx.NewDb(raw, "sqlmock")
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.Config{
		JWTSecret:              "test-secret",
		JWTIssuer:              "coastal-guardian",
		AccessTTLSeconds:       3600,
		RefreshTTLSeconds:      7200,
		RateLimitWindowMinutes: 1,
		RateLimitMax:           10000,
		MediaStoragePath:       t.TempDir(),
		MaxUploadBytes:         1 << 20,
		AnalystCommand:         []string{"true"},
		AnalysisTimeoutSeconds: 5,
	}
	return NewServer(db, cfg, services.NewMetricsHub()), mock
}

func doRequest(t *testing.T, server *Server, method, path, token, body string) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	var envelope Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return rec, envelope
}

func expectUserLookup(mock sqlmock.Sqlmock, userID, role string) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM users WHERE id = $1")).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(
			userID, "user@example.com", "hash", "tester", role, nil,
			true, sampleTime(), sampleTime(), nil))
}

func TestRouteNotFound(t *testing.T) {
	server, _ := newTestServer(t)
	rec, envelope := doRequest(t, server, http.MethodGet, "/api/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, envelope.Success)
	assert.Equal(t, "Route not found", envelope.Message)
}

func TestCreateAlertRequiresToken(t *testing.T) {
	server, _ := newTestServer(t)
	rec, envelope := doRequest(t, server, http.MethodPost, "/api/alerts", "", `{}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "No token provided, authorization denied", envelope.Message)
}

func TestCreateAlertRejectsGarbageToken(t *testing.T) {
	server, _ := newTestServer(t)
	rec, envelope := doRequest(t, server, http.MethodPost, "/api/alerts", "not-a-jwt", `{}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token is not valid", envelope.Message)
}

func TestCreateAlertForbiddenForCitizen(t *testing.T) {
	server, mock := newTestServer(t)
	pair, err := server.Tokens.CreatePair("citizen-1")
	require.NoError(t, err)
	expectUserLookup(mock, "citizen-1", "user")

	rec, envelope := doRequest(t, server, http.MethodPost, "/api/alerts", pair.AccessToken, `{}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Access denied. Authority role required.", envelope.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeactivatedUserRejected(t *testing.T) {
	server, mock := newTestServer(t)
	pair, err := server.Tokens.CreatePair("ghost-1")
	require.NoError(t, err)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM users WHERE id = $1")).
		WithArgs("ghost-1").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(
			"ghost-1", "ghost@example.com", "hash", "ghost", "authority", nil,
			false, sampleTime(), sampleTime(), nil))

	rec, envelope := doRequest(t, server, http.MethodPost, "/api/alerts", pair.AccessToken, `{}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "User account is deactivated", envelope.Message)
}

func TestSubmitRequestPublic(t *testing.T) {
	server, mock := newTestServer(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO requests")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	body := `{"reporter":"Asha","type":"Pollution","location":"Kochi Backwaters","description":"Industrial runoff visible along the bank","status":"approved"}`
	rec, envelope := doRequest(t, server, http.MethodPost, "/api/requests", "", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, envelope.Success)
	assert.Equal(t, "Request submitted successfully", envelope.Message)

	data, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok)
	// client-supplied status is ignored
	assert.Equal(t, "pending", data["status"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitRequestValidationEnvelope(t *testing.T) {
	server, _ := newTestServer(t)
	rec, envelope := doRequest(t, server, http.MethodPost, "/api/requests", "", `{"type":"Nope","description":"short"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, envelope.Success)
	assert.Equal(t, "Validation failed", envelope.Message)
	assert.NotEmpty(t, envelope.Errors)
}

func TestListAlertsEmptyPage(t *testing.T) {
	server, mock := newTestServer(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM alerts")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM alerts")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rec, envelope := doRequest(t, server, http.MethodGet, "/api/alerts?page=2&limit=5", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, envelope.Success)
	require.NotNil(t, envelope.Pagination)
	assert.Equal(t, 2, envelope.Pagination.Page)
	assert.Equal(t, 5, envelope.Pagination.Limit)
	assert.Equal(t, 0, envelope.Pagination.Total)
	assert.Equal(t, 0, envelope.Pagination.Pages)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestAlgaeServesPlaceholder(t *testing.T) {
	server, mock := newTestServer(t)
	pair, err := server.Tokens.CreatePair("authority-1")
	require.NoError(t, err)
	expectUserLookup(mock, "authority-1", "authority")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM algae_data")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rec, envelope := doRequest(t, server, http.MethodGet, "/api/algae/latest", pair.AccessToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	data, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Northern Region", data["region"])
	assert.Equal(t, float64(75), data["intensity"])
	assert.NotEmpty(t, data["analysis"])
}

func TestAlgaeReadsRequireAuthority(t *testing.T) {
	server, mock := newTestServer(t)

	rec, envelope := doRequest(t, server, http.MethodGet, "/api/algae/latest", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "No token provided, authorization denied", envelope.Message)

	pair, err := server.Tokens.CreatePair("citizen-1")
	require.NoError(t, err)
	expectUserLookup(mock, "citizen-1", "user")
	rec, envelope = doRequest(t, server, http.MethodGet, "/api/calamity/heatmap", pair.AccessToken, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Access denied. Authority role required.", envelope.Message)
}

func TestDashboardForbiddenForCitizen(t *testing.T) {
	server, mock := newTestServer(t)
	pair, err := server.Tokens.CreatePair("citizen-1")
	require.NoError(t, err)
	expectUserLookup(mock, "citizen-1", "user")

	rec, envelope := doRequest(t, server, http.MethodGet, "/api/dashboard/stats", pair.AccessToken, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Access denied. Authority role required.", envelope.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyzeRejectsUnknownLocation(t *testing.T) {
	server, mock := newTestServer(t)
	pair, err := server.Tokens.CreatePair("authority-1")
	require.NoError(t, err)
	expectUserLookup(mock, "authority-1", "authority")

	rec, envelope := doRequest(t, server, http.MethodPost, "/api/gee/analyze", pair.AccessToken, `{"locations":["Atlantis"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, envelope.Message, "Invalid location")
}

var requestColumns = []string{
	"id", "reporter", "type", "location", "description", "latitude", "longitude",
	"status", "media", "reviewed_by", "reviewed_at", "review_notes", "created_at", "updated_at",
}

func TestReviewRequestStatusRoute(t *testing.T) {
	server, mock := newTestServer(t)
	pair, err := server.Tokens.CreatePair("authority-1")
	require.NoError(t, err)
	expectUserLookup(mock, "authority-1", "authority")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM requests WHERE id = $1")).
		WithArgs("req-1").
		WillReturnRows(sqlmock.NewRows(requestColumns).AddRow(
			"req-1", "anon-7", "Pollution", "Kochi", "Industrial runoff visible", nil, nil,
			"pending", []byte("[]"), nil, nil, nil, sampleTime(), sampleTime()))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE requests")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM requests WHERE id = $1")).
		WithArgs("req-1").
		WillReturnRows(sqlmock.NewRows(requestColumns).AddRow(
			"req-1", "anon-7", "Pollution", "Kochi", "Industrial runoff visible", nil, nil,
			"approved", []byte("[]"), "authority-1", sampleTime(), nil, sampleTime(), sampleTime()))
	expectUserLookup(mock, "authority-1", "authority")

	rec, envelope := doRequest(t, server, http.MethodPut, "/api/requests/req-1/status", pair.AccessToken, `{"status":"approved"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Request status updated successfully", envelope.Message)
	data, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "approved", data["status"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRequestAllowsAuthority(t *testing.T) {
	server, mock := newTestServer(t)
	pair, err := server.Tokens.CreatePair("authority-1")
	require.NoError(t, err)
	expectUserLookup(mock, "authority-1", "authority")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM requests WHERE id = $1")).
		WithArgs("req-1").
		WillReturnRows(sqlmock.NewRows(requestColumns).AddRow(
			"req-1", "anon-7", "Pollution", "Kochi", "Industrial runoff visible", nil, nil,
			"pending", []byte("[]"), nil, nil, nil, sampleTime(), sampleTime()))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM requests WHERE id = $1")).
		WithArgs("req-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec, envelope := doRequest(t, server, http.MethodDelete, "/api/requests/req-1", pair.AccessToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Request deleted successfully", envelope.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnonymousUploadSingle(t *testing.T) {
	server, mock := newTestServer(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO media_assets")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="spill.png"`)
	header.Set("Content-Type", "image/png")
	part, err := form.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("not really a png"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload/single", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var envelope Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	data, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok)
	url, _ := data["url"].(string)
	assert.True(t, strings.HasPrefix(url, "/api/upload/assets/"))
	assert.Equal(t, "image", data["type"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalysisFailureStatuses(t *testing.T) {
	t.Run("process failure is 500", func(t *testing.T) {
		server, mock := newTestServer(t)
		server.Bridge = analysis.NewBridge([]string{"false"}, time.Second)
		pair, err := server.Tokens.CreatePair("authority-1")
		require.NoError(t, err)
		expectUserLookup(mock, "authority-1", "authority")

		rec, envelope := doRequest(t, server, http.MethodPost, "/api/gee/analyze", pair.AccessToken, `{"locations":["Kochi"]}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Analysis failed", envelope.Message)
	})

	t.Run("timeout is 408", func(t *testing.T) {
		server, mock := newTestServer(t)
		server.Bridge = analysis.NewBridge([]string{"sh", "-c", "sleep 5", "analyst"}, 50*time.Millisecond)
		pair, err := server.Tokens.CreatePair("authority-1")
		require.NoError(t, err)
		expectUserLookup(mock, "authority-1", "authority")

		rec, envelope := doRequest(t, server, http.MethodPost, "/api/gee/analyze", pair.AccessToken, `{"locations":["Kochi"]}`)
		assert.Equal(t, http.StatusRequestTimeout, rec.Code)
		assert.Equal(t, "Analysis timed out", envelope.Message)
	})
}

func TestAnalyzeDefaultsToAllLocations(t *testing.T) {
	server, mock := newTestServer(t)
	server.Bridge = analysis.NewBridge(
		[]string{"sh", "-c", `echo '{"threat_level":"low","anomaly_count":1,"insights":"ok"}'`, "analyst"},
		5*time.Second)
	pair, err := server.Tokens.CreatePair("authority-1")
	require.NoError(t, err)
	expectUserLookup(mock, "authority-1", "authority")
	for range AnalysisLocations {
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO analysis_results")).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(sampleTime()))
	}

	rec, envelope := doRequest(t, server, http.MethodPost, "/api/gee/analyze", pair.AccessToken, `{}`)
	require.Equal(t, http.StatusOK, rec.Code)
	items, ok := envelope.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, items, len(AnalysisLocations))
	for i, raw := range items {
		item, ok := raw.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, AnalysisLocations[i], item["location"])
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewPagination(t *testing.T) {
	cases := []struct {
		page, limit, total, pages int
	}{
		{1, 10, 0, 0},
		{1, 10, 1, 1},
		{1, 10, 10, 1},
		{1, 10, 11, 2},
		{3, 5, 14, 3},
	}
	for _, tc := range cases {
		p := NewPagination(tc.page, tc.limit, tc.total)
		assert.Equal(t, tc.pages, p.Pages)
		assert.Equal(t, tc.page, p.Page)
		assert.Equal(t, tc.limit, p.Limit)
		assert.Equal(t, tc.total, p.Total)
	}
}
