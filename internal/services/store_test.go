package services

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coastal-guardian-backend-go/internal/models"
)

func sampleTime() time.Time {
	return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
}

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := sqlx.NewDb(raw, "sqlmock")
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestSubmitRequestForcesPending(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO requests")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	req, err := SubmitRequest(db, RequestInput{
		Reporter:    "Asha",
		Type:        "Pollution",
		Location:    "Kochi Backwaters",
		Description: "Industrial runoff visible along the bank",
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", req.Status)
	assert.Equal(t, "Asha", req.Reporter)
	assert.NotEmpty(t, req.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitRequestAnonymousReporter(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO requests")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	req, err := SubmitRequest(db, RequestInput{
		Type:        "Oil Spill",
		Location:    "Goa Coast",
		Description: "Dark slick stretching along the beach",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(req.Reporter, "anon-"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitRequestInvalidSkipsInsert(t *testing.T) {
	db, mock := newMockDB(t)

	_, err := SubmitRequest(db, RequestInput{Type: "Nope"})
	require.Error(t, err)
	serviceErr, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, 400, serviceErr.Status)
	assert.NotEmpty(t, serviceErr.Fields)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRequestRecordsReviewer(t *testing.T) {
	db, mock := newMockDB(t)
	reviewer := models.User{ID: "authority-1", Role: models.RoleAuthority}

	requestColumns := []string{
		"id", "reporter", "type", "location", "description", "latitude", "longitude",
		"status", "media", "reviewed_by", "reviewed_at", "review_notes", "created_at", "updated_at",
	}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM requests WHERE id = $1")).
		WithArgs("req-1").
		WillReturnRows(sqlmock.NewRows(requestColumns).AddRow(
			"req-1", "anon-42", "Pollution", "Kochi", "Industrial runoff visible", nil, nil,
			"pending", []byte("[]"), nil, nil, nil, sampleTime(), sampleTime()))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE requests")).
		WithArgs("req-1", "approved", "authority-1", sqlmock.AnyArg(), nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM requests WHERE id = $1")).
		WithArgs("req-1").
		WillReturnRows(sqlmock.NewRows(requestColumns).AddRow(
			"req-1", "anon-42", "Pollution", "Kochi", "Industrial runoff visible", nil, nil,
			"approved", []byte("[]"), "authority-1", sampleTime(), nil, sampleTime(), sampleTime()))

	req, err := ReviewRequest(db, "req-1", ReviewInput{Status: "approved"}, reviewer)
	require.NoError(t, err)
	assert.Equal(t, "approved", req.Status)
	require.NotNil(t, req.ReviewedBy)
	assert.Equal(t, "authority-1", *req.ReviewedBy)
	assert.NotNil(t, req.ReviewedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRequestRejectsUnknownStatus(t *testing.T) {
	db, mock := newMockDB(t)

	_, err := ReviewRequest(db, "req-1", ReviewInput{Status: "escalated"}, models.User{ID: "a"})
	require.Error(t, err)
	serviceErr, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, 400, serviceErr.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestAlgaeEmptyTable(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM algae_data")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, found, err := LatestAlgae(db)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurgeExpiredAlerts(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM alerts")).
		WillReturnResult(sqlmock.NewResult(0, 3))

	purged, err := PurgeExpiredAlerts(db)
	require.NoError(t, err)
	assert.Equal(t, int64(3), purged)
	assert.NoError(t, mock.ExpectationsWereMet())
}
