package services

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"coastal-guardian-backend-go/internal/models"
)

// MediaRef points at an uploaded attachment.
type MediaRef struct {
	Type     string `json:"type"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

type AlertInput struct {
	Type        string
	Location    string
	Description string
	Severity    string
	Status      string
	Coordinates *Coordinates
	Media       []MediaRef
	ExpiresAt   *time.Time
}

type AlertFilters struct {
	Status   string
	Type     string
	Location string
}

func validateAlertInput(in AlertInput) []FieldError {
	errs := []FieldError{}
	if !oneOf(IncidentTypes, in.Type) {
		errs = append(errs, FieldError{Field: "type", Message: oneOfMessage("type", IncidentTypes)})
	}
	if strings.TrimSpace(in.Location) == "" {
		errs = append(errs, FieldError{Field: "location", Message: "Location is required"})
	}
	errs = validateLength(errs, "description", in.Description, 5, 1000)
	if in.Severity != "" && !oneOf(Severities, in.Severity) {
		errs = append(errs, FieldError{Field: "severity", Message: oneOfMessage("severity", Severities)})
	}
	if in.Status != "" && !oneOf(AlertStatuses, in.Status) {
		errs = append(errs, FieldError{Field: "status", Message: oneOfMessage("status", AlertStatuses)})
	}
	return validateCoordinates(in.Coordinates, errs)
}

// ListAlerts applies the optional filters with logical AND; location is a
// case-insensitive substring match. Results come newest first.
func ListAlerts(db *sqlx.DB, f AlertFilters, page, limit int) ([]models.Alert, int, error) {
	where := []string{}
	args := []interface{}{}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Type != "" {
		args = append(args, f.Type)
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}
	if f.Location != "" {
		args = append(args, "%"+strings.ToLower(f.Location)+"%")
		where = append(where, fmt.Sprintf("lower(location) LIKE $%d", len(args)))
	}
	clause := ""
	if len(where) > 0 {
		clause = "WHERE " + strings.Join(where, " AND ")
	}
	var total int
	if err := db.Get(&total, "SELECT count(*) FROM alerts "+clause, args...); err != nil {
		return nil, 0, err
	}
	args = append(args, limit, (page-1)*limit)
	query := fmt.Sprintf(`
SELECT * FROM alerts %s
ORDER BY created_at DESC
LIMIT $%d OFFSET $%d`, clause, len(args)-1, len(args))
	alerts := []models.Alert{}
	if err := db.Select(&alerts, query, args...); err != nil {
		return nil, 0, err
	}
	return alerts, total, nil
}

func GetAlert(db *sqlx.DB, id string) (models.Alert, error) {
	var alert models.Alert
	if err := db.Get(&alert, `SELECT * FROM alerts WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Alert{}, ErrNotFound("Alert not found")
		}
		return models.Alert{}, err
	}
	return alert, nil
}

func AlertComments(db *sqlx.DB, alertID string) ([]models.AlertComment, error) {
	comments := []models.AlertComment{}
	err := db.Select(&comments, `
SELECT * FROM alert_comments
WHERE alert_id = $1
ORDER BY created_at ASC
`, alertID)
	return comments, err
}

func CreateAlert(db *sqlx.DB, in AlertInput, author models.User) (models.Alert, error) {
	if errs := validateAlertInput(in); len(errs) > 0 {
		return models.Alert{}, ErrValidation(errs)
	}
	alert := models.Alert{
		ID:          uuid.NewString(),
		Type:        in.Type,
		Location:    strings.TrimSpace(in.Location),
		Description: strings.TrimSpace(in.Description),
		Severity:    in.Severity,
		Status:      in.Status,
		AuthorityID: author.ID,
		ExpiresAt:   in.ExpiresAt,
		CreatedAt:   time.Now().UTC(),
	}
	alert.UpdatedAt = alert.CreatedAt
	if alert.Severity == "" {
		alert.Severity = "Medium"
	}
	if alert.Status == "" {
		alert.Status = "active"
	}
	if in.Coordinates != nil {
		alert.Latitude = &in.Coordinates.Latitude
		alert.Longitude = &in.Coordinates.Longitude
	}
	alert.Media = marshalMedia(in.Media)
	_, err := db.Exec(`
INSERT INTO alerts (id, type, location, description, latitude, longitude, severity, status, authority_id, media, expires_at, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$12)
`, alert.ID, alert.Type, alert.Location, alert.Description, alert.Latitude, alert.Longitude,
		alert.Severity, alert.Status, alert.AuthorityID, alert.Media, alert.ExpiresAt, alert.CreatedAt)
	if err != nil {
		return models.Alert{}, err
	}
	return alert, nil
}

// UpdateAlert re-validates the payload and enforces the owner-or-admin rule.
func UpdateAlert(db *sqlx.DB, id string, in AlertInput, actor models.User) (models.Alert, error) {
	alert, err := GetAlert(db, id)
	if err != nil {
		return models.Alert{}, err
	}
	if alert.AuthorityID != actor.ID && !actor.CanManage() {
		return models.Alert{}, ErrForbidden("Not authorized to update this alert")
	}
	if errs := validateAlertInput(in); len(errs) > 0 {
		return models.Alert{}, ErrValidation(errs)
	}
	severity := in.Severity
	if severity == "" {
		severity = alert.Severity
	}
	status := in.Status
	if status == "" {
		status = alert.Status
	}
	var lat, lng *float64
	if in.Coordinates != nil {
		lat = &in.Coordinates.Latitude
		lng = &in.Coordinates.Longitude
	}
	media := alert.Media
	if in.Media != nil {
		media = marshalMedia(in.Media)
	}
	_, err = db.Exec(`
UPDATE alerts
SET type = $2, location = $3, description = $4, latitude = $5, longitude = $6,
    severity = $7, status = $8, media = $9, expires_at = $10, updated_at = $11
WHERE id = $1
`, id, in.Type, strings.TrimSpace(in.Location), strings.TrimSpace(in.Description), lat, lng,
		severity, status, media, in.ExpiresAt, time.Now().UTC())
	if err != nil {
		return models.Alert{}, err
	}
	return GetAlert(db, id)
}

func DeleteAlert(db *sqlx.DB, id string, actor models.User) error {
	alert, err := GetAlert(db, id)
	if err != nil {
		return err
	}
	if alert.AuthorityID != actor.ID && !actor.CanManage() {
		return ErrForbidden("Not authorized to delete this alert")
	}
	_, err = db.Exec(`DELETE FROM alerts WHERE id = $1`, id)
	return err
}

// AddAlertComment appends a public comment. The alert does not have to be
// active; commenter defaults to Anonymous.
func AddAlertComment(db *sqlx.DB, alertID, commenter, text string) (models.AlertComment, error) {
	errs := validateLength([]FieldError{}, "text", text, 1, 500)
	if commenter != "" {
		errs = validateLength(errs, "user", commenter, 1, 50)
	}
	if len(errs) > 0 {
		return models.AlertComment{}, ErrValidation(errs)
	}
	if _, err := GetAlert(db, alertID); err != nil {
		return models.AlertComment{}, err
	}
	if commenter == "" {
		commenter = "Anonymous"
	}
	comment := models.AlertComment{
		ID:        uuid.NewString(),
		AlertID:   alertID,
		Commenter: strings.TrimSpace(commenter),
		Body:      strings.TrimSpace(text),
		CreatedAt: time.Now().UTC(),
	}
	_, err := db.Exec(`
INSERT INTO alert_comments (id, alert_id, commenter, body, created_at)
VALUES ($1,$2,$3,$4,$5)
`, comment.ID, comment.AlertID, comment.Commenter, comment.Body, comment.CreatedAt)
	if err != nil {
		return models.AlertComment{}, err
	}
	return comment, nil
}

// PurgeExpiredAlerts removes alerts whose expiry has passed. Run on a
// schedule from main.
func PurgeExpiredAlerts(db *sqlx.DB) (int64, error) {
	res, err := db.Exec(`DELETE FROM alerts WHERE expires_at IS NOT NULL AND expires_at < $1`, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func marshalMedia(refs []MediaRef) []byte {
	if refs == nil {
		refs = []MediaRef{}
	}
	raw, _ := json.Marshal(refs)
	return raw
}

// TimeAgo renders the age of a record the way the feed displays it:
// "just now" under a minute, then floored minutes, hours and days.
func TimeAgo(created, now time.Time) string {
	minutes := int(now.Sub(created).Minutes())
	if minutes < 1 {
		return "just now"
	}
	if minutes < 60 {
		return fmt.Sprintf("%dm ago", minutes)
	}
	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%dh ago", hours)
	}
	return fmt.Sprintf("%dd ago", hours/24)
}
