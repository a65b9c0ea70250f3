package services

import (
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"coastal-guardian-backend-go/internal/models"
)

type RequestInput struct {
	Reporter    string
	Type        string
	Location    string
	Description string
	Coordinates *Coordinates
	Media       []MediaRef
}

type ReviewInput struct {
	Status      string
	ReviewNotes *string
}

func validateRequestInput(in RequestInput) []FieldError {
	errs := []FieldError{}
	if !oneOf(IncidentTypes, in.Type) {
		errs = append(errs, FieldError{Field: "type", Message: oneOfMessage("type", IncidentTypes)})
	}
	if strings.TrimSpace(in.Location) == "" {
		errs = append(errs, FieldError{Field: "location", Message: "Location is required"})
	}
	errs = validateLength(errs, "description", in.Description, 10, 1000)
	if in.Reporter != "" {
		errs = validateLength(errs, "reporter", in.Reporter, 1, 50)
	}
	return validateCoordinates(in.Coordinates, errs)
}

// AnonReporter generates the tag used when a citizen submits without a name.
func AnonReporter() string {
	return fmt.Sprintf("anon-%d", rand.Intn(10000))
}

// SubmitRequest records a public citizen report. Status is always pending
// regardless of client input.
func SubmitRequest(db *sqlx.DB, in RequestInput) (models.Request, error) {
	if errs := validateRequestInput(in); len(errs) > 0 {
		return models.Request{}, ErrValidation(errs)
	}
	reporter := strings.TrimSpace(in.Reporter)
	if reporter == "" {
		reporter = AnonReporter()
	}
	req := models.Request{
		ID:          uuid.NewString(),
		Reporter:    reporter,
		Type:        in.Type,
		Location:    strings.TrimSpace(in.Location),
		Description: strings.TrimSpace(in.Description),
		Status:      "pending",
		Media:       marshalMedia(in.Media),
		CreatedAt:   time.Now().UTC(),
	}
	req.UpdatedAt = req.CreatedAt
	if in.Coordinates != nil {
		req.Latitude = &in.Coordinates.Latitude
		req.Longitude = &in.Coordinates.Longitude
	}
	_, err := db.Exec(`
INSERT INTO requests (id, reporter, type, location, description, latitude, longitude, status, media, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,'pending',$8,$9,$9)
`, req.ID, req.Reporter, req.Type, req.Location, req.Description, req.Latitude, req.Longitude, req.Media, req.CreatedAt)
	if err != nil {
		return models.Request{}, err
	}
	return req, nil
}

func ListRequests(db *sqlx.DB, f AlertFilters, page, limit int) ([]models.Request, int, error) {
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
	if err := db.Get(&total, "SELECT count(*) FROM requests "+clause, args...); err != nil {
		return nil, 0, err
	}
	args = append(args, limit, (page-1)*limit)
	query := fmt.Sprintf(`
SELECT * FROM requests %s
ORDER BY created_at DESC
LIMIT $%d OFFSET $%d`, clause, len(args)-1, len(args))
	requests := []models.Request{}
	if err := db.Select(&requests, query, args...); err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

func GetRequest(db *sqlx.DB, id string) (models.Request, error) {
	var req models.Request
	if err := db.Get(&req, `SELECT * FROM requests WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Request{}, ErrNotFound("Request not found")
		}
		return models.Request{}, err
	}
	return req, nil
}

// ReviewRequest is the approve/reject transition. The reviewer and the
// review timestamp are recorded every time, even when the status repeats.
func ReviewRequest(db *sqlx.DB, id string, in ReviewInput, reviewer models.User) (models.Request, error) {
	errs := []FieldError{}
	if !oneOf(RequestStatuses, in.Status) {
		errs = append(errs, FieldError{Field: "status", Message: oneOfMessage("status", RequestStatuses)})
	}
	if in.ReviewNotes != nil {
		errs = validateLength(errs, "reviewNotes", *in.ReviewNotes, 0, 500)
	}
	if len(errs) > 0 {
		return models.Request{}, ErrValidation(errs)
	}
	if _, err := GetRequest(db, id); err != nil {
		return models.Request{}, err
	}
	now := time.Now().UTC()
	_, err := db.Exec(`
UPDATE requests
SET status = $2, reviewed_by = $3, reviewed_at = $4, review_notes = $5, updated_at = $4
WHERE id = $1
`, id, in.Status, reviewer.ID, now, in.ReviewNotes)
	if err != nil {
		return models.Request{}, err
	}
	return GetRequest(db, id)
}

func DeleteRequest(db *sqlx.DB, id string) error {
	if _, err := GetRequest(db, id); err != nil {
		return err
	}
	_, err := db.Exec(`DELETE FROM requests WHERE id = $1`, id)
	return err
}
