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

type CalamityInput struct {
	Region      string
	Type        string
	RiskLevel   string
	Coordinates *Coordinates
	Weather     json.RawMessage
	Sea         json.RawMessage
	Analysis    *string
	Heatmap     []HeatmapPoint
	Graphs      json.RawMessage
	Prediction  json.RawMessage
	Status      string
}

func validateCalamityInput(in CalamityInput) []FieldError {
	errs := []FieldError{}
	if strings.TrimSpace(in.Region) == "" {
		errs = append(errs, FieldError{Field: "region", Message: "Region is required"})
	}
	if !oneOf(CalamityTypes, in.Type) {
		errs = append(errs, FieldError{Field: "type", Message: oneOfMessage("type", CalamityTypes)})
	}
	if in.RiskLevel != "" && !oneOf(CalamityRiskLevels, in.RiskLevel) {
		errs = append(errs, FieldError{Field: "riskLevel", Message: oneOfMessage("riskLevel", CalamityRiskLevels)})
	}
	if in.Status != "" && !oneOf(CalamityStatuses, in.Status) {
		errs = append(errs, FieldError{Field: "status", Message: oneOfMessage("status", CalamityStatuses)})
	}
	if in.Coordinates == nil {
		errs = append(errs, FieldError{Field: "coordinates", Message: "Coordinates are required"})
	} else {
		errs = validateCoordinates(in.Coordinates, errs)
	}
	if in.Analysis != nil {
		errs = validateLength(errs, "analysis", *in.Analysis, 0, 2000)
	}
	return errs
}

func ListCalamity(db *sqlx.DB, f AlgaeFilters, page, limit int) ([]models.CalamityRecord, int, error) {
	where := []string{}
	args := []interface{}{}
	if f.Region != "" {
		args = append(args, "%"+strings.ToLower(f.Region)+"%")
		where = append(where, fmt.Sprintf("lower(region) LIKE $%d", len(args)))
	}
	clause := ""
	if len(where) > 0 {
		clause = "WHERE " + strings.Join(where, " AND ")
	}
	var total int
	if err := db.Get(&total, "SELECT count(*) FROM calamity_data "+clause, args...); err != nil {
		return nil, 0, err
	}
	args = append(args, limit, (page-1)*limit)
	query := fmt.Sprintf(`
SELECT * FROM calamity_data %s
ORDER BY created_at DESC
LIMIT $%d OFFSET $%d`, clause, len(args)-1, len(args))
	records := []models.CalamityRecord{}
	if err := db.Select(&records, query, args...); err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func LatestCalamity(db *sqlx.DB) (models.CalamityRecord, bool, error) {
	var record models.CalamityRecord
	err := db.Get(&record, `SELECT * FROM calamity_data ORDER BY created_at DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CalamityRecord{}, false, nil
	}
	if err != nil {
		return models.CalamityRecord{}, false, err
	}
	return record, true, nil
}

// DefaultCalamityAnalysis mirrors the algae placeholder: the dashboard
// always renders a risk card even before the first reading lands.
func DefaultCalamityAnalysis() map[string]interface{} {
	return map[string]interface{}{
		"analysis": "Cyclonic activity risk remains moderate along the eastern coastline. Wind speeds and sea surface " +
			"temperatures are within seasonal norms, but tide levels should be watched over the next 48 hours.",
		"heatmapData": []HeatmapPoint{},
		"graphs": []map[string]interface{}{
			{"type": "line", "title": "Risk Level Over Time", "url": "/images/calamity-graph1.png", "data": []interface{}{}},
		},
		"region":    "Eastern Coastline",
		"type":      "Cyclone",
		"riskLevel": "Medium",
		"status":    "monitoring",
	}
}

// CalamityHeatmap flattens embedded points; a record without embedded
// points contributes its own coordinates with the risk level mapped onto a
// 0-100 scale.
func CalamityHeatmap(db *sqlx.DB, limit int) ([]HeatmapPoint, error) {
	records := []models.CalamityRecord{}
	if err := db.Select(&records, `
SELECT * FROM calamity_data
ORDER BY created_at DESC
LIMIT $1
`, limit); err != nil {
		return nil, err
	}
	points := []HeatmapPoint{}
	for _, record := range records {
		embedded := []HeatmapPoint{}
		_ = json.Unmarshal(record.Heatmap, &embedded)
		if len(embedded) > 0 {
			points = append(points, embedded...)
			continue
		}
		points = append(points, HeatmapPoint{
			Lat:    record.Latitude,
			Lng:    record.Longitude,
			Weight: riskLevelScore(record.RiskLevel),
		})
	}
	return points, nil
}

func riskLevelScore(level string) float64 {
	for i, candidate := range CalamityRiskLevels {
		if candidate == level {
			return float64(i+1) * 20
		}
	}
	return 60
}

func CreateCalamity(db *sqlx.DB, in CalamityInput) (models.CalamityRecord, error) {
	if errs := validateCalamityInput(in); len(errs) > 0 {
		return models.CalamityRecord{}, ErrValidation(errs)
	}
	record := models.CalamityRecord{
		ID:         uuid.NewString(),
		Region:     strings.TrimSpace(in.Region),
		Type:       in.Type,
		RiskLevel:  in.RiskLevel,
		Latitude:   in.Coordinates.Latitude,
		Longitude:  in.Coordinates.Longitude,
		Weather:    rawOr(in.Weather, "{}"),
		Sea:        rawOr(in.Sea, "{}"),
		Analysis:   in.Analysis,
		Heatmap:    marshalJSON(in.Heatmap, "[]"),
		Graphs:     rawOr(in.Graphs, "[]"),
		Prediction: rawOr(in.Prediction, "{}"),
		Status:     in.Status,
		CreatedAt:  time.Now().UTC(),
	}
	record.UpdatedAt = record.CreatedAt
	if record.RiskLevel == "" {
		record.RiskLevel = "Medium"
	}
	if record.Status == "" {
		record.Status = "monitoring"
	}
	_, err := db.Exec(`
INSERT INTO calamity_data (id, region, type, risk_level, latitude, longitude, weather, sea, analysis, heatmap, graphs, prediction, status, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$14)
`, record.ID, record.Region, record.Type, record.RiskLevel, record.Latitude, record.Longitude,
		record.Weather, record.Sea, record.Analysis, record.Heatmap, record.Graphs, record.Prediction,
		record.Status, record.CreatedAt)
	if err != nil {
		return models.CalamityRecord{}, err
	}
	return record, nil
}

func UpdateCalamity(db *sqlx.DB, id string, in CalamityInput) (models.CalamityRecord, error) {
	if errs := validateCalamityInput(in); len(errs) > 0 {
		return models.CalamityRecord{}, ErrValidation(errs)
	}
	riskLevel := in.RiskLevel
	if riskLevel == "" {
		riskLevel = "Medium"
	}
	status := in.Status
	if status == "" {
		status = "monitoring"
	}
	res, err := db.Exec(`
UPDATE calamity_data
SET region = $2, type = $3, risk_level = $4, latitude = $5, longitude = $6, weather = $7, sea = $8,
    analysis = $9, heatmap = $10, graphs = $11, prediction = $12, status = $13, updated_at = $14
WHERE id = $1
`, id, strings.TrimSpace(in.Region), in.Type, riskLevel, in.Coordinates.Latitude, in.Coordinates.Longitude,
		rawOr(in.Weather, "{}"), rawOr(in.Sea, "{}"), in.Analysis, marshalJSON(in.Heatmap, "[]"),
		rawOr(in.Graphs, "[]"), rawOr(in.Prediction, "{}"), status, time.Now().UTC())
	if err != nil {
		return models.CalamityRecord{}, err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return models.CalamityRecord{}, ErrNotFound("Calamity data not found")
	}
	var record models.CalamityRecord
	if sqlErr := db.Get(&record, `SELECT * FROM calamity_data WHERE id = $1`, id); sqlErr != nil {
		if errors.Is(sqlErr, sql.ErrNoRows) {
			return models.CalamityRecord{}, ErrNotFound("Calamity data not found")
		}
		return models.CalamityRecord{}, sqlErr
	}
	return record, nil
}
