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

// HeatmapPoint is a (lat,lng,metric) tuple for map rendering. Weight holds
// algae intensity or calamity risk depending on the source.
type HeatmapPoint struct {
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Weight float64 `json:"intensity"`
}

type AlgaeInput struct {
	Region        string
	Coordinates   *Coordinates
	Intensity     float64
	Temperature   float64
	NutrientLevel float64
	Analysis      *string
	Heatmap       []HeatmapPoint
	Graphs        json.RawMessage
	Prediction    json.RawMessage
}

type AlgaeFilters struct {
	Region       string
	MinIntensity *float64
}

func validateAlgaeInput(in AlgaeInput) []FieldError {
	errs := []FieldError{}
	if strings.TrimSpace(in.Region) == "" {
		errs = append(errs, FieldError{Field: "region", Message: "Region is required"})
	}
	if in.Coordinates == nil {
		errs = append(errs, FieldError{Field: "coordinates", Message: "Coordinates are required"})
	} else {
		errs = validateCoordinates(in.Coordinates, errs)
	}
	if in.Intensity < 0 || in.Intensity > 100 {
		errs = append(errs, FieldError{Field: "intensity", Message: "intensity must be between 0 and 100"})
	}
	if in.NutrientLevel < 0 {
		errs = append(errs, FieldError{Field: "nutrientLevel", Message: "nutrientLevel must not be negative"})
	}
	if in.Analysis != nil {
		errs = validateLength(errs, "analysis", *in.Analysis, 0, 2000)
	}
	return errs
}

func ListAlgae(db *sqlx.DB, f AlgaeFilters, page, limit int) ([]models.AlgaeRecord, int, error) {
	where := []string{}
	args := []interface{}{}
	if f.Region != "" {
		args = append(args, "%"+strings.ToLower(f.Region)+"%")
		where = append(where, fmt.Sprintf("lower(region) LIKE $%d", len(args)))
	}
	if f.MinIntensity != nil {
		args = append(args, *f.MinIntensity)
		where = append(where, fmt.Sprintf("intensity >= $%d", len(args)))
	}
	clause := ""
	if len(where) > 0 {
		clause = "WHERE " + strings.Join(where, " AND ")
	}
	var total int
	if err := db.Get(&total, "SELECT count(*) FROM algae_data "+clause, args...); err != nil {
		return nil, 0, err
	}
	args = append(args, limit, (page-1)*limit)
	query := fmt.Sprintf(`
SELECT * FROM algae_data %s
ORDER BY created_at DESC
LIMIT $%d OFFSET $%d`, clause, len(args)-1, len(args))
	records := []models.AlgaeRecord{}
	if err := db.Select(&records, query, args...); err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// LatestAlgae returns the most recent snapshot. found is false when the
// table is empty; callers then serve the placeholder analysis so the
// dashboard always has something to render.
func LatestAlgae(db *sqlx.DB) (models.AlgaeRecord, bool, error) {
	var record models.AlgaeRecord
	err := db.Get(&record, `SELECT * FROM algae_data ORDER BY created_at DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return models.AlgaeRecord{}, false, nil
	}
	if err != nil {
		return models.AlgaeRecord{}, false, err
	}
	return record, true, nil
}

// DefaultAlgaeAnalysis is the documented placeholder served when no algae
// data has been recorded yet.
func DefaultAlgaeAnalysis() map[string]interface{} {
	return map[string]interface{}{
		"analysis": "Algae bloom activity is concentrated in the northern region, with a significant increase over the past week. " +
			"Environmental factors such as temperature and nutrient levels are contributing to the spread. " +
			"Immediate monitoring and mitigation are recommended.",
		"heatmapData": []HeatmapPoint{},
		"graphs": []map[string]interface{}{
			{"type": "line", "title": "Algae Intensity Over Time", "url": "/images/algae-graph1.png", "data": []interface{}{}},
			{"type": "bar", "title": "Regional Distribution", "url": "/images/algae-graph2.png", "data": []interface{}{}},
		},
		"region":        "Northern Region",
		"intensity":     75,
		"temperature":   28.5,
		"nutrientLevel": 45.2,
	}
}

// AlgaeHeatmap flattens the embedded heatmap point arrays of the most
// recent records; records without embedded points contribute their own
// coordinates and intensity as a single point.
func AlgaeHeatmap(db *sqlx.DB, limit int) ([]HeatmapPoint, error) {
	records := []models.AlgaeRecord{}
	if err := db.Select(&records, `
SELECT * FROM algae_data
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
			Weight: record.Intensity,
		})
	}
	return points, nil
}

func CreateAlgae(db *sqlx.DB, in AlgaeInput) (models.AlgaeRecord, error) {
	if errs := validateAlgaeInput(in); len(errs) > 0 {
		return models.AlgaeRecord{}, ErrValidation(errs)
	}
	record := models.AlgaeRecord{
		ID:            uuid.NewString(),
		Region:        strings.TrimSpace(in.Region),
		Latitude:      in.Coordinates.Latitude,
		Longitude:     in.Coordinates.Longitude,
		Intensity:     in.Intensity,
		Temperature:   in.Temperature,
		NutrientLevel: in.NutrientLevel,
		Analysis:      in.Analysis,
		Heatmap:       marshalJSON(in.Heatmap, "[]"),
		Graphs:        rawOr(in.Graphs, "[]"),
		Prediction:    rawOr(in.Prediction, "{}"),
		CreatedAt:     time.Now().UTC(),
	}
	record.UpdatedAt = record.CreatedAt
	_, err := db.Exec(`
INSERT INTO algae_data (id, region, latitude, longitude, intensity, temperature, nutrient_level, analysis, heatmap, graphs, prediction, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$12)
`, record.ID, record.Region, record.Latitude, record.Longitude, record.Intensity, record.Temperature,
		record.NutrientLevel, record.Analysis, record.Heatmap, record.Graphs, record.Prediction, record.CreatedAt)
	if err != nil {
		return models.AlgaeRecord{}, err
	}
	return record, nil
}

func UpdateAlgae(db *sqlx.DB, id string, in AlgaeInput) (models.AlgaeRecord, error) {
	if errs := validateAlgaeInput(in); len(errs) > 0 {
		return models.AlgaeRecord{}, ErrValidation(errs)
	}
	res, err := db.Exec(`
UPDATE algae_data
SET region = $2, latitude = $3, longitude = $4, intensity = $5, temperature = $6,
    nutrient_level = $7, analysis = $8, heatmap = $9, graphs = $10, prediction = $11, updated_at = $12
WHERE id = $1
`, id, strings.TrimSpace(in.Region), in.Coordinates.Latitude, in.Coordinates.Longitude, in.Intensity,
		in.Temperature, in.NutrientLevel, in.Analysis, marshalJSON(in.Heatmap, "[]"),
		rawOr(in.Graphs, "[]"), rawOr(in.Prediction, "{}"), time.Now().UTC())
	if err != nil {
		return models.AlgaeRecord{}, err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return models.AlgaeRecord{}, ErrNotFound("Algae data not found")
	}
	var record models.AlgaeRecord
	if err := db.Get(&record, `SELECT * FROM algae_data WHERE id = $1`, id); err != nil {
		return models.AlgaeRecord{}, err
	}
	return record, nil
}

func marshalJSON(value interface{}, fallback string) []byte {
	raw, err := json.Marshal(value)
	if err != nil || value == nil {
		return []byte(fallback)
	}
	if string(raw) == "null" {
		return []byte(fallback)
	}
	return raw
}

func rawOr(raw json.RawMessage, fallback string) []byte {
	if len(raw) == 0 {
		return []byte(fallback)
	}
	return raw
}
