package services

import (
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"coastal-guardian-backend-go/internal/analysis"
	"coastal-guardian-backend-go/internal/models"
)

// SaveAnalysisResult appends a snapshot from the external analyst to the
// results time series.
func SaveAnalysisResult(db *sqlx.DB, result analysis.Result) (models.AnalysisResult, error) {
	record := models.AnalysisResult{
		ID:           uuid.NewString(),
		Location:     result.Location,
		ThreatLevel:  result.ThreatLevel,
		AnomalyCount: result.AnomalyCount,
		Payload:      rawOr(result.Raw, "{}"),
	}
	if result.Insights != "" {
		record.Insights = &result.Insights
	}
	err := db.Get(&record.CreatedAt, `
INSERT INTO analysis_results (id, location, threat_level, anomaly_count, insights, payload)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING created_at
`, record.ID, record.Location, record.ThreatLevel, record.AnomalyCount, record.Insights, record.Payload)
	if err != nil {
		return models.AnalysisResult{}, err
	}
	return record, nil
}

// LatestAnalysisResults returns the newest snapshot per location, or for a
// single location when one is given.
func LatestAnalysisResults(db *sqlx.DB, location string) ([]models.AnalysisResult, error) {
	results := []models.AnalysisResult{}
	if location != "" {
		err := db.Select(&results, `
SELECT * FROM analysis_results
WHERE location = $1
ORDER BY created_at DESC
LIMIT 1
`, location)
		return results, err
	}
	err := db.Select(&results, `
SELECT DISTINCT ON (location) *
FROM analysis_results
ORDER BY location, created_at DESC
`)
	return results, err
}
