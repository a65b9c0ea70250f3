package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"coastal-guardian-backend-go/internal/analysis"
	"coastal-guardian-backend-go/internal/models"
	"coastal-guardian-backend-go/internal/services"
)

// AnalysisLocations is the closed set of coastal regions the external
// analyst knows about.
var AnalysisLocations = []string{"Sunderbans", "Pulicat Lake", "Goa Coast", "Kochi"}

type AnalyzePayload struct {
	Locations []string `json:"locations"`
}

type AnalysisDTO struct {
	ID           string          `json:"id"`
	Location     string          `json:"location"`
	ThreatLevel  string          `json:"threatLevel"`
	AnomalyCount int             `json:"anomalyCount"`
	Insights     string          `json:"insights,omitempty"`
	Payload      json.RawMessage `json:"payload,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

func buildAnalysisDTO(record models.AnalysisResult) AnalysisDTO {
	dto := AnalysisDTO{
		ID:           record.ID,
		Location:     record.Location,
		ThreatLevel:  record.ThreatLevel,
		AnomalyCount: record.AnomalyCount,
		Payload:      json.RawMessage(record.Payload),
		CreatedAt:    record.CreatedAt,
	}
	if record.Insights != nil {
		dto.Insights = *record.Insights
	}
	return dto
}

func validLocation(location string) bool {
	for _, candidate := range AnalysisLocations {
		if candidate == location {
			return true
		}
	}
	return false
}

// RunAnalysis invokes the external analyst for the requested locations and
// persists each snapshot. An omitted or empty list means every known
// location.
func (s *Server) RunAnalysis(w http.ResponseWriter, r *http.Request) {
	var req AnalyzePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	locations := req.Locations
	if len(locations) == 0 {
		locations = AnalysisLocations
	}
	for _, location := range locations {
		if !validLocation(location) {
			WriteError(w, http.StatusBadRequest, "Invalid location. Must be one of: Sunderbans, Pulicat Lake, Goa Coast, Kochi")
			return
		}
	}
	records := make([]AnalysisDTO, 0, len(locations))
	for _, location := range locations {
		result, err := s.Bridge.RunAnalysis(r.Context(), location)
		if err != nil {
			writeAnalysisError(w, err)
			return
		}
		record, err := services.SaveAnalysisResult(s.DB, result)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		records = append(records, buildAnalysisDTO(record))
	}
	WriteMessage(w, http.StatusOK, "Analysis completed successfully", records)
}

// RunAllAnalysis runs the analyst over every known location in one batch.
func (s *Server) RunAllAnalysis(w http.ResponseWriter, r *http.Request) {
	results, err := s.Bridge.RunAllAnalysis(r.Context())
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	records := make([]AnalysisDTO, 0, len(results))
	for _, result := range results {
		record, saveErr := services.SaveAnalysisResult(s.DB, result)
		if saveErr != nil {
			WriteServiceError(w, saveErr)
			return
		}
		records = append(records, buildAnalysisDTO(record))
	}
	WriteMessage(w, http.StatusOK, "Batch analysis completed successfully", records)
}

// AnalysisResults serves the newest stored snapshot per location, or a
// single location when ?location= is given.
func (s *Server) AnalysisResults(w http.ResponseWriter, r *http.Request) {
	location := r.URL.Query().Get("location")
	if location != "" && !validLocation(location) {
		WriteError(w, http.StatusBadRequest, "Invalid location. Must be one of: Sunderbans, Pulicat Lake, Goa Coast, Kochi")
		return
	}
	records, err := services.LatestAnalysisResults(s.DB, location)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	items := make([]AnalysisDTO, 0, len(records))
	for _, record := range records {
		items = append(items, buildAnalysisDTO(record))
	}
	WriteData(w, http.StatusOK, items)
}

func (s *Server) AnalysisHealth(w http.ResponseWriter, r *http.Request) {
	healthy := s.Bridge.HealthCheck(r.Context())
	status := "ok"
	code := http.StatusOK
	if !healthy {
		status = "unavailable"
		code = http.StatusServiceUnavailable
	}
	WriteData(w, code, map[string]interface{}{
		"analysisEngine": status,
		"locations":      AnalysisLocations,
	})
}

func writeAnalysisError(w http.ResponseWriter, err error) {
	var procErr *analysis.ProcessError
	if errors.As(err, &procErr) {
		if procErr.TimedOut {
			WriteError(w, http.StatusRequestTimeout, "Analysis timed out")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Analysis failed")
		return
	}
	WriteServiceError(w, err)
}
