package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"coastal-guardian-backend-go/internal/models"
	"coastal-guardian-backend-go/internal/services"
)

type AlgaePayload struct {
	Region        string                  `json:"region"`
	Coordinates   *services.Coordinates   `json:"coordinates"`
	Intensity     float64                 `json:"intensity"`
	Temperature   float64                 `json:"temperature"`
	NutrientLevel float64                 `json:"nutrientLevel"`
	Analysis      *string                 `json:"analysis"`
	HeatmapData   []services.HeatmapPoint `json:"heatmapData"`
	Graphs        json.RawMessage         `json:"graphs"`
	Prediction    json.RawMessage         `json:"prediction"`
}

type AlgaeDTO struct {
	ID            string                  `json:"id"`
	Region        string                  `json:"region"`
	Coordinates   services.Coordinates    `json:"coordinates"`
	Intensity     float64                 `json:"intensity"`
	Temperature   float64                 `json:"temperature"`
	NutrientLevel float64                 `json:"nutrientLevel"`
	Analysis      *string                 `json:"analysis,omitempty"`
	HeatmapData   []services.HeatmapPoint `json:"heatmapData"`
	Graphs        json.RawMessage         `json:"graphs"`
	Prediction    json.RawMessage         `json:"prediction"`
	CreatedAt     time.Time               `json:"createdAt"`
}

func buildAlgaeDTO(record models.AlgaeRecord) AlgaeDTO {
	dto := AlgaeDTO{
		ID:            record.ID,
		Region:        record.Region,
		Coordinates:   services.Coordinates{Latitude: record.Latitude, Longitude: record.Longitude},
		Intensity:     record.Intensity,
		Temperature:   record.Temperature,
		NutrientLevel: record.NutrientLevel,
		Analysis:      record.Analysis,
		HeatmapData:   []services.HeatmapPoint{},
		Graphs:        json.RawMessage(record.Graphs),
		Prediction:    json.RawMessage(record.Prediction),
		CreatedAt:     record.CreatedAt,
	}
	_ = json.Unmarshal(record.Heatmap, &dto.HeatmapData)
	return dto
}

func (s *Server) ListAlgae(w http.ResponseWriter, r *http.Request) {
	page := parseInt(r.URL.Query().Get("page"), 1)
	limit := parseInt(r.URL.Query().Get("limit"), 10)
	filters := services.AlgaeFilters{Region: r.URL.Query().Get("region")}
	if raw := r.URL.Query().Get("intensity"); raw != "" {
		if value, err := strconv.ParseFloat(raw, 64); err == nil {
			filters.MinIntensity = &value
		}
	}
	records, total, err := services.ListAlgae(s.DB, filters, page, limit)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	items := make([]AlgaeDTO, 0, len(records))
	for _, record := range records {
		items = append(items, buildAlgaeDTO(record))
	}
	WritePage(w, items, NewPagination(page, limit, total))
}

// LatestAlgae serves the most recent snapshot, or the documented placeholder
// when nothing has been recorded yet. The dashboard always gets a 200.
func (s *Server) LatestAlgae(w http.ResponseWriter, r *http.Request) {
	record, found, err := services.LatestAlgae(s.DB)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if !found {
		WriteData(w, http.StatusOK, services.DefaultAlgaeAnalysis())
		return
	}
	WriteData(w, http.StatusOK, buildAlgaeDTO(record))
}

func (s *Server) AlgaeHeatmap(w http.ResponseWriter, r *http.Request) {
	limit := parseInt(r.URL.Query().Get("limit"), 100)
	if limit > 500 {
		limit = 500
	}
	points, err := services.AlgaeHeatmap(s.DB, limit)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteData(w, http.StatusOK, points)
}

func (s *Server) CreateAlgae(w http.ResponseWriter, r *http.Request) {
	var req AlgaePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	record, err := services.CreateAlgae(s.DB, algaeInput(req))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteCreated(w, "Algae data created successfully", buildAlgaeDTO(record))
}

func (s *Server) UpdateAlgae(w http.ResponseWriter, r *http.Request) {
	var req AlgaePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	record, err := services.UpdateAlgae(s.DB, chi.URLParam(r, "algaeId"), algaeInput(req))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteMessage(w, http.StatusOK, "Algae data updated successfully", buildAlgaeDTO(record))
}

func algaeInput(req AlgaePayload) services.AlgaeInput {
	return services.AlgaeInput{
		Region:        req.Region,
		Coordinates:   req.Coordinates,
		Intensity:     req.Intensity,
		Temperature:   req.Temperature,
		NutrientLevel: req.NutrientLevel,
		Analysis:      req.Analysis,
		Heatmap:       req.HeatmapData,
		Graphs:        req.Graphs,
		Prediction:    req.Prediction,
	}
}
