package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"coastal-guardian-backend-go/internal/models"
	"coastal-guardian-backend-go/internal/services"
)

type CalamityPayload struct {
	Region      string                  `json:"region"`
	Type        string                  `json:"type"`
	RiskLevel   string                  `json:"riskLevel"`
	Coordinates *services.Coordinates   `json:"coordinates"`
	WeatherData json.RawMessage         `json:"weatherData"`
	SeaData     json.RawMessage         `json:"seaData"`
	Analysis    *string                 `json:"analysis"`
	HeatmapData []services.HeatmapPoint `json:"heatmapData"`
	Graphs      json.RawMessage         `json:"graphs"`
	Prediction  json.RawMessage         `json:"prediction"`
	Status      string                  `json:"status"`
}

type CalamityDTO struct {
	ID          string                  `json:"id"`
	Region      string                  `json:"region"`
	Type        string                  `json:"type"`
	RiskLevel   string                  `json:"riskLevel"`
	Coordinates services.Coordinates    `json:"coordinates"`
	WeatherData json.RawMessage         `json:"weatherData"`
	SeaData     json.RawMessage         `json:"seaData"`
	Analysis    *string                 `json:"analysis,omitempty"`
	HeatmapData []services.HeatmapPoint `json:"heatmapData"`
	Graphs      json.RawMessage         `json:"graphs"`
	Prediction  json.RawMessage         `json:"prediction"`
	Status      string                  `json:"status"`
	CreatedAt   time.Time               `json:"createdAt"`
}

func buildCalamityDTO(record models.CalamityRecord) CalamityDTO {
	dto := CalamityDTO{
		ID:          record.ID,
		Region:      record.Region,
		Type:        record.Type,
		RiskLevel:   record.RiskLevel,
		Coordinates: services.Coordinates{Latitude: record.Latitude, Longitude: record.Longitude},
		WeatherData: json.RawMessage(record.Weather),
		SeaData:     json.RawMessage(record.Sea),
		Analysis:    record.Analysis,
		HeatmapData: []services.HeatmapPoint{},
		Graphs:      json.RawMessage(record.Graphs),
		Prediction:  json.RawMessage(record.Prediction),
		Status:      record.Status,
		CreatedAt:   record.CreatedAt,
	}
	_ = json.Unmarshal(record.Heatmap, &dto.HeatmapData)
	return dto
}

func (s *Server) ListCalamity(w http.ResponseWriter, r *http.Request) {
	page := parseInt(r.URL.Query().Get("page"), 1)
	limit := parseInt(r.URL.Query().Get("limit"), 10)
	filters := services.AlgaeFilters{Region: r.URL.Query().Get("region")}
	records, total, err := services.ListCalamity(s.DB, filters, page, limit)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	items := make([]CalamityDTO, 0, len(records))
	for _, record := range records {
		items = append(items, buildCalamityDTO(record))
	}
	WritePage(w, items, NewPagination(page, limit, total))
}

func (s *Server) LatestCalamity(w http.ResponseWriter, r *http.Request) {
	record, found, err := services.LatestCalamity(s.DB)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if !found {
		WriteData(w, http.StatusOK, services.DefaultCalamityAnalysis())
		return
	}
	WriteData(w, http.StatusOK, buildCalamityDTO(record))
}

func (s *Server) CalamityHeatmap(w http.ResponseWriter, r *http.Request) {
	limit := parseInt(r.URL.Query().Get("limit"), 100)
	if limit > 500 {
		limit = 500
	}
	points, err := services.CalamityHeatmap(s.DB, limit)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteData(w, http.StatusOK, points)
}

func (s *Server) CreateCalamity(w http.ResponseWriter, r *http.Request) {
	var req CalamityPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	record, err := services.CreateCalamity(s.DB, calamityInput(req))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteCreated(w, "Calamity data created successfully", buildCalamityDTO(record))
}

func (s *Server) UpdateCalamity(w http.ResponseWriter, r *http.Request) {
	var req CalamityPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	record, err := services.UpdateCalamity(s.DB, chi.URLParam(r, "calamityId"), calamityInput(req))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteMessage(w, http.StatusOK, "Calamity data updated successfully", buildCalamityDTO(record))
}

func calamityInput(req CalamityPayload) services.CalamityInput {
	return services.CalamityInput{
		Region:      req.Region,
		Type:        req.Type,
		RiskLevel:   req.RiskLevel,
		Coordinates: req.Coordinates,
		Weather:     req.WeatherData,
		Sea:         req.SeaData,
		Analysis:    req.Analysis,
		Heatmap:     req.HeatmapData,
		Graphs:      req.Graphs,
		Prediction:  req.Prediction,
		Status:      req.Status,
	}
}
