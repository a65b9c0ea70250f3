package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"coastal-guardian-backend-go/internal/models"
	"coastal-guardian-backend-go/internal/services"
)

type RequestPayload struct {
	Reporter    string                `json:"reporter"`
	Type        string                `json:"type"`
	Location    string                `json:"location"`
	Description string                `json:"description"`
	Coordinates *services.Coordinates `json:"coordinates"`
	Media       []services.MediaRef   `json:"media"`
}

type ReviewPayload struct {
	Status      string  `json:"status"`
	ReviewNotes *string `json:"reviewNotes"`
}

type RequestDTO struct {
	ID          string                `json:"id"`
	Reporter    string                `json:"reporter"`
	Type        string                `json:"type"`
	Location    string                `json:"location"`
	Description string                `json:"description"`
	Time        string                `json:"time"`
	Status      string                `json:"status"`
	Coordinates *services.Coordinates `json:"coordinates,omitempty"`
	Media       []services.MediaRef   `json:"media"`
	ReviewedBy  *AuthorInfoDTO        `json:"reviewedBy,omitempty"`
	ReviewedAt  *time.Time            `json:"reviewedAt,omitempty"`
	ReviewNotes *string               `json:"reviewNotes,omitempty"`
	CreatedAt   time.Time             `json:"createdAt"`
}

func (s *Server) buildRequestDTO(req models.Request) RequestDTO {
	dto := RequestDTO{
		ID:          req.ID,
		Reporter:    req.Reporter,
		Type:        req.Type,
		Location:    req.Location,
		Description: req.Description,
		Time:        services.TimeAgo(req.CreatedAt, time.Now().UTC()),
		Status:      req.Status,
		Media:       []services.MediaRef{},
		ReviewedAt:  req.ReviewedAt,
		ReviewNotes: req.ReviewNotes,
		CreatedAt:   req.CreatedAt,
	}
	if req.Latitude != nil && req.Longitude != nil {
		dto.Coordinates = &services.Coordinates{Latitude: *req.Latitude, Longitude: *req.Longitude}
	}
	_ = json.Unmarshal(req.Media, &dto.Media)
	if req.ReviewedBy != nil {
		if reviewer, err := services.FetchUser(s.DB, *req.ReviewedBy); err == nil {
			dto.ReviewedBy = &AuthorInfoDTO{ID: reviewer.ID, Username: reviewer.Username, Organization: reviewer.Organization}
		}
	}
	return dto
}

func (s *Server) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	var req RequestPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	created, err := services.SubmitRequest(s.DB, services.RequestInput{
		Reporter:    req.Reporter,
		Type:        req.Type,
		Location:    req.Location,
		Description: req.Description,
		Coordinates: req.Coordinates,
		Media:       req.Media,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteCreated(w, "Request submitted successfully", s.buildRequestDTO(created))
}

func (s *Server) ListRequests(w http.ResponseWriter, r *http.Request) {
	page := parseInt(r.URL.Query().Get("page"), 1)
	limit := parseInt(r.URL.Query().Get("limit"), 10)
	if limit > 100 {
		limit = 100
	}
	filters := services.AlertFilters{
		Status:   r.URL.Query().Get("status"),
		Type:     r.URL.Query().Get("type"),
		Location: r.URL.Query().Get("location"),
	}
	requests, total, err := services.ListRequests(s.DB, filters, page, limit)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	items := make([]RequestDTO, 0, len(requests))
	for _, req := range requests {
		items = append(items, s.buildRequestDTO(req))
	}
	WritePage(w, items, NewPagination(page, limit, total))
}

func (s *Server) GetRequest(w http.ResponseWriter, r *http.Request) {
	req, err := services.GetRequest(s.DB, chi.URLParam(r, "requestId"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteData(w, http.StatusOK, s.buildRequestDTO(req))
}

func (s *Server) ReviewRequest(w http.ResponseWriter, r *http.Request) {
	user, _ := CurrentUser(r)
	var req ReviewPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	updated, err := services.ReviewRequest(s.DB, chi.URLParam(r, "requestId"), services.ReviewInput{
		Status:      req.Status,
		ReviewNotes: req.ReviewNotes,
	}, user)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteMessage(w, http.StatusOK, "Request status updated successfully", s.buildRequestDTO(updated))
}

func (s *Server) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	if err := services.DeleteRequest(s.DB, chi.URLParam(r, "requestId")); err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteMessage(w, http.StatusOK, "Request deleted successfully", nil)
}
