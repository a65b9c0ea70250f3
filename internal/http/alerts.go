package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"coastal-guardian-backend-go/internal/models"
	"coastal-guardian-backend-go/internal/services"
)

type AlertPayload struct {
	Type        string                `json:"type"`
	Location    string                `json:"location"`
	Description string                `json:"description"`
	Severity    string                `json:"severity"`
	Status      string                `json:"status"`
	Coordinates *services.Coordinates `json:"coordinates"`
	Media       []services.MediaRef   `json:"media"`
	ExpiresAt   *time.Time            `json:"expiresAt"`
}

type CommentPayload struct {
	User string `json:"user"`
	Text string `json:"text"`
}

type CommentDTO struct {
	ID        string    `json:"id"`
	User      string    `json:"user"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

type AuthorInfoDTO struct {
	ID           string  `json:"id"`
	Username     string  `json:"username"`
	Organization *string `json:"organization,omitempty"`
}

type AlertDTO struct {
	ID            string                `json:"id"`
	Type          string                `json:"type"`
	Location      string                `json:"location"`
	Description   string                `json:"description"`
	Time          string                `json:"time"`
	Comments      []CommentDTO          `json:"comments"`
	Severity      string                `json:"severity"`
	Status        string                `json:"status"`
	Coordinates   *services.Coordinates `json:"coordinates,omitempty"`
	Media         []services.MediaRef   `json:"media"`
	AuthorityInfo *AuthorInfoDTO        `json:"authorityInfo,omitempty"`
	ExpiresAt     *time.Time            `json:"expiresAt,omitempty"`
	CreatedAt     time.Time             `json:"createdAt"`
}

func (s *Server) buildAlertDTO(alert models.Alert, comments []models.AlertComment) AlertDTO {
	dto := AlertDTO{
		ID:          alert.ID,
		Type:        alert.Type,
		Location:    alert.Location,
		Description: alert.Description,
		Time:        services.TimeAgo(alert.CreatedAt, time.Now().UTC()),
		Comments:    []CommentDTO{},
		Severity:    alert.Severity,
		Status:      alert.Status,
		Media:       []services.MediaRef{},
		ExpiresAt:   alert.ExpiresAt,
		CreatedAt:   alert.CreatedAt,
	}
	if alert.Latitude != nil && alert.Longitude != nil {
		dto.Coordinates = &services.Coordinates{Latitude: *alert.Latitude, Longitude: *alert.Longitude}
	}
	_ = json.Unmarshal(alert.Media, &dto.Media)
	for _, comment := range comments {
		dto.Comments = append(dto.Comments, CommentDTO{
			ID:        comment.ID,
			User:      comment.Commenter,
			Text:      comment.Body,
			CreatedAt: comment.CreatedAt,
		})
	}
	if author, err := services.FetchUser(s.DB, alert.AuthorityID); err == nil {
		dto.AuthorityInfo = &AuthorInfoDTO{ID: author.ID, Username: author.Username, Organization: author.Organization}
	}
	return dto
}

func (s *Server) ListAlerts(w http.ResponseWriter, r *http.Request) {
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
	alerts, total, err := services.ListAlerts(s.DB, filters, page, limit)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	items := make([]AlertDTO, 0, len(alerts))
	for _, alert := range alerts {
		comments, err := services.AlertComments(s.DB, alert.ID)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		items = append(items, s.buildAlertDTO(alert, comments))
	}
	WritePage(w, items, NewPagination(page, limit, total))
}

func (s *Server) GetAlert(w http.ResponseWriter, r *http.Request) {
	alert, err := services.GetAlert(s.DB, chi.URLParam(r, "alertId"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	comments, err := services.AlertComments(s.DB, alert.ID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteData(w, http.StatusOK, s.buildAlertDTO(alert, comments))
}

func (s *Server) CreateAlert(w http.ResponseWriter, r *http.Request) {
	user, _ := CurrentUser(r)
	var req AlertPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	alert, err := services.CreateAlert(s.DB, alertInput(req), user)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteCreated(w, "Alert created successfully", s.buildAlertDTO(alert, nil))
}

func (s *Server) UpdateAlert(w http.ResponseWriter, r *http.Request) {
	user, _ := CurrentUser(r)
	var req AlertPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	alert, err := services.UpdateAlert(s.DB, chi.URLParam(r, "alertId"), alertInput(req), user)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	comments, _ := services.AlertComments(s.DB, alert.ID)
	WriteMessage(w, http.StatusOK, "Alert updated successfully", s.buildAlertDTO(alert, comments))
}

func (s *Server) DeleteAlert(w http.ResponseWriter, r *http.Request) {
	user, _ := CurrentUser(r)
	if err := services.DeleteAlert(s.DB, chi.URLParam(r, "alertId"), user); err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteMessage(w, http.StatusOK, "Alert deleted successfully", nil)
}

func (s *Server) AddAlertComment(w http.ResponseWriter, r *http.Request) {
	var req CommentPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	comment, err := services.AddAlertComment(s.DB, chi.URLParam(r, "alertId"), req.User, req.Text)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteCreated(w, "Comment added successfully", CommentDTO{
		ID:        comment.ID,
		User:      comment.Commenter,
		Text:      comment.Body,
		CreatedAt: comment.CreatedAt,
	})
}

func alertInput(req AlertPayload) services.AlertInput {
	return services.AlertInput{
		Type:        req.Type,
		Location:    req.Location,
		Description: req.Description,
		Severity:    req.Severity,
		Status:      req.Status,
		Coordinates: req.Coordinates,
		Media:       req.Media,
		ExpiresAt:   req.ExpiresAt,
	}
}
