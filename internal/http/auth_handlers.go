package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"coastal-guardian-backend-go/internal/models"
	"coastal-guardian-backend-go/internal/services"
)

type RegisterRequest struct {
	Email        string  `json:"email"`
	Password     string  `json:"password"`
	Username     string  `json:"username"`
	Role         string  `json:"role"`
	Organization *string `json:"organization"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type UserDTO struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Username     string     `json:"username"`
	Role         string     `json:"role"`
	Organization *string    `json:"organization,omitempty"`
	IsActive     bool       `json:"isActive"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
}

type AuthResponse struct {
	User         UserDTO `json:"user"`
	Token        string  `json:"token"`
	RefreshToken string  `json:"refreshToken"`
	ExpiresAt    int64   `json:"expiresAt"`
}

func buildUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:           user.ID,
		Email:        user.Email,
		Username:     user.Username,
		Role:         string(user.Role),
		Organization: user.Organization,
		IsActive:     user.IsActive,
		CreatedAt:    user.CreatedAt,
		LastLoginAt:  user.LastLoginAt,
	}
}

func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	user, err := services.RegisterUser(s.DB, s.Tokens, services.RegisterInput{
		Email:        req.Email,
		Password:     req.Password,
		Username:     req.Username,
		Role:         req.Role,
		Organization: req.Organization,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	pair, err := s.Tokens.CreatePair(user.ID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteCreated(w, "User registered successfully", AuthResponse{
		User:         buildUserDTO(user),
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt,
	})
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	user, err := services.LoginUser(s.DB, s.Tokens, req.Email, req.Password)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	pair, err := s.Tokens.CreatePair(user.ID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteData(w, http.StatusOK, AuthResponse{
		User:         buildUserDTO(user),
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt,
	})
}

func (s *Server) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	userID, err := s.Tokens.Subject(req.RefreshToken, "refresh")
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	user, err := services.FetchUser(s.DB, userID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if !user.IsActive {
		WriteError(w, http.StatusUnauthorized, "User account is deactivated")
		return
	}
	pair, err := s.Tokens.CreatePair(user.ID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteData(w, http.StatusOK, AuthResponse{
		User:         buildUserDTO(user),
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt,
	})
}

func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	user, _ := CurrentUser(r)
	WriteData(w, http.StatusOK, buildUserDTO(user))
}

type ProfileUpdateRequest struct {
	Username     *string `json:"username"`
	Organization *string `json:"organization"`
}

func (s *Server) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, _ := CurrentUser(r)
	var req ProfileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	updated, err := services.UpdateProfile(s.DB, user.ID, services.ProfileUpdate{
		Username:     req.Username,
		Organization: req.Organization,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteMessage(w, http.StatusOK, "Profile updated successfully", buildUserDTO(updated))
}

func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	WriteMessage(w, http.StatusOK, "Logged out", nil)
}
