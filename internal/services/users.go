package services

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"coastal-guardian-backend-go/internal/models"
)

const minPasswordLength = 6

type RegisterInput struct {
	Email        string
	Password     string
	Username     string
	Role         string
	Organization *string
}

// RegisterUser creates an account. Role defaults to "user"; the admin role
// can only be granted through seeding.
func RegisterUser(db *sqlx.DB, tokens TokenService, in RegisterInput) (models.User, error) {
	errs := []FieldError{}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !ValidEmail(email) {
		errs = append(errs, FieldError{Field: "email", Message: "Please provide a valid email"})
	}
	if len(in.Password) < minPasswordLength {
		errs = append(errs, FieldError{Field: "password", Message: "Password must be at least 6 characters"})
	}
	role := models.Role(strings.TrimSpace(in.Role))
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() || role == models.RoleAdmin {
		errs = append(errs, FieldError{Field: "role", Message: "Role must be one of: authority, ngo, user"})
	}
	if len(errs) > 0 {
		return models.User{}, ErrValidation(errs)
	}

	var exists bool
	if err := db.Get(&exists, `SELECT EXISTS(SELECT 1 FROM users WHERE lower(email) = $1)`, email); err != nil {
		return models.User{}, err
	}
	if exists {
		return models.User{}, ErrConflict("Email already registered")
	}

	hash, err := tokens.HashPassword(in.Password)
	if err != nil {
		return models.User{}, err
	}
	username := strings.TrimSpace(in.Username)
	if username == "" {
		username = strings.SplitN(email, "@", 2)[0]
	}
	user := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Username:     username,
		Role:         role,
		Organization: in.Organization,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	user.UpdatedAt = user.CreatedAt
	_, err = db.Exec(`
INSERT INTO users (id, email, password_hash, username, role, organization, is_active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,TRUE,$7,$7)
`, user.ID, user.Email, user.PasswordHash, user.Username, user.Role, user.Organization, user.CreatedAt)
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// LoginUser verifies credentials without revealing whether the email or the
// password was wrong.
func LoginUser(db *sqlx.DB, tokens TokenService, email, password string) (models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return models.User{}, ErrUnauthorized("Invalid credentials")
	}
	var user models.User
	if err := db.Get(&user, `SELECT * FROM users WHERE lower(email) = $1`, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrUnauthorized("Invalid credentials")
		}
		return models.User{}, err
	}
	if !user.IsActive {
		return models.User{}, ErrUnauthorized("User account is deactivated")
	}
	if !tokens.VerifyPassword(password, user.PasswordHash) {
		return models.User{}, ErrUnauthorized("Invalid credentials")
	}
	now := time.Now().UTC()
	_, _ = db.Exec(`UPDATE users SET last_login_at = $1 WHERE id = $2`, now, user.ID)
	user.LastLoginAt = &now
	return user, nil
}

func FetchUser(db *sqlx.DB, userID string) (models.User, error) {
	var user models.User
	if err := db.Get(&user, `SELECT * FROM users WHERE id = $1`, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrUnauthorized("Token is not valid")
		}
		return models.User{}, err
	}
	return user, nil
}

type ProfileUpdate struct {
	Username     *string
	Organization *string
}

func UpdateProfile(db *sqlx.DB, userID string, in ProfileUpdate) (models.User, error) {
	if in.Username != nil {
		trimmed := strings.TrimSpace(*in.Username)
		if trimmed == "" {
			return models.User{}, ErrValidation([]FieldError{{Field: "username", Message: "Username must not be empty"}})
		}
		in.Username = &trimmed
	}
	_, err := db.Exec(`
UPDATE users
SET username = COALESCE($2, username),
    organization = COALESCE($3, organization),
    updated_at = $4
WHERE id = $1
`, userID, in.Username, in.Organization, time.Now().UTC())
	if err != nil {
		return models.User{}, err
	}
	return FetchUser(db, userID)
}

// SeedAdmin creates the admin account when none exists. Used at startup so
// a fresh deployment always has a way in.
func SeedAdmin(db *sqlx.DB, tokens TokenService, email, password string) error {
	var exists bool
	if err := db.Get(&exists, `SELECT EXISTS(SELECT 1 FROM users WHERE role = 'admin')`); err != nil {
		return err
	}
	if exists || email == "" || password == "" {
		return nil
	}
	hash, err := tokens.HashPassword(password)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = db.Exec(`
INSERT INTO users (id, email, password_hash, username, role, is_active, created_at, updated_at)
VALUES ($1,$2,$3,'admin','admin',TRUE,$4,$4)
`, uuid.NewString(), strings.ToLower(email), hash, now)
	return err
}
