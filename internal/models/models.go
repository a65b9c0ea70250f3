package models

import "time"

// Role is the closed set of user roles. Authorization decisions go through
// the capability helpers below rather than ad-hoc string comparisons.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleAuthority Role = "authority"
	RoleNGO       Role = "ngo"
	RoleUser      Role = "user"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAuthority, RoleNGO, RoleUser:
		return true
	}
	return false
}

type User struct {
	ID           string     `db:"id"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	Username     string     `db:"username"`
	Role         Role       `db:"role"`
	Organization *string    `db:"organization"`
	IsActive     bool       `db:"is_active"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	LastLoginAt  *time.Time `db:"last_login_at"`
}

// CanModerate reports whether the user may publish alerts, review citizen
// requests and manage sensor data.
func (u User) CanModerate() bool {
	return u.Role == RoleAuthority || u.Role == RoleAdmin
}

// CanManage reports whether the user may act on records owned by others.
func (u User) CanManage() bool {
	return u.Role == RoleAdmin
}

type Alert struct {
	ID          string     `db:"id"`
	Type        string     `db:"type"`
	Location    string     `db:"location"`
	Description string     `db:"description"`
	Latitude    *float64   `db:"latitude"`
	Longitude   *float64   `db:"longitude"`
	Severity    string     `db:"severity"`
	Status      string     `db:"status"`
	AuthorityID string     `db:"authority_id"`
	Media       []byte     `db:"media"`
	ExpiresAt   *time.Time `db:"expires_at"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

type AlertComment struct {
	ID        string    `db:"id"`
	AlertID   string    `db:"alert_id"`
	Commenter string    `db:"commenter"`
	Body      string    `db:"body"`
	CreatedAt time.Time `db:"created_at"`
}

type Request struct {
	ID          string     `db:"id"`
	Reporter    string     `db:"reporter"`
	Type        string     `db:"type"`
	Location    string     `db:"location"`
	Description string     `db:"description"`
	Latitude    *float64   `db:"latitude"`
	Longitude   *float64   `db:"longitude"`
	Status      string     `db:"status"`
	Media       []byte     `db:"media"`
	ReviewedBy  *string    `db:"reviewed_by"`
	ReviewedAt  *time.Time `db:"reviewed_at"`
	ReviewNotes *string    `db:"review_notes"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

type AlgaeRecord struct {
	ID            string    `db:"id"`
	Region        string    `db:"region"`
	Latitude      float64   `db:"latitude"`
	Longitude     float64   `db:"longitude"`
	Intensity     float64   `db:"intensity"`
	Temperature   float64   `db:"temperature"`
	NutrientLevel float64   `db:"nutrient_level"`
	Analysis      *string   `db:"analysis"`
	Heatmap       []byte    `db:"heatmap"`
	Graphs        []byte    `db:"graphs"`
	Prediction    []byte    `db:"prediction"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

type CalamityRecord struct {
	ID         string    `db:"id"`
	Region     string    `db:"region"`
	Type       string    `db:"type"`
	RiskLevel  string    `db:"risk_level"`
	Latitude   float64   `db:"latitude"`
	Longitude  float64   `db:"longitude"`
	Weather    []byte    `db:"weather"`
	Sea        []byte    `db:"sea"`
	Analysis   *string   `db:"analysis"`
	Heatmap    []byte    `db:"heatmap"`
	Graphs     []byte    `db:"graphs"`
	Prediction []byte    `db:"prediction"`
	Status     string    `db:"status"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type AnalysisResult struct {
	ID           string    `db:"id"`
	Location     string    `db:"location"`
	ThreatLevel  string    `db:"threat_level"`
	AnomalyCount int       `db:"anomaly_count"`
	Insights     *string   `db:"insights"`
	Payload      []byte    `db:"payload"`
	CreatedAt    time.Time `db:"created_at"`
}

type MediaAsset struct {
	ID          string    `db:"id"`
	OwnerUserID *string   `db:"owner_user_id"`
	Bucket      string    `db:"bucket"`
	StorageKey  string    `db:"storage_key"`
	Filename    *string   `db:"filename"`
	Type        string    `db:"type"`
	ContentType string    `db:"content_type"`
	SizeBytes   int64     `db:"size_bytes"`
	Sha256      *string   `db:"sha256"`
	CreatedAt   time.Time `db:"created_at"`
}
