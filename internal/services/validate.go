package services

import (
	"fmt"
	"regexp"
	"strings"
)

// Closed value sets shared by alerts and citizen requests.
var (
	IncidentTypes = []string{"Pollution", "Illegal Dumping", "Shrimp farming", "Oil Spill", "Algae Bloom", "Natural Calamity", "Other"}
	Severities    = []string{"Low", "Medium", "High", "Critical"}
	AlertStatuses = []string{"active", "investigating", "resolved"}

	RequestStatuses = []string{"pending", "approved", "rejected"}

	CalamityTypes      = []string{"Tsunami", "Cyclone", "Storm Surge", "Coastal Erosion", "Flooding", "Other"}
	CalamityRiskLevels = []string{"Very Low", "Low", "Medium", "High", "Very High"}
	CalamityStatuses   = []string{"monitoring", "warning", "alert", "resolved"}
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func oneOf(set []string, value string) bool {
	for _, item := range set {
		if item == value {
			return true
		}
	}
	return false
}

func oneOfMessage(field string, set []string) string {
	return fmt.Sprintf("%s must be one of: %s", field, strings.Join(set, ", "))
}

// Coordinates is an optional lat/lng pair attached to alerts and requests.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func validateCoordinates(coords *Coordinates, errs []FieldError) []FieldError {
	if coords == nil {
		return errs
	}
	if coords.Latitude < -90 || coords.Latitude > 90 {
		errs = append(errs, FieldError{Field: "coordinates.latitude", Message: "latitude must be between -90 and 90"})
	}
	if coords.Longitude < -180 || coords.Longitude > 180 {
		errs = append(errs, FieldError{Field: "coordinates.longitude", Message: "longitude must be between -180 and 180"})
	}
	return errs
}

func validateLength(errs []FieldError, field, value string, min, max int) []FieldError {
	length := len(strings.TrimSpace(value))
	if length < min || length > max {
		errs = append(errs, FieldError{
			Field:   field,
			Message: fmt.Sprintf("%s must be between %d and %d characters", field, min, max),
		})
	}
	return errs
}
