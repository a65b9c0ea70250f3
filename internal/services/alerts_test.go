package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeAgo(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		created time.Time
		want    string
	}{
		{"seconds old", now.Add(-30 * time.Second), "just now"},
		{"one minute", now.Add(-1 * time.Minute), "1m ago"},
		{"under an hour", now.Add(-59 * time.Minute), "59m ago"},
		{"exactly an hour", now.Add(-60 * time.Minute), "1h ago"},
		{"under a day", now.Add(-23*time.Hour - 30*time.Minute), "23h ago"},
		{"one day", now.Add(-24 * time.Hour), "1d ago"},
		{"several days", now.Add(-72*time.Hour - time.Hour), "3d ago"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TimeAgo(tc.created, now))
		})
	}
}

func TestValidateAlertInput(t *testing.T) {
	valid := AlertInput{
		Type:        "Oil Spill",
		Location:    "Marina Beach",
		Description: "Oil slick spotted near the shore",
	}

	t.Run("accepts minimal valid input", func(t *testing.T) {
		assert.Empty(t, validateAlertInput(valid))
	})

	t.Run("collects every field error", func(t *testing.T) {
		errs := validateAlertInput(AlertInput{
			Type:        "Earthquake",
			Location:    "  ",
			Description: "hey",
			Severity:    "Extreme",
			Status:      "open",
			Coordinates: &Coordinates{Latitude: 120, Longitude: -200},
		})
		fields := map[string]bool{}
		for _, fe := range errs {
			fields[fe.Field] = true
		}
		assert.True(t, fields["type"])
		assert.True(t, fields["location"])
		assert.True(t, fields["description"])
		assert.True(t, fields["severity"])
		assert.True(t, fields["status"])
		assert.True(t, fields["coordinates.latitude"])
		assert.True(t, fields["coordinates.longitude"])
	})

	t.Run("description bounds are trimmed", func(t *testing.T) {
		in := valid
		in.Description = "   abcd   "
		errs := validateAlertInput(in)
		assert.Len(t, errs, 1)
		assert.Equal(t, "description", errs[0].Field)
	})

	t.Run("severity and status are optional", func(t *testing.T) {
		in := valid
		in.Severity = ""
		in.Status = ""
		assert.Empty(t, validateAlertInput(in))
	})
}
