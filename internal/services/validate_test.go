package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("citizen@example.com"))
	assert.True(t, ValidEmail("a.b+c@coastal.gov.in"))
	assert.False(t, ValidEmail("not-an-email"))
	assert.False(t, ValidEmail("missing@domain"))
	assert.False(t, ValidEmail("spaces in@example.com"))
	assert.False(t, ValidEmail("@example.com"))
}

func TestValidateCoordinates(t *testing.T) {
	t.Run("nil passes", func(t *testing.T) {
		assert.Empty(t, validateCoordinates(nil, nil))
	})
	t.Run("bounds inclusive", func(t *testing.T) {
		assert.Empty(t, validateCoordinates(&Coordinates{Latitude: 90, Longitude: -180}, nil))
		assert.Empty(t, validateCoordinates(&Coordinates{Latitude: -90, Longitude: 180}, nil))
	})
	t.Run("out of range", func(t *testing.T) {
		errs := validateCoordinates(&Coordinates{Latitude: 91, Longitude: 181}, nil)
		assert.Len(t, errs, 2)
	})
}

func TestAllowedUploadType(t *testing.T) {
	cases := []struct {
		contentType string
		wantKind    string
		wantOK      bool
	}{
		{"image/png", "image", true},
		{"image/jpeg", "image", true},
		{"video/mp4", "video", true},
		{"application/pdf", "document", true},
		{"application/zip", "", false},
		{"text/html", "", false},
	}
	for _, tc := range cases {
		kind, ok := AllowedUploadType(tc.contentType)
		assert.Equal(t, tc.wantOK, ok, tc.contentType)
		assert.Equal(t, tc.wantKind, kind, tc.contentType)
	}
}
