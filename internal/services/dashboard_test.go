package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResponseRate(t *testing.T) {
	cases := []struct {
		name                      string
		approved, rejected, total int
		want                      float64
	}{
		{"no requests", 0, 0, 0, 0},
		{"all reviewed", 3, 2, 5, 100},
		{"half reviewed", 1, 1, 4, 50},
		{"rounds to one decimal", 1, 0, 3, 33.3},
		{"rounds up", 2, 0, 3, 66.7},
		{"none reviewed", 0, 0, 10, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ResponseRate(tc.approved, tc.rejected, tc.total))
		})
	}
}
