package services

import (
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnonReporter(t *testing.T) {
	pattern := regexp.MustCompile(`^anon-\d+$`)
	for i := 0; i < 50; i++ {
		tag := AnonReporter()
		require.Regexp(t, pattern, tag)
		n, err := strconv.Atoi(strings.TrimPrefix(tag, "anon-"))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 0)
		assert.Less(t, n, 10000)
	}
}

func TestValidateRequestInput(t *testing.T) {
	valid := RequestInput{
		Reporter:    "Asha",
		Type:        "Pollution",
		Location:    "Kochi Backwaters",
		Description: "Industrial runoff visible along the bank",
	}

	t.Run("accepts valid input", func(t *testing.T) {
		assert.Empty(t, validateRequestInput(valid))
	})

	t.Run("description needs at least ten characters", func(t *testing.T) {
		in := valid
		in.Description = "too short"
		errs := validateRequestInput(in)
		require.Len(t, errs, 1)
		assert.Equal(t, "description", errs[0].Field)
	})

	t.Run("empty reporter is allowed", func(t *testing.T) {
		in := valid
		in.Reporter = ""
		assert.Empty(t, validateRequestInput(in))
	})

	t.Run("reporter capped at fifty characters", func(t *testing.T) {
		in := valid
		in.Reporter = strings.Repeat("a", 51)
		errs := validateRequestInput(in)
		require.Len(t, errs, 1)
		assert.Equal(t, "reporter", errs[0].Field)
	})

	t.Run("unknown type rejected", func(t *testing.T) {
		in := valid
		in.Type = "Piracy"
		errs := validateRequestInput(in)
		require.Len(t, errs, 1)
		assert.Equal(t, "type", errs[0].Field)
	})
}
