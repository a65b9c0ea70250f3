package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultAlgaeAnalysis(t *testing.T) {
	placeholder := DefaultAlgaeAnalysis()
	assert.Equal(t, "Northern Region", placeholder["region"])
	assert.Equal(t, 75, placeholder["intensity"])
	assert.Equal(t, 28.5, placeholder["temperature"])
	assert.Equal(t, 45.2, placeholder["nutrientLevel"])
	assert.NotEmpty(t, placeholder["analysis"])
	assert.Empty(t, placeholder["heatmapData"])

	graphs, ok := placeholder["graphs"].([]map[string]interface{})
	require.True(t, ok)
	assert.Len(t, graphs, 2)
}

func TestRiskLevelScore(t *testing.T) {
	assert.Equal(t, 20.0, riskLevelScore("Very Low"))
	assert.Equal(t, 40.0, riskLevelScore("Low"))
	assert.Equal(t, 60.0, riskLevelScore("Medium"))
	assert.Equal(t, 80.0, riskLevelScore("High"))
	assert.Equal(t, 100.0, riskLevelScore("Very High"))
	assert.Equal(t, 60.0, riskLevelScore("unknown"))
}

func TestValidateAlgaeInput(t *testing.T) {
	valid := AlgaeInput{
		Region:      "Pulicat Lake",
		Coordinates: &Coordinates{Latitude: 13.6, Longitude: 80.3},
		Intensity:   42,
	}

	t.Run("valid", func(t *testing.T) {
		assert.Empty(t, validateAlgaeInput(valid))
	})

	t.Run("coordinates required", func(t *testing.T) {
		in := valid
		in.Coordinates = nil
		errs := validateAlgaeInput(in)
		require.Len(t, errs, 1)
		assert.Equal(t, "coordinates", errs[0].Field)
	})

	t.Run("intensity bounded", func(t *testing.T) {
		in := valid
		in.Intensity = 101
		errs := validateAlgaeInput(in)
		require.Len(t, errs, 1)
		assert.Equal(t, "intensity", errs[0].Field)
	})

	t.Run("negative nutrient level rejected", func(t *testing.T) {
		in := valid
		in.NutrientLevel = -1
		errs := validateAlgaeInput(in)
		require.Len(t, errs, 1)
		assert.Equal(t, "nutrientLevel", errs[0].Field)
	})
}

func TestMarshalJSONFallbacks(t *testing.T) {
	assert.Equal(t, "[]", string(marshalJSON(nil, "[]")))
	assert.Equal(t, "{}", string(rawOr(nil, "{}")))
	assert.Equal(t, `{"a":1}`, string(rawOr([]byte(`{"a":1}`), "{}")))
	assert.Equal(t, `[{"lat":1,"lng":2,"intensity":3}]`,
		string(marshalJSON([]HeatmapPoint{{Lat: 1, Lng: 2, Weight: 3}}, "[]")))
}
