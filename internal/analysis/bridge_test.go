package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAnalyst builds a command that prints the given stdout and swallows
// the flags the bridge appends.
func stubAnalyst(stdout string) []string {
	return []string{"sh", "-c", "echo '" + stdout + "'", "analyst"}
}

func TestRunAnalysisParsesOutput(t *testing.T) {
	bridge := NewBridge(stubAnalyst(`{"location":"Kochi","threat_level":"low","anomaly_count":2,"insights":"stable"}`), 10*time.Second)
	result, err := bridge.RunAnalysis(context.Background(), "Kochi")
	require.NoError(t, err)
	assert.Equal(t, "Kochi", result.Location)
	assert.Equal(t, "low", result.ThreatLevel)
	assert.Equal(t, 2, result.AnomalyCount)
	assert.Equal(t, "stable", result.Insights)
	assert.NotEmpty(t, result.Raw)
}

func TestRunAnalysisBadJSON(t *testing.T) {
	bridge := NewBridge(stubAnalyst("not json"), 10*time.Second)
	_, err := bridge.RunAnalysis(context.Background(), "Kochi")
	require.Error(t, err)
	var procErr *ProcessError
	require.True(t, errors.As(err, &procErr))
	assert.False(t, procErr.TimedOut)
}

func TestRunAnalysisProcessFailure(t *testing.T) {
	bridge := NewBridge([]string{"false"}, 10*time.Second)
	_, err := bridge.RunAnalysis(context.Background(), "Kochi")
	require.Error(t, err)
	var procErr *ProcessError
	require.True(t, errors.As(err, &procErr))
	assert.False(t, procErr.TimedOut)
}

func TestRunAnalysisTimeout(t *testing.T) {
	bridge := NewBridge([]string{"sh", "-c", "sleep 5", "analyst"}, 100*time.Millisecond)
	_, err := bridge.RunAnalysis(context.Background(), "Kochi")
	require.Error(t, err)
	var procErr *ProcessError
	require.True(t, errors.As(err, &procErr))
	assert.True(t, procErr.TimedOut)
}

func TestRunAllAnalysis(t *testing.T) {
	bridge := NewBridge(stubAnalyst(`[{"location":"Kochi","threat_level":"low"},{"location":"Goa Coast","threat_level":"medium"}]`), 10*time.Second)
	results, err := bridge.RunAllAnalysis(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "low", results["Kochi"].ThreatLevel)
	assert.Equal(t, "medium", results["Goa Coast"].ThreatLevel)
}

func TestHealthCheck(t *testing.T) {
	assert.True(t, NewBridge([]string{"true"}, time.Second).HealthCheck(context.Background()))
	assert.False(t, NewBridge([]string{"false"}, time.Second).HealthCheck(context.Background()))
	assert.False(t, NewBridge(nil, time.Second).HealthCheck(context.Background()))
}
