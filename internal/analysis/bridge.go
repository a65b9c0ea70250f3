// Package analysis wraps the external coastal-analysis process behind a
// narrow adapter so the rest of the service never touches process spawning
// or stdout parsing.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Result is one analysis snapshot for a location.
type Result struct {
	Location     string          `json:"location"`
	ThreatLevel  string          `json:"threat_level"`
	AnomalyCount int             `json:"anomaly_count"`
	Insights     string          `json:"insights"`
	Raw          json.RawMessage `json:"-"`
}

// ProcessError reports a failed or timed-out analyst run, carrying whatever
// the process wrote to stderr.
type ProcessError struct {
	Stderr   string
	TimedOut bool
	Err      error
}

func (e *ProcessError) Error() string {
	if e.TimedOut {
		return "analysis process timed out"
	}
	if e.Stderr != "" {
		return fmt.Sprintf("analysis process failed: %s", strings.TrimSpace(e.Stderr))
	}
	return fmt.Sprintf("analysis process failed: %v", e.Err)
}

func (e *ProcessError) Unwrap() error { return e.Err }

// Bridge invokes the external analyst command. A single run must finish
// within BatchTimeout; health checks within HealthTimeout.
type Bridge struct {
	Command       []string
	BatchTimeout  time.Duration
	HealthTimeout time.Duration
}

func NewBridge(command []string, batchTimeout time.Duration) Bridge {
	return Bridge{
		Command:       command,
		BatchTimeout:  batchTimeout,
		HealthTimeout: 30 * time.Second,
	}
}

// RunAnalysis analyzes one location and parses the process's stdout as a
// single JSON result.
func (b Bridge) RunAnalysis(ctx context.Context, location string) (Result, error) {
	stdout, err := b.run(ctx, b.BatchTimeout, "--location", location)
	if err != nil {
		return Result{}, err
	}
	var result Result
	if err := json.Unmarshal(stdout, &result); err != nil {
		return Result{}, &ProcessError{Err: fmt.Errorf("parse analysis output: %w", err)}
	}
	if result.Location == "" {
		result.Location = location
	}
	result.Raw = json.RawMessage(stdout)
	return result, nil
}

// RunAllAnalysis analyzes every known location in one batch run. The
// process prints a JSON array of results.
func (b Bridge) RunAllAnalysis(ctx context.Context) (map[string]Result, error) {
	stdout, err := b.run(ctx, b.BatchTimeout, "--all")
	if err != nil {
		return nil, err
	}
	var list []Result
	if err := json.Unmarshal(stdout, &list); err != nil {
		return nil, &ProcessError{Err: fmt.Errorf("parse analysis output: %w", err)}
	}
	results := make(map[string]Result, len(list))
	for _, result := range list {
		raw, _ := json.Marshal(result)
		result.Raw = raw
		results[result.Location] = result
	}
	return results, nil
}

// HealthCheck reports whether the analyst command starts and exits cleanly.
func (b Bridge) HealthCheck(ctx context.Context) bool {
	_, err := b.run(ctx, b.HealthTimeout, "--health-check")
	return err == nil
}

func (b Bridge) run(ctx context.Context, timeout time.Duration, args ...string) ([]byte, error) {
	if len(b.Command) == 0 {
		return nil, &ProcessError{Err: errors.New("analyst command not configured")}
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, b.Command[0], append(b.Command[1:], args...)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return nil, &ProcessError{Stderr: stderr.String(), TimedOut: true, Err: ctx.Err()}
	}
	if err != nil {
		return nil, &ProcessError{Stderr: stderr.String(), Err: err}
	}
	return stdout.Bytes(), nil
}
