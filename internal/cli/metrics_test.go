package cli

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/valter-silva-au/taskflow/internal/observability"
)

type metricsMock struct {
	calcFn func(owner string, since time.Time) (*observability.Metrics, error)
}

func (m *metricsMock) Calculate(owner string, since time.Time) (*observability.Metrics, error) {
	return m.calcFn(owner, since)
}

func useMetrics(t *testing.T, calc observability.MetricsCalculator) {
	t.Helper()
	orig := MetricsCalc
	MetricsCalc = calc
	t.Cleanup(func() { MetricsCalc = orig })
}

func TestMetricsCmd_NilCalculator(t *testing.T) {
	useMetrics(t, nil)

	err := metricsCmd.RunE(metricsCmd, []string{})
	if err == nil || !strings.Contains(err.Error(), "not initialized") {
		t.Errorf("expected not initialized error, got %v", err)
	}
}

func TestMetricsCmd_InvalidSince(t *testing.T) {
	useMetrics(t, &metricsMock{calcFn: func(string, time.Time) (*observability.Metrics, error) {
		return &observability.Metrics{}, nil
	}})
	resetFlags(t, metricsCmd)

	for _, since := range []string{"abc", "xd", "5w"} {
		setFlag(t, metricsCmd, "since", since)
		if err := metricsCmd.RunE(metricsCmd, []string{}); err == nil || !strings.Contains(err.Error(), "parsing --since") {
			t.Errorf("since %q: expected parse error, got %v", since, err)
		}
	}
}

func TestMetricsCmd_TableForCurrentOwner(t *testing.T) {
	useService(t, newTestService(t))
	newest := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	var gotOwner string
	var gotSince time.Time
	useMetrics(t, &metricsMock{calcFn: func(owner string, since time.Time) (*observability.Metrics, error) {
		gotOwner, gotSince = owner, since
		return &observability.Metrics{
			TasksCreated:   4,
			TasksCompleted: 2,
			OverdueChecks:  1,
			EventCount:     7,
			CreatedByOwner: map[string]int{"alice": 4},
			NewestEvent:    &newest,
		}, nil
	}})
	resetFlags(t, metricsCmd)
	setFlag(t, metricsCmd, "since", "2d")

	before := time.Now()
	var err error
	out := captureStdout(t, func() { err = metricsCmd.RunE(metricsCmd, []string{}) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotOwner != "alice" {
		t.Errorf("owner = %q, want alice", gotOwner)
	}
	if d := before.Sub(gotSince); d < 47*time.Hour || d > 49*time.Hour {
		t.Errorf("since is %v before now, want about 48h", d)
	}
	for _, want := range []string{"Events recorded:", "7", "Tasks created:", "Overdue notices:", "2025-03-10T12:00:00Z"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Created by owner") {
		t.Errorf("per-owner breakdown is only shown with --all:\n%s", out)
	}
}

func TestMetricsCmd_AllOwnersJSON(t *testing.T) {
	useService(t, newTestService(t))
	var gotOwner = "unset"
	useMetrics(t, &metricsMock{calcFn: func(owner string, since time.Time) (*observability.Metrics, error) {
		gotOwner = owner
		return &observability.Metrics{TasksCreated: 3, CreatedByOwner: map[string]int{"alice": 1, "bob": 2}}, nil
	}})
	resetFlags(t, metricsCmd)
	setFlag(t, metricsCmd, "all", "true")
	setFlag(t, metricsCmd, "json", "true")

	var err error
	out := captureStdout(t, func() { err = metricsCmd.RunE(metricsCmd, []string{}) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotOwner != "" {
		t.Errorf("owner = %q, want all owners", gotOwner)
	}
	var decoded observability.Metrics
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if decoded.TasksCreated != 3 || decoded.CreatedByOwner["bob"] != 2 {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestMetricsCmd_CalculateError(t *testing.T) {
	useMetrics(t, &metricsMock{calcFn: func(string, time.Time) (*observability.Metrics, error) {
		return nil, errors.New("log unreadable")
	}})
	resetFlags(t, metricsCmd)

	err := metricsCmd.RunE(metricsCmd, []string{})
	if err == nil || !strings.Contains(err.Error(), "log unreadable") {
		t.Errorf("expected calculate error, got %v", err)
	}
}
