package cli

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/valter-silva-au/taskflow/internal/core"
	"github.com/valter-silva-au/taskflow/internal/observability"
)

type notifierMock struct {
	sent [][]observability.Alert
	err  error
}

func (m *notifierMock) Notify(alerts []observability.Alert) error {
	m.sent = append(m.sent, alerts)
	return m.err
}

func useAlerts(t *testing.T, engine observability.AlertEngine, notifier observability.Notifier) {
	t.Helper()
	origEngine, origNotifier := AlertEngine, Notifier
	AlertEngine, Notifier = engine, notifier
	t.Cleanup(func() { AlertEngine, Notifier = origEngine, origNotifier })
}

func newTestAlertEngine(maxPending int) observability.AlertEngine {
	return observability.NewAlertEngine(
		observability.AlertThresholds{MaxPending: maxPending},
		func() time.Time { return testNow },
	)
}

func TestAlertsCmd_NilEngine(t *testing.T) {
	useService(t, newTestService(t))
	useAlerts(t, nil, nil)

	err := alertsCmd.RunE(alertsCmd, []string{})
	if err == nil || !strings.Contains(err.Error(), "not initialized") {
		t.Errorf("expected not initialized error, got %v", err)
	}
}

func TestAlertsCmd_NoAlerts(t *testing.T) {
	useService(t, newTestService(t))
	useAlerts(t, newTestAlertEngine(10), nil)
	resetFlags(t, alertsCmd)

	out := captureStdout(t, func() {
		if err := alertsCmd.RunE(alertsCmd, []string{}); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
	if !strings.Contains(out, "No active alerts.") {
		t.Errorf("output = %q", out)
	}
}

func TestAlertsCmd_WithAlertsAndNotify(t *testing.T) {
	svc := newTestService(t)
	useService(t, svc)
	seed(t, svc, "Late", func(a *core.TaskAttrs) { a.DueDate = str("2025-03-08") })
	seed(t, svc, "Soon", func(a *core.TaskAttrs) { a.DueDate = str("2025-03-11") })
	notifier := &notifierMock{}
	useAlerts(t, newTestAlertEngine(1), notifier)
	resetFlags(t, alertsCmd)
	setFlag(t, alertsCmd, "notify", "true")

	var err error
	out := captureStdout(t, func() { err = alertsCmd.RunE(alertsCmd, []string{}) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"3 active alert(s)", "[HIGH]", "[MEDIUM]", "[LOW]", "Late", "Alerts sent."} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if len(notifier.sent) != 1 || len(notifier.sent[0]) != 3 {
		t.Errorf("notifier received %v", notifier.sent)
	}
}

func TestAlertsCmd_NotifyErrors(t *testing.T) {
	svc := newTestService(t)
	useService(t, svc)
	seed(t, svc, "Late", func(a *core.TaskAttrs) { a.DueDate = str("2025-03-08") })
	resetFlags(t, alertsCmd)
	setFlag(t, alertsCmd, "notify", "true")

	useAlerts(t, newTestAlertEngine(0), nil)
	var err error
	captureStdout(t, func() { err = alertsCmd.RunE(alertsCmd, []string{}) })
	if err == nil || !strings.Contains(err.Error(), "no notifier configured") {
		t.Errorf("expected missing notifier error, got %v", err)
	}

	useAlerts(t, newTestAlertEngine(0), &notifierMock{err: errors.New("webhook down")})
	captureStdout(t, func() { err = alertsCmd.RunE(alertsCmd, []string{}) })
	if err == nil || !strings.Contains(err.Error(), "webhook down") {
		t.Errorf("expected send error, got %v", err)
	}
}
