package observability

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/valter-silva-au/taskflow/pkg/models"
)

// Notifier sends alert notifications to external channels.
type Notifier interface {
	Notify(alerts []Alert) error
}

type slackNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewSlackNotifier creates a Notifier posting to the given Slack webhook
// URL. A nil client gets a ten second timeout.
func NewSlackNotifier(webhookURL string, client *http.Client) Notifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &slackNotifier{webhookURL: webhookURL, client: client}
}

type slackMessage struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type string     `json:"type"`
	Text *slackText `json:"text,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Notify posts the alerts as one message. An empty slice sends nothing.
func (s *slackNotifier) Notify(alerts []Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	body, err := json.Marshal(buildSlackMessage(alerts))
	if err != nil {
		return fmt.Errorf("marshaling slack message: %w", err)
	}

	resp, err := s.client.Post(s.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("posting to slack webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func buildSlackMessage(alerts []Alert) slackMessage {
	blocks := []slackBlock{
		{Type: "header", Text: &slackText{Type: "plain_text", Text: "taskflow alerts"}},
	}
	for i, alert := range alerts {
		if i > 0 {
			blocks = append(blocks, slackBlock{Type: "divider"})
		}
		text := fmt.Sprintf("%s *[%s]* %s\n_%s_",
			severityEmoji(alert.Severity),
			strings.ToUpper(string(alert.Severity)),
			alert.Message,
			alert.TriggeredAt.UTC().Format("2006-01-02 15:04 UTC"),
		)
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: text},
		})
	}
	return slackMessage{Blocks: blocks}
}

func severityEmoji(severity AlertSeverity) string {
	switch severity {
	case SeverityHigh:
		return "\U0001f534"
	case SeverityMedium:
		return "\U0001f7e1"
	case SeverityLow:
		return "\U0001f535"
	default:
		return "\u2753"
	}
}

// SlackObserver forwards selected event kinds to a Notifier as alerts.
type SlackObserver struct {
	notifier Notifier
	kinds    map[models.EventKind]bool
	now      func() time.Time
}

// NewSlackObserver forwards events of the given kinds through notifier.
// A nil now uses time.Now.
func NewSlackObserver(notifier Notifier, kinds []models.EventKind, now func() time.Time) *SlackObserver {
	if now == nil {
		now = time.Now
	}
	set := make(map[models.EventKind]bool, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}
	return &SlackObserver{notifier: notifier, kinds: set, now: now}
}

// Receive implements Observer.
func (o *SlackObserver) Receive(task *models.Task, kind models.EventKind) error {
	if !o.kinds[kind] {
		return nil
	}
	return o.notifier.Notify([]Alert{AlertForEvent(task, kind, o.now())})
}
