package observability

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"
)

// Notifier delivers alerts to an external channel.
type Notifier interface {
	Notify(alerts []Alert) error
}

// slackNotifier posts alerts to a Slack incoming webhook.
type slackNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewSlackNotifier creates a Notifier that posts to the given Slack webhook.
func NewSlackNotifier(webhookURL string) Notifier {
	return &slackNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

type slackMessage struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string      `json:"type"`
	Text     *slackText  `json:"text,omitempty"`
	Elements []slackText `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Notify posts one message for all alerts. An empty slice sends nothing.
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

// buildSlackMessage groups alerts by project root: a header, then per root
// a context line naming the root followed by one section per alert.
func buildSlackMessage(alerts []Alert) slackMessage {
	byRoot := make(map[string][]Alert)
	var roots []string
	for _, a := range alerts {
		if _, seen := byRoot[a.Root]; !seen {
			roots = append(roots, a.Root)
		}
		byRoot[a.Root] = append(byRoot[a.Root], a)
	}
	sort.Strings(roots)

	blocks := []slackBlock{{
		Type: "header",
		Text: &slackText{Type: "plain_text", Text: fmt.Sprintf("phasescope: %d alert(s)", len(alerts))},
	}}
	for i, root := range roots {
		if i > 0 {
			blocks = append(blocks, slackBlock{Type: "divider"})
		}
		name := root
		if name == "" {
			name = "(unknown project)"
		}
		blocks = append(blocks, slackBlock{
			Type:     "context",
			Elements: []slackText{{Type: "mrkdwn", Text: "*" + name + "*"}},
		})
		for _, a := range byRoot[root] {
			blocks = append(blocks, slackBlock{
				Type: "section",
				Text: &slackText{Type: "mrkdwn", Text: fmt.Sprintf("%s *[%s]* `%s` %s\n_%s_",
					severityEmoji(a.Severity),
					strings.ToUpper(string(a.Severity)),
					a.Condition,
					a.Message,
					a.TriggeredAt.UTC().Format("2006-01-02 15:04 UTC"),
				)},
			})
		}
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
		return "❓"
	}
}
