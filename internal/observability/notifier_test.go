package observability

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSlackNotifier_NoAlerts(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL)
	if err := n.Notify(nil); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := n.Notify([]Alert{}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if called {
		t.Fatal("expected no HTTP request for empty alerts")
	}
}

func TestSlackNotifier_GroupsByRoot(t *testing.T) {
	var receivedBody []byte
	var receivedContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedContentType = r.Header.Get("Content-Type")
		receivedBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	at := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	alerts := []Alert{
		{ID: "stalled-/b", Condition: "phase_stalled", Severity: SeverityMedium, Root: "/b", Message: "/b stuck in tasks", TriggeredAt: at},
		{ID: "regressed-/a", Condition: "phase_regressed", Severity: SeverityHigh, Root: "/a", Message: "/a moved back", TriggeredAt: at},
		{ID: "stalled-/a", Condition: "phase_stalled", Severity: SeverityMedium, Root: "/a", Message: "/a stuck in specs", TriggeredAt: at},
	}

	if err := NewSlackNotifier(srv.URL).Notify(alerts); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if receivedContentType != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", receivedContentType)
	}

	var msg slackMessage
	if err := json.Unmarshal(receivedBody, &msg); err != nil {
		t.Fatalf("unmarshaling request body: %v", err)
	}

	// header, context(/a), section, section, divider, context(/b), section
	wantTypes := []string{"header", "context", "section", "section", "divider", "context", "section"}
	if len(msg.Blocks) != len(wantTypes) {
		t.Fatalf("expected %d blocks, got %d", len(wantTypes), len(msg.Blocks))
	}
	for i, typ := range wantTypes {
		if msg.Blocks[i].Type != typ {
			t.Errorf("block %d type = %s, want %s", i, msg.Blocks[i].Type, typ)
		}
	}
	if msg.Blocks[0].Text == nil || msg.Blocks[0].Text.Text != "phasescope: 3 alert(s)" {
		t.Errorf("unexpected header: %v", msg.Blocks[0].Text)
	}
	if got := msg.Blocks[1].Elements[0].Text; got != "*/a*" {
		t.Errorf("first context = %q, want */a*", got)
	}

	body := string(receivedBody)
	for _, want := range []string{"phase_regressed", "/b stuck in tasks", "2026-01-15 10:30 UTC"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected body to contain %q", want)
		}
	}
}

func TestSlackNotifier_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := NewSlackNotifier(srv.URL).Notify([]Alert{{
		ID:          "test-alert",
		Condition:   "phase_regressed",
		Severity:    SeverityHigh,
		Message:     "test alert",
		TriggeredAt: time.Now().UTC(),
	}})
	if err == nil {
		t.Fatal("expected error for 500 response, got nil")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("expected error to contain status code 500, got: %s", err.Error())
	}
}

func TestSeverityEmoji(t *testing.T) {
	tests := []struct {
		severity AlertSeverity
		emoji    string
	}{
		{SeverityHigh, "\U0001f534"},
		{SeverityMedium, "\U0001f7e1"},
		{SeverityLow, "\U0001f535"},
	}
	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			if got := severityEmoji(tt.severity); got != tt.emoji {
				t.Errorf("severityEmoji(%s) = %q, want %q", tt.severity, got, tt.emoji)
			}
		})
	}
}
