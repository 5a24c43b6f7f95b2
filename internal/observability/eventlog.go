package observability

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"
)

// Event is one line of the phase event log.
type Event struct {
	Time    time.Time      `json:"time"`
	Level   string         `json:"level"` // INFO, WARN
	Type    string         `json:"type"`  // e.g. "pipeline.phase_changed"
	Root    string         `json:"root,omitempty"`
	Message string         `json:"msg"`
	Data    map[string]any `json:"data,omitempty"`
}

// Phase returns the phase an event is about: "phase" for scans,
// completions, reopenings and checkpoints, "to" for phase changes.
func (e Event) Phase() string {
	if to, ok := e.Data["to"].(string); ok && e.Type == EventPhaseChanged {
		return to
	}
	phase, _ := e.Data["phase"].(string)
	return phase
}

// EventFilter selects events on Read. Zero fields match everything.
type EventFilter struct {
	Since *time.Time
	Until *time.Time
	// Types matches any of the listed event types.
	Types []string
	Level string
	Root  string
	// Phase matches Event.Phase, or the "from" phase of a phase change.
	Phase string
}

func (f EventFilter) matches(e Event) bool {
	switch {
	case f.Since != nil && e.Time.Before(*f.Since):
		return false
	case f.Until != nil && e.Time.After(*f.Until):
		return false
	case len(f.Types) > 0 && !slices.Contains(f.Types, e.Type):
		return false
	case f.Level != "" && e.Level != f.Level:
		return false
	case f.Root != "" && e.Root != f.Root:
		return false
	}
	if f.Phase != "" && e.Phase() != f.Phase {
		from, _ := e.Data["from"].(string)
		return e.Type == EventPhaseChanged && from == f.Phase
	}
	return true
}

// EventLog appends phase events and reads them back.
type EventLog interface {
	Write(event Event) error
	Read(filter EventFilter) ([]Event, error)
	Close() error
}

// jsonlEventLog is an EventLog over an append-only JSONL file shared by
// every project the user scans.
type jsonlEventLog struct {
	path string
	now  func() time.Time

	mu   sync.Mutex
	file *os.File
}

// NewJSONLEventLog opens (or creates) the JSONL event log at path,
// creating its directory if needed.
func NewJSONLEventLog(path string) (EventLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating event log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening event log: %w", err)
	}
	return &jsonlEventLog{
		path: path,
		now:  func() time.Time { return time.Now().UTC() },
		file: f,
	}, nil
}

// Write appends event as one line. Each line goes out in a single write on
// an O_APPEND descriptor, so a watcher and a checkpoint run can share the
// file. Events without a type are rejected; a zero time is stamped now.
func (l *jsonlEventLog) Write(event Event) error {
	if event.Type == "" {
		return errors.New("writing event: missing type")
	}
	if event.Time.IsZero() {
		event.Time = l.now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	data = append(data, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return errors.New("writing event: log closed")
	}
	if _, err := l.file.Write(data); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}
	return nil
}

// Read returns the events matching filter in write order. A missing file
// reads as empty.
func (l *jsonlEventLog) Read(filter EventFilter) ([]Event, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening event log for reading: %w", err)
	}
	defer func() { _ = f.Close() }()

	events, err := decodeEvents(f, filter.matches)
	if err != nil {
		return nil, fmt.Errorf("reading event log: %w", err)
	}
	return events, nil
}

func (l *jsonlEventLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	if err != nil {
		return fmt.Errorf("closing event log: %w", err)
	}
	return nil
}

// decodeEvents reads JSONL events from r, keeping those for which keep
// returns true. Blank and malformed lines are skipped.
func decodeEvents(r io.Reader, keep func(Event) bool) ([]Event, error) {
	var events []Event
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			continue
		}
		if keep(event) {
			events = append(events, event)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
