// Package observability provides the diagnostic event log. Hook
// invocations must stay silent on failure, so the JSONL log is the only
// place activation decisions and swallowed errors are visible.
package observability

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// DefaultMaxLogSize is the rotation threshold for the event log file.
const DefaultMaxLogSize = 5 * 1024 * 1024

// Event represents a single observable event in the system.
type Event struct {
	Time    time.Time      `json:"time"`
	Level   string         `json:"level"` // INFO, WARN, ERROR
	Type    string         `json:"type"`  // e.g. "hook.prompt_submit", "activator.silent_failure"
	Message string         `json:"msg"`
	Data    map[string]any `json:"data,omitempty"`
}

// EventFilter specifies criteria for reading events.
type EventFilter struct {
	Since *time.Time
	Until *time.Time
	Type  string
	Level string
}

// EventLog defines the interface for writing and reading events.
type EventLog interface {
	Write(event Event) error
	Read(filter EventFilter) ([]Event, error)
	Close() error
}

// jsonlEventLog implements EventLog using append-only JSONL files with
// size-based rotation: when the file exceeds maxSize it is renamed to
// <path>.1 (replacing any previous rotation) and a fresh file opened.
type jsonlEventLog struct {
	path    string
	maxSize int64
	file    *os.File
	mu      sync.Mutex
}

// NewJSONLEventLog creates a new EventLog backed by a JSONL file at the
// given path, rotating at DefaultMaxLogSize.
func NewJSONLEventLog(path string) (EventLog, error) {
	return NewJSONLEventLogWithMaxSize(path, DefaultMaxLogSize)
}

// NewJSONLEventLogWithMaxSize creates an EventLog with an explicit
// rotation threshold. maxSize <= 0 disables rotation.
func NewJSONLEventLogWithMaxSize(path string, maxSize int64) (EventLog, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening event log: %w", err)
	}
	return &jsonlEventLog{
		path:    path,
		maxSize: maxSize,
		file:    f,
	}, nil
}

// Write appends a JSON-encoded event followed by a newline, rotating
// first when the file has grown past the threshold.
func (l *jsonlEventLog) Write(event Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshalling event: %w", err)
	}
	data = append(data, '\n')

	if err := l.rotateIfNeeded(int64(len(data))); err != nil {
		return err
	}
	if _, err := l.file.Write(data); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}
	return nil
}

// rotateIfNeeded is called with the mutex held.
func (l *jsonlEventLog) rotateIfNeeded(incoming int64) error {
	if l.maxSize <= 0 {
		return nil
	}
	info, err := l.file.Stat()
	if err != nil {
		return fmt.Errorf("statting event log: %w", err)
	}
	if info.Size()+incoming <= l.maxSize {
		return nil
	}
	if err := l.file.Close(); err != nil {
		return fmt.Errorf("closing event log for rotation: %w", err)
	}
	if err := os.Rename(l.path, l.path+".1"); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("rotating event log: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("reopening event log: %w", err)
	}
	l.file = f
	return nil
}

// Read opens the log file for reading, scans line by line, decodes each
// event, and returns those matching the given filter.
func (l *jsonlEventLog) Read(filter EventFilter) ([]Event, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening event log for reading: %w", err)
	}
	defer func() { _ = f.Close() }()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			continue // skip malformed lines
		}

		if matchesEventFilter(event, filter) {
			events = append(events, event)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning event log: %w", err)
	}

	return events, nil
}

// Close closes the underlying log file.
func (l *jsonlEventLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.file.Close(); err != nil {
		return fmt.Errorf("closing event log: %w", err)
	}
	return nil
}

// matchesEventFilter checks whether an event satisfies all filter criteria.
func matchesEventFilter(event Event, filter EventFilter) bool {
	if filter.Since != nil && event.Time.Before(*filter.Since) {
		return false
	}
	if filter.Until != nil && event.Time.After(*filter.Until) {
		return false
	}
	if filter.Type != "" && event.Type != filter.Type {
		return false
	}
	if filter.Level != "" && event.Level != filter.Level {
		return false
	}
	return true
}
