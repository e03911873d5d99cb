package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of event
type EventType string

const (
	EventStageStart     EventType = "stage_start"
	EventStageSkip      EventType = "stage_skip"
	EventStageOverwrite EventType = "stage_overwrite"
	EventStagePublish   EventType = "stage_publish"
	EventDownload       EventType = "download"
	EventError          EventType = "error"
)

// EventLevel represents the severity level
type EventLevel string

const (
	LevelDebug   EventLevel = "debug"
	LevelInfo    EventLevel = "info"
	LevelWarning EventLevel = "warning"
	LevelError   EventLevel = "error"
)

// levelPriority maps event levels to numeric priorities for comparison
var levelPriority = map[EventLevel]int{
	LevelDebug:   0,
	LevelInfo:    1,
	LevelWarning: 2,
	LevelError:   3,
}

// ParseLevel parses a level name, defaulting to info
func ParseLevel(s string) EventLevel {
	level := EventLevel(s)
	if _, ok := levelPriority[level]; ok {
		return level
	}
	return LevelInfo
}

// Event represents a single event of a pipeline run
type Event struct {
	Timestamp time.Time         `json:"ts"`
	Level     EventLevel        `json:"level"`
	Event     EventType         `json:"event"`
	RunID     string            `json:"run_id"`
	Dataset   string            `json:"dataset,omitempty"`
	Kind      string            `json:"kind,omitempty"`
	Stage     string            `json:"stage,omitempty"`
	Source    string            `json:"source,omitempty"`
	Operation string            `json:"operation,omitempty"`
	Entries   int               `json:"entries,omitempty"`
	Duration  int64             `json:"duration_ms,omitempty"` // in milliseconds
	Error     string            `json:"error,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// EventLogger writes events to a JSONL file. Every event carries the run id
// of the logger.
type EventLogger struct {
	file     *os.File
	encoder  *json.Encoder
	mu       sync.Mutex
	path     string
	runID    string
	minLevel EventLevel
}

// NewEventLogger creates a new event logger with a minimum log level
// minLevel determines which events are written (e.g., LevelInfo skips LevelDebug)
func NewEventLogger(outputDir string, minLevel EventLevel) (*EventLogger, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	runID := uuid.NewString()
	timestamp := time.Now().Format("20060102-150405")
	filename := fmt.Sprintf("events-%s-%s.jsonl", timestamp, runID[:8])
	path := filepath.Join(outputDir, filename)

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create event log: %w", err)
	}

	return &EventLogger{
		file:     file,
		encoder:  json.NewEncoder(file),
		path:     path,
		runID:    runID,
		minLevel: minLevel,
	}, nil
}

// Log writes an event to the JSONL file
func (l *EventLogger) Log(event *Event) error {
	if l == nil || l.file == nil {
		return nil // Silently ignore if logger not initialized
	}

	if levelPriority[event.Level] < levelPriority[l.minLevel] {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.RunID = l.runID

	if err := l.encoder.Encode(event); err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	return nil
}

// LogStageStart logs the start of a producing operation
func (l *EventLogger) LogStageStart(dataset, kind, stage, operation, source string) error {
	return l.Log(&Event{
		Level:     LevelDebug,
		Event:     EventStageStart,
		Dataset:   dataset,
		Kind:      kind,
		Stage:     stage,
		Operation: operation,
		Source:    source,
	})
}

// LogStageSkip logs an operation whose destination already existed
func (l *EventLogger) LogStageSkip(dataset, kind, stage string) error {
	return l.Log(&Event{
		Level:   LevelInfo,
		Event:   EventStageSkip,
		Dataset: dataset,
		Kind:    kind,
		Stage:   stage,
	})
}

// LogStagePublish logs a published stage. Replacing an existing stage is
// logged as a warning.
func (l *EventLogger) LogStagePublish(dataset, kind, stage, operation string, entries int, duration time.Duration, replaced bool) error {
	event := EventStagePublish
	level := LevelInfo
	if replaced {
		event = EventStageOverwrite
		level = LevelWarning
	}

	return l.Log(&Event{
		Level:     level,
		Event:     event,
		Dataset:   dataset,
		Kind:      kind,
		Stage:     stage,
		Operation: operation,
		Entries:   entries,
		Duration:  duration.Milliseconds(),
	})
}

// LogDownload logs a corpus download
func (l *EventLogger) LogDownload(format, dir string, duration time.Duration, err error) error {
	level := LevelInfo
	errMsg := ""
	if err != nil {
		level = LevelError
		errMsg = err.Error()
	}

	return l.Log(&Event{
		Level:    level,
		Event:    EventDownload,
		Source:   dir,
		Duration: duration.Milliseconds(),
		Error:    errMsg,
		Extra: map[string]string{
			"format": format,
		},
	})
}

// LogError logs a failed operation
func (l *EventLogger) LogError(dataset, kind, stage string, err error) error {
	return l.Log(&Event{
		Level:   LevelError,
		Event:   EventError,
		Dataset: dataset,
		Kind:    kind,
		Stage:   stage,
		Error:   err.Error(),
	})
}

// Close closes the event log file
func (l *EventLogger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.file.Close()
}

// Path returns the path to the event log file
func (l *EventLogger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// RunID returns the id shared by all events of this logger
func (l *EventLogger) RunID() string {
	if l == nil {
		return ""
	}
	return l.runID
}

// NullLogger returns a no-op event logger
func NullLogger() *EventLogger {
	return nil
}
