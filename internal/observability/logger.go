package observability

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// EventType defines the category of the log event.
type EventType string

const (
	EventTypeToolCall   EventType = "tool_call"
	EventTypeToolResult EventType = "tool_result"
	EventTypeTrace      EventType = "trace"
	EventTypePlan       EventType = "plan"
	EventTypeStep       EventType = "step"
	EventTypeExport     EventType = "export"
	EventTypeLLM        EventType = "llm"
	EventTypeHeartbeat  EventType = "heartbeat"
)

// Event represents a structured log entry.
type Event struct {
	Type           EventType `json:"type"`
	ConversationID string    `json:"conversation_id,omitempty"`
	PlanID         string    `json:"plan_id,omitempty"`
	Data           any       `json:"data"`
	Timestamp      time.Time `json:"timestamp"`
}

// Logger handles structured logging.
type Logger struct {
	llmLogPath string
	maxSize    int64
}

func NewLogger() *Logger {
	return &Logger{
		llmLogPath: filepath.Join("logs", "llm.jsonl"),
		maxSize:    10 * 1024 * 1024, // 10MB
	}
}

// Log emits a structured JSON event to stdout.
func (l *Logger) Log(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	data, err := json.Marshal(evt)
	if err != nil {
		fmt.Printf("{\"error\": \"failed to marshal event: %v\"}\n", err)
		return
	}
	fmt.Println(string(data))

	if evt.Type == EventTypeLLM {
		l.writeToFile(data)
	}
}

func (l *Logger) writeToFile(data []byte) {
	if err := os.MkdirAll(filepath.Dir(l.llmLogPath), 0755); err != nil {
		log.Printf("failed to create log directory: %v", err)
		return
	}

	// Check size before writing
	info, err := os.Stat(l.llmLogPath)
	if err == nil && info.Size() > l.maxSize {
		l.rotateLogs()
	}

	f, err := os.OpenFile(l.llmLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("failed to open log file: %v", err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		log.Printf("failed to write to log file: %v", err)
	}
}

func (l *Logger) rotateLogs() {
	// Simple rotation: keep one .old file
	oldPath := l.llmLogPath + ".old"
	_ = os.Remove(oldPath)
	_ = os.Rename(l.llmLogPath, oldPath)
}

// Helper methods for common events

// LogTrace records one tool invocation's outcome. The trace is logged and
// discarded here; it is never part of plan state.
func (l *Logger) LogTrace(conversationID string, trace any) {
	l.Log(Event{
		Type:           EventTypeTrace,
		ConversationID: conversationID,
		Data:           trace,
	})
}

func (l *Logger) LogToolCall(conversationID, tool, args string) {
	l.Log(Event{
		Type:           EventTypeToolCall,
		ConversationID: conversationID,
		Data: map[string]string{
			"tool": tool,
			"args": args,
		},
	})
}

func (l *Logger) LogPlan(planID, status string, total float64, steps int) {
	l.Log(Event{
		Type:   EventTypePlan,
		PlanID: planID,
		Data: map[string]any{
			"status":              status,
			"estimated_total_usd": total,
			"step_count":          steps,
		},
	})
}

func (l *Logger) LogStep(planID, stepID, title, status string) {
	l.Log(Event{
		Type:   EventTypeStep,
		PlanID: planID,
		Data: map[string]string{
			"step_id": stepID,
			"title":   title,
			"status":  status,
		},
	})
}

func (l *Logger) LogExport(planID string, created, failed int) {
	l.Log(Event{
		Type:   EventTypeExport,
		PlanID: planID,
		Data: map[string]int{
			"created": created,
			"failed":  failed,
		},
	})
}

func (l *Logger) LogHeartbeat() {
	l.Log(Event{
		Type: EventTypeHeartbeat,
		Data: map[string]string{"status": "alive"},
	})
}

func (l *Logger) LogLLM(conversationID string, round int, response string, toolCalls any) {
	l.Log(Event{
		Type:           EventTypeLLM,
		ConversationID: conversationID,
		Data: map[string]any{
			"round":      round,
			"response":   response,
			"tool_calls": toolCalls,
		},
	})
}
