package toolrouter

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// ToolStatus is the outcome of one tool invocation.
type ToolStatus string

const (
	StatusPending ToolStatus = "pending"
	StatusOK      ToolStatus = "ok"
	StatusError   ToolStatus = "error"
)

// TraceEvent records one tool invocation for observability. It is created
// per call, handed to the trace sink, and discarded; it is never persisted
// as plan state.
type TraceEvent struct {
	Tool        string     `json:"tool"`
	Status      ToolStatus `json:"status"`
	LatencyMS   float64    `json:"latency_ms"`
	PayloadHash string     `json:"payload_hash"`
	Error       string     `json:"error,omitempty"`
	Timestamp   time.Time  `json:"timestamp"`
}

// Fingerprint returns a short content-derived hash of a payload, used for
// log correlation and deduplication, not caching. json.Marshal emits map
// keys in sorted order, so equal payloads hash equally.
func Fingerprint(payload map[string]any) string {
	data, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:16]
}
