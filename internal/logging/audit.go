package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// AuditEvent is one recorded search-layer action, appended as a JSON line
// so an operator can reconstruct who searched what and when.
type AuditEvent struct {
	Time    time.Time      `json:"time"`
	Action  string         `json:"action"`
	Details map[string]any `json:"details,omitempty"`
}

// AuditTrail appends events to audit.jsonl under the output directory.
// Safe for concurrent use. A nil trail silently discards events, so
// callers never need to branch on whether auditing is enabled.
type AuditTrail struct {
	mu  sync.Mutex
	f   *os.File
	enc *json.Encoder
}

// OpenAuditTrail opens (or creates) the append-only audit file under dir.
func OpenAuditTrail(dir string) (*AuditTrail, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create audit directory %s: %w", dir, err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "audit.jsonl"),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open audit trail: %w", err)
	}
	return &AuditTrail{f: f, enc: json.NewEncoder(f)}, nil
}

// Record appends one event. Write failures are swallowed: auditing must
// never take a search down with it.
func (a *AuditTrail) Record(action string, details map[string]any) {
	if a == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	_ = a.enc.Encode(AuditEvent{Time: time.Now().UTC(), Action: action, Details: details})
}

// Close flushes and closes the audit file.
func (a *AuditTrail) Close() error {
	if a == nil {
		return nil
	}
	return a.f.Close()
}
