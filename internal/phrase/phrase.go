// Package phrase defines the recognizer phrase-event types consumed by the
// dispatch cycle. Events are produced by the external engine and discarded
// once their cycle completes.
package phrase

import (
	"strings"
	"time"
)

// Meaning is one semantic key with its recognized values, in recognizer order.
type Meaning struct {
	Key    string   `json:"key"`
	Values []string `json:"values"`
}

// Event is one phrase-recognition result surfaced by the engine.
type Event struct {
	Confidence float64   `json:"confidence"`
	Text       string    `json:"text"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
	Meanings   []Meaning `json:"meanings"`
}

// Duration returns the phrase duration as a time.Duration.
func (e Event) Duration() time.Duration {
	return time.Duration(e.DurationMS) * time.Millisecond
}

// CleanText normalizes recognized utterance whitespace for logs and output.
func CleanText(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	return strings.Join(strings.Fields(raw), " ")
}
