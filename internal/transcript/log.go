package transcript

import (
	"sync"
	"time"

	"github.com/maheshsundaram/gemini-voice-input/internal/domain"
)

// Log is the append-only transcript history. Entries are never reordered
// or deleted; they are appended in the order their transcription calls
// resolve.
type Log struct {
	mu      sync.Mutex
	entries []domain.TranscriptEntry
}

func NewLog() *Log {
	return &Log{}
}

// Append records one transcription result with the current local
// timestamp. Empty text is dropped without error so blank results never
// pollute the log. Reports whether an entry was added.
func (l *Log) Append(text string) bool {
	if text == "" {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, domain.TranscriptEntry{
		Timestamp: time.Now(),
		Text:      text,
	})
	return true
}

// Entries returns a copy of the log, newest last.
func (l *Log) Entries() []domain.TranscriptEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := make([]domain.TranscriptEntry, len(l.entries))
	copy(entries, l.entries)
	return entries
}

// Len reports the number of entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
