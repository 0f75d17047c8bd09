package sim

import (
	"fmt"
	"strings"
)

// Log categories.
const (
	CatContact = "contact"
	CatCombat  = "combat"
	CatMove    = "move"
	CatRoute   = "route"
	CatOutcome = "outcome"
)

// LogEntry is one recorded event.
type LogEntry struct {
	Tick     int     `json:"tick"`
	Agent    string  `json:"agent"` // "A0", "D3", or "--" for global events
	Category string  `json:"category"`
	Key      string  `json:"key"`
	Value    string  `json:"value"`
	NumVal   float64 `json:"num,omitempty"`
}

// String formats the entry as a fixed-width log line.
//
//	[T=042] A0   combat    kill             D1 at (4,7)
func (e LogEntry) String() string {
	return fmt.Sprintf("[T=%03d] %-4s %-9s %-16s %s", e.Tick, e.Agent, e.Category, e.Key, e.Value)
}

// Log is an unbounded, machine-readable record of a run.
type Log struct {
	entries []LogEntry
	verbose bool
}

// NewLog creates a Log. Verbose logs also record every step taken.
func NewLog(verbose bool) *Log {
	return &Log{verbose: verbose}
}

// Add records an entry.
func (l *Log) Add(tick int, agent, category, key, value string, num float64) {
	l.entries = append(l.entries, LogEntry{
		Tick:     tick,
		Agent:    agent,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   num,
	})
}

// AddVerbose records an entry only in verbose mode.
func (l *Log) AddVerbose(tick int, agent, category, key, value string, num float64) {
	if l.verbose {
		l.Add(tick, agent, category, key, value, num)
	}
}

// Entries returns every recorded entry.
func (l *Log) Entries() []LogEntry { return l.entries }

// Filter returns entries matching category and key; "" matches anything.
func (l *Log) Filter(category, key string) []LogEntry {
	var out []LogEntry
	for _, e := range l.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Count returns how many entries match category and key.
func (l *Log) Count(category, key string) int {
	return len(l.Filter(category, key))
}

// FilterAgent returns entries for one agent label.
func (l *Log) FilterAgent(label string) []LogEntry {
	var out []LogEntry
	for _, e := range l.entries {
		if e.Agent == label {
			out = append(out, e)
		}
	}
	return out
}

// Format returns the whole log, one entry per line.
func (l *Log) Format() string {
	var sb strings.Builder
	for _, e := range l.entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
