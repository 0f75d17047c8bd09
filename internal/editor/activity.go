package editor

import "time"

const activityMaxEntries = 60

// Severity tags an activity entry for display.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarn
	SevError
)

// ActivityEntry is one line in the activity log.
type ActivityEntry struct {
	At       time.Time
	Source   string // e.g. "tool", "route", "sim", "assistant"
	Severity Severity
	Message  string
}

// ActivityLog is a fixed-capacity ring buffer of recent operator-visible
// events, rendered by the editor panel.
type ActivityLog struct {
	entries []ActivityEntry
	head    int
	count   int
}

// NewActivityLog creates an empty log.
func NewActivityLog() *ActivityLog {
	return &ActivityLog{entries: make([]ActivityEntry, activityMaxEntries)}
}

// Add appends an entry, evicting the oldest when full.
func (l *ActivityLog) Add(source string, sev Severity, msg string) {
	l.entries[l.head] = ActivityEntry{At: time.Now(), Source: source, Severity: sev, Message: msg}
	l.head = (l.head + 1) % activityMaxEntries
	if l.count < activityMaxEntries {
		l.count++
	}
}

// Len returns the number of retained entries.
func (l *ActivityLog) Len() int { return l.count }

// Recent returns entries oldest first.
func (l *ActivityLog) Recent() []ActivityEntry {
	out := make([]ActivityEntry, l.count)
	for i := 0; i < l.count; i++ {
		out[i] = l.entries[(l.head-l.count+i+activityMaxEntries)%activityMaxEntries]
	}
	return out
}

// Last returns the newest entry.
func (l *ActivityLog) Last() (ActivityEntry, bool) {
	if l.count == 0 {
		return ActivityEntry{}, false
	}
	return l.entries[(l.head-1+activityMaxEntries)%activityMaxEntries], true
}
