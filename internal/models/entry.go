package models

import (
	"time"
)

// LogEntry is one row of the completion log. Entries are never rewritten;
// an edit appends a new entry with the same ID.
type LogEntry struct {
	ID             int64
	Username       string
	MainCategory   string
	SubCategory    string
	StartTime      *time.Time
	EndTime        *time.Time
	ElapsedSeconds float64
	Quantity       int
	Note           string
}

// EntryFromRecord builds the log entry for a stopped record
func EntryFromRecord(rec TaskRecord) LogEntry {
	entry := LogEntry{
		ID:           rec.ID,
		Username:     rec.Username,
		MainCategory: rec.MainCategory,
		SubCategory:  rec.SubCategory,
		Quantity:     rec.QuantityValue(),
		Note:         rec.Note,
	}
	start := rec.StartTime
	entry.StartTime = &start
	if rec.EndTime != nil {
		end := *rec.EndTime
		entry.EndTime = &end
		entry.ElapsedSeconds = end.Sub(start).Seconds()
	}
	return entry
}
