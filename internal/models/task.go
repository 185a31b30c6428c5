package models

import (
	"time"
)

// Status is the lifecycle state of a task record
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// TaskRecord represents one timed unit of work for a worker
type TaskRecord struct {
	ID       int64  `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Username string `gorm:"primaryKey;size:191" json:"username"`

	MainCategory string     `gorm:"not null" json:"mainCategory"`
	SubCategory  string     `gorm:"not null" json:"subCategory"`
	StartTime    time.Time  `gorm:"not null" json:"startTime"`
	EndTime      *time.Time `json:"endTime"`
	Quantity     *int       `json:"quantity"`
	Note         string     `json:"note,omitempty"`
	Status       Status     `gorm:"default:pending;index" json:"status"`
}

// TableName keeps the table name stable regardless of gorm naming strategy
func (TaskRecord) TableName() string {
	return "task_records"
}

// State returns the record status, treating a missing status as pending
func (t TaskRecord) State() Status {
	if t.Status == StatusCompleted {
		return StatusCompleted
	}
	return StatusPending
}

// IsCompleted reports whether the record reached the completed state
func (t TaskRecord) IsCompleted() bool {
	return t.State() == StatusCompleted
}

// IsStopped reports whether an end time has been recorded
func (t TaskRecord) IsStopped() bool {
	return t.EndTime != nil
}

// Elapsed returns end - start, or false while the task is still running
func (t TaskRecord) Elapsed() (time.Duration, bool) {
	if t.EndTime == nil {
		return 0, false
	}
	return t.EndTime.Sub(t.StartTime), true
}

// QuantityValue returns the quantity or 0 when absent
func (t TaskRecord) QuantityValue() int {
	if t.Quantity == nil {
		return 0
	}
	return *t.Quantity
}
