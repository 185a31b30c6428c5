package models

import "time"

// Worker marks a provisioned record collection in the SQL backends
type Worker struct {
	Username  string    `gorm:"primaryKey;size:191" json:"username"`
	CreatedAt time.Time `json:"created_at"`
}
