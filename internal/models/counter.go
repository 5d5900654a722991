package models

import "time"

// Counter is a named monotonic sequence. Rows are never reset or deleted.
type Counter struct {
	SequenceName  string    `gorm:"primaryKey;size:100" json:"sequenceName"`
	SequenceValue int64     `gorm:"not null" json:"sequence_value"`
	UpdatedAt     time.Time `json:"updated_at"`
}
