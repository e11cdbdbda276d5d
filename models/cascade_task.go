package models

import "time"

const (
	CascadeCloseReports  = "close_reports"
	CascadeDeleteReports = "delete_reports"
)

// CascadeTask marks a multi-table side effect that has been committed to but
// not yet fully applied. Rows with a nil CompletedAt are retried.
type CascadeTask struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Kind        string     `gorm:"not null;type:varchar(20)" json:"kind"`
	PostID      uint       `gorm:"not null;index" json:"postId"`
	HandledByID *uint      `json:"handledById,omitempty"`
	HandledAt   *time.Time `json:"handledAt,omitempty"`
	Attempts    int        `gorm:"not null;default:0" json:"attempts"`
	LastError   string     `gorm:"type:text" json:"lastError,omitempty"`
	CompletedAt *time.Time `gorm:"index" json:"completedAt,omitempty"`
}
