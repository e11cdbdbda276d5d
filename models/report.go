package models

import (
	"time"
)

const (
	ReportStatusPending  = "pending"
	ReportStatusApproved = "approved"
	ReportStatusRejected = "rejected"
)

type Report struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt   time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	UserID      uint       `gorm:"not null;uniqueIndex:idx_report_user_post" json:"userId"`
	User        *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	PostID      uint       `gorm:"not null;index;uniqueIndex:idx_report_user_post" json:"postId"`
	Post        *Post      `gorm:"foreignKey:PostID" json:"post,omitempty"`
	Reason      string     `gorm:"not null" json:"reason"`
	Content     string     `gorm:"type:text" json:"content"`
	Status      string     `gorm:"not null;default:'pending';type:varchar(10);index" json:"status"`
	HandledByID *uint      `json:"handledById,omitempty"`
	HandledBy   *AdminUser `gorm:"foreignKey:HandledByID" json:"handledBy,omitempty"`
	HandledAt   *time.Time `json:"handledAt"`
}

func ValidReportDecision(status string) bool {
	return status == ReportStatusApproved || status == ReportStatusRejected
}
