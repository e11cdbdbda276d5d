package models

import (
	"time"

	"github.com/lib/pq"
)

type Post struct {
	ID             uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt      time.Time      `gorm:"index" json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	UserID         uint           `gorm:"not null;index" json:"userId"`
	User           *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Title          string         `gorm:"not null" json:"title"`
	Description    string         `gorm:"type:text;not null" json:"description"`
	Price          float64        `gorm:"not null" json:"price"`
	BedCount       int            `gorm:"not null;default:0" json:"bedCount"`
	BathCount      int            `gorm:"not null;default:0" json:"bathCount"`
	NumberOfSpots  int            `gorm:"not null;default:0" json:"numberOfSpots"`
	StartDateRange time.Time      `gorm:"not null" json:"startDateRange"`
	EndDateRange   time.Time      `gorm:"not null" json:"endDateRange"`
	City           string         `gorm:"not null" json:"city"`
	State          string         `gorm:"not null" json:"state"`
	Zip            string         `gorm:"not null;type:varchar(10)" json:"zip"`
	Photos         pq.StringArray `gorm:"type:text[]" json:"photos"`
	Active         bool           `gorm:"not null;default:true;index" json:"active"`
	Approved       bool           `gorm:"not null;default:false;index" json:"approved"`
	ApprovedByID   *uint          `json:"approvedById,omitempty"`
	ApprovedBy     *AdminUser     `gorm:"foreignKey:ApprovedByID" json:"approvedBy,omitempty"`
	ApprovedAt     *time.Time     `json:"approvedAt"`
}

// Visible reports whether the post belongs in public listings.
func (p *Post) Visible() bool {
	return p.Approved && p.Active
}
