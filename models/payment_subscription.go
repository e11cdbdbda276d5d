package models

import "time"

// PaymentSubscription mirrors the billing provider's subscription state.
// It is written by the billing integration and only read here.
type PaymentSubscription struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	UserID         uint      `gorm:"not null;index" json:"userId"`
	SubscriptionID string    `gorm:"type:varchar(255)" json:"subscriptionId"`
	Status         string    `gorm:"not null;type:varchar(20)" json:"status"`
	EndDate        time.Time `json:"endDate"`
}
