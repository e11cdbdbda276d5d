package services

import (
	"time"

	"github.com/spotlist/api-go/models"
)

const (
	SubscriptionActive   = "active"
	SubscriptionInactive = "inactive"
)

// ResolveSubscriptionStatus labels a user active when any record is active
// and ends strictly after now.
func ResolveSubscriptionStatus(records []models.PaymentSubscription, now time.Time) string {
	for _, s := range records {
		if s.Status == SubscriptionActive && s.EndDate.After(now) {
			return SubscriptionActive
		}
	}
	return SubscriptionInactive
}
