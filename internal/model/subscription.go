package model

import "time"

// Subscription holds one subscriber's preferences for one product.
// (ProductID, Email) is the composite key.
type Subscription struct {
	ProductID        string    `json:"productId"`
	Email            string    `json:"email"`
	ProductName      string    `json:"productName"`
	NotifyOnIncrease bool      `json:"notifyOnIncrease"`
	NotifyOnDecrease bool      `json:"notifyOnDecrease"`
	SubscribedAt     time.Time `json:"subscribedAt"`
}

// Wants reports whether the subscriber asked to hear about this direction.
func (s Subscription) Wants(alertType AlertType) bool {
	switch alertType {
	case AlertTypeIncrease:
		return s.NotifyOnIncrease
	case AlertTypeDecrease:
		return s.NotifyOnDecrease
	default:
		return false
	}
}
