package dto

import (
	"time"

	"shopping.app/pricewatch/internal/model"
)

// SubscribeRequest leaves the notify flags as pointers so an omitted flag
// takes the product default: decreases on, increases off.
type SubscribeRequest struct {
	ProductID        string `json:"productId"`
	ProductName      string `json:"productName" binding:"max=255"`
	Email            string `json:"email" binding:"max=320"`
	NotifyOnIncrease *bool  `json:"notifyOnIncrease,omitempty"`
	NotifyOnDecrease *bool  `json:"notifyOnDecrease,omitempty"`
}

func (r SubscribeRequest) ToModel() model.Subscription {
	sub := model.Subscription{
		ProductID:        r.ProductID,
		ProductName:      r.ProductName,
		Email:            r.Email,
		NotifyOnIncrease: false,
		NotifyOnDecrease: true,
	}
	if r.NotifyOnIncrease != nil {
		sub.NotifyOnIncrease = *r.NotifyOnIncrease
	}
	if r.NotifyOnDecrease != nil {
		sub.NotifyOnDecrease = *r.NotifyOnDecrease
	}
	return sub
}

type SubscribeResponse struct {
	Message     string `json:"message"`
	Email       string `json:"email"`
	ProductName string `json:"productName"`
}

type UnsubscribeQuery struct {
	Email     string `form:"email"`
	ProductID string `form:"productId"`
}

type SubscriptionResponse struct {
	ProductID        string    `json:"productId"`
	Email            string    `json:"email"`
	ProductName      string    `json:"productName"`
	NotifyOnIncrease bool      `json:"notifyOnIncrease"`
	NotifyOnDecrease bool      `json:"notifyOnDecrease"`
	SubscribedAt     time.Time `json:"subscribedAt"`
}

type ListSubscriptionsResponse struct {
	ProductID     string                 `json:"productId"`
	Subscriptions []SubscriptionResponse `json:"subscriptions"`
}

func ToSubscriptionResponse(s model.Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		ProductID:        s.ProductID,
		Email:            s.Email,
		ProductName:      s.ProductName,
		NotifyOnIncrease: s.NotifyOnIncrease,
		NotifyOnDecrease: s.NotifyOnDecrease,
		SubscribedAt:     s.SubscribedAt,
	}
}
