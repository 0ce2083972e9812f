package models

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionStatus string

const (
	StatusInactive SubscriptionStatus = "inactive"
	StatusActive   SubscriptionStatus = "active"
	StatusPastDue  SubscriptionStatus = "past_due"
	StatusCanceled SubscriptionStatus = "canceled"
)

type Subscription struct {
	ID                   uuid.UUID          `json:"id" db:"id"`
	UserID               string             `json:"user_id" db:"user_id"`
	StripeCustomerID     *string            `json:"stripe_customer_id" db:"stripe_customer_id"`
	StripeSubscriptionID *string            `json:"stripe_subscription_id" db:"stripe_subscription_id"`
	StripePriceID        *string            `json:"stripe_price_id" db:"stripe_price_id"`
	Tier                 UserTier           `json:"tier" db:"tier"`
	Status               SubscriptionStatus `json:"status" db:"status"`
	CurrentPeriodStart   *time.Time         `json:"current_period_start" db:"current_period_start"`
	CurrentPeriodEnd     *time.Time         `json:"current_period_end" db:"current_period_end"`
	CancelAtPeriodEnd    bool               `json:"cancel_at_period_end" db:"cancel_at_period_end"`
	CreatedAt            time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at" db:"updated_at"`
}

// IsPro reports whether the subscription currently grants pro-tier limits.
func (s *Subscription) IsPro() bool {
	return s != nil && s.Tier == TierPro && s.Status == StatusActive
}

// MapStripeStatus folds Stripe's subscription status vocabulary into ours.
func MapStripeStatus(stripeStatus string) SubscriptionStatus {
	switch stripeStatus {
	case "active", "trialing":
		return StatusActive
	case "past_due":
		return StatusPastDue
	case "canceled", "unpaid":
		return StatusCanceled
	default:
		return StatusInactive
	}
}
