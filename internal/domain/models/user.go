package models

import (
	"time"
)

type UserTier string

const (
	TierFree UserTier = "free"
	TierPro  UserTier = "pro"
)

// TierLimits controls quota for a tier. DailyLimit of UnlimitedGenerations
// means no daily cap.
type TierLimits struct {
	DailyLimit   int64 `json:"dailyLimit"`
	MaxPlatforms int   `json:"maxPlatforms"`
}

const UnlimitedGenerations int64 = -1

var TierLimitsByTier = map[UserTier]TierLimits{
	TierFree: {DailyLimit: 5, MaxPlatforms: 3},
	TierPro:  {DailyLimit: UnlimitedGenerations, MaxPlatforms: 5},
}

func LimitsForTier(tier UserTier) TierLimits {
	if limits, ok := TierLimitsByTier[tier]; ok {
		return limits
	}
	return TierLimitsByTier[TierFree]
}

// User mirrors the profile handed to us by the identity provider on first
// sign-in. ID is the provider's subject claim.
type User struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Name      *string   `json:"name" db:"name"`
	AvatarURL *string   `json:"avatar_url" db:"avatar_url"`
	Tier      UserTier  `json:"tier" db:"tier"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
