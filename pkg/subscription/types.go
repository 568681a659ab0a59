package subscription

import "time"

// Tier is the entitlement level derived from a user's subscription record.
// It is never persisted.
type Tier string

const (
	TierFree Tier = "free"
	TierPro  Tier = "pro"
)

// String implements fmt.Stringer.
func (t Tier) String() string {
	return string(t)
}

// Valid reports whether t is one of the known tiers.
func (t Tier) Valid() bool {
	return t == TierFree || t == TierPro
}

// Unlimited marks a resource limit without an upper bound (-1 chosen for SQL compatibility).
const Unlimited int64 = -1

// Status is the billing provider's subscription status.
type Status string

const (
	StatusActive            Status = "active"
	StatusTrialing          Status = "trialing"
	StatusPastDue           Status = "past_due"
	StatusCanceled          Status = "canceled"
	StatusUnpaid            Status = "unpaid"
	StatusIncomplete        Status = "incomplete"
	StatusIncompleteExpired Status = "incomplete_expired"
	StatusPaused            Status = "paused"
)

// Entitling reports whether a subscription in this status keeps a stored record.
// Past-due subscriptions stay entitled until the provider gives up on them.
func (s Status) Entitling() bool {
	switch s {
	case StatusActive, StatusTrialing, StatusPastDue:
		return true
	default:
		return false
	}
}

// Record is the stored subscription state for one user.
// UserID is the primary key; CustomerID is a lookup index for deletes.
type Record struct {
	UserID            string
	SubscriptionID    string
	CustomerID        string
	PriceID           string
	CurrentPeriodEnd  time.Time
	CancelAtPeriodEnd bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ExpiredAt reports whether the paid period has lapsed at the given moment.
func (r *Record) ExpiredAt(now time.Time) bool {
	return r.CurrentPeriodEnd.Before(now)
}

// Entitlements is a resolved snapshot of what a tier allows.
// It is what the interactive side caches and what handlers render.
type Entitlements struct {
	Tier                 Tier  `json:"tier"`
	CanUseAI             bool  `json:"canUseAI"`
	CanUseCustomizations bool  `json:"canUseCustomizations"`
	ResumeLimit          int64 `json:"resumeLimit"`
}

// EntitlementsFor builds the snapshot for a tier.
func EntitlementsFor(tier Tier) Entitlements {
	return Entitlements{
		Tier:                 tier,
		CanUseAI:             CanUseAITools(tier),
		CanUseCustomizations: CanUseCustomizations(tier),
		ResumeLimit:          ResumeLimit(tier),
	}
}
