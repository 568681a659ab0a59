package tiercache

import (
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/resumekit/pkg/subscription"
)

// Snapshot is a point-in-time copy of the caller's entitlements.
type Snapshot struct {
	Tier                 subscription.Tier `json:"tier"`
	CanUseAI             bool              `json:"canUseAI"`
	CanUseCustomizations bool              `json:"canUseCustomizations"`
	ResumeLimit          int64             `json:"resumeLimit"`
	FetchedAt            time.Time         `json:"-"`
}

// FromEntitlements wraps a server-side snapshot.
func FromEntitlements(e subscription.Entitlements, at time.Time) Snapshot {
	return Snapshot{
		Tier:                 e.Tier,
		CanUseAI:             e.CanUseAI,
		CanUseCustomizations: e.CanUseCustomizations,
		ResumeLimit:          e.ResumeLimit,
		FetchedAt:            at,
	}
}

// Free is the snapshot used before anything was fetched.
func Free() Snapshot {
	return FromEntitlements(subscription.EntitlementsFor(subscription.TierFree), time.Time{})
}

// AllowsAI is an Attempt predicate for AI drafting.
func AllowsAI(s Snapshot) bool { return s.CanUseAI }

// AllowsCustomizations is an Attempt predicate for restyling.
func AllowsCustomizations(s Snapshot) bool { return s.CanUseCustomizations }

// AllowsResume returns an Attempt predicate for creating one more résumé.
func AllowsResume(currentCount int64) func(Snapshot) bool {
	return func(s Snapshot) bool {
		return subscription.CanCreateResume(s.Tier, currentCount)
	}
}

// Cache holds a single Snapshot. Safe for concurrent use.
type Cache struct {
	v atomic.Pointer[Snapshot]
}

// NewCache returns a cache seeded with the given snapshot, or Free when none.
func NewCache(initial ...Snapshot) *Cache {
	c := &Cache{}
	s := Free()
	if len(initial) > 0 {
		s = initial[0]
	}
	c.v.Store(&s)
	return c
}

// Load returns the current snapshot.
func (c *Cache) Load() Snapshot {
	return *c.v.Load()
}

// Store replaces the snapshot.
func (c *Cache) Store(s Snapshot) {
	c.v.Store(&s)
}

// Invalidate drops back to Free until the next Store.
func (c *Cache) Invalidate() {
	c.Store(Free())
}
