package subscription

import (
	"context"
	"fmt"
)

// ResumeLimit returns how many resumes a tier may own.
func ResumeLimit(tier Tier) int64 {
	if tier == TierPro {
		return Unlimited
	}
	return 1
}

func CanUseAITools(tier Tier) bool {
	return tier == TierPro
}

func CanUseCustomizations(tier Tier) bool {
	return tier == TierPro
}

// CanCreateResume reports whether a user on tier, owning currentCount resumes, may create another.
func CanCreateResume(tier Tier, currentCount int64) bool {
	limit := ResumeLimit(tier)
	if limit == Unlimited {
		return true
	}
	return currentCount < limit
}

// Gate enforces tier restrictions for server-side mutations.
// Every check re-resolves the tier; client-held snapshots are never trusted here.
type Gate struct {
	resolver TierResolver
}

// NewGate creates a Gate over the given resolver.
func NewGate(resolver TierResolver) *Gate {
	if resolver == nil {
		panic("subscription: TierResolver is required")
	}
	return &Gate{resolver: resolver}
}

// Entitlements resolves the user's tier and returns the full snapshot.
func (g *Gate) Entitlements(ctx context.Context, userID string) (Entitlements, error) {
	tier, err := g.resolve(ctx, userID)
	if err != nil {
		return Entitlements{}, err
	}
	return EntitlementsFor(tier), nil
}

// RequireAITools fails with ErrEntitlementDenied unless the user may use AI drafting.
func (g *Gate) RequireAITools(ctx context.Context, userID string) (Tier, error) {
	tier, err := g.resolve(ctx, userID)
	if err != nil {
		return "", err
	}
	if !CanUseAITools(tier) {
		return tier, fmt.Errorf("%w: AI tools are not available on the %s tier", ErrEntitlementDenied, tier)
	}
	return tier, nil
}

// RequireCustomizations fails with ErrEntitlementDenied unless the user may change resume styling.
func (g *Gate) RequireCustomizations(ctx context.Context, userID string) (Tier, error) {
	tier, err := g.resolve(ctx, userID)
	if err != nil {
		return "", err
	}
	if !CanUseCustomizations(tier) {
		return tier, fmt.Errorf("%w: customizations are not available on the %s tier", ErrEntitlementDenied, tier)
	}
	return tier, nil
}

// RequireResumeSlot fails with ErrEntitlementDenied when the user already owns
// as many resumes as the tier allows.
func (g *Gate) RequireResumeSlot(ctx context.Context, userID string, currentCount int64) (Tier, error) {
	tier, err := g.resolve(ctx, userID)
	if err != nil {
		return "", err
	}
	if !CanCreateResume(tier, currentCount) {
		return tier, fmt.Errorf("%w: the %s tier allows %d resume(s)", ErrEntitlementDenied, tier, ResumeLimit(tier))
	}
	return tier, nil
}

func (g *Gate) resolve(ctx context.Context, userID string) (Tier, error) {
	if userID == "" {
		return "", ErrUnauthenticated
	}
	return g.resolver.Resolve(ctx, userID)
}
