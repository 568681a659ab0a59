// Package subscription derives a user's tier from the billing provider's
// subscription state and gates paid features on it.
//
// The RecordStore holds at most one Record per user and is written only by the
// Reconciler, which consumes provider webhooks and always re-fetches the
// subscription before writing. The Resolver turns the stored record into a
// Tier on every call, so an expired period reads as free without any write.
// The Gate exposes the tier predicates used by every gated action.
//
// Basic usage:
//
//	prices, _ := subscription.PriceSetFromConfig(priceCfg)
//	resolver := subscription.NewResolver(store, prices)
//	gate := subscription.NewGate(resolver)
//
//	if _, err := gate.RequireAITools(ctx, userID); subscription.IsUpgradeRequired(err) {
//		// show upgrade prompt
//	}
//
// Webhooks:
//
//	provider, _ := subscription.NewStripeProvider(stripeCfg)
//	rec := subscription.NewReconciler(provider, store, linker, resolver, subscription.WithLogger(log))
//	event, err := rec.HandleWebhook(ctx, payload, r.Header.Get("Stripe-Signature"))
package subscription
