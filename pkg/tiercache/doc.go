// Package tiercache is the interactive side's view of the caller's tier.
//
// A Cache holds one Snapshot taken when the page was composed. It is a read
// cache only; the server re-resolves the tier on every gated mutation. Right
// after a checkout the snapshot can lag behind the billing provider, so a
// Refresher forces a server-side reconciliation, waits once for in-flight
// webhooks to settle, re-reads the tier and swaps the snapshot when it moved.
//
//	client := tiercache.NewClient("https://app.example.com", tiercache.WithBearerToken(tok))
//	cache := tiercache.NewCache()
//	r := tiercache.NewRefresher(client, cache, tiercache.WithOnInvalidate(reload))
//	if err := r.Attempt(ctx, tiercache.AllowsAI); err != nil { showUpgrade() }
package tiercache
