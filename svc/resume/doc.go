// Package resume stores résumés and applies tier limits to the mutations that
// are gated: creating a résumé beyond the tier's quota and changing its visual
// style.
//
// Every gated call re-resolves the caller's tier through the subscription
// Gate, so a stale snapshot held by the browser can never unlock a feature.
package resume
