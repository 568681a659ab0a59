// Package editor exposes the résumé editor's server surface: the per-request
// entitlement snapshot, résumé creation and restyling, and AI drafting.
//
// Gated routes never trust the snapshot; the services behind them re-resolve
// the tier and answer 402 with code "upgrade_required" when it is too low.
package editor
