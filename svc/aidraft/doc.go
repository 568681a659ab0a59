// Package aidraft drafts résumé text with an OpenAI chat model.
//
// Both operations re-resolve the caller's tier and refuse with
// subscription.ErrEntitlementDenied before any model call when the tier does
// not include AI tools. Work-experience replies are parsed best-effort: a
// field the model left out or formatted badly comes back empty.
package aidraft
