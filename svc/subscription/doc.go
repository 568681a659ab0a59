// Package subscription provides the production storage backends for
// pkg/subscription: a Postgres record store and a Redis customer linker.
//
// Both are safe for concurrent use and can be shared across instances.
//
//	store := subscription.NewPGStore(pool)
//	linker := subscription.NewRedisLinker(rdb, "resumekit")
//	rec := billing.NewReconciler(provider, store, linker, resolver)
package subscription
