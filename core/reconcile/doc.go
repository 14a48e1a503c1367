// Package reconcile compares a desired set of entities with what a target
// (a database table, a storage prefix) holds, and plans the writes that
// bring the target in line.
//
// # Architecture
//
//  1. Adapter: loads both sides indexed by key and compares fields.
//  2. Engine: builds the union of keys and a Result per key.
//  3. Plan: turns results into create, update and delete actions.
//     ApplyPlan runs them through the adapter's Mutator.
//  4. Cache: TTL-based index cache with stampede protection.
//
// # Usage Example
//
//	spec := &reconcile.Spec{Adapter: adapter, Scope: "seq=7", Cache: cache, CacheTTL: time.Minute}
//	plan, err := reconcile.BuildPlan(ctx, spec, reconcile.Options{DoSync: true, DoPurge: true})
//	n, err := reconcile.ApplyPlan(ctx, spec, plan, reconcile.Options{})
package reconcile
