package reconcile

import (
	"context"
	"fmt"
	"strings"
)

// BuildPlan reconciles spec and plans the actions opts allows. It does not
// execute them; use ApplyPlan for that.
func BuildPlan(ctx context.Context, spec *Spec, opts Options) (*Plan, error) {
	idx, err := GetOrBuild(ctx, spec)
	if err != nil {
		return nil, err
	}
	results := fromIndices(idx, spec.Adapter)
	summary, actions := planResults(results, idx, opts)
	return &Plan{Results: results, Actions: actions, Summary: summary}, nil
}

// ApplyPlan executes the plan's actions: deletions first, then one Put with
// every create and update. It returns the number of actions executed.
func ApplyPlan(ctx context.Context, spec *Spec, plan *Plan, opts Options) (int, error) {
	if opts.DryRun || len(plan.Actions) == 0 {
		return 0, nil
	}
	mutator, ok := spec.Adapter.(Mutator)
	if !ok {
		return 0, fmt.Errorf("adapter %s does not implement Mutator interface", spec.Adapter.Name())
	}

	var deletes []string
	puts := make(map[string]Item)
	for _, a := range plan.Actions {
		switch a.Type {
		case ActionDelete:
			deletes = append(deletes, a.Key)
		case ActionCreate, ActionUpdate:
			puts[a.Key] = a.Item
		}
	}

	executed := 0
	if len(deletes) > 0 {
		if err := mutator.Delete(ctx, deletes); err != nil {
			return executed, fmt.Errorf("failed to delete from %s: %w", spec.Adapter.Name(), err)
		}
		executed += len(deletes)
	}
	if len(puts) > 0 {
		if err := mutator.Put(ctx, puts); err != nil {
			return executed, fmt.Errorf("failed to write to %s: %w", spec.Adapter.Name(), err)
		}
		executed += len(puts)
	}

	if spec.Cache != nil {
		spec.Cache.Invalidate(spec.Adapter.Name())
	}
	return executed, nil
}

func planResults(results []Result, idx *Indices, opts Options) (Summary, []Action) {
	var summary Summary
	var actions []Action

	summary.Total = len(results)
	for _, r := range results {
		switch {
		case r.InSync():
			summary.InSync++
		case r.Wanted && !r.Present:
			summary.Missing++
			if opts.DoSync {
				actions = append(actions, Action{Type: ActionCreate, Key: r.Key, Reason: "missing in target", Item: idx.Want[r.Key]})
				summary.SyncActions++
			}
		case !r.Wanted && r.Present:
			summary.Stale++
			if opts.DoPurge {
				actions = append(actions, Action{Type: ActionDelete, Key: r.Key, Reason: "no longer wanted"})
				summary.PurgeActions++
			}
		default:
			summary.Mismatches++
			if opts.DoSync {
				actions = append(actions, Action{
					Type:   ActionUpdate,
					Key:    r.Key,
					Reason: "mismatch: " + strings.Join(r.Mismatch, ", "),
					Item:   idx.Want[r.Key],
				})
				summary.SyncActions++
			}
		}
	}
	return summary, actions
}
