package reconcile

import (
	"context"
	"sort"
)

// ReconcileAll compares every key of both sides. Results are sorted by key.
func ReconcileAll(ctx context.Context, spec *Spec) ([]Result, error) {
	idx, err := GetOrBuild(ctx, spec)
	if err != nil {
		return nil, err
	}
	return fromIndices(idx, spec.Adapter), nil
}

// ReconcileOne compares a single key.
func ReconcileOne(ctx context.Context, spec *Spec, key string) (*Result, error) {
	idx, err := GetOrBuild(ctx, spec)
	if err != nil {
		return nil, err
	}
	res := buildResult(key, idx, spec.Adapter)
	return &res, nil
}

func fromIndices(idx *Indices, adapter Adapter) []Result {
	union := make(map[string]struct{}, len(idx.Want))
	for key := range idx.Want {
		union[key] = struct{}{}
	}
	for key := range idx.Have {
		union[key] = struct{}{}
	}

	keys := make([]string, 0, len(union))
	for key := range union {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	results := make([]Result, 0, len(keys))
	for _, key := range keys {
		results = append(results, buildResult(key, idx, adapter))
	}
	return results
}

func buildResult(key string, idx *Indices, adapter Adapter) Result {
	want, wanted := idx.Want[key]
	have, present := idx.Have[key]

	res := Result{
		Key:      key,
		Wanted:   wanted,
		Present:  present,
		Mismatch: []string{},
	}
	if wanted || present {
		var w, h Item
		if wanted {
			w = want
		}
		if present {
			h = have
		}
		res.Name = adapter.ResolveName(w, h)
	}
	if wanted && present {
		if m := adapter.CompareFields(want, have); len(m) > 0 {
			res.Mismatch = m
		}
	}
	return res
}
