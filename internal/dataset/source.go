package dataset

import (
	"context"

	"outlet-insights-go/internal/types"
)

// Source is the upstream extraction layer: one fetch per tab and period.
type Source interface {
	Fetch(ctx context.Context, tab types.Tab, period string) (Tables, error)
}

// EmptySource returns no tables. Offline mode boots with it.
type EmptySource struct{}

func (EmptySource) Fetch(context.Context, types.Tab, string) (Tables, error) {
	return Tables{}, nil
}

// StaticSource serves tables held in memory, keyed like Store.
type StaticSource Store

func (s StaticSource) Fetch(_ context.Context, tab types.Tab, period string) (Tables, error) {
	out := Tables{}
	for name, t := range s[tab][period] {
		out[name] = t.Clone()
	}
	return out, nil
}
