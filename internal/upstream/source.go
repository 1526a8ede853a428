package upstream

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// UnitAll requests records across every configured business unit.
const UnitAll = "ALL"

// Source retrieves raw, still-unnormalized record rows from the upstream
// business system. Rows keep their original field names; canonicalization
// happens in internal/normalize.
type Source interface {
	FetchTimeRecords(ctx context.Context, unit string) ([]map[string]any, error)
	FetchRevenueRecords(ctx context.Context, unit string) ([]map[string]any, error)
}

// FetchTimeRecords fans out across units in parallel when UnitAll is
// requested and merges the results into one flat collection. Merge order
// follows the configured unit order so downstream tie-breaks stay
// reproducible.
func FetchTimeRecords(ctx context.Context, src Source, unit string, units []string) ([]map[string]any, error) {
	return fanOut(ctx, unit, units, src.FetchTimeRecords)
}

func FetchRevenueRecords(ctx context.Context, src Source, unit string, units []string) ([]map[string]any, error) {
	return fanOut(ctx, unit, units, src.FetchRevenueRecords)
}

func fanOut(ctx context.Context, unit string, units []string, fetch func(context.Context, string) ([]map[string]any, error)) ([]map[string]any, error) {
	if unit != UnitAll || len(units) == 0 {
		return fetch(ctx, unit)
	}

	results := make([][]map[string]any, len(units))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for i, u := range units {
		i, u := i, u
		g.Go(func() error {
			rows, err := fetch(gctx, u)
			if err != nil {
				return err
			}
			mu.Lock()
			results[i] = rows
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merged []map[string]any
	for _, rows := range results {
		merged = append(merged, rows...)
	}
	return merged, nil
}
