package storage

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"factory-graph/core/output"
)

// Comparison describes how a graph changed between two snapshots
type Comparison struct {
	OldID string `json:"old_id"`
	NewID string `json:"new_id"`

	// Items lists labels present in both snapshots, in new store order
	Items []ItemDelta `json:"items"`

	// Added and Removed list labels present in only one snapshot
	Added   []string `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`

	OldCycleProfit   *decimal.Decimal `json:"old_cycle_profit,omitempty"`
	NewCycleProfit   *decimal.Decimal `json:"new_cycle_profit,omitempty"`
	CycleProfitDelta *decimal.Decimal `json:"cycle_profit_delta,omitempty"`
}

// ItemDelta is the change of one item. Deltas are absent when either
// side was cyclic.
type ItemDelta struct {
	Label         string           `json:"label"`
	OldNet        *decimal.Decimal `json:"old_net,omitempty"`
	NewNet        *decimal.Decimal `json:"new_net,omitempty"`
	NetDelta      *decimal.Decimal `json:"net_delta,omitempty"`
	OldBottleneck *int64           `json:"old_bottleneck,omitempty"`
	NewBottleneck *int64           `json:"new_bottleneck,omitempty"`
}

// Changed reports whether the item's metrics differ
func (d ItemDelta) Changed() bool {
	if (d.OldNet == nil) != (d.NewNet == nil) {
		return true
	}
	if d.NetDelta != nil && !d.NetDelta.IsZero() {
		return true
	}
	if d.OldBottleneck != nil && d.NewBottleneck != nil {
		return *d.OldBottleneck != *d.NewBottleneck
	}
	return false
}

// Compare diffs two snapshots
func Compare(oldSnap, newSnap *Snapshot) *Comparison {
	c := &Comparison{
		OldID:          oldSnap.ID,
		NewID:          newSnap.ID,
		OldCycleProfit: oldSnap.Report.Summary.CycleProfit,
		NewCycleProfit: newSnap.Report.Summary.CycleProfit,
	}
	if c.OldCycleProfit != nil && c.NewCycleProfit != nil {
		delta := c.NewCycleProfit.Sub(*c.OldCycleProfit)
		c.CycleProfitDelta = &delta
	}

	old := make(map[string]output.ItemReport, len(oldSnap.Report.Items))
	for _, item := range oldSnap.Report.Items {
		old[item.Label] = item
	}

	seen := make(map[string]bool, len(newSnap.Report.Items))
	for _, item := range newSnap.Report.Items {
		seen[item.Label] = true
		prev, ok := old[item.Label]
		if !ok {
			c.Added = append(c.Added, item.Label)
			continue
		}

		d := ItemDelta{
			Label:         item.Label,
			OldNet:        prev.Net,
			NewNet:        item.Net,
			OldBottleneck: prev.Bottleneck,
			NewBottleneck: item.Bottleneck,
		}
		if prev.Net != nil && item.Net != nil {
			delta := item.Net.Sub(*prev.Net)
			d.NetDelta = &delta
		}
		c.Items = append(c.Items, d)
	}

	for _, item := range oldSnap.Report.Items {
		if !seen[item.Label] {
			c.Removed = append(c.Removed, item.Label)
		}
	}
	return c
}

// CompareIDs loads two snapshots from store and diffs them
func CompareIDs(ctx context.Context, store Store, oldID, newID string) (*Comparison, error) {
	oldSnap, err := store.Get(ctx, oldID)
	if err != nil {
		return nil, fmt.Errorf("failed to get old snapshot: %w", err)
	}
	newSnap, err := store.Get(ctx, newID)
	if err != nil {
		return nil, fmt.Errorf("failed to get new snapshot: %w", err)
	}
	return Compare(oldSnap, newSnap), nil
}
