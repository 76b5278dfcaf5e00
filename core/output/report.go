// Package output - Report model
package output

import (
	"time"

	"github.com/shopspring/decimal"

	"factory-graph/core/graph"
	"factory-graph/internal/errors"
)

// Report is the evaluated state of one production graph
type Report struct {
	// Source names where the graph came from, usually a file path
	Source string `json:"source"`

	// Fingerprint identifies the graph content that was evaluated
	Fingerprint string `json:"fingerprint"`

	// Cyclic is set when the graph could not be evaluated
	Cyclic bool `json:"cyclic"`

	// Cycle is the offending path when Cyclic is set
	Cycle []string `json:"cycle,omitempty"`

	// Items holds one entry per node in store order
	Items []ItemReport `json:"items"`

	// Summary aggregates the final products
	Summary Summary `json:"summary"`

	// GeneratedAt is when the report was built
	GeneratedAt time.Time `json:"generated_at"`
}

// ItemReport describes one node and its metrics
type ItemReport struct {
	Label   string          `json:"label"`
	Final   bool            `json:"final"`
	Cost    decimal.Decimal `json:"cost"`
	Profit  decimal.Decimal `json:"profit"`
	Storage int64           `json:"storage"`
	Stored  int64           `json:"stored"`
	Inputs  []InputReport   `json:"inputs,omitempty"`

	// Net and Bottleneck are absent when the graph is cyclic
	Net        *decimal.Decimal `json:"net,omitempty"`
	Bottleneck *int64           `json:"bottleneck,omitempty"`
}

// InputReport is one input edge
type InputReport struct {
	Label    string          `json:"label"`
	Quantity decimal.Decimal `json:"quantity"`
}

// Summary aggregates the final products of a graph
type Summary struct {
	// Items is the number of nodes
	Items int `json:"items"`

	// FinalProducts is the number of nodes nothing consumes
	FinalProducts int `json:"final_products"`

	// Best is the final product with the highest net margin
	Best string `json:"best,omitempty"`

	// BestNet is the margin of Best
	BestNet *decimal.Decimal `json:"best_net,omitempty"`

	// CycleProfit is the profit of producing every final product at its
	// bottleneck for one cycle
	CycleProfit *decimal.Decimal `json:"cycle_profit,omitempty"`
}

// BuildReport evaluates s and describes the result. A cyclic graph is
// reported, not returned as an error; any other evaluation error is.
func BuildReport(source string, s *graph.Store) (*Report, error) {
	report := &Report{
		Source:      source,
		Fingerprint: s.Fingerprint(),
		GeneratedAt: time.Now().UTC(),
	}

	metrics, err := graph.Solve(s)
	if err != nil {
		if !errors.IsType(err, errors.TypeCyclicGraph) {
			return nil, err
		}
		report.Cyclic = true
		report.Cycle = errors.CyclePath(err)
	}

	cycleProfit := decimal.Zero
	for _, node := range s.Nodes() {
		item := ItemReport{
			Label:   node.Label,
			Final:   node.IsFinalProduct(),
			Cost:    node.Cost,
			Profit:  node.Profit,
			Storage: node.Storage,
			Stored:  node.Stored,
		}
		for _, in := range node.Inputs.Labels() {
			item.Inputs = append(item.Inputs, InputReport{Label: in, Quantity: node.Inputs[in]})
		}

		if m, ok := metrics[node.Label]; ok {
			net, bottleneck := m.Net, m.Bottleneck
			item.Net = &net
			item.Bottleneck = &bottleneck

			if item.Final {
				cycleProfit = cycleProfit.Add(net.Mul(decimal.NewFromInt(bottleneck)))
				if report.Summary.BestNet == nil || net.GreaterThan(*report.Summary.BestNet) {
					report.Summary.Best = node.Label
					report.Summary.BestNet = &net
				}
			}
		}

		if item.Final {
			report.Summary.FinalProducts++
		}
		report.Items = append(report.Items, item)
	}

	report.Summary.Items = len(report.Items)
	if !report.Cyclic {
		report.Summary.CycleProfit = &cycleProfit
	}
	return report, nil
}
