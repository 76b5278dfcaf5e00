// Package graph - Metrics evaluation
//
// For every node X:
//
//	net(X)        = -cost(X) + profit(X) if X is a final product
//	                + sum over inputs Y of qty * net(Y)
//	bottleneck(X) = min(storage(X),
//	                    min over inputs Y of floor(min(storage(X), storage(Y)) / qty),
//	                    min over inputs Y of bottleneck(Y))
//
// Each node is resolved once and reused by every consumer. The walk carries
// its own on-stack coloring and fails with a cyclic graph error instead of
// returning partial results.
package graph

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"factory-graph/core/types"
	"factory-graph/internal/errors"
)

// Solve computes net margin and bottleneck for every node. Nothing is
// cached across calls.
func Solve(s *Store) (map[string]types.Metrics, error) {
	results := make(map[string]types.Metrics)
	if s == nil {
		return results, nil
	}

	cycle := s.walk(func(label string) {
		results[label] = s.evaluate(s.nodes[label], results)
	})
	if cycle != nil {
		s.logger.Warn("refusing to evaluate cyclic graph", zap.Strings("cycle", cycle))
		return nil, errors.CyclicGraph(cycle)
	}

	return results, nil
}

// evaluate computes the metrics of node from the already resolved metrics
// of its inputs.
func (s *Store) evaluate(node *types.Node, resolved map[string]types.Metrics) types.Metrics {
	net := node.Cost.Neg()
	if node.IsFinalProduct() {
		net = net.Add(node.Profit)
	}
	bottleneck := node.Storage

	for in, qty := range node.Inputs {
		dep := resolved[in]
		net = net.Add(qty.Mul(dep.Net))

		limit := min(node.Storage, s.nodes[in].Storage)
		bottleneck = min(bottleneck, edgeCapacity(limit, qty, bottleneck), dep.Bottleneck)
	}

	return types.Metrics{Net: net, Bottleneck: bottleneck}
}

// edgeCapacity returns floor(limit / qty) capped at ceiling. The quotient
// is computed exactly and compared as a decimal, so it may exceed int64.
func edgeCapacity(limit int64, qty decimal.Decimal, ceiling int64) int64 {
	quo, _ := decimal.NewFromInt(limit).QuoRem(qty, 0)
	if quo.GreaterThan(decimal.NewFromInt(ceiling)) {
		return ceiling
	}
	return quo.IntPart()
}
