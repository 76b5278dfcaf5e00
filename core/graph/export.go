// Package graph - Export
// Bridges the store to dominikbraun/graph for DOT rendering and a
// production order (inputs before the items that consume them).
package graph

import (
	"fmt"
	"io"

	dgraph "github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"

	"factory-graph/internal/errors"
)

// toDirected builds a directed graph with one edge per input, drawn from
// the input to its consumer.
func (s *Store) toDirected() (dgraph.Graph[string, string], error) {
	g := dgraph.New(dgraph.StringHash, dgraph.Directed())

	for _, label := range s.order {
		node := s.nodes[label]
		err := g.AddVertex(label,
			dgraph.VertexAttribute("shape", "box"),
			dgraph.VertexAttribute("label", fmt.Sprintf("%s\ncost %s / profit %s\nstorage %d",
				label, node.Cost, node.Profit, node.Storage)),
		)
		if err != nil {
			return nil, errors.Internal("failed to add vertex "+label, err)
		}
	}

	pos := s.positions()
	for _, label := range s.order {
		node := s.nodes[label]
		for _, in := range inputOrder(node, pos) {
			err := g.AddEdge(in, label, dgraph.EdgeAttribute("label", node.Inputs[in].String()))
			if err != nil {
				return nil, errors.Internal(fmt.Sprintf("failed to add edge %s -> %s", in, label), err)
			}
		}
	}

	return g, nil
}

// ToDOT writes the graph in Graphviz DOT format
func ToDOT(s *Store, w io.Writer) error {
	g, err := s.toDirected()
	if err != nil {
		return err
	}
	return draw.DOT(g, w)
}

// ProductionOrder returns every label ordered so that each item comes after
// all of its inputs. Ties keep store order. Fails on a cyclic graph.
func ProductionOrder(s *Store) ([]string, error) {
	if cycle := FindCycle(s); cycle != nil {
		return nil, errors.CyclicGraph(cycle)
	}

	g, err := s.toDirected()
	if err != nil {
		return nil, err
	}

	position := s.positions()

	order, err := dgraph.StableTopologicalSort(g, func(a, b string) bool {
		return position[a] < position[b]
	})
	if err != nil {
		return nil, errors.Internal("topological sort failed", err)
	}
	return order, nil
}
