// Package graph - Production graph store
// The Store owns every node keyed by label plus the display order of labels.
// All mutation goes through it so the Outputs reverse index always mirrors
// the Inputs of every other node.
package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"factory-graph/core/types"
	"factory-graph/internal/logging"
)

// InsertResult reports the outcome of an insert
type InsertResult int

const (
	// InsertCreated means a new node was stored
	InsertCreated InsertResult = iota
	// InsertDuplicate means the label was taken and nothing changed
	InsertDuplicate
)

// String returns the result name
func (r InsertResult) String() string {
	switch r {
	case InsertCreated:
		return "created"
	case InsertDuplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// Store is the authoritative node table of one production graph.
// It is not safe for concurrent use; shard one Store per session.
type Store struct {
	nodes map[string]*types.Node
	order []string

	defaultStorage int64
	logger         *zap.Logger
}

// StoreOption configures a Store
type StoreOption func(*Store)

// WithLogger sets the logger used for mutation tracing
func WithLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDefaultStorage sets the capacity given to nodes inserted without one
func WithDefaultStorage(storage int64) StoreOption {
	return func(s *Store) {
		if storage > 0 {
			s.defaultStorage = storage
		}
	}
}

// NewStore creates an empty store
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		nodes:          make(map[string]*types.Node),
		order:          make([]string, 0),
		defaultStorage: types.DefaultStorage,
		logger:         logging.Named("store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Insert creates a node. A taken label leaves the store untouched.
// Input references to labels that do not exist are dropped.
func (s *Store) Insert(props types.InsertProps) InsertResult {
	if _, exists := s.nodes[props.Label]; exists {
		s.logger.Debug("insert ignored, label taken", zap.String("label", props.Label))
		return InsertDuplicate
	}

	storage := props.Storage
	if storage == 0 {
		storage = s.defaultStorage
	}

	node := &types.Node{
		Label:   props.Label,
		Inputs:  types.Inputs{},
		Outputs: types.Outputs{},
		Cost:    props.Cost,
		Profit:  props.Profit,
		Storage: storage,
	}
	s.nodes[node.Label] = node
	s.order = append(s.order, node.Label)
	s.setInputs(node, props.Inputs)

	s.logger.Debug("inserted node",
		zap.String("label", node.Label),
		zap.Int("inputs", len(node.Inputs)),
	)
	return InsertCreated
}

// Rename re-keys a node and rewrites every edge that references it.
// It does nothing and returns false if oldLabel is unknown, newLabel is
// empty, or newLabel already belongs to another node.
func (s *Store) Rename(oldLabel, newLabel string) bool {
	node, ok := s.nodes[oldLabel]
	if !ok || newLabel == "" {
		return false
	}
	if oldLabel == newLabel {
		return true
	}
	if _, taken := s.nodes[newLabel]; taken {
		s.logger.Debug("rename rejected, label taken",
			zap.String("from", oldLabel),
			zap.String("to", newLabel),
		)
		return false
	}

	delete(s.nodes, oldLabel)
	node.Label = newLabel
	s.nodes[newLabel] = node

	for _, other := range s.nodes {
		if qty, ok := other.Inputs[oldLabel]; ok {
			delete(other.Inputs, oldLabel)
			other.Inputs[newLabel] = qty
		}
		if qty, ok := other.Outputs[oldLabel]; ok {
			delete(other.Outputs, oldLabel)
			other.Outputs[newLabel] = qty
		}
	}

	for i, label := range s.order {
		if label == oldLabel {
			s.order[i] = newLabel
			break
		}
	}

	s.logger.Debug("renamed node", zap.String("from", oldLabel), zap.String("to", newLabel))
	return true
}

// Update applies patch to the node labeled originalLabel. A label change is
// applied first; if it is rejected nothing else changes.
func (s *Store) Update(originalLabel string, patch types.UpdatePatch) bool {
	node, ok := s.nodes[originalLabel]
	if !ok {
		s.logger.Debug("update ignored, unknown label", zap.String("label", originalLabel))
		return false
	}

	if patch.Label != nil && *patch.Label != originalLabel {
		if !s.Rename(originalLabel, *patch.Label) {
			return false
		}
	}
	if patch.Inputs != nil {
		s.setInputs(node, patch.Inputs)
	}
	if patch.Cost != nil {
		node.Cost = *patch.Cost
	}
	if patch.Profit != nil {
		node.Profit = *patch.Profit
	}
	if patch.Storage != nil {
		node.Storage = *patch.Storage
	}

	s.logger.Debug("updated node", zap.String("label", node.Label))
	return true
}

// Delete removes a node and strips every edge keyed by its label.
// Returns false if the label is unknown.
func (s *Store) Delete(label string) bool {
	if _, ok := s.nodes[label]; !ok {
		return false
	}

	delete(s.nodes, label)
	for i, l := range s.order {
		if l == label {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	for _, node := range s.nodes {
		delete(node.Inputs, label)
		delete(node.Outputs, label)
	}

	s.logger.Debug("deleted node", zap.String("label", label))
	return true
}

// SetStored records the quantity of an item on hand
func (s *Store) SetStored(label string, qty int64) bool {
	node, ok := s.nodes[label]
	if !ok || qty < 0 {
		return false
	}
	node.Stored = qty
	return true
}

// Query returns, in store order, the labels whose lowercase form contains
// the lowercase substring. A label equal to exclude is skipped.
func (s *Store) Query(substring string, exclude ...string) []string {
	needle := strings.ToLower(substring)
	results := make([]string, 0)
	for _, label := range s.order {
		if isExcluded(label, exclude) {
			continue
		}
		if strings.Contains(strings.ToLower(label), needle) {
			results = append(results, label)
		}
	}
	return results
}

func isExcluded(label string, exclude []string) bool {
	for _, e := range exclude {
		if label == e {
			return true
		}
	}
	return false
}

// Has reports whether a node with the label exists
func (s *Store) Has(label string) bool {
	_, ok := s.nodes[label]
	return ok
}

// Get returns a copy of the node with the given label
func (s *Store) Get(label string) (*types.Node, bool) {
	node, ok := s.nodes[label]
	if !ok {
		return nil, false
	}
	return node.Clone(), true
}

// Labels returns the labels in store order
func (s *Store) Labels() []string {
	return append([]string(nil), s.order...)
}

// Len returns the number of nodes
func (s *Store) Len() int {
	return len(s.nodes)
}

// Nodes returns copies of every node in store order
func (s *Store) Nodes() []*types.Node {
	nodes := make([]*types.Node, 0, len(s.order))
	for _, label := range s.order {
		nodes = append(nodes, s.nodes[label].Clone())
	}
	return nodes
}

// Fingerprint returns a digest of the graph content. Two stores with the
// same nodes, edges and field values in the same order share a fingerprint.
func (s *Store) Fingerprint() string {
	h := xxhash.New()
	pos := s.positions()
	for _, label := range s.order {
		node := s.nodes[label]
		fmt.Fprintf(h, "%q|%s|%s|%d|%d", label, node.Cost, node.Profit, node.Storage, node.Stored)
		for _, in := range inputOrder(node, pos) {
			fmt.Fprintf(h, "|%q=%s", in, node.Inputs[in])
		}
		_, _ = h.WriteString("\n")
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// setInputs replaces the inputs of node and keeps the reverse index of
// both the previously and the newly referenced nodes in sync.
func (s *Store) setInputs(node *types.Node, inputs types.Inputs) {
	for in := range node.Inputs {
		if dep, ok := s.nodes[in]; ok {
			delete(dep.Outputs, node.Label)
		}
	}

	node.Inputs = make(types.Inputs, len(inputs))
	for in, qty := range inputs {
		dep, ok := s.nodes[in]
		if !ok {
			s.logger.Debug("dropping input to unknown label",
				zap.String("label", node.Label),
				zap.String("input", in),
			)
			continue
		}
		node.Inputs[in] = qty
		dep.Outputs[node.Label] = qty
	}
}

// positions maps each label to its index in store order
func (s *Store) positions() map[string]int {
	pos := make(map[string]int, len(s.order))
	for i, label := range s.order {
		pos[label] = i
	}
	return pos
}

// inputOrder returns the input labels of node in store order
func inputOrder(node *types.Node, pos map[string]int) []string {
	if len(node.Inputs) == 0 {
		return nil
	}
	labels := make([]string, 0, len(node.Inputs))
	for label := range node.Inputs {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		return pos[labels[i]] < pos[labels[j]]
	})
	return labels
}
