// Package types defines core domain types shared across all layers.
// This package contains NO business logic - only type definitions and
// boundary validation.
package types

import (
	"sort"

	"github.com/shopspring/decimal"
)

// DefaultStorage is the capacity given to items inserted without one
const DefaultStorage int64 = 100

// Inputs maps an input item's label to the quantity consumed per unit produced
type Inputs map[string]decimal.Decimal

// Outputs maps a consumer's label to the quantity it consumes per unit.
// It is the reverse index of Inputs and is maintained by the store.
type Outputs map[string]decimal.Decimal

// Clone returns a copy of the inputs
func (in Inputs) Clone() Inputs {
	out := make(Inputs, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Labels returns the input labels in sorted order
func (in Inputs) Labels() []string {
	return sortedKeys(in)
}

// Clone returns a copy of the outputs
func (o Outputs) Clone() Outputs {
	out := make(Outputs, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}

// Labels returns the consumer labels in sorted order
func (o Outputs) Labels() []string {
	return sortedKeys(o)
}

func sortedKeys[M ~map[string]decimal.Decimal](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Node is one production item
type Node struct {
	// Label is the unique item name and store key
	Label string `json:"label"`

	// Inputs are the items consumed to produce one unit
	Inputs Inputs `json:"inputs"`

	// Outputs are the items that consume this one
	Outputs Outputs `json:"outputs"`

	// Cost is the per-unit production cost, excluding inputs
	Cost decimal.Decimal `json:"cost"`

	// Profit is the per-unit sale profit, realized only for final products
	Profit decimal.Decimal `json:"profit"`

	// Storage is the capacity limiting units produced per cycle
	Storage int64 `json:"storage"`

	// Stored is the quantity currently on hand
	Stored int64 `json:"stored"`
}

// IsFinalProduct reports whether nothing consumes this item
func (n *Node) IsFinalProduct() bool {
	return len(n.Outputs) == 0
}

// Clone returns a deep copy of the node
func (n *Node) Clone() *Node {
	c := *n
	c.Inputs = n.Inputs.Clone()
	c.Outputs = n.Outputs.Clone()
	return &c
}

// InsertProps describes a node to insert
type InsertProps struct {
	Label   string
	Inputs  Inputs
	Cost    decimal.Decimal
	Profit  decimal.Decimal
	Storage int64 // zero means DefaultStorage
}

// UpdatePatch holds optional field changes for an existing node.
// A nil field is left unchanged; a non-nil Inputs replaces them wholesale.
type UpdatePatch struct {
	Label   *string
	Inputs  Inputs
	Cost    *decimal.Decimal
	Profit  *decimal.Decimal
	Storage *int64
}

// Metrics is the evaluation result for a single node
type Metrics struct {
	// Net is the profit realized per unit, including all upstream costs
	Net decimal.Decimal `json:"net"`

	// Bottleneck is the maximum whole units producible in one cycle
	Bottleneck int64 `json:"bottleneck"`
}
