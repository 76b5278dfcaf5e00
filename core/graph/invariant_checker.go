// Package graph - Store invariant assertions
// These assertions verify that every mutation left the store consistent.
// Tests run them after arbitrary operation sequences.
package graph

import (
	"fmt"
)

// InvariantViolation represents a detected invariant violation
type InvariantViolation struct {
	Invariant string
	Label     string
	Details   string
}

func (v *InvariantViolation) Error() string {
	return fmt.Sprintf("INVARIANT VIOLATED [%s] at %q: %s", v.Invariant, v.Label, v.Details)
}

// InvariantChecker verifies the structural invariants of a Store
type InvariantChecker struct {
	violations []InvariantViolation
	strictMode bool
}

// NewInvariantChecker creates a checker. In strict mode the first
// violation panics.
func NewInvariantChecker(strictMode bool) *InvariantChecker {
	return &InvariantChecker{
		violations: []InvariantViolation{},
		strictMode: strictMode,
	}
}

// AssertOrderMatchesNodes asserts every node appears exactly once in
// store order and nothing else does
func (c *InvariantChecker) AssertOrderMatchesNodes(s *Store) error {
	seen := make(map[string]bool, len(s.order))
	for _, label := range s.order {
		if seen[label] {
			return c.fail("ORDER_UNIQUE", label, "label appears twice in store order")
		}
		seen[label] = true
		if _, ok := s.nodes[label]; !ok {
			return c.fail("ORDER_KNOWN", label, "label in store order has no node")
		}
	}
	if len(seen) != len(s.nodes) {
		return c.fail("ORDER_COMPLETE", "", fmt.Sprintf("%d nodes but %d ordered labels", len(s.nodes), len(seen)))
	}
	return nil
}

// AssertNodeKeyed asserts a node is stored under its own label
func (c *InvariantChecker) AssertNodeKeyed(s *Store, key string) error {
	node := s.nodes[key]
	if node == nil {
		return c.fail("NODE_EXISTS", key, "node is nil")
	}
	if node.Label != key {
		return c.fail("NODE_KEYED", key, fmt.Sprintf("node is labeled %q", node.Label))
	}
	return nil
}

// AssertEdgesMirrored asserts the inputs of a node are mirrored by the
// outputs of its dependencies and the other way around
func (c *InvariantChecker) AssertEdgesMirrored(s *Store, key string) error {
	node := s.nodes[key]
	for in, qty := range node.Inputs {
		if in == key {
			return c.fail("NO_SELF_INPUT", key, "node consumes itself")
		}
		dep, ok := s.nodes[in]
		if !ok {
			return c.fail("INPUT_KNOWN", key, fmt.Sprintf("input %q has no node", in))
		}
		if out, ok := dep.Outputs[key]; !ok || !out.Equal(qty) {
			return c.fail("OUTPUT_MIRRORS_INPUT", key, fmt.Sprintf("%q does not list it as an output of %s", in, qty))
		}
	}
	for out, qty := range node.Outputs {
		consumer, ok := s.nodes[out]
		if !ok {
			return c.fail("OUTPUT_KNOWN", key, fmt.Sprintf("output %q has no node", out))
		}
		if in, ok := consumer.Inputs[key]; !ok || !in.Equal(qty) {
			return c.fail("INPUT_MIRRORS_OUTPUT", key, fmt.Sprintf("%q does not consume %s of it", out, qty))
		}
	}
	return nil
}

// AssertQuantitiesValid asserts storage and stock are in range and every
// edge quantity is positive
func (c *InvariantChecker) AssertQuantitiesValid(s *Store, key string) error {
	node := s.nodes[key]
	if node.Storage < 1 {
		return c.fail("STORAGE_POSITIVE", key, fmt.Sprintf("storage is %d", node.Storage))
	}
	if node.Stored < 0 {
		return c.fail("STORED_NON_NEGATIVE", key, fmt.Sprintf("stored is %d", node.Stored))
	}
	for in, qty := range node.Inputs {
		if !qty.IsPositive() {
			return c.fail("QUANTITY_POSITIVE", key, fmt.Sprintf("input %q has quantity %s", in, qty))
		}
	}
	return nil
}

func (c *InvariantChecker) fail(invariant, label, details string) error {
	v := InvariantViolation{
		Invariant: invariant,
		Label:     label,
		Details:   details,
	}
	c.violations = append(c.violations, v)

	if c.strictMode {
		panic(v.Error())
	}
	return &v
}

// GetViolations returns all recorded violations
func (c *InvariantChecker) GetViolations() []InvariantViolation {
	return c.violations
}

// HasViolations returns true if any violations occurred
func (c *InvariantChecker) HasViolations() bool {
	return len(c.violations) > 0
}

// RunFullCheck runs every invariant check on s and returns the first
// violation, if any. All violations are recorded.
func (c *InvariantChecker) RunFullCheck(s *Store) error {
	if s == nil {
		return c.fail("STORE_EXISTS", "", "store is nil")
	}

	first := c.AssertOrderMatchesNodes(s)
	keep := func(err error) {
		if first == nil {
			first = err
		}
	}

	for key := range s.nodes {
		if err := c.AssertNodeKeyed(s, key); err != nil {
			keep(err)
			continue
		}
		if err := c.AssertEdgesMirrored(s, key); err != nil {
			keep(err)
		}
		if err := c.AssertQuantitiesValid(s, key); err != nil {
			keep(err)
		}
	}
	return first
}
