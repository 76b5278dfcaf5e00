// Package graph - Cycle detection
// Three-color depth-first search over Inputs edges with an explicit work
// stack, so chain length is bounded by memory rather than call depth.
package graph

type color uint8

const (
	unvisited color = iota
	onStack
	done
)

type frame struct {
	label  string
	inputs []string
	next   int
}

// walk visits every node in post-order: a node is finished only after all
// of its inputs are finished. Roots are taken in store order and inputs in
// store order. finish is called once per node. If a node currently on the
// stack is reached again, walk stops and returns the closed cycle path.
func (s *Store) walk(finish func(label string)) []string {
	state := make(map[string]color, len(s.nodes))
	pos := s.positions()

	for _, root := range s.order {
		if state[root] != unvisited {
			continue
		}

		state[root] = onStack
		stack := []frame{{label: root, inputs: inputOrder(s.nodes[root], pos)}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]

			if top.next < len(top.inputs) {
				in := top.inputs[top.next]
				top.next++

				switch state[in] {
				case unvisited:
					state[in] = onStack
					stack = append(stack, frame{label: in, inputs: inputOrder(s.nodes[in], pos)})
				case onStack:
					return cyclePath(stack, in)
				}
				continue
			}

			if finish != nil {
				finish(top.label)
			}
			state[top.label] = done
			stack = stack[:len(stack)-1]
		}
	}

	return nil
}

// cyclePath extracts [in, ..., top, in] from the current stack
func cyclePath(stack []frame, in string) []string {
	start := 0
	for i, f := range stack {
		if f.label == in {
			start = i
			break
		}
	}
	path := make([]string, 0, len(stack)-start+1)
	for _, f := range stack[start:] {
		path = append(path, f.label)
	}
	return append(path, in)
}

// IsCyclic reports whether the dependency graph contains a cycle
func IsCyclic(s *Store) bool {
	return FindCycle(s) != nil
}

// FindCycle returns the first cycle found as a closed path
// [A, B, ..., A], where each element consumes the next. Nil if acyclic.
func FindCycle(s *Store) []string {
	if s == nil {
		return nil
	}
	return s.walk(nil)
}
