package graph_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"factory-graph/core/graph"
	"factory-graph/core/types"
)

func newStore() *graph.Store {
	return graph.NewStore(graph.WithLogger(zap.NewNop()))
}

func qty(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}

// assertEdges checks both directions of every edge so the reverse index is
// verified alongside the inputs.
func assertEdges(t *testing.T, s *graph.Store, label string, inputs, outputs map[string]int64) {
	t.Helper()
	node, ok := s.Get(label)
	require.True(t, ok, "node %s missing", label)

	require.Len(t, node.Inputs, len(inputs), "inputs of %s", label)
	for in, q := range inputs {
		got, ok := node.Inputs[in]
		require.True(t, ok, "%s should consume %s", label, in)
		assert.True(t, qty(q).Equal(got), "%s consumes %s of %s, want %d", label, got, in, q)
	}

	require.Len(t, node.Outputs, len(outputs), "outputs of %s", label)
	for out, q := range outputs {
		got, ok := node.Outputs[out]
		require.True(t, ok, "%s should be consumed by %s", label, out)
		assert.True(t, qty(q).Equal(got), "%s consumed by %s at %s, want %d", label, out, got, q)
	}
}

func TestInsert_DuplicateIsNoop(t *testing.T) {
	s := newStore()

	assert.Equal(t, graph.InsertCreated, s.Insert(types.InsertProps{Label: "Iron", Cost: qty(1)}))
	assert.Equal(t, graph.InsertDuplicate, s.Insert(types.InsertProps{Label: "Iron", Cost: qty(9)}))

	assert.Equal(t, 1, s.Len())
	assert.Equal(t, []string{"Iron"}, s.Labels())

	node, ok := s.Get("Iron")
	require.True(t, ok)
	assert.True(t, qty(1).Equal(node.Cost), "duplicate insert must not overwrite fields")
}

func TestInsert_Defaults(t *testing.T) {
	s := newStore()
	s.Insert(types.InsertProps{Label: "Iron"})

	node, ok := s.Get("Iron")
	require.True(t, ok)
	assert.Equal(t, types.DefaultStorage, node.Storage)
	assert.True(t, node.Cost.IsZero())
	assert.True(t, node.Profit.IsZero())
	assert.True(t, node.IsFinalProduct())

	custom := graph.NewStore(graph.WithLogger(zap.NewNop()), graph.WithDefaultStorage(7))
	custom.Insert(types.InsertProps{Label: "Iron"})
	node, _ = custom.Get("Iron")
	assert.Equal(t, int64(7), node.Storage)
}

func TestInsert_MaintainsReverseIndex(t *testing.T) {
	s := newStore()
	s.Insert(types.InsertProps{Label: "Iron"})
	s.Insert(types.InsertProps{Label: "Coal"})
	s.Insert(types.InsertProps{Label: "Steel", Inputs: types.Inputs{"Iron": qty(2), "Coal": qty(1)}})

	assertEdges(t, s, "Steel", map[string]int64{"Iron": 2, "Coal": 1}, nil)
	assertEdges(t, s, "Iron", nil, map[string]int64{"Steel": 2})
	assertEdges(t, s, "Coal", nil, map[string]int64{"Steel": 1})
}

func TestInsert_DropsUnknownInputs(t *testing.T) {
	s := newStore()
	s.Insert(types.InsertProps{Label: "Steel", Inputs: types.Inputs{"Iron": qty(2)}})

	assertEdges(t, s, "Steel", nil, nil)
}

func TestInsert_CopiesInputs(t *testing.T) {
	s := newStore()
	s.Insert(types.InsertProps{Label: "Iron"})
	inputs := types.Inputs{"Iron": qty(2)}
	s.Insert(types.InsertProps{Label: "Steel", Inputs: inputs})

	inputs["Iron"] = qty(99)
	assertEdges(t, s, "Steel", map[string]int64{"Iron": 2}, nil)
}

func TestRename_Cascades(t *testing.T) {
	s := newStore()
	s.Insert(types.InsertProps{Label: "Iron"})
	s.Insert(types.InsertProps{Label: "Steel", Inputs: types.Inputs{"Iron": qty(2)}})
	s.Insert(types.InsertProps{Label: "Tool", Inputs: types.Inputs{"Steel": qty(3)}})

	require.True(t, s.Rename("Iron", "Ore"))

	assertEdges(t, s, "Steel", map[string]int64{"Ore": 2}, map[string]int64{"Tool": 3})
	assertEdges(t, s, "Ore", nil, map[string]int64{"Steel": 2})
	assert.False(t, s.Has("Iron"))
	assert.Empty(t, s.Query("Iron"))
	assert.Equal(t, []string{"Ore"}, s.Query("Ore"))

	node, _ := s.Get("Ore")
	assert.Equal(t, "Ore", node.Label)
}

func TestRename_PreservesPosition(t *testing.T) {
	s := newStore()
	for _, l := range []string{"A", "B", "C"} {
		s.Insert(types.InsertProps{Label: l})
	}

	require.True(t, s.Rename("B", "Z"))
	assert.Equal(t, []string{"A", "Z", "C"}, s.Labels())
}

func TestRename_Rejected(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
	}{
		{name: "unknown source", from: "Gold", to: "Silver"},
		{name: "empty target", from: "Iron", to: ""},
		{name: "target taken", from: "Iron", to: "Steel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore()
			s.Insert(types.InsertProps{Label: "Iron"})
			s.Insert(types.InsertProps{Label: "Steel", Inputs: types.Inputs{"Iron": qty(2)}})
			before := s.Fingerprint()

			assert.False(t, s.Rename(tt.from, tt.to))
			assert.Equal(t, before, s.Fingerprint())
			assert.Equal(t, []string{"Iron", "Steel"}, s.Labels())
		})
	}
}

func TestUpdate(t *testing.T) {
	s := newStore()
	s.Insert(types.InsertProps{Label: "Iron"})
	s.Insert(types.InsertProps{Label: "Coal"})
	s.Insert(types.InsertProps{Label: "Steel", Inputs: types.Inputs{"Iron": qty(2)}})

	t.Run("unknown label", func(t *testing.T) {
		assert.False(t, s.Update("Gold", types.UpdatePatch{}))
	})

	t.Run("scalar fields", func(t *testing.T) {
		cost, profit, storage := decimal.RequireFromString("1.5"), qty(4), int64(12)
		require.True(t, s.Update("Steel", types.UpdatePatch{Cost: &cost, Profit: &profit, Storage: &storage}))

		node, _ := s.Get("Steel")
		assert.True(t, cost.Equal(node.Cost))
		assert.True(t, profit.Equal(node.Profit))
		assert.Equal(t, storage, node.Storage)
		assertEdges(t, s, "Steel", map[string]int64{"Iron": 2}, nil)
	})

	t.Run("inputs replaced wholesale", func(t *testing.T) {
		require.True(t, s.Update("Steel", types.UpdatePatch{Inputs: types.Inputs{"Coal": qty(5)}}))

		assertEdges(t, s, "Steel", map[string]int64{"Coal": 5}, nil)
		assertEdges(t, s, "Iron", nil, nil)
		assertEdges(t, s, "Coal", nil, map[string]int64{"Steel": 5})
	})

	t.Run("empty inputs clear edges", func(t *testing.T) {
		require.True(t, s.Update("Steel", types.UpdatePatch{Inputs: types.Inputs{}}))

		assertEdges(t, s, "Steel", nil, nil)
		assertEdges(t, s, "Coal", nil, nil)
	})

	t.Run("rename with inputs", func(t *testing.T) {
		label := "Alloy"
		require.True(t, s.Update("Steel", types.UpdatePatch{
			Label:  &label,
			Inputs: types.Inputs{"Iron": qty(1), "Coal": qty(1)},
		}))

		assert.False(t, s.Has("Steel"))
		assertEdges(t, s, "Alloy", map[string]int64{"Iron": 1, "Coal": 1}, nil)
		assertEdges(t, s, "Iron", nil, map[string]int64{"Alloy": 1})
		assertEdges(t, s, "Coal", nil, map[string]int64{"Alloy": 1})
	})

	t.Run("rename onto taken label changes nothing", func(t *testing.T) {
		label := "Iron"
		cost := qty(100)
		before := s.Fingerprint()

		assert.False(t, s.Update("Coal", types.UpdatePatch{Label: &label, Cost: &cost}))
		assert.Equal(t, before, s.Fingerprint())
	})
}

func TestDelete_Cascades(t *testing.T) {
	s := newStore()
	s.Insert(types.InsertProps{Label: "Iron"})
	s.Insert(types.InsertProps{Label: "Steel", Inputs: types.Inputs{"Iron": qty(2)}})
	s.Insert(types.InsertProps{Label: "Tool", Inputs: types.Inputs{"Steel": qty(1)}})

	require.True(t, s.Delete("Iron"))

	assert.False(t, s.Has("Iron"))
	assert.Equal(t, []string{"Steel", "Tool"}, s.Labels())
	assertEdges(t, s, "Steel", nil, map[string]int64{"Tool": 1})

	require.True(t, s.Delete("Tool"))
	assertEdges(t, s, "Steel", nil, nil)

	assert.False(t, s.Delete("Iron"))
	assert.Equal(t, 1, s.Len())
}

func TestQuery(t *testing.T) {
	s := newStore()
	for _, l := range []string{"Iron Ore", "Copper Ore", "Steel"} {
		s.Insert(types.InsertProps{Label: l})
	}

	tests := []struct {
		name    string
		needle  string
		exclude []string
		want    []string
	}{
		{name: "case insensitive with exclusion", needle: "ore", exclude: []string{"Steel"}, want: []string{"Iron Ore", "Copper Ore"}},
		{name: "exclusion removes a match", needle: "ORE", exclude: []string{"Iron Ore"}, want: []string{"Copper Ore"}},
		{name: "substring not prefix", needle: "eel", want: []string{"Steel"}},
		{name: "empty matches all", needle: "", want: []string{"Iron Ore", "Copper Ore", "Steel"}},
		{name: "no match", needle: "gold", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Query(tt.needle, tt.exclude...))
		})
	}
}

func TestSetStored(t *testing.T) {
	s := newStore()
	s.Insert(types.InsertProps{Label: "Iron"})

	assert.True(t, s.SetStored("Iron", 40))
	assert.False(t, s.SetStored("Iron", -1))
	assert.False(t, s.SetStored("Gold", 1))

	node, _ := s.Get("Iron")
	assert.Equal(t, int64(40), node.Stored)
}

func TestGet_ReturnsCopy(t *testing.T) {
	s := newStore()
	s.Insert(types.InsertProps{Label: "Iron"})
	s.Insert(types.InsertProps{Label: "Steel", Inputs: types.Inputs{"Iron": qty(2)}})

	node, _ := s.Get("Steel")
	node.Inputs["Iron"] = qty(50)
	node.Storage = 1

	assertEdges(t, s, "Steel", map[string]int64{"Iron": 2}, nil)
	fresh, _ := s.Get("Steel")
	assert.Equal(t, types.DefaultStorage, fresh.Storage)
}

func TestFingerprint(t *testing.T) {
	build := func() *graph.Store {
		s := newStore()
		s.Insert(types.InsertProps{Label: "Iron", Cost: qty(1)})
		s.Insert(types.InsertProps{Label: "Steel", Inputs: types.Inputs{"Iron": qty(2)}})
		return s
	}

	a, b := build(), build()
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	cost := qty(2)
	b.Update("Iron", types.UpdatePatch{Cost: &cost})
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}
