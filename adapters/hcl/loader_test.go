package hcl_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"factory-graph/adapters/hcl"
	"factory-graph/core/graph"
	"factory-graph/core/types"
	"factory-graph/internal/errors"
)

const steelWorks = `
item "Steel" {
  profit  = 5
  storage = 5
  inputs  = { Iron = 2 }
}

item "Iron" {
  cost    = 1
  storage = 10
  stored  = 3
}

item "Slag" {
  cost = 0.25
}
`

func TestParse(t *testing.T) {
	def, err := hcl.Parse([]byte(steelWorks), "steel.hcl")
	require.NoError(t, err)
	require.Len(t, def.Items, 3)

	steel := def.Items[0]
	assert.Equal(t, "Steel", steel.Props.Label)
	assert.True(t, decimal.NewFromInt(5).Equal(steel.Props.Profit))
	assert.Equal(t, int64(5), steel.Props.Storage)
	require.Contains(t, steel.Props.Inputs, "Iron")
	assert.True(t, decimal.NewFromInt(2).Equal(steel.Props.Inputs["Iron"]))
	assert.Equal(t, 2, steel.Range.Start.Line)

	assert.Equal(t, int64(3), def.Items[1].Stored)

	slag := def.Items[2]
	assert.Equal(t, "0.25", slag.Props.Cost.String())
	assert.Equal(t, int64(0), slag.Props.Storage)
	assert.Empty(t, slag.Props.Inputs)
}

func TestApply(t *testing.T) {
	def, err := hcl.Parse([]byte(steelWorks), "steel.hcl")
	require.NoError(t, err)

	s := graph.NewStore(graph.WithLogger(zap.NewNop()))
	require.NoError(t, def.Apply(s))

	assert.Equal(t, []string{"Steel", "Iron", "Slag"}, s.Labels())

	iron, ok := s.Get("Iron")
	require.True(t, ok)
	assert.Contains(t, iron.Outputs, "Steel")
	assert.Equal(t, int64(3), iron.Stored)

	slag, _ := s.Get("Slag")
	assert.Equal(t, types.DefaultStorage, slag.Storage)

	results, err := graph.Solve(s)
	require.NoError(t, err)
	assert.Equal(t, "3", results["Steel"].Net.String())
	assert.Equal(t, int64(2), results["Steel"].Bottleneck)

	checker := graph.NewInvariantChecker(false)
	assert.NoError(t, checker.RunFullCheck(s))
	assert.False(t, checker.HasViolations())
}

func TestApply_Errors(t *testing.T) {
	t.Run("unknown input", func(t *testing.T) {
		def, err := hcl.Parse([]byte(`item "Steel" { inputs = { Iron = 2 } }`), "bad.hcl")
		require.NoError(t, err)

		err = def.Apply(graph.NewStore(graph.WithLogger(zap.NewNop())))
		assert.ErrorIs(t, err, errors.ErrUnknownLabel)
	})

	t.Run("self input bypassing parse", func(t *testing.T) {
		def := &hcl.Definition{
			Filename: "built.hcl",
			Items: []hcl.Item{{Props: types.InsertProps{
				Label:  "Loop",
				Inputs: types.Inputs{"Loop": decimal.NewFromInt(1)},
			}}},
		}

		err := def.Apply(graph.NewStore(graph.WithLogger(zap.NewNop())))
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.TypeInternal))
		assert.Contains(t, err.Error(), "NO_SELF_INPUT")
	})

	t.Run("label already in store", func(t *testing.T) {
		def, err := hcl.Parse([]byte(`item "Iron" {}`), "iron.hcl")
		require.NoError(t, err)

		s := graph.NewStore(graph.WithLogger(zap.NewNop()))
		s.Insert(types.InsertProps{Label: "Iron"})
		assert.ErrorIs(t, def.Apply(s), errors.ErrDuplicateLabel)
	})
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		errType errors.Type
	}{
		{name: "syntax", src: `item "Iron" {`, errType: errors.TypeParsing},
		{name: "unknown attribute", src: `item "Iron" { colour = "red" }`, errType: errors.TypeParsing},
		{name: "non numeric cost", src: `item "Iron" { cost = "cheap" }`, errType: errors.TypeParsing},
		{name: "fractional storage", src: `item "Iron" { storage = 1.5 }`, errType: errors.TypeParsing},
		{name: "inputs not an object", src: `item "Iron" { inputs = [1, 2] }`, errType: errors.TypeParsing},
		{name: "duplicate block", src: "item \"Iron\" {}\nitem \"Iron\" {}", errType: errors.TypeDuplicateLabel},
		{name: "negative cost", src: `item "Iron" { cost = -1 }`, errType: errors.TypeInput},
		{name: "negative profit", src: `item "Iron" { profit = -1 }`, errType: errors.TypeInput},
		{name: "zero storage", src: `item "Iron" { storage = 0 }`, errType: errors.TypeInput},
		{name: "zero quantity", src: `item "Steel" { inputs = { Iron = 0 } }`, errType: errors.TypeInput},
		{name: "self input", src: `item "Steel" { inputs = { Steel = 1 } }`, errType: errors.TypeInput},
		{name: "empty label", src: `item "" {}`, errType: errors.TypeInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := hcl.Parse([]byte(tt.src), "bad.hcl")
			require.Error(t, err)
			assert.True(t, errors.IsType(err, tt.errType), "got %v", err)
		})
	}
}

func TestLoadStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "steel.hcl")
	require.NoError(t, os.WriteFile(path, []byte(steelWorks), 0644))

	s, err := hcl.LoadStore(path, graph.WithLogger(zap.NewNop()))
	require.NoError(t, err)
	assert.Equal(t, 3, s.Len())

	_, err = hcl.LoadStore(filepath.Join(t.TempDir(), "missing.hcl"))
	assert.True(t, errors.IsType(err, errors.TypeInput))
}

func TestParseStore(t *testing.T) {
	s, err := hcl.ParseStore([]byte(steelWorks), "steel.hcl", graph.WithLogger(zap.NewNop()))
	require.NoError(t, err)
	assert.Equal(t, 3, s.Len())

	_, err = hcl.ParseStore([]byte(`item "A" { inputs = { B = 1 } }`), "bad.hcl")
	assert.ErrorIs(t, err, errors.ErrUnknownLabel)
}
