package engine_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factory-graph/core/engine"
	"factory-graph/core/graph"
	"factory-graph/core/types"
	"factory-graph/internal/errors"
)

// memoryLoader builds a fresh store per source: "chain" is acyclic,
// "loop" is cyclic and anything else fails to load.
func memoryLoader(loads *atomic.Int32) engine.Loader {
	return func(source string, opts ...graph.StoreOption) (*graph.Store, error) {
		loads.Add(1)
		s := graph.NewStore(opts...)
		switch source {
		case "chain":
			s.Insert(types.InsertProps{Label: "Ore", Cost: decimal.NewFromInt(1)})
			s.Insert(types.InsertProps{Label: "Bar", Profit: decimal.NewFromInt(4), Inputs: types.Inputs{"Ore": decimal.NewFromInt(2)}})
		case "loop":
			s.Insert(types.InsertProps{Label: "A"})
			s.Insert(types.InsertProps{Label: "B", Inputs: types.Inputs{"A": decimal.NewFromInt(1)}})
			s.Update("A", types.UpdatePatch{Inputs: types.Inputs{"B": decimal.NewFromInt(1)}})
		default:
			return nil, errors.Newf(errors.TypeInput, "no such source: %s", source)
		}
		return s, nil
	}
}

func TestEvaluateAll(t *testing.T) {
	var loads atomic.Int32
	e := engine.NewEngine(memoryLoader(&loads), engine.EngineConfig{DefaultStorage: 8, MaxConcurrency: 2})

	results := e.EvaluateAll(context.Background(), []string{"chain", "missing", "loop", "chain"})
	require.Len(t, results, 4)
	assert.Equal(t, int32(4), loads.Load())

	chain := results[0]
	require.NoError(t, chain.Err)
	assert.Equal(t, "chain", chain.Source)
	assert.False(t, chain.Report.Cyclic)
	require.Len(t, chain.Report.Items, 2)
	assert.Equal(t, int64(8), chain.Report.Items[0].Storage)
	assert.Equal(t, "2", chain.Report.Items[1].Net.String())

	assert.Error(t, results[1].Err)
	assert.True(t, errors.IsType(results[1].Err, errors.TypeInput))
	assert.Nil(t, results[1].Report)

	require.NoError(t, results[2].Err)
	assert.True(t, results[2].Report.Cyclic)

	assert.Equal(t, chain.Report.Fingerprint, results[3].Report.Fingerprint)
}

func TestEvaluate_Canceled(t *testing.T) {
	var loads atomic.Int32
	e := engine.NewEngine(memoryLoader(&loads), engine.EngineConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Evaluate(ctx, "chain")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), loads.Load())
}

func TestEvaluateAll_ManySources(t *testing.T) {
	var loads atomic.Int32
	e := engine.NewEngine(memoryLoader(&loads), engine.EngineConfig{MaxConcurrency: 4})

	sources := make([]string, 32)
	for i := range sources {
		sources[i] = "chain"
		if i%3 == 0 {
			sources[i] = "loop"
		}
	}

	results := e.EvaluateAll(context.Background(), sources)
	for i, r := range results {
		require.NoError(t, r.Err, fmt.Sprintf("source %d", i))
		assert.Equal(t, i%3 == 0, r.Report.Cyclic, "source %d", i)
	}
}
