package output_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"factory-graph/core/graph"
	"factory-graph/core/output"
	"factory-graph/core/types"
)

func steelWorks() *graph.Store {
	s := graph.NewStore(graph.WithLogger(zap.NewNop()))
	s.Insert(types.InsertProps{Label: "Iron", Cost: decimal.NewFromInt(1), Storage: 10})
	s.Insert(types.InsertProps{
		Label:   "Steel",
		Profit:  decimal.NewFromInt(5),
		Storage: 5,
		Inputs:  types.Inputs{"Iron": decimal.NewFromInt(2)},
	})
	s.Insert(types.InsertProps{Label: "Gem", Profit: decimal.NewFromInt(1), Storage: 3})
	return s
}

func TestBuildReport(t *testing.T) {
	report, err := output.BuildReport("steel.hcl", steelWorks())
	require.NoError(t, err)

	assert.False(t, report.Cyclic)
	require.Len(t, report.Items, 3)
	assert.Equal(t, "Iron", report.Items[0].Label)
	assert.False(t, report.Items[0].Final)

	steel := report.Items[1]
	require.NotNil(t, steel.Net)
	assert.Equal(t, "3", steel.Net.String())
	assert.Equal(t, int64(2), *steel.Bottleneck)
	require.Len(t, steel.Inputs, 1)
	assert.Equal(t, "Iron", steel.Inputs[0].Label)

	assert.Equal(t, 3, report.Summary.Items)
	assert.Equal(t, 2, report.Summary.FinalProducts)
	assert.Equal(t, "Steel", report.Summary.Best)
	// Steel 3*2 + Gem 1*3
	require.NotNil(t, report.Summary.CycleProfit)
	assert.Equal(t, "9", report.Summary.CycleProfit.String())
}

func TestBuildReport_Cyclic(t *testing.T) {
	s := steelWorks()
	s.Update("Iron", types.UpdatePatch{Inputs: types.Inputs{"Steel": decimal.NewFromInt(1)}})

	report, err := output.BuildReport("loop.hcl", s)
	require.NoError(t, err)

	assert.True(t, report.Cyclic)
	assert.Equal(t, []string{"Iron", "Steel", "Iron"}, report.Cycle)
	for _, item := range report.Items {
		assert.Nil(t, item.Net, item.Label)
		assert.Nil(t, item.Bottleneck, item.Label)
	}
	assert.Nil(t, report.Summary.CycleProfit)
}

func TestFormatters(t *testing.T) {
	report, err := output.BuildReport("steel.hcl", steelWorks())
	require.NoError(t, err)
	opts := output.Options{ShowInputs: true, Precision: 2, NoColor: true}

	t.Run("cli", func(t *testing.T) {
		f, err := output.Get("cli", opts)
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, f.Render(&buf, report))
		out := buf.String()
		assert.Contains(t, out, "Production Graph: steel.hcl")
		assert.Contains(t, out, "Steel")
		assert.Contains(t, out, "3.00")
		assert.Contains(t, out, "2×Iron")
		assert.NotContains(t, out, "\033[")
	})

	t.Run("markdown", func(t *testing.T) {
		f, err := output.Get("markdown", opts)
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, f.Render(&buf, report))
		assert.Contains(t, buf.String(), "| Steel | yes | 0.00 | 5.00 | 5 | 3.00 | 2 | 2×Iron |")
	})

	t.Run("json", func(t *testing.T) {
		f, err := output.Get("json", opts)
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, f.Render(&buf, report))

		var decoded output.Report
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, report.Fingerprint, decoded.Fingerprint)
		require.Len(t, decoded.Items, 3)
		assert.True(t, decoded.Items[1].Net.Equal(decimal.NewFromInt(3)))
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := output.Get("html", opts)
		assert.Error(t, err)
	})
}

func TestRegistry(t *testing.T) {
	r := output.NewRegistry()
	require.NoError(t, r.Register(output.NewJSONFormatter()))
	assert.Error(t, r.Register(output.NewJSONFormatter()))

	all := output.DefaultRegistry(output.Options{}).GetAll()
	require.Len(t, all, 3)
	assert.Equal(t, output.FormatCLI, all[0].Format())
}
