// Package hcl loads production graph definitions written in HCL.
//
// A definition file holds one item block per node:
//
//	item "Steel" {
//	  cost    = 0
//	  profit  = 5
//	  storage = 5
//	  stored  = 0
//	  inputs  = { Iron = 2 }
//	}
//
// Inputs may reference items declared later in the file.
package hcl

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"go.uber.org/zap"

	"factory-graph/core/graph"
	"factory-graph/core/types"
	"factory-graph/internal/errors"
	"factory-graph/internal/logging"
)

var fileSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "item", LabelNames: []string{"label"}},
	},
}

var itemSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "cost"},
		{Name: "profit"},
		{Name: "storage"},
		{Name: "stored"},
		{Name: "inputs"},
	},
}

// Item is one decoded item block
type Item struct {
	Props  types.InsertProps
	Stored int64
	Range  hcl.Range
}

// Definition is the decoded content of a definition file, items in file order
type Definition struct {
	Filename string
	Items    []Item
}

// Load reads and decodes a definition file
func Load(path string) (*Definition, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.TypeInput, "failed to read file "+path, err)
	}
	return Parse(src, path)
}

// Parse decodes definition source. filename is used in diagnostics only.
func Parse(src []byte, filename string) (*Definition, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, errors.Parsing("failed to parse "+filename, diags)
	}

	content, diags := file.Body.Content(fileSchema)
	if diags.HasErrors() {
		return nil, errors.Parsing("failed to decode "+filename, diags)
	}

	def := &Definition{Filename: filename}
	seen := make(map[string]hcl.Range)

	for _, block := range content.Blocks {
		label := block.Labels[0]
		if first, dup := seen[label]; dup {
			return nil, errors.DuplicateLabel(label).
				WithContext("range", block.DefRange.String()).
				WithContext("first", first.String())
		}
		seen[label] = block.DefRange

		item, err := decodeItem(block)
		if err != nil {
			return nil, err
		}
		def.Items = append(def.Items, item)
	}

	return def, nil
}

func decodeItem(block *hcl.Block) (Item, error) {
	label := block.Labels[0]
	fail := func(diags hcl.Diagnostics) (Item, error) {
		return Item{}, errors.Parsing(fmt.Sprintf("invalid item %q", label), diags)
	}

	attrs, diags := block.Body.Content(itemSchema)
	if diags.HasErrors() {
		return fail(diags)
	}

	item := Item{
		Props: types.InsertProps{Label: label},
		Range: block.DefRange,
	}

	if item.Props.Cost, diags = decodeDecimal(attrs.Attributes, "cost"); diags.HasErrors() {
		return fail(diags)
	}
	if item.Props.Profit, diags = decodeDecimal(attrs.Attributes, "profit"); diags.HasErrors() {
		return fail(diags)
	}
	if item.Props.Storage, diags = decodeInt(attrs.Attributes, "storage"); diags.HasErrors() {
		return fail(diags)
	}
	if item.Stored, diags = decodeInt(attrs.Attributes, "stored"); diags.HasErrors() {
		return fail(diags)
	}
	if item.Props.Inputs, diags = decodeInputs(attrs.Attributes); diags.HasErrors() {
		return fail(diags)
	}

	if _, set := attrs.Attributes["storage"]; set && item.Props.Storage < 1 {
		return Item{}, errors.Inputf("%s: storage must be at least 1", label).
			WithContext("range", block.DefRange.String())
	}
	if item.Stored < 0 {
		return Item{}, errors.Inputf("%s: stored can't be negative", label).
			WithContext("range", block.DefRange.String())
	}
	if err := item.Props.Validate(); err != nil {
		if e, ok := err.(*errors.Error); ok {
			e.WithContext("range", block.DefRange.String())
		}
		return Item{}, err
	}

	return item, nil
}

// Apply inserts every item into s. Nodes are created first and wired
// second, so inputs may point forward. An input naming an item that is
// neither in the definition nor already in s is an error. A label already
// present in s is an error; items applied before it stay in s.
func (d *Definition) Apply(s *graph.Store) error {
	logger := logging.Named("loader")

	for _, item := range d.Items {
		props := item.Props
		props.Inputs = nil
		if s.Insert(props) == graph.InsertDuplicate {
			return errors.DuplicateLabel(props.Label).WithContext("range", item.Range.String())
		}
		if item.Stored > 0 {
			s.SetStored(props.Label, item.Stored)
		}
	}

	for _, item := range d.Items {
		if len(item.Props.Inputs) == 0 {
			continue
		}
		for _, in := range item.Props.Inputs.Labels() {
			if !s.Has(in) {
				return errors.UnknownLabel(in).
					WithContext("item", item.Props.Label).
					WithContext("range", item.Range.String())
			}
		}
		s.Update(item.Props.Label, types.UpdatePatch{Inputs: item.Props.Inputs})
	}

	checker := graph.NewInvariantChecker(false)
	if err := checker.RunFullCheck(s); err != nil {
		logger.Error("store inconsistent after load",
			zap.String("file", d.Filename),
			zap.Int("violations", len(checker.GetViolations())),
			zap.Error(err),
		)
		return errors.Internal("store inconsistent after loading "+d.Filename, err)
	}

	logger.Debug("applied definition",
		zap.String("file", d.Filename),
		zap.Int("items", len(d.Items)),
	)
	return nil
}

// LoadStore reads path into a new store built with opts
func LoadStore(path string, opts ...graph.StoreOption) (*graph.Store, error) {
	def, err := Load(path)
	if err != nil {
		return nil, err
	}
	return def.Store(opts...)
}

// ParseStore decodes src into a new store built with opts
func ParseStore(src []byte, filename string, opts ...graph.StoreOption) (*graph.Store, error) {
	def, err := Parse(src, filename)
	if err != nil {
		return nil, err
	}
	return def.Store(opts...)
}

// Store applies d to a new store built with opts
func (d *Definition) Store(opts ...graph.StoreOption) (*graph.Store, error) {
	s := graph.NewStore(opts...)
	if err := d.Apply(s); err != nil {
		return nil, err
	}
	return s, nil
}
