// Package hcl - CTY value conversion
// Numbers are carried as decimals so money values keep their exact
// written form. Unknown values are rejected rather than guessed.
package hcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/shopspring/decimal"
	"github.com/zclconf/go-cty/cty"

	"factory-graph/core/types"
)

// decimalFromCty converts a known, non-null number to a decimal
func decimalFromCty(val cty.Value) (decimal.Decimal, error) {
	if !val.IsKnown() {
		return decimal.Zero, fmt.Errorf("value is not known")
	}
	if val.IsNull() {
		return decimal.Zero, fmt.Errorf("value is null")
	}
	if val.Type() != cty.Number {
		return decimal.Zero, fmt.Errorf("expected a number, got %s", val.Type().FriendlyName())
	}
	return decimal.NewFromString(val.AsBigFloat().Text('f', -1))
}

// decodeDecimal evaluates an optional numeric attribute
func decodeDecimal(attrs hcl.Attributes, name string) (decimal.Decimal, hcl.Diagnostics) {
	attr, ok := attrs[name]
	if !ok {
		return decimal.Zero, nil
	}

	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return decimal.Zero, diags
	}
	d, err := decimalFromCty(val)
	if err != nil {
		return decimal.Zero, hcl.Diagnostics{attrDiag(attr, fmt.Sprintf("Invalid %s", name), err.Error())}
	}
	return d, nil
}

// decodeInt evaluates an optional whole-number attribute
func decodeInt(attrs hcl.Attributes, name string) (int64, hcl.Diagnostics) {
	attr, ok := attrs[name]
	if !ok {
		return 0, nil
	}

	var n int64
	diags := gohcl.DecodeExpression(attr.Expr, nil, &n)
	return n, diags
}

// decodeInputs evaluates the inputs attribute, an object of label = quantity
func decodeInputs(attrs hcl.Attributes) (types.Inputs, hcl.Diagnostics) {
	attr, ok := attrs["inputs"]
	if !ok {
		return nil, nil
	}

	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	if val.IsNull() {
		return nil, nil
	}
	if !val.Type().IsObjectType() && !val.Type().IsMapType() {
		return nil, hcl.Diagnostics{attrDiag(attr, "Invalid inputs",
			fmt.Sprintf("inputs must be an object of item = quantity, got %s", val.Type().FriendlyName()))}
	}

	inputs := make(types.Inputs, val.LengthInt())
	for it := val.ElementIterator(); it.Next(); {
		key, elem := it.Element()
		qty, err := decimalFromCty(elem)
		if err != nil {
			return nil, hcl.Diagnostics{attrDiag(attr, "Invalid input quantity",
				fmt.Sprintf("%s: %v", key.AsString(), err))}
		}
		inputs[key.AsString()] = qty
	}
	return inputs, nil
}

func attrDiag(attr *hcl.Attribute, summary, detail string) *hcl.Diagnostic {
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   detail,
		Subject:  attr.Expr.Range().Ptr(),
	}
}
