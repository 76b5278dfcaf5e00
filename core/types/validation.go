// Package types - Boundary validation
// The store trusts its callers; these checks belong to whoever builds
// InsertProps and UpdatePatch values from user input.
package types

import (
	"strings"

	"factory-graph/internal/errors"
)

// Validate checks insert props for values the engine does not accept.
// Storage of zero is allowed and means DefaultStorage.
func (p InsertProps) Validate() error {
	if strings.TrimSpace(p.Label) == "" {
		return errors.Input("item name is required")
	}
	if p.Cost.IsNegative() {
		return errors.Inputf("%s: cost can't be negative", p.Label)
	}
	if p.Profit.IsNegative() {
		return errors.Inputf("%s: profit can't be negative", p.Label)
	}
	if p.Storage < 0 {
		return errors.Inputf("%s: storage can't be negative", p.Label)
	}
	return validateInputs(p.Label, p.Inputs)
}

// Validate checks an update patch applied to the node labeled original
func (u UpdatePatch) Validate(original string) error {
	label := original
	if u.Label != nil {
		if strings.TrimSpace(*u.Label) == "" {
			return errors.Input("item name is required")
		}
		label = *u.Label
	}
	if u.Cost != nil && u.Cost.IsNegative() {
		return errors.Inputf("%s: cost can't be negative", label)
	}
	if u.Profit != nil && u.Profit.IsNegative() {
		return errors.Inputf("%s: profit can't be negative", label)
	}
	if u.Storage != nil && *u.Storage < 1 {
		return errors.Inputf("%s: storage must be at least 1", label)
	}
	if err := validateInputs(label, u.Inputs); err != nil {
		return err
	}
	if _, ok := u.Inputs[original]; ok && original != label {
		return errors.Inputf("%s: an item can't consume itself", label)
	}
	return nil
}

func validateInputs(label string, inputs Inputs) error {
	for _, in := range inputs.Labels() {
		if in == label {
			return errors.Inputf("%s: an item can't consume itself", label)
		}
		if !inputs[in].IsPositive() {
			return errors.Inputf("%s: quantity of %s must be positive", label, in)
		}
	}
	return nil
}
