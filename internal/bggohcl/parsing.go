package bggohcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
)

// FindUniqueBlock returns the only block of the given type in blocks, or nil
// when there is none. Every further block of that type produces a
// diagnostic pointing back at the first definition.
func FindUniqueBlock(blocks hcl.Blocks, blockType string) (*hcl.Block, hcl.Diagnostics) {
	var (
		found *hcl.Block
		diags hcl.Diagnostics
	)
	for _, block := range blocks {
		if block.Type != blockType {
			continue
		}
		if found != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  fmt.Sprintf("Duplicate %q block", blockType),
				Detail:   fmt.Sprintf("Only one %q block is allowed; the first one is defined at %s.", blockType, found.DefRange),
				Subject:  block.DefRange.Ptr(),
			})
			continue
		}
		found = block
	}
	return found, diags
}
