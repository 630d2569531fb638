package entities

import (
	pkgerrors "github.com/alfhazis/infinite-canvas-creator-sub001/pkg/errors"
)

// VariationCategory is the closed set of assembly categories a generated
// variation can belong to.
type VariationCategory string

const (
	CategoryHeader    VariationCategory = "header"
	CategoryHero      VariationCategory = "hero"
	CategoryFeatures  VariationCategory = "features"
	CategoryPricing   VariationCategory = "pricing"
	CategoryFooter    VariationCategory = "footer"
	CategoryDashboard VariationCategory = "dashboard"
	CategoryMobile    VariationCategory = "mobile"
)

// IsValid reports whether c is a known category
func (c VariationCategory) IsValid() bool {
	switch c {
	case CategoryHeader, CategoryHero, CategoryFeatures, CategoryPricing,
		CategoryFooter, CategoryDashboard, CategoryMobile:
		return true
	}
	return false
}

// Variation is an immutable, previously-generated candidate node body.
// Variations are read-only inputs to node creation.
type Variation struct {
	ID          string            `json:"id"`
	Label       string            `json:"label"`
	Description string            `json:"description"`
	PreviewHTML string            `json:"previewHtml"`
	Code        string            `json:"code"`
	Category    VariationCategory `json:"category"`
}

// Validate checks the variation's required fields and category
func (v Variation) Validate() error {
	if v.Label == "" {
		return pkgerrors.NewValidationError("variation label cannot be empty")
	}
	if !v.Category.IsValid() {
		return pkgerrors.NewValidationError("unknown variation category: " + string(v.Category))
	}
	return nil
}
