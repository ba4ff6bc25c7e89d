// Package validate gates canonical entities on structural and business-rule
// correctness before they reach persistence.
package validate

import (
	"fmt"
	"math"

	"propflow/internal/property"
)

// Validator checks one canonical entity at a time. Checks are pure and share
// no state, so callers are free to fan them out concurrently.
type Validator struct{}

// New builds a validator.
func New() *Validator {
	return &Validator{}
}

// Validate applies every rule to the entity. Each failing rule appends an
// error and reduces confidence by a fixed penalty; warnings are informational
// only. Validity means no errors.
func (v *Validator) Validate(p *property.Property) property.ValidationResult {
	result := property.ValidationResult{
		Confidence: p.DataConfidence,
		Source:     p.Source,
	}

	if p.Address == "" {
		result.Errors = append(result.Errors, "address is required")
		result.Confidence -= 0.3
	}

	if p.City == "" || p.State == "" {
		result.Errors = append(result.Errors, "city and state are required")
		result.Confidence -= 0.2
	}

	if p.Latitude == 0 || p.Longitude == 0 {
		result.Warnings = append(result.Warnings, "missing coordinates")
		result.Confidence -= 0.1
	}

	if p.EquityPercent > 100 {
		result.Errors = append(result.Errors,
			fmt.Sprintf("equity percent %.1f exceeds 100%%", p.EquityPercent))
		result.Confidence -= 0.2
	}

	if p.AssessedValue < 0 || p.EstimatedValue < 0 {
		result.Errors = append(result.Errors, "property values cannot be negative")
		result.Confidence -= 0.2
	}

	if p.Bedrooms < 0 || p.Bathrooms < 0 {
		result.Errors = append(result.Errors, "room counts cannot be negative")
		result.Confidence -= 0.1
	}

	if len(p.Address) < 5 {
		result.Warnings = append(result.Warnings, "address looks too short")
		result.Confidence -= 0.05
	}

	result.Confidence = math.Max(result.Confidence, 0)
	result.Valid = len(result.Errors) == 0
	return result
}
