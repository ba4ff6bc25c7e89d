// Package property defines the canonical property schema that every data
// source is normalized into, plus the transient record and result types the
// ingest pipeline passes between stages.
package property

import (
	"encoding/json"
	"time"
)

// Condition buckets the physical state of a property.
type Condition string

const (
	ConditionPoor      Condition = "poor"
	ConditionFair      Condition = "fair"
	ConditionGood      Condition = "good"
	ConditionExcellent Condition = "excellent"
)

// OwnerType is the fixed taxonomy every provider's owner vocabulary is
// mapped into.
type OwnerType string

const (
	OwnerIndividual  OwnerType = "individual"
	OwnerLLC         OwnerType = "llc"
	OwnerCorporation OwnerType = "corporation"
	OwnerTrust       OwnerType = "trust"
	OwnerPartnership OwnerType = "partnership"
	OwnerAbsentee    OwnerType = "absentee"
	OwnerUnknown     OwnerType = "unknown"
)

// IsValid checks if an owner type is part of the taxonomy.
func (t OwnerType) IsValid() bool {
	switch t {
	case OwnerIndividual, OwnerLLC, OwnerCorporation, OwnerTrust,
		OwnerPartnership, OwnerAbsentee, OwnerUnknown:
		return true
	}
	return false
}

// Status tracks the lifecycle of a canonical property record.
type Status string

const (
	StatusActive   Status = "active"
	StatusPending  Status = "pending"
	StatusSold     Status = "sold"
	StatusInactive Status = "inactive"
)

// Property is the canonical entity all providers are reconciled into.
// ID is a deterministic function of the normalized address and coordinates
// and is the sole idempotency key for persistence.
type Property struct {
	ID string `json:"id"`

	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	OwnerName string    `json:"owner_name"`
	OwnerType OwnerType `json:"owner_type"`

	PropertyType string  `json:"property_type"`
	Bedrooms     int     `json:"bedrooms"`
	Bathrooms    float64 `json:"bathrooms"`
	SquareFeet   int     `json:"square_feet"`
	LotSize      float64 `json:"lot_size"`
	YearBuilt    int     `json:"year_built"`

	AssessedValue  float64 `json:"assessed_value"`
	EstimatedValue float64 `json:"estimated_value"`
	EquityPercent  float64 `json:"equity_percent"`
	MortgageStatus string  `json:"mortgage_status"`
	LienStatus     string  `json:"lien_status"`

	Tags   []string `json:"tags"`
	Status Status   `json:"status"`
	Source string   `json:"source"`

	// Derived investment metrics, computed once by the transformer.
	InvestmentScore float64   `json:"investment_score"`
	ARVEstimate     float64   `json:"arv_estimate"`
	RehabEstimate   float64   `json:"rehab_estimate"`
	MarketValue     float64   `json:"market_value"`
	Condition       Condition `json:"condition"`
	PricePerSqFt    float64   `json:"price_per_sqft"`

	DataConfidence float64   `json:"data_confidence"`
	LastUpdated    time.Time `json:"last_updated"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// HasTag reports whether the property carries the given tag.
func (p *Property) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// RawRecord is the provider-shaped intermediate produced by an extractor and
// consumed immediately by the transformer. Optional fields are pointers so a
// missing value is distinguishable from a zero. RawData preserves the original
// provider response for audit only; core logic never inspects it.
type RawRecord struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`

	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	OwnerName string `json:"owner_name,omitempty"`
	OwnerType string `json:"owner_type,omitempty"`

	PropertyType   string   `json:"property_type,omitempty"`
	Bedrooms       *int     `json:"bedrooms,omitempty"`
	Bathrooms      *float64 `json:"bathrooms,omitempty"`
	SquareFeet     *int     `json:"square_feet,omitempty"`
	LotSize        *float64 `json:"lot_size,omitempty"`
	YearBuilt      *int     `json:"year_built,omitempty"`
	AssessedValue  *float64 `json:"assessed_value,omitempty"`
	EstimatedValue *float64 `json:"estimated_value,omitempty"`
	EquityPercent  *float64 `json:"equity_percent,omitempty"`
	MortgageStatus string   `json:"mortgage_status,omitempty"`
	LienStatus     string   `json:"lien_status,omitempty"`

	Tags   []string `json:"tags,omitempty"`
	Source string   `json:"source"`

	RawData json.RawMessage `json:"raw_data,omitempty"`
}

// HasTag reports whether the raw record carries the given tag.
func (r *RawRecord) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
