// Package transform normalizes raw provider records into canonical property
// entities and computes their derived investment metrics.
package transform

import (
	"math"
	"strconv"
	"strings"
	"time"

	"propflow/internal/property"
)

// Transformer is a pure normalizer: one canonical entity per raw record,
// every field defaulted, never an error.
type Transformer struct {
	now func() time.Time
}

// New builds a transformer.
func New() *Transformer {
	return &Transformer{now: time.Now}
}

// Transform converts every raw record into a canonical entity, 1:1.
func (t *Transformer) Transform(records []property.RawRecord) []property.Property {
	now := t.now()
	out := make([]property.Property, 0, len(records))
	for i := range records {
		out = append(out, t.transformOne(&records[i], now))
	}
	return out
}

func (t *Transformer) transformOne(r *property.RawRecord, now time.Time) property.Property {
	condition := inferCondition(r)
	baseValue := baseValue(r)

	sqft := 0
	if r.SquareFeet != nil {
		sqft = *r.SquareFeet
	}

	p := property.Property{
		ID:      DeterministicID(r),
		Address: r.Address,
		City:    r.City,
		State:   r.State,
		ZipCode: r.ZipCode,

		OwnerName: r.OwnerName,
		OwnerType: ownerType(r.OwnerType),

		PropertyType:   stringOr(r.PropertyType, "unknown"),
		Bedrooms:       intOr(r.Bedrooms),
		Bathrooms:      floatOr(r.Bathrooms),
		SquareFeet:     sqft,
		LotSize:        floatOr(r.LotSize),
		YearBuilt:      intOr(r.YearBuilt),
		AssessedValue:  floatOr(r.AssessedValue),
		EstimatedValue: floatOr(r.EstimatedValue),
		EquityPercent:  floatOr(r.EquityPercent),
		MortgageStatus: stringOr(r.MortgageStatus, "unknown"),
		LienStatus:     stringOr(r.LienStatus, "unknown"),

		Tags:   tagsOr(r.Tags),
		Status: property.StatusActive,
		Source: r.Source,

		Condition:       condition,
		InvestmentScore: investmentScore(r),
		ARVEstimate:     arvEstimate(baseValue, condition),
		RehabEstimate:   rehabEstimate(r.SquareFeet, condition),
		MarketValue:     baseValue,

		DataConfidence: dataConfidence(r),
		LastUpdated:    now,
	}

	if r.Latitude != nil {
		p.Latitude = *r.Latitude
	}
	if r.Longitude != nil {
		p.Longitude = *r.Longitude
	}
	if sqft > 0 && baseValue > 0 {
		p.PricePerSqFt = baseValue / float64(sqft)
	}

	return p
}

// DeterministicID derives the entity's idempotency key from its normalized
// address and coordinates: base36 of a 32-bit rolling hash of each part,
// joined with a dash. The same address and coordinates always hash to the
// same id, across runs and processes.
func DeterministicID(r *property.RawRecord) string {
	addrHash := hash32(normalizeAddress(r))

	coordKey := "0"
	if r.Latitude != nil && r.Longitude != nil {
		coordKey = strconv.FormatFloat(*r.Latitude, 'f', -1, 64) + "," +
			strconv.FormatFloat(*r.Longitude, 'f', -1, 64)
	}
	coordHash := hash32(coordKey)

	return base36Abs(addrHash) + "-" + base36Abs(coordHash)
}

func normalizeAddress(r *property.RawRecord) string {
	joined := r.Address + " " + r.City + " " + r.State + " " + r.ZipCode
	return strings.Join(strings.Fields(strings.ToLower(joined)), " ")
}

// hash32 is the classic 31-multiplier rolling hash over 32-bit arithmetic.
func hash32(s string) int32 {
	var h int32
	for _, c := range s {
		h = h*31 + int32(c)
	}
	return h
}

func base36Abs(h int32) string {
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return strconv.FormatInt(v, 36)
}

// inferCondition buckets condition from the distressed tag and build year.
// A missing build year lands in the excellent bucket.
func inferCondition(r *property.RawRecord) property.Condition {
	if r.HasTag("distressed") {
		return property.ConditionPoor
	}
	if r.YearBuilt != nil {
		if *r.YearBuilt < 1970 {
			return property.ConditionFair
		}
		if *r.YearBuilt < 1990 {
			return property.ConditionGood
		}
	}
	return property.ConditionExcellent
}

// investmentScore ranks a record 1-10 from equity, property type, distress
// tags, and owner type. Equity applies the highest matching tier only; tag
// bonuses stack.
func investmentScore(r *property.RawRecord) float64 {
	score := 5.0

	equity := floatOr(r.EquityPercent)
	switch {
	case equity >= 80:
		score += 2.0
	case equity >= 60:
		score += 1.5
	case equity >= 40:
		score += 1.0
	}

	switch r.PropertyType {
	case "Multi-Family":
		score += 0.5
	case "Commercial":
		score += 0.3
	}

	if r.HasTag("pre-foreclosure") {
		score += 1.0
	}
	if r.HasTag("tax-delinquent") {
		score += 0.8
	}
	if r.HasTag("distressed") {
		score += 0.5
	}

	switch ownerType(r.OwnerType) {
	case property.OwnerLLC:
		score += 0.3
	case property.OwnerCorporation:
		score += 0.2
	}

	return clamp(score, 1.0, 10.0)
}

var arvMultipliers = map[property.Condition]float64{
	property.ConditionPoor:      1.4,
	property.ConditionFair:      1.2,
	property.ConditionGood:      1.1,
	property.ConditionExcellent: 1.05,
}

// arvEstimate is the condition-weighted after-repair value. Every multiplier
// exceeds 1.0, so ARV never drops below the base value.
func arvEstimate(baseValue float64, condition property.Condition) float64 {
	return math.Round(baseValue * arvMultipliers[condition])
}

var rehabCostPerSqFt = map[property.Condition]float64{
	property.ConditionPoor:      50,
	property.ConditionFair:      30,
	property.ConditionGood:      15,
	property.ConditionExcellent: 5,
}

const defaultSquareFeet = 1500

func rehabEstimate(squareFeet *int, condition property.Condition) float64 {
	sqft := defaultSquareFeet
	if squareFeet != nil {
		sqft = *squareFeet
	}
	return math.Round(float64(sqft) * rehabCostPerSqFt[condition])
}

// dataConfidence estimates completeness of one record: 0.5 base plus bonuses
// for a full address, coordinates, any valuation, and an owner name.
func dataConfidence(r *property.RawRecord) float64 {
	confidence := 0.5
	if r.Address != "" && r.City != "" && r.State != "" && r.ZipCode != "" {
		confidence += 0.2
	}
	if r.Latitude != nil && r.Longitude != nil {
		confidence += 0.1
	}
	if r.AssessedValue != nil || r.EstimatedValue != nil {
		confidence += 0.1
	}
	if r.OwnerName != "" {
		confidence += 0.1
	}
	return math.Min(confidence, 1.0)
}

func baseValue(r *property.RawRecord) float64 {
	if r.EstimatedValue != nil {
		return *r.EstimatedValue
	}
	if r.AssessedValue != nil {
		return *r.AssessedValue
	}
	return 0
}

func ownerType(raw string) property.OwnerType {
	t := property.OwnerType(strings.ToLower(raw))
	if t.IsValid() {
		return t
	}
	return property.OwnerUnknown
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func stringOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func intOr(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func floatOr(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func tagsOr(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
