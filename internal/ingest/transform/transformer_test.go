package transform

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propflow/internal/property"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func baseRecord() property.RawRecord {
	return property.RawRecord{
		Address: "123 Main St",
		City:    "Fort Worth",
		State:   "TX",
		ZipCode: "76101",
		Source:  "mock",
	}
}

func TestDeterministicID(t *testing.T) {
	t.Run("same address and coordinates yield the same id", func(t *testing.T) {
		a := baseRecord()
		a.Latitude = floatPtr(32.7555)
		a.Longitude = floatPtr(-97.3308)

		b := baseRecord()
		b.Latitude = floatPtr(32.7555)
		b.Longitude = floatPtr(-97.3308)
		b.OwnerName = "Somebody Else" // non-identity fields must not matter

		assert.Equal(t, DeterministicID(&a), DeterministicID(&b))
	})

	t.Run("missing coordinates hash the zero literal", func(t *testing.T) {
		a := baseRecord()
		b := baseRecord()
		assert.Equal(t, DeterministicID(&a), DeterministicID(&b))

		c := baseRecord()
		c.Latitude = floatPtr(32.7555)
		c.Longitude = floatPtr(-97.3308)
		assert.NotEqual(t, DeterministicID(&a), DeterministicID(&c))
	})

	t.Run("normalization ignores case and spacing", func(t *testing.T) {
		a := baseRecord()
		b := baseRecord()
		b.Address = "  123  MAIN st "
		assert.Equal(t, DeterministicID(&a), DeterministicID(&b))
	})

	t.Run("stable across randomized inputs", func(t *testing.T) {
		rng := rand.New(rand.NewSource(42))
		for i := 0; i < 200; i++ {
			rec := baseRecord()
			rec.Address = fmt.Sprintf("%d Elm St", rng.Intn(10000))
			rec.ZipCode = fmt.Sprintf("761%02d", rng.Intn(100))
			if rng.Intn(2) == 0 {
				rec.Latitude = floatPtr(32 + rng.Float64())
				rec.Longitude = floatPtr(-97 - rng.Float64())
			}
			clone := rec
			require.Equal(t, DeterministicID(&rec), DeterministicID(&clone))
		}
	})
}

func TestConditionInference(t *testing.T) {
	tr := New()

	cases := []struct {
		name      string
		mutate    func(*property.RawRecord)
		condition property.Condition
	}{
		{"distressed tag wins", func(r *property.RawRecord) {
			r.Tags = []string{"distressed"}
			r.YearBuilt = intPtr(2015)
		}, property.ConditionPoor},
		{"pre-1970 is fair", func(r *property.RawRecord) {
			r.YearBuilt = intPtr(1960)
		}, property.ConditionFair},
		{"pre-1990 is good", func(r *property.RawRecord) {
			r.YearBuilt = intPtr(1985)
		}, property.ConditionGood},
		{"modern is excellent", func(r *property.RawRecord) {
			r.YearBuilt = intPtr(2005)
		}, property.ConditionExcellent},
		{"missing year defaults to excellent", func(r *property.RawRecord) {}, property.ConditionExcellent},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := baseRecord()
			tc.mutate(&rec)
			out := tr.Transform([]property.RawRecord{rec})
			require.Len(t, out, 1)
			assert.Equal(t, tc.condition, out[0].Condition)
		})
	}
}

func TestInvestmentScore(t *testing.T) {
	t.Run("baseline record scores five", func(t *testing.T) {
		rec := baseRecord()
		assert.InDelta(t, 5.0, investmentScore(&rec), 1e-9)
	})

	t.Run("equity applies the highest tier only", func(t *testing.T) {
		rec := baseRecord()
		rec.EquityPercent = floatPtr(85)
		assert.InDelta(t, 7.0, investmentScore(&rec), 1e-9)

		rec.EquityPercent = floatPtr(65)
		assert.InDelta(t, 6.5, investmentScore(&rec), 1e-9)

		rec.EquityPercent = floatPtr(45)
		assert.InDelta(t, 6.0, investmentScore(&rec), 1e-9)

		rec.EquityPercent = floatPtr(20)
		assert.InDelta(t, 5.0, investmentScore(&rec), 1e-9)
	})

	t.Run("tag bonuses stack", func(t *testing.T) {
		rec := baseRecord()
		rec.Tags = []string{"pre-foreclosure", "tax-delinquent", "distressed"}
		assert.InDelta(t, 5.0+1.0+0.8+0.5, investmentScore(&rec), 1e-9)
	})

	t.Run("owner and property type bonuses", func(t *testing.T) {
		rec := baseRecord()
		rec.OwnerType = "llc"
		rec.PropertyType = "Multi-Family"
		assert.InDelta(t, 5.8, investmentScore(&rec), 1e-9)
	})

	t.Run("score is clamped to ten", func(t *testing.T) {
		rec := baseRecord()
		rec.EquityPercent = floatPtr(95)
		rec.PropertyType = "Multi-Family"
		rec.Tags = []string{"pre-foreclosure", "tax-delinquent", "distressed"}
		rec.OwnerType = "llc"
		assert.InDelta(t, 10.0, investmentScore(&rec), 1e-9)
	})

	t.Run("bounds hold for randomized records", func(t *testing.T) {
		rng := rand.New(rand.NewSource(7))
		allTags := []string{"distressed", "pre-foreclosure", "tax-delinquent"}
		for i := 0; i < 500; i++ {
			rec := baseRecord()
			rec.EquityPercent = floatPtr(rng.Float64() * 150)
			for _, tag := range allTags {
				if rng.Intn(2) == 0 {
					rec.Tags = append(rec.Tags, tag)
				}
			}
			score := investmentScore(&rec)
			require.GreaterOrEqual(t, score, 1.0)
			require.LessOrEqual(t, score, 10.0)
		}
	})
}

func TestARVEstimate(t *testing.T) {
	t.Run("worked example from the fair tier", func(t *testing.T) {
		rec := baseRecord()
		rec.YearBuilt = intPtr(1960)
		rec.EstimatedValue = floatPtr(200000)

		out := New().Transform([]property.RawRecord{rec})
		require.Len(t, out, 1)
		assert.Equal(t, property.ConditionFair, out[0].Condition)
		assert.InDelta(t, 240000, out[0].ARVEstimate, 1e-9)
	})

	t.Run("arv exceeds base value on every tier", func(t *testing.T) {
		for _, condition := range []property.Condition{
			property.ConditionPoor, property.ConditionFair,
			property.ConditionGood, property.ConditionExcellent,
		} {
			arv := arvEstimate(200000, condition)
			assert.Greater(t, arv, 200000.0, "condition %s", condition)
		}
	})

	t.Run("assessed value is the fallback base", func(t *testing.T) {
		rec := baseRecord()
		rec.AssessedValue = floatPtr(100000)
		rec.YearBuilt = intPtr(2010)

		out := New().Transform([]property.RawRecord{rec})
		assert.InDelta(t, 105000, out[0].ARVEstimate, 1e-9)
		assert.InDelta(t, 100000, out[0].MarketValue, 1e-9)
	})
}

func TestRehabEstimate(t *testing.T) {
	t.Run("worked example from the fair tier", func(t *testing.T) {
		assert.InDelta(t, 54000, rehabEstimate(intPtr(1800), property.ConditionFair), 1e-9)
	})

	t.Run("missing square footage defaults to 1500", func(t *testing.T) {
		assert.InDelta(t, 75000, rehabEstimate(nil, property.ConditionPoor), 1e-9)
		assert.InDelta(t, 7500, rehabEstimate(nil, property.ConditionExcellent), 1e-9)
	})
}

func TestDataConfidence(t *testing.T) {
	t.Run("base is one half", func(t *testing.T) {
		rec := property.RawRecord{Source: "mock"}
		assert.InDelta(t, 0.5, dataConfidence(&rec), 1e-9)
	})

	t.Run("full record caps at one", func(t *testing.T) {
		rec := baseRecord()
		rec.Latitude = floatPtr(32.75)
		rec.Longitude = floatPtr(-97.33)
		rec.AssessedValue = floatPtr(150000)
		rec.OwnerName = "Jane Doe"
		assert.InDelta(t, 1.0, dataConfidence(&rec), 1e-9)
	})

	t.Run("bounds hold for randomized records", func(t *testing.T) {
		rng := rand.New(rand.NewSource(11))
		tr := New()
		for i := 0; i < 300; i++ {
			rec := property.RawRecord{Source: "mock"}
			if rng.Intn(2) == 0 {
				rec = baseRecord()
			}
			if rng.Intn(2) == 0 {
				rec.OwnerName = "Owner"
			}
			if rng.Intn(2) == 0 {
				rec.EstimatedValue = floatPtr(rng.Float64() * 500000)
			}
			out := tr.Transform([]property.RawRecord{rec})
			require.GreaterOrEqual(t, out[0].DataConfidence, 0.0)
			require.LessOrEqual(t, out[0].DataConfidence, 1.0)
		}
	})
}

func TestTransformDefaults(t *testing.T) {
	tr := New()

	rec := property.RawRecord{Source: "county"}
	out := tr.Transform([]property.RawRecord{rec})
	require.Len(t, out, 1)

	p := out[0]
	assert.Equal(t, property.StatusActive, p.Status)
	assert.Equal(t, property.OwnerUnknown, p.OwnerType)
	assert.Equal(t, "unknown", p.PropertyType)
	assert.Equal(t, "unknown", p.MortgageStatus)
	assert.Equal(t, "county", p.Source)
	assert.NotNil(t, p.Tags)
	assert.Empty(t, p.Tags)
	assert.Zero(t, p.Bedrooms)
	assert.Zero(t, p.AssessedValue)
	assert.Zero(t, p.PricePerSqFt)
	assert.NotEmpty(t, p.ID)
}

func TestTransformIsOneToOne(t *testing.T) {
	tr := New()

	records := []property.RawRecord{baseRecord(), baseRecord(), {Source: "mock"}}
	out := tr.Transform(records)
	assert.Len(t, out, len(records))
}
