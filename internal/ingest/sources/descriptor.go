// Package sources defines the data-provider descriptors and the extractor
// adapters that pull raw, provider-shaped property records from them.
package sources

// SourceName identifies a known data provider.
type SourceName string

const (
	SourceAttom    SourceName = "attom"
	SourceCounty   SourceName = "county"
	SourceRentcast SourceName = "rentcast"
	SourceMock     SourceName = "mock"
)

// Cadence is how often a source should be refreshed.
type Cadence string

const (
	CadenceDaily   Cadence = "daily"
	CadenceWeekly  Cadence = "weekly"
	CadenceMonthly Cadence = "monthly"
)

// RateBudget is the provider-enforced request budget for a source.
type RateBudget struct {
	PerMinute int
	PerHour   int
}

// Descriptor names one data provider and everything needed to pull from it.
// Built once at registration time and immutable afterwards.
type Descriptor struct {
	Name SourceName

	// Priority is reserved for cross-source conflict resolution (lower is
	// preferred). No merge policy consumes it yet; ingestion stays
	// last-write-wins by run order.
	Priority int

	Cadence   Cadence
	Coverage  []string // region/ZIP codes this source is queried for
	APIKey    string   // optional provider credential
	RateLimit RateBudget
}

// HasCredential reports whether the descriptor carries a provider credential.
// Without one the factory degrades to the synthetic extractor.
func (d Descriptor) HasCredential() bool {
	return d.APIKey != ""
}
