package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propflow/internal/ingest/ratelimit"
)

const rentcastFixture = `[
	{
		"addressLine1": "912 Hemphill St",
		"city": "Fort Worth",
		"state": "TX",
		"zipCode": "76104",
		"latitude": 32.7312,
		"longitude": -97.3301,
		"propertyType": "Single Family",
		"bedrooms": 3,
		"bathrooms": 1.5,
		"squareFootage": 1280,
		"yearBuilt": 1948,
		"taxAssessedValue": 98000,
		"estimatedValue": 142000,
		"ownerOccupied": false,
		"owner": {"names": ["MARTINEZ ANA"], "type": "Individual"}
	},
	{
		"addressLine1": "918 Hemphill St",
		"city": "Fort Worth",
		"state": "TX",
		"zipCode": "76104",
		"propertyType": "Quadplex",
		"owner": {"names": [], "type": "Organization"}
	}
]`

func TestRentcastExtract(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "rc-key", r.Header.Get("X-Api-Key"))
		assert.Equal(t, "76104", r.URL.Query().Get("zipCode"))
		w.Write([]byte(rentcastFixture))
	}))
	t.Cleanup(server.Close)

	e := NewRentcastExtractor(server.URL, "rc-key", server.Client(), ratelimit.New(0, 0), nil)

	records, err := e.Extract(context.Background(), Descriptor{
		Name:     SourceRentcast,
		Coverage: []string{"76104"},
		APIKey:   "rc-key",
	})
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "912 Hemphill St", first.Address)
	assert.Equal(t, "Single-Family", first.PropertyType)
	assert.Equal(t, "MARTINEZ ANA", first.OwnerName)
	// Individual owner not occupying the home reads as absentee.
	assert.Equal(t, "absentee", first.OwnerType)
	require.NotNil(t, first.EstimatedValue)
	assert.InDelta(t, 142000, *first.EstimatedValue, 1e-9)
	assert.Equal(t, "rentcast", first.Source)
	assert.NotEmpty(t, first.RawData)

	second := records[1]
	// Unmapped types pass through verbatim; organizations map to corporation.
	assert.Equal(t, "Quadplex", second.PropertyType)
	assert.Equal(t, "corporation", second.OwnerType)
	assert.Empty(t, second.OwnerName)
	assert.Nil(t, second.EstimatedValue)
}
