package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propflow/internal/property"
)

func sampleProperty(id string) *property.Property {
	return &property.Property{
		ID:        id,
		Address:   "100 First St",
		City:      "Fort Worth",
		State:     "TX",
		ZipCode:   "76101",
		OwnerType: property.OwnerIndividual,
		Status:    property.StatusActive,
		Tags:      []string{"distressed"},
		Source:    "mock",
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("find missing returns ErrNotFound", func(t *testing.T) {
		s := NewMemoryStore()
		_, err := s.FindByID(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("insert then find", func(t *testing.T) {
		s := NewMemoryStore()
		require.NoError(t, s.Insert(ctx, sampleProperty("abc-123")))

		got, err := s.FindByID(ctx, "abc-123")
		require.NoError(t, err)
		assert.Equal(t, "100 First St", got.Address)
		assert.Equal(t, 1, s.Count())
	})

	t.Run("update missing returns ErrNotFound", func(t *testing.T) {
		s := NewMemoryStore()
		err := s.Update(ctx, sampleProperty("abc-123"))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("update overwrites", func(t *testing.T) {
		s := NewMemoryStore()
		require.NoError(t, s.Insert(ctx, sampleProperty("abc-123")))

		updated := sampleProperty("abc-123")
		updated.EstimatedValue = 250000
		require.NoError(t, s.Update(ctx, updated))

		got, err := s.FindByID(ctx, "abc-123")
		require.NoError(t, err)
		assert.InDelta(t, 250000, got.EstimatedValue, 1e-9)
		assert.Equal(t, 1, s.Count())
	})

	t.Run("returned copy does not alias the stored value", func(t *testing.T) {
		s := NewMemoryStore()
		require.NoError(t, s.Insert(ctx, sampleProperty("abc-123")))

		got, err := s.FindByID(ctx, "abc-123")
		require.NoError(t, err)
		got.Address = "mutated"

		again, err := s.FindByID(ctx, "abc-123")
		require.NoError(t, err)
		assert.Equal(t, "100 First St", again.Address)
	})

	t.Run("all returns a snapshot", func(t *testing.T) {
		s := NewMemoryStore()
		require.NoError(t, s.Insert(ctx, sampleProperty("a")))
		require.NoError(t, s.Insert(ctx, sampleProperty("b")))
		assert.Len(t, s.All(), 2)
	})
}
