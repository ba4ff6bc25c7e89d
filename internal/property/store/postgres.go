package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"propflow/internal/property"
)

// PostgresStore persists canonical properties in PostgreSQL, one row per
// deterministic id. Row-level concurrency control is the database's; the
// store adds no client-side locking.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a PostgreSQL-backed property store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const propertyColumns = `
	id, address, city, state, zip_code, latitude, longitude,
	owner_name, owner_type, property_type, bedrooms, bathrooms,
	square_feet, lot_size, year_built, assessed_value, estimated_value,
	equity_percent, mortgage_status, lien_status, tags, status, source,
	investment_score, arv_estimate, rehab_estimate, market_value,
	condition, price_per_sqft, data_confidence, last_updated,
	created_at, updated_at`

// FindByID fetches one property by its deterministic id.
func (s *PostgresStore) FindByID(ctx context.Context, id string) (*property.Property, error) {
	query := `SELECT` + propertyColumns + ` FROM properties WHERE id = $1`

	var p property.Property
	var tags pq.StringArray
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Address, &p.City, &p.State, &p.ZipCode, &p.Latitude, &p.Longitude,
		&p.OwnerName, &p.OwnerType, &p.PropertyType, &p.Bedrooms, &p.Bathrooms,
		&p.SquareFeet, &p.LotSize, &p.YearBuilt, &p.AssessedValue, &p.EstimatedValue,
		&p.EquityPercent, &p.MortgageStatus, &p.LienStatus, &tags, &p.Status, &p.Source,
		&p.InvestmentScore, &p.ARVEstimate, &p.RehabEstimate, &p.MarketValue,
		&p.Condition, &p.PricePerSqFt, &p.DataConfidence, &p.LastUpdated,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find property: %w", err)
	}
	p.Tags = []string(tags)
	return &p, nil
}

// Insert adds a new property row.
func (s *PostgresStore) Insert(ctx context.Context, p *property.Property) error {
	query := `
		INSERT INTO properties (` + propertyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27,
			$28, $29, $30, $31, $32, $33)
	`
	_, err := s.db.ExecContext(ctx, query,
		p.ID, p.Address, p.City, p.State, p.ZipCode, p.Latitude, p.Longitude,
		p.OwnerName, p.OwnerType, p.PropertyType, p.Bedrooms, p.Bathrooms,
		p.SquareFeet, p.LotSize, p.YearBuilt, p.AssessedValue, p.EstimatedValue,
		p.EquityPercent, p.MortgageStatus, p.LienStatus, pq.Array(p.Tags), p.Status, p.Source,
		p.InvestmentScore, p.ARVEstimate, p.RehabEstimate, p.MarketValue,
		p.Condition, p.PricePerSqFt, p.DataConfidence, p.LastUpdated,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert property: %w", err)
	}
	return nil
}

// Update overwrites every field of an existing property row.
func (s *PostgresStore) Update(ctx context.Context, p *property.Property) error {
	query := `
		UPDATE properties SET
			address = $2, city = $3, state = $4, zip_code = $5,
			latitude = $6, longitude = $7, owner_name = $8, owner_type = $9,
			property_type = $10, bedrooms = $11, bathrooms = $12,
			square_feet = $13, lot_size = $14, year_built = $15,
			assessed_value = $16, estimated_value = $17, equity_percent = $18,
			mortgage_status = $19, lien_status = $20, tags = $21, status = $22,
			source = $23, investment_score = $24, arv_estimate = $25,
			rehab_estimate = $26, market_value = $27, condition = $28,
			price_per_sqft = $29, data_confidence = $30, last_updated = $31,
			updated_at = $32
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		p.ID, p.Address, p.City, p.State, p.ZipCode,
		p.Latitude, p.Longitude, p.OwnerName, p.OwnerType,
		p.PropertyType, p.Bedrooms, p.Bathrooms,
		p.SquareFeet, p.LotSize, p.YearBuilt,
		p.AssessedValue, p.EstimatedValue, p.EquityPercent,
		p.MortgageStatus, p.LienStatus, pq.Array(p.Tags), p.Status,
		p.Source, p.InvestmentScore, p.ARVEstimate,
		p.RehabEstimate, p.MarketValue, p.Condition,
		p.PricePerSqFt, p.DataConfidence, p.LastUpdated,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update property: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update property: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
