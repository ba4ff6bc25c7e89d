// Package store provides the persistence backends for canonical properties:
// in-memory, PostgreSQL, and Redis. All three satisfy the loader's keyed
// upsert contract.
package store

import "errors"

// ErrNotFound is returned when no property exists for the requested id.
var ErrNotFound = errors.New("property not found")

// Schema creates the properties table. Applied by deployment tooling in
// production and by the integration test harness locally.
const Schema = `
CREATE TABLE IF NOT EXISTS properties (
	id               TEXT PRIMARY KEY,
	address          TEXT NOT NULL,
	city             TEXT NOT NULL DEFAULT '',
	state            TEXT NOT NULL DEFAULT '',
	zip_code         TEXT NOT NULL DEFAULT '',
	latitude         DOUBLE PRECISION NOT NULL DEFAULT 0,
	longitude        DOUBLE PRECISION NOT NULL DEFAULT 0,
	owner_name       TEXT NOT NULL DEFAULT '',
	owner_type       TEXT NOT NULL DEFAULT 'unknown',
	property_type    TEXT NOT NULL DEFAULT 'unknown',
	bedrooms         INTEGER NOT NULL DEFAULT 0,
	bathrooms        DOUBLE PRECISION NOT NULL DEFAULT 0,
	square_feet      INTEGER NOT NULL DEFAULT 0,
	lot_size         DOUBLE PRECISION NOT NULL DEFAULT 0,
	year_built       INTEGER NOT NULL DEFAULT 0,
	assessed_value   DOUBLE PRECISION NOT NULL DEFAULT 0,
	estimated_value  DOUBLE PRECISION NOT NULL DEFAULT 0,
	equity_percent   DOUBLE PRECISION NOT NULL DEFAULT 0,
	mortgage_status  TEXT NOT NULL DEFAULT 'unknown',
	lien_status      TEXT NOT NULL DEFAULT 'unknown',
	tags             TEXT[] NOT NULL DEFAULT '{}',
	status           TEXT NOT NULL DEFAULT 'active',
	source           TEXT NOT NULL DEFAULT '',
	investment_score DOUBLE PRECISION NOT NULL DEFAULT 0,
	arv_estimate     DOUBLE PRECISION NOT NULL DEFAULT 0,
	rehab_estimate   DOUBLE PRECISION NOT NULL DEFAULT 0,
	market_value     DOUBLE PRECISION NOT NULL DEFAULT 0,
	condition        TEXT NOT NULL DEFAULT 'excellent',
	price_per_sqft   DOUBLE PRECISION NOT NULL DEFAULT 0,
	data_confidence  DOUBLE PRECISION NOT NULL DEFAULT 0,
	last_updated     TIMESTAMPTZ NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL,
	updated_at       TIMESTAMPTZ NOT NULL
);
`
