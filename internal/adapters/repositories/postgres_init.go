package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the Postgres schema for records, their linked waypoint-bearing
// entities, and persisted segments.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createRecordsQuery := `
	CREATE TABLE IF NOT EXISTS records (
		record_id TEXT PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createOrdersQuery := `
	CREATE TABLE IF NOT EXISTS orders (
		order_id TEXT PRIMARY KEY,
		record_id TEXT NOT NULL REFERENCES records(record_id),
		position INTEGER NOT NULL,
		pickup_lat DOUBLE PRECISION,
		pickup_lon DOUBLE PRECISION,
		restaurant_name TEXT,
		restaurant_lat DOUBLE PRECISION,
		restaurant_lon DOUBLE PRECISION
	);
	`

	createOrderRestaurantsQuery := `
	CREATE TABLE IF NOT EXISTS order_restaurants (
		order_id TEXT NOT NULL REFERENCES orders(order_id),
		position INTEGER NOT NULL,
		name TEXT,
		lat DOUBLE PRECISION,
		lon DOUBLE PRECISION,
		PRIMARY KEY (order_id, position)
	);
	`

	createCustomersQuery := `
	CREATE TABLE IF NOT EXISTS customers (
		record_id TEXT NOT NULL REFERENCES records(record_id),
		position INTEGER NOT NULL,
		name TEXT,
		lat DOUBLE PRECISION,
		lon DOUBLE PRECISION,
		PRIMARY KEY (record_id, position)
	);
	`

	createSegmentsQuery := `
	CREATE TABLE IF NOT EXISTS segments (
		record_id TEXT NOT NULL REFERENCES records(record_id),
		segment_hash TEXT NOT NULL,
		segment_type TEXT NOT NULL,
		from_lat DOUBLE PRECISION NOT NULL,
		from_lon DOUBLE PRECISION NOT NULL,
		to_lat DOUBLE PRECISION NOT NULL,
		to_lon DOUBLE PRECISION NOT NULL,
		from_index INTEGER NOT NULL,
		to_index INTEGER NOT NULL,
		order_id TEXT,
		distance_miles DOUBLE PRECISION,
		duration_text TEXT,
		duration_seconds INTEGER,
		calculated_at TIMESTAMPTZ,
		PRIMARY KEY (record_id, segment_hash)
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_orders_record_position
	ON orders(record_id, position);
	`

	statements := []string{
		createRecordsQuery,
		createOrdersQuery,
		createOrderRestaurantsQuery,
		createCustomersQuery,
		createSegmentsQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
