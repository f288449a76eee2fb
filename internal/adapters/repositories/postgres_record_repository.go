package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"route-segment-cache/internal/domain"
)

// Postgres-backed implementation of the RecordRepository port.
type PostgresRecordRepository struct {
	DB *sql.DB
}

func NewPostgresRecordRepository(db *sql.DB) *PostgresRecordRepository {
	return &PostgresRecordRepository{DB: db}
}

// Return every record id, for the backfill scan.
func (p *PostgresRecordRepository) ListRecordIDs(ctx context.Context) ([]string, error) {
	if p.DB == nil {
		return nil, errors.New("record repository: DB is nil")
	}

	q := `
	SELECT record_id
	FROM records
	ORDER BY record_id;
	`
	rows, err := p.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list record ids: query records table: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0, 64)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list record ids: scan row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list record ids: row iteration: %w", err)
	}

	return ids, nil
}

// Retrieve one record with its linked orders, restaurants, customers, and
// persisted segments.
func (p *PostgresRecordRepository) GetRecord(ctx context.Context, id string) (*domain.Record, error) {
	if p.DB == nil {
		return nil, errors.New("record repository: DB is nil")
	}

	var exists bool
	if err := p.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM records WHERE record_id = $1);`, id,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("get record %q: check existence: %w", id, err)
	}
	if !exists {
		return nil, fmt.Errorf("get record %q: %w", id, domain.ErrRecordNotFound)
	}

	rec := &domain.Record{ID: id}

	orders, err := p.loadOrders(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get record %q: %w", id, err)
	}
	rec.Orders = orders

	customers, err := p.loadCustomers(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get record %q: %w", id, err)
	}
	rec.Customers = customers

	segments, err := p.loadSegments(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get record %q: %w", id, err)
	}
	rec.Segments = segments

	return rec, nil
}

func (p *PostgresRecordRepository) loadOrders(ctx context.Context, recordID string) ([]domain.Order, error) {
	q := `
	SELECT order_id, pickup_lat, pickup_lon, restaurant_name, restaurant_lat, restaurant_lon
	FROM orders
	WHERE record_id = $1
	ORDER BY position;
	`
	rows, err := p.DB.QueryContext(ctx, q, recordID)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0, 2)
	for rows.Next() {
		var o domain.Order
		var name sql.NullString
		var pickupLat, pickupLon, lat, lon sql.NullFloat64
		if err := rows.Scan(&o.ID, &pickupLat, &pickupLon, &name, &lat, &lon); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.PickupLat = nullableFloat(pickupLat)
		o.PickupLon = nullableFloat(pickupLon)
		o.Main = domain.Restaurant{Name: name.String, Lat: nullableFloat(lat), Lon: nullableFloat(lon)}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("order iteration: %w", err)
	}

	for i := range orders {
		additional, err := p.loadAdditionalRestaurants(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Additional = additional
	}

	return orders, nil
}

func (p *PostgresRecordRepository) loadAdditionalRestaurants(ctx context.Context, orderID string) ([]domain.Restaurant, error) {
	q := `
	SELECT name, lat, lon
	FROM order_restaurants
	WHERE order_id = $1
	ORDER BY position;
	`
	rows, err := p.DB.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order restaurants: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Restaurant, 0, 2)
	for rows.Next() {
		var name sql.NullString
		var lat, lon sql.NullFloat64
		if err := rows.Scan(&name, &lat, &lon); err != nil {
			return nil, fmt.Errorf("scan order restaurant: %w", err)
		}
		out = append(out, domain.Restaurant{Name: name.String, Lat: nullableFloat(lat), Lon: nullableFloat(lon)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("order restaurant iteration: %w", err)
	}

	return out, nil
}

func (p *PostgresRecordRepository) loadCustomers(ctx context.Context, recordID string) ([]domain.Customer, error) {
	q := `
	SELECT name, lat, lon
	FROM customers
	WHERE record_id = $1
	ORDER BY position;
	`
	rows, err := p.DB.QueryContext(ctx, q, recordID)
	if err != nil {
		return nil, fmt.Errorf("query customers: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Customer, 0, 2)
	for rows.Next() {
		var name sql.NullString
		var lat, lon sql.NullFloat64
		if err := rows.Scan(&name, &lat, &lon); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		out = append(out, domain.Customer{Name: name.String, Lat: nullableFloat(lat), Lon: nullableFloat(lon)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("customer iteration: %w", err)
	}

	return out, nil
}

func (p *PostgresRecordRepository) loadSegments(ctx context.Context, recordID string) ([]domain.Segment, error) {
	q := `
	SELECT segment_hash, segment_type,
		from_lat, from_lon, to_lat, to_lon,
		from_index, to_index, order_id,
		distance_miles, duration_text, duration_seconds, calculated_at
	FROM segments
	WHERE record_id = $1;
	`
	rows, err := p.DB.QueryContext(ctx, q, recordID)
	if err != nil {
		return nil, fmt.Errorf("query segments: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Segment, 0, 8)
	for rows.Next() {
		var s domain.Segment
		var typ string
		var orderID, durationText sql.NullString
		var miles sql.NullFloat64
		var seconds sql.NullInt64
		var calculatedAt sql.NullTime
		if err := rows.Scan(
			&s.Hash, &typ,
			&s.FromLat, &s.FromLon, &s.ToLat, &s.ToLon,
			&s.FromIndex, &s.ToIndex, &orderID,
			&miles, &durationText, &seconds, &calculatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}

		s.Type = domain.SegmentType(typ)
		s.OrderID = orderID.String
		s.DistanceMiles = nullableFloat(miles)
		s.DurationText = durationText.String
		if seconds.Valid {
			v := int(seconds.Int64)
			s.DurationSeconds = &v
		}
		if calculatedAt.Valid {
			t := calculatedAt.Time
			s.CalculatedAt = &t
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("segment iteration: %w", err)
	}

	return out, nil
}

// Upsert newly computed segments onto the record, keyed by segment hash.
func (p *PostgresRecordRepository) UpsertSegments(ctx context.Context, recordID string, segments []domain.Segment) error {
	if p.DB == nil {
		return errors.New("record repository: DB is nil")
	}

	if len(segments) == 0 {
		return nil
	}

	tx, err := p.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("upsert segments: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO segments (
		record_id, segment_hash, segment_type,
		from_lat, from_lon, to_lat, to_lon,
		from_index, to_index, order_id,
		distance_miles, duration_text, duration_seconds, calculated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	ON CONFLICT (record_id, segment_hash) DO UPDATE
	SET segment_type = EXCLUDED.segment_type,
		from_lat = EXCLUDED.from_lat,
		from_lon = EXCLUDED.from_lon,
		to_lat = EXCLUDED.to_lat,
		to_lon = EXCLUDED.to_lon,
		from_index = EXCLUDED.from_index,
		to_index = EXCLUDED.to_index,
		order_id = EXCLUDED.order_id,
		distance_miles = EXCLUDED.distance_miles,
		duration_text = EXCLUDED.duration_text,
		duration_seconds = EXCLUDED.duration_seconds,
		calculated_at = EXCLUDED.calculated_at;
	`)
	if err != nil {
		return fmt.Errorf("upsert segments: db prepare: %w", err)
	}
	defer stmt.Close()

	for _, s := range segments {
		if s.Hash == "" {
			return fmt.Errorf("upsert segments: empty segment hash for record %q", recordID)
		}

		var orderID any
		if s.OrderID != "" {
			orderID = s.OrderID
		}
		var calculatedAt any
		if s.CalculatedAt != nil {
			calculatedAt = s.CalculatedAt.UTC()
		}

		if _, err := stmt.ExecContext(ctx,
			recordID, s.Hash, string(s.Type),
			s.FromLat, s.FromLon, s.ToLat, s.ToLon,
			s.FromIndex, s.ToIndex, orderID,
			nullableArg(s.DistanceMiles), nullableText(s.DurationText), nullableInt(s.DurationSeconds), calculatedAt,
		); err != nil {
			return fmt.Errorf("upsert segments: insert hash=%q: %w", s.Hash, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("upsert segments: commit: %w", err)
	}

	return nil
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullableArg(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableText(s string) any {
	if s == "" {
		return nil
	}
	return s
}
