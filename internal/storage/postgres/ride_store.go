package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/motorides/dispatch/internal/domain/ride"
)

// RideStore is the Postgres-backed ride store.
type RideStore struct {
	db *sql.DB
}

// NewRideStore creates a ride store on an existing connection pool.
func NewRideStore(db *sql.DB) *RideStore {
	return &RideStore{db: db}
}

const rideColumns = `id, client_id, client_name, client_phone, driver_id,
	start_location, end_location, payment_method, request_type,
	value, status, created_at, accepted_at`

// Insert saves a new ride.
func (s *RideStore) Insert(ctx context.Context, r *ride.Ride) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rides (
			id, client_id, client_name, client_phone,
			start_location, end_location, payment_method, request_type,
			value, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, r.ID, r.ClientID, r.ClientName, r.ClientPhone,
		r.Origin, r.Destination, r.PaymentMethod, r.RequestType,
		r.Value, r.Status, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert ride: %w", err)
	}
	return nil
}

// GetByID retrieves a ride by ID.
func (s *RideStore) GetByID(ctx context.Context, id string) (*ride.Ride, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+rideColumns+` FROM rides WHERE id = $1`, id)
	r, err := scanRide(row)
	if err == sql.ErrNoRows {
		return nil, ride.ErrRideNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get ride: %w", err)
	}
	return r, nil
}

// ListByStatus returns rides in the given status, newest first.
func (s *RideStore) ListByStatus(ctx context.Context, status ride.Status) ([]*ride.Ride, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+rideColumns+` FROM rides WHERE status = $1 ORDER BY created_at DESC
	`, status)
	if err != nil {
		return nil, fmt.Errorf("list rides: %w", err)
	}
	defer rows.Close()

	var rides []*ride.Ride
	for rows.Next() {
		r, err := scanRide(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ride: %w", err)
		}
		rides = append(rides, r)
	}
	return rides, rows.Err()
}

// Accept performs the PENDING -> ACCEPTED transition as a single conditional
// update. Row-level atomicity in Postgres linearizes concurrent attempts on
// the same ride: exactly one of them observes status='PENDING' and wins.
// A read-then-write sequence here would reintroduce the race this statement
// exists to eliminate.
func (s *RideStore) Accept(ctx context.Context, rideID, driverID string) (*ride.Ride, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE rides
		SET driver_id = $1, status = $2, accepted_at = NOW()
		WHERE id = $3 AND status = $4
		RETURNING `+rideColumns+`
	`, driverID, ride.StatusAccepted, rideID, ride.StatusPending)

	r, err := scanRide(row)
	if err == sql.ErrNoRows {
		// Missing ride and already-taken ride are indistinguishable here.
		return nil, ride.ErrRideUnavailable
	}
	if err != nil {
		return nil, fmt.Errorf("accept ride: %w", err)
	}
	return r, nil
}

// DeleteByStatus removes all rides in the given status.
func (s *RideStore) DeleteByStatus(ctx context.Context, status ride.Status) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM rides WHERE status = $1`, status)
	if err != nil {
		return 0, fmt.Errorf("delete rides: %w", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRide(row rowScanner) (*ride.Ride, error) {
	var (
		r          ride.Ride
		driverID   sql.NullString
		acceptedAt sql.NullTime
	)
	err := row.Scan(
		&r.ID, &r.ClientID, &r.ClientName, &r.ClientPhone, &driverID,
		&r.Origin, &r.Destination, &r.PaymentMethod, &r.RequestType,
		&r.Value, &r.Status, &r.CreatedAt, &acceptedAt,
	)
	if err != nil {
		return nil, err
	}
	if driverID.Valid {
		r.DriverID = &driverID.String
	}
	if acceptedAt.Valid {
		r.AcceptedAt = &acceptedAt.Time
	}
	return &r, nil
}
