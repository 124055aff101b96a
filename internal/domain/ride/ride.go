package ride

import (
	"context"
	"errors"
	"time"
)

// Status represents ride status
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusAccepted Status = "ACCEPTED"
	// Defined for lifecycle completeness; no transition into these states
	// exists yet.
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// Ride represents a transportation request. DriverID is nil exactly while
// the ride is PENDING.
type Ride struct {
	ID            string     `json:"id"`
	ClientID      string     `json:"client_id"`
	ClientName    string     `json:"client_name"`
	ClientPhone   string     `json:"client_phone"`
	DriverID      *string    `json:"driver_id,omitempty"`
	Origin        string     `json:"start_location"`
	Destination   string     `json:"end_location"`
	PaymentMethod string     `json:"payment_method"`
	RequestType   string     `json:"request_type"`
	Value         float64    `json:"value"`
	Status        Status     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	AcceptedAt    *time.Time `json:"accepted_at,omitempty"`
}

// Store is the single source of truth for ride state.
type Store interface {
	// Insert persists a new ride.
	Insert(ctx context.Context, r *Ride) error

	// GetByID retrieves a ride by ID
	GetByID(ctx context.Context, id string) (*Ride, error)

	// ListByStatus returns rides in the given status, most recent first.
	ListByStatus(ctx context.Context, status Status) ([]*Ride, error)

	// Accept assigns driverID and moves the ride to ACCEPTED in one
	// conditional update: it succeeds only if the ride is still PENDING
	// at the moment the update executes. Zero matched rows (unknown id
	// or already taken) yields ErrRideUnavailable.
	Accept(ctx context.Context, rideID, driverID string) (*Ride, error)

	// DeleteByStatus removes every ride in the given status and reports
	// how many were removed.
	DeleteByStatus(ctx context.Context, status Status) (int64, error)
}

// Errors
var (
	ErrRideNotFound    = errors.New("ride not found")
	ErrRideUnavailable = errors.New("ride no longer available")
)

// IsValid validates the status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsOpen reports whether the ride can still be accepted by a driver.
func (r *Ride) IsOpen() bool {
	return r.Status == StatusPending
}
