package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/motorides/dispatch/internal/domain/ride"
)

// RideStore is an in-memory ride.Store for tests and local development.
// Accept holds the lock across the precondition check and the mutation, so
// it offers the same linearization guarantee as the Postgres conditional
// update.
type RideStore struct {
	mu    sync.Mutex
	rides map[string]*ride.Ride
}

// NewRideStore creates an empty in-memory store.
func NewRideStore() *RideStore {
	return &RideStore{rides: make(map[string]*ride.Ride)}
}

// Insert persists a new ride.
func (s *RideStore) Insert(ctx context.Context, r *ride.Ride) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.rides[r.ID] = &cp
	return nil
}

// GetByID retrieves a ride by ID.
func (s *RideStore) GetByID(ctx context.Context, id string) (*ride.Ride, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rides[id]
	if !ok {
		return nil, ride.ErrRideNotFound
	}
	cp := *r
	return &cp, nil
}

// ListByStatus returns a snapshot of rides in the given status, newest first.
func (s *RideStore) ListByStatus(ctx context.Context, status ride.Status) ([]*ride.Ride, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*ride.Ride
	for _, r := range s.rides {
		if r.Status == status {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Accept performs the conditional PENDING -> ACCEPTED transition.
func (s *RideStore) Accept(ctx context.Context, rideID, driverID string) (*ride.Ride, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rides[rideID]
	if !ok || r.Status != ride.StatusPending {
		return nil, ride.ErrRideUnavailable
	}
	now := time.Now()
	r.Status = ride.StatusAccepted
	r.DriverID = &driverID
	r.AcceptedAt = &now
	cp := *r
	return &cp, nil
}

// DeleteByStatus removes all rides in the given status.
func (s *RideStore) DeleteByStatus(ctx context.Context, status ride.Status) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, r := range s.rides {
		if r.Status == status {
			delete(s.rides, id)
			n++
		}
	}
	return n, nil
}
