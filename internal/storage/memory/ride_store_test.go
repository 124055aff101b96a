package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/motorides/dispatch/internal/domain/ride"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ride.Store = (*RideStore)(nil)

func pendingRide(id string) *ride.Ride {
	return &ride.Ride{
		ID:        id,
		ClientID:  "c1",
		Status:    ride.StatusPending,
		CreatedAt: time.Now(),
	}
}

func TestAccept_ManyConcurrentDriversOneWinner(t *testing.T) {
	store := NewRideStore()
	ctx := context.Background()
	require.NoError(t, store.Insert(ctx, pendingRide("r1")))

	const drivers = 100
	var wg sync.WaitGroup
	var winners int32
	var mu sync.Mutex
	var winnerID string

	for i := 0; i < drivers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			driverID := fmt.Sprintf("d%d", i)
			r, err := store.Accept(ctx, "r1", driverID)
			if err == nil {
				mu.Lock()
				winners++
				winnerID = driverID
				mu.Unlock()
				assert.Equal(t, driverID, *r.DriverID)
				return
			}
			assert.True(t, errors.Is(err, ride.ErrRideUnavailable))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), winners)

	final, err := store.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, ride.StatusAccepted, final.Status)
	require.NotNil(t, final.DriverID)
	assert.Equal(t, winnerID, *final.DriverID)
	assert.NotNil(t, final.AcceptedAt)
}

func TestAccept_UnknownRide(t *testing.T) {
	store := NewRideStore()
	_, err := store.Accept(context.Background(), "ride999", "d1")
	assert.True(t, errors.Is(err, ride.ErrRideUnavailable))
}

func TestGetByID_ReturnsCopy(t *testing.T) {
	store := NewRideStore()
	ctx := context.Background()
	require.NoError(t, store.Insert(ctx, pendingRide("r1")))

	first, err := store.GetByID(ctx, "r1")
	require.NoError(t, err)
	first.Status = ride.StatusCancelled

	second, err := store.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, ride.StatusPending, second.Status, "callers must not mutate store state")
}

func TestDeleteByStatus(t *testing.T) {
	store := NewRideStore()
	ctx := context.Background()
	require.NoError(t, store.Insert(ctx, pendingRide("r1")))
	require.NoError(t, store.Insert(ctx, pendingRide("r2")))
	_, err := store.Accept(ctx, "r2", "d1")
	require.NoError(t, err)

	n, err := store.DeleteByStatus(ctx, ride.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.GetByID(ctx, "r1")
	assert.True(t, errors.Is(err, ride.ErrRideNotFound))
	_, err = store.GetByID(ctx, "r2")
	assert.NoError(t, err)
}
