package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/motorides/dispatch/internal/domain/ride"
	"github.com/motorides/dispatch/internal/domain/user"
	"github.com/motorides/dispatch/internal/observability"
	"github.com/motorides/dispatch/internal/service/pricing"
	"github.com/motorides/dispatch/pkg/cache"
	apperrors "github.com/motorides/dispatch/pkg/errors"
	"github.com/motorides/dispatch/pkg/logger"
)

// Broadcast event names.
const (
	EventRideCreated       = "ride-created"
	EventRideStatusChanged = "ride-status-changed"
)

// Sentinel values applied when a request omits optional fields.
const (
	DefaultPaymentMethod = "not informed"
	DefaultRequestType   = "standard"
)

// AdminClientID marks rides created through the admin console rather than
// by a registered client.
const AdminClientID = "admin"

// Broadcaster delivers an event to every currently connected subscriber,
// fire and forget. The coordinator depends on this capability only, never
// on a connection transport.
type Broadcaster interface {
	Publish(event string, payload interface{})
}

// EventMirror receives a durable copy of every broadcast event. Optional.
type EventMirror interface {
	Publish(event, rideID string, payload interface{})
}

// Service owns all ride status transitions. It is invoked concurrently by
// many request-handling goroutines; correctness of the accept path rests
// entirely on the store's single conditional update, so the service itself
// holds no locks.
type Service struct {
	store       ride.Store
	directory   user.Directory
	broadcaster Broadcaster
	pricing     *pricing.Service
	mirror      EventMirror
	views       *cache.RideViewCache
	logger      *logger.Logger
}

// CreateRideInput carries a client's service request.
type CreateRideInput struct {
	ClientID      string
	Origin        string
	Destination   string
	PaymentMethod string
	RequestType   string
}

// DriverInfo is the driver display block merged into a ride view.
type DriverInfo struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	PhotoURL     string `json:"photo_url,omitempty"`
	VehicleModel string `json:"vehicle_model,omitempty"`
	VehiclePlate string `json:"vehicle_plate,omitempty"`
}

// RideView is a ride merged with resolved driver display fields. Driver is
// nil while the ride is PENDING.
type RideView struct {
	ride.Ride
	Driver *DriverInfo `json:"driver,omitempty"`
}

// NewService creates a dispatch coordinator. mirror may be nil.
func NewService(store ride.Store, directory user.Directory, broadcaster Broadcaster,
	pricingSvc *pricing.Service, mirror EventMirror, views *cache.RideViewCache,
	log *logger.Logger) *Service {
	return &Service{
		store:       store,
		directory:   directory,
		broadcaster: broadcaster,
		pricing:     pricingSvc,
		mirror:      mirror,
		views:       views,
		logger:      log,
	}
}

// CreateRide inserts a new PENDING ride and publishes exactly one
// ride-created event carrying the full record.
func (s *Service) CreateRide(ctx context.Context, in CreateRideInput) (*ride.Ride, error) {
	if in.ClientID == "" {
		return nil, apperrors.BadRequest("clientId is required", nil)
	}
	if in.Origin == "" {
		return nil, apperrors.BadRequest("startLocation is required", nil)
	}
	if in.Destination == "" {
		return nil, apperrors.BadRequest("endLocation is required", nil)
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = DefaultPaymentMethod
	}
	if in.RequestType == "" {
		in.RequestType = DefaultRequestType
	}

	clientName, clientPhone, err := s.resolveClient(ctx, in.ClientID)
	if err != nil {
		return nil, err
	}

	r := &ride.Ride{
		ID:            uuid.New().String(),
		ClientID:      in.ClientID,
		ClientName:    clientName,
		ClientPhone:   clientPhone,
		Origin:        in.Origin,
		Destination:   in.Destination,
		PaymentMethod: in.PaymentMethod,
		RequestType:   in.RequestType,
		Value:         s.pricing.Quote(in.RequestType),
		Status:        ride.StatusPending,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.store.Insert(ctx, r); err != nil {
		return nil, apperrors.Internal("Failed to create ride", err)
	}

	observability.RidesCreatedTotal.Inc()
	s.logger.Info("Ride created",
		logger.String("ride_id", r.ID),
		logger.String("client_id", r.ClientID),
		logger.String("request_type", r.RequestType),
	)

	s.publish(EventRideCreated, r)
	return r, nil
}

// ListAvailable returns all PENDING rides, most recently created first. The
// result is a snapshot as of read time; it may race broadcast delivery but
// never lags a durable write.
func (s *Service) ListAvailable(ctx context.Context) ([]*ride.Ride, error) {
	rides, err := s.store.ListByStatus(ctx, ride.StatusPending)
	if err != nil {
		return nil, apperrors.Internal("Failed to list rides", err)
	}
	return rides, nil
}

// Accept assigns driverID to a PENDING ride. Exactly one of any set of
// concurrent attempts on the same ride succeeds; the rest fail with a 409.
// A conflict is a normal outcome under contention and never corrupts state:
// the conditional update either fully applies or leaves the ride untouched.
func (s *Service) Accept(ctx context.Context, rideID, driverID string) (*ride.Ride, error) {
	if driverID == "" {
		return nil, apperrors.BadRequest("driverId is required", nil)
	}

	r, err := s.store.Accept(ctx, rideID, driverID)
	if err != nil {
		if errors.Is(err, ride.ErrRideUnavailable) {
			observability.AcceptConflictsTotal.Inc()
			s.logger.Info("Ride acceptance lost",
				logger.String("ride_id", rideID),
				logger.String("driver_id", driverID),
			)
			return nil, apperrors.ErrRideUnavailable
		}
		return nil, apperrors.Internal("Failed to accept ride", err)
	}

	observability.RidesAcceptedTotal.Inc()
	s.views.Invalidate(ctx, rideID)
	s.logger.Info("Ride accepted",
		logger.String("ride_id", r.ID),
		logger.String("driver_id", driverID),
	)

	s.publish(EventRideStatusChanged, r)
	return r, nil
}

// Status returns the ride merged with driver display fields once a driver
// is assigned.
func (s *Service) Status(ctx context.Context, rideID string) (*RideView, error) {
	var cached RideView
	if s.views.Get(ctx, rideID, &cached) {
		return &cached, nil
	}

	r, err := s.store.GetByID(ctx, rideID)
	if err != nil {
		if errors.Is(err, ride.ErrRideNotFound) {
			return nil, apperrors.ErrRideNotFound
		}
		return nil, apperrors.Internal("Failed to get ride", err)
	}

	view := &RideView{Ride: *r}
	if r.DriverID != nil {
		d, err := s.directory.GetDriver(ctx, *r.DriverID)
		if err != nil {
			// Directory trouble degrades the view rather than failing the
			// poll; the bare ride is still correct.
			s.logger.Warn("Failed to resolve driver for ride view",
				logger.String("ride_id", rideID),
				logger.String("driver_id", *r.DriverID),
				logger.Err(err),
			)
		} else {
			view.Driver = &DriverInfo{
				ID:           d.ID,
				Name:         d.Name,
				Phone:        d.Phone,
				PhotoURL:     d.ProfilePhotoURL,
				VehicleModel: d.VehicleModel,
				VehiclePlate: d.VehiclePlate,
			}
		}
	}

	s.views.Set(ctx, rideID, view)
	return view, nil
}

// StopPending removes every PENDING ride, the administrative bulk purge.
func (s *Service) StopPending(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteByStatus(ctx, ride.StatusPending)
	if err != nil {
		return 0, apperrors.Internal("Failed to remove pending rides", err)
	}
	s.logger.Info("Pending rides removed", logger.Int64("count", n))
	return n, nil
}

func (s *Service) resolveClient(ctx context.Context, clientID string) (name, phone string, err error) {
	if clientID == AdminClientID {
		return "Admin", "N/A", nil
	}
	c, err := s.directory.GetClient(ctx, clientID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", "", apperrors.NotFound("Client not found", nil)
		}
		return "", "", apperrors.Internal("Failed to resolve client", err)
	}
	return c.Name, c.Phone, nil
}

func (s *Service) publish(event string, r *ride.Ride) {
	s.broadcaster.Publish(event, r)
	if s.mirror != nil {
		s.mirror.Publish(event, r.ID, r)
	}
}
