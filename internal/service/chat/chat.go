package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/motorides/dispatch/internal/domain/ride"
	apperrors "github.com/motorides/dispatch/pkg/errors"
	"github.com/motorides/dispatch/pkg/logger"
)

// Message is one entry in a ride's chat feed.
type Message struct {
	SenderID  string `json:"sender_id"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// Service keeps a per-ride chat feed in memory. History lives only for the
// lifetime of the process; rides are short-lived and the feed is a
// convenience channel, not a record.
type Service struct {
	store  ride.Store
	logger *logger.Logger

	mu      sync.Mutex
	history map[string][]Message

	// autoReplyDelay is how long the simulated driver waits before
	// answering a client message. Shortened in tests.
	autoReplyDelay time.Duration
}

const defaultAutoReplyDelay = 2 * time.Second

// NewService creates a chat service backed by the given ride store.
func NewService(store ride.Store, log *logger.Logger) *Service {
	return &Service{
		store:          store,
		logger:         log,
		history:        make(map[string][]Message),
		autoReplyDelay: defaultAutoReplyDelay,
	}
}

// History returns the chat feed for a ride.
func (s *Service) History(ctx context.Context, rideID string) ([]Message, error) {
	if _, err := s.store.GetByID(ctx, rideID); err != nil {
		if errors.Is(err, ride.ErrRideNotFound) {
			return nil, apperrors.ErrRideNotFound
		}
		return nil, apperrors.Internal("Failed to load ride", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.history[rideID]
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

// Send appends a message to a ride's feed. A client message schedules a
// canned driver reply once a driver is assigned, on its own timer goroutine
// outside any dispatch logic.
func (s *Service) Send(ctx context.Context, rideID, senderID, text string) error {
	if senderID == "" || text == "" {
		return apperrors.BadRequest("senderId and message are required", nil)
	}
	r, err := s.store.GetByID(ctx, rideID)
	if err != nil {
		if errors.Is(err, ride.ErrRideNotFound) {
			return apperrors.ErrRideNotFound
		}
		return apperrors.Internal("Failed to load ride", err)
	}

	s.append(rideID, Message{
		SenderID:  senderID,
		Message:   text,
		Timestamp: time.Now().UnixMilli(),
	})

	if senderID == r.ClientID {
		s.scheduleAutoReply(rideID)
	}
	return nil
}

func (s *Service) append(rideID string, m Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history[rideID] = append(s.history[rideID], m)
}

// scheduleAutoReply answers as the assigned driver after a short delay.
// The ride is re-read when the timer fires: a reply only goes out if a
// driver has been assigned by then.
func (s *Service) scheduleAutoReply(rideID string) {
	time.AfterFunc(s.autoReplyDelay, func() {
		r, err := s.store.GetByID(context.Background(), rideID)
		if err != nil || r.DriverID == nil {
			return
		}
		s.append(rideID, Message{
			SenderID:  *r.DriverID,
			Message:   "Ok, got it!",
			Timestamp: time.Now().UnixMilli(),
		})
		s.logger.Debug("Auto-reply sent", logger.String("ride_id", rideID))
	})
}
