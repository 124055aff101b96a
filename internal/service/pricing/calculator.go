package pricing

// Service quotes ride fares. Pricing is flat per request category: there is
// no distance or time component, the town is small enough that one fare
// covers any trip inside it.
type Service struct {
	config Config
}

// Config holds pricing configuration
type Config struct {
	// BaseFare maps request type to its flat fare.
	BaseFare map[string]float64
	// DefaultFare applies to request types with no configured entry.
	DefaultFare float64
}

// NewService creates a new pricing service
func NewService(config Config) *Service {
	return &Service{config: config}
}

// Quote returns the fare for a request type.
func (s *Service) Quote(requestType string) float64 {
	if fare, ok := s.config.BaseFare[requestType]; ok {
		return fare
	}
	return s.config.DefaultFare
}
