package monitoring

import (
	"fmt"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// Config holds New Relic configuration
type Config struct {
	LicenseKey string
	AppName    string
	Enabled    bool
}

// NewRelicApp wraps the New Relic application
type NewRelicApp struct {
	*newrelic.Application
	enabled bool
}

// New creates a new New Relic application
func New(cfg Config) (*NewRelicApp, error) {
	if !cfg.Enabled || cfg.LicenseKey == "" {
		return &NewRelicApp{nil, false}, nil
	}

	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName(cfg.AppName),
		newrelic.ConfigLicense(cfg.LicenseKey),
		newrelic.ConfigAppLogForwardingEnabled(true),
		newrelic.ConfigDistributedTracerEnabled(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create New Relic application: %w", err)
	}

	return &NewRelicApp{app, true}, nil
}

// RecordCustomEvent records a custom event
func (nr *NewRelicApp) RecordCustomEvent(eventType string, params map[string]interface{}) {
	if !nr.enabled || nr.Application == nil {
		return
	}
	nr.Application.RecordCustomEvent(eventType, params)
}

// Shutdown gracefully shuts down the New Relic application
func (nr *NewRelicApp) Shutdown(timeout time.Duration) {
	if !nr.enabled || nr.Application == nil {
		return
	}
	nr.Application.Shutdown(timeout)
}

// IsEnabled returns whether New Relic is enabled
func (nr *NewRelicApp) IsEnabled() bool {
	return nr.enabled
}

// RecordRideCreated records a ride entering the pending pool.
func (nr *NewRelicApp) RecordRideCreated(rideID, requestType string) {
	nr.RecordCustomEvent("RideCreated", map[string]interface{}{
		"ride_id":      rideID,
		"request_type": requestType,
		"timestamp":    time.Now().Unix(),
	})
}

// RecordRideAccepted records a driver winning a ride.
func (nr *NewRelicApp) RecordRideAccepted(rideID, driverID string) {
	nr.RecordCustomEvent("RideAccepted", map[string]interface{}{
		"ride_id":   rideID,
		"driver_id": driverID,
		"timestamp": time.Now().Unix(),
	})
}

// RecordAcceptConflict records a lost acceptance race. Expected under load,
// tracked for visibility rather than alerting.
func (nr *NewRelicApp) RecordAcceptConflict(rideID, driverID string) {
	nr.RecordCustomEvent("RideAcceptConflict", map[string]interface{}{
		"ride_id":   rideID,
		"driver_id": driverID,
	})
}
