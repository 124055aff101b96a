package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/motorides/dispatch/internal/api/dto"
	"github.com/motorides/dispatch/internal/domain/ride"
	"github.com/motorides/dispatch/internal/domain/user"
	"github.com/motorides/dispatch/internal/service/dispatch"
	apperrors "github.com/motorides/dispatch/pkg/errors"
	"github.com/motorides/dispatch/pkg/logger"
)

// RequestService handles POST /client/request-service
func (h *Handlers) RequestService(c *gin.Context) {
	var req dto.CreateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "clientId, startLocation and endLocation are required"})
		return
	}

	r, err := h.Dispatch.CreateRide(c.Request.Context(), dispatch.CreateRideInput{
		ClientID:      req.ClientID,
		Origin:        req.StartLocation,
		Destination:   req.EndLocation,
		PaymentMethod: req.PaymentMethod,
		RequestType:   req.RequestType,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.Monitor.RecordRideCreated(r.ID, r.RequestType)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Request sent. Waiting for a driver.",
		"ride":    r,
	})
}

// ListAvailableRides handles GET /driver/rides
func (h *Handlers) ListAvailableRides(c *gin.Context) {
	rides, err := h.Dispatch.ListAvailable(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	if rides == nil {
		rides = []*ride.Ride{}
	}
	c.JSON(http.StatusOK, rides)
}

// AcceptRide handles POST /driver/rides/:rideId/accept
func (h *Handlers) AcceptRide(c *gin.Context) {
	rideID := c.Param("rideId")

	var req dto.AcceptRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "driverId is required"})
		return
	}

	// Approval gate. The dispatch core treats drivers as opaque ids; the
	// directory check lives here at the API boundary.
	d, err := h.Directory.GetDriver(c.Request.Context(), req.DriverID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			h.respondError(c, apperrors.ErrUserNotFound)
			return
		}
		h.respondError(c, err)
		return
	}
	if !d.CanAcceptRides() {
		h.respondError(c, apperrors.ErrDriverNotApproved)
		return
	}

	r, err := h.Dispatch.Accept(c.Request.Context(), rideID, req.DriverID)
	if err != nil {
		appErr := apperrors.GetAppError(err)
		if appErr.Status == http.StatusConflict {
			h.Monitor.RecordAcceptConflict(rideID, req.DriverID)
		}
		h.respondError(c, err)
		return
	}

	h.Monitor.RecordRideAccepted(r.ID, req.DriverID)
	c.JSON(http.StatusOK, r)
}

// RideStatus handles GET /ride/:rideId/status
func (h *Handlers) RideStatus(c *gin.Context) {
	view, err := h.Dispatch.Status(c.Request.Context(), c.Param("rideId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// respondError translates any error into a status plus message at the API
// boundary. Only 5xx outcomes are logged as faults; conflicts are expected
// under load.
func (h *Handlers) respondError(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)
	if appErr.Status >= http.StatusInternalServerError {
		h.Logger.Error("Request failed",
			logger.String("path", c.FullPath()),
			logger.Err(err),
		)
	}
	c.JSON(appErr.Status, gin.H{"message": appErr.Message})
}
