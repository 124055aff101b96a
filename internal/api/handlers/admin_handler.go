package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/motorides/dispatch/internal/api/dto"
	"github.com/motorides/dispatch/internal/domain/user"
	"github.com/motorides/dispatch/internal/service/dispatch"
	apperrors "github.com/motorides/dispatch/pkg/errors"
	"github.com/motorides/dispatch/pkg/logger"
)

// ListDrivers handles GET /admin/drivers
func (h *Handlers) ListDrivers(c *gin.Context) {
	drivers, err := h.Directory.ListDrivers(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	if drivers == nil {
		drivers = []*user.Driver{}
	}
	c.JSON(http.StatusOK, drivers)
}

// ApproveDriver handles POST /admin/drivers/:id/approve
func (h *Handlers) ApproveDriver(c *gin.Context) {
	h.setApproval(c, user.ApprovalApproved, "Driver approved.")
}

// RejectDriver handles POST /admin/drivers/:id/reject
func (h *Handlers) RejectDriver(c *gin.Context) {
	h.setApproval(c, user.ApprovalRejected, "Driver rejected.")
}

func (h *Handlers) setApproval(c *gin.Context, status user.ApprovalStatus, message string) {
	id := c.Param("id")
	err := h.Directory.SetDriverApproval(c.Request.Context(), id, status)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			h.respondError(c, apperrors.NotFound("Driver not found", nil))
			return
		}
		h.respondError(c, err)
		return
	}

	h.Logger.Info("Driver approval changed",
		logger.String("driver_id", id),
		logger.String("status", string(status)),
	)
	c.JSON(http.StatusOK, gin.H{"message": message})
}

// AdminCreateRide handles POST /admin/create-ride
func (h *Handlers) AdminCreateRide(c *gin.Context) {
	var req dto.AdminCreateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Incomplete ride data"})
		return
	}

	r, err := h.Dispatch.CreateRide(c.Request.Context(), dispatch.CreateRideInput{
		ClientID:      dispatch.AdminClientID,
		Origin:        req.StartLocation,
		Destination:   req.EndLocation,
		PaymentMethod: req.PaymentMethod,
		RequestType:   req.RequestType,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Ride created successfully.",
		"ride":    r,
	})
}

// StopAllRides handles POST /admin/rides/stop-all
func (h *Handlers) StopAllRides(c *gin.Context) {
	n, err := h.Dispatch.StopPending(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("%d pending rides were removed.", n),
	})
}
