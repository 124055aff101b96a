package handlers

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/motorides/dispatch/internal/api/dto"
	"github.com/motorides/dispatch/internal/domain/user"
	apperrors "github.com/motorides/dispatch/pkg/errors"
	"github.com/motorides/dispatch/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// Login handles POST /auth/login. One endpoint serves admins, drivers and
// clients; the response carries the account type so the front end can route.
func (h *Handlers) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "login and password are required"})
		return
	}

	if h.isAdmin(req.Login, req.Password) {
		tok, err := h.Tokens.Issue(h.Admin.ID, string(user.RoleAdmin))
		if err != nil {
			h.respondError(c, apperrors.Internal("Failed to issue token", err))
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"type":  user.RoleAdmin,
			"user":  gin.H{"id": h.Admin.ID, "email": h.Admin.Email},
			"token": tok,
		})
		return
	}

	creds, err := h.Directory.FindByLogin(c.Request.Context(), req.Login)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			h.respondError(c, apperrors.ErrInvalidLogin)
			return
		}
		h.respondError(c, err)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(req.Password)) != nil {
		h.respondError(c, apperrors.ErrInvalidLogin)
		return
	}

	tok, err := h.Tokens.Issue(creds.ID, string(creds.Role))
	if err != nil {
		h.respondError(c, apperrors.Internal("Failed to issue token", err))
		return
	}

	h.Logger.Info("Account logged in",
		logger.String("account_id", creds.ID),
		logger.String("role", string(creds.Role)),
	)

	resp := gin.H{
		"type":  creds.Role,
		"user":  gin.H{"id": creds.ID, "name": creds.Name},
		"token": tok,
	}
	if creds.Role == user.RoleDriver {
		resp["status"] = creds.Approval
	}
	c.JSON(http.StatusOK, resp)
}

// RegisterClient handles POST /register/client
func (h *Handlers) RegisterClient(c *gin.Context) {
	var req dto.RegisterClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "All fields are required"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.respondError(c, apperrors.Internal("Failed to hash password", err))
		return
	}

	client := &user.Client{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Email:        req.Email,
		CPF:          req.CPF,
		Phone:        req.Phone,
		City:         req.City,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if err := h.Directory.CreateClient(c.Request.Context(), client); err != nil {
		h.respondError(c, translateDuplicate(err))
		return
	}

	h.Logger.Info("Client registered", logger.String("client_id", client.ID))
	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful!",
		"user":    client,
	})
}

// RegisterDriver handles POST /register/driver. New drivers start pending
// and cannot accept rides until an admin approves them.
func (h *Handlers) RegisterDriver(c *gin.Context) {
	var req dto.RegisterDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "All fields and document photos are required"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.respondError(c, apperrors.Internal("Failed to hash password", err))
		return
	}

	d := &user.Driver{
		ID:              uuid.New().String(),
		Name:            req.Name,
		Age:             req.Age,
		MaritalStatus:   req.MaritalStatus,
		CPF:             req.CPF,
		City:            req.City,
		Email:           req.Email,
		Phone:           req.Phone,
		PasswordHash:    string(hash),
		LicensePhotoURL: req.LicensePhotoURL,
		VehicleDocURL:   req.VehicleDocURL,
		ProfilePhotoURL: req.ProfilePhotoURL,
		VehicleModel:    req.VehicleModel,
		VehiclePlate:    req.VehiclePlate,
		Approval:        user.ApprovalPending,
		CreatedAt:       time.Now().UTC(),
	}

	if err := h.Directory.CreateDriver(c.Request.Context(), d); err != nil {
		h.respondError(c, translateDuplicate(err))
		return
	}

	h.Logger.Info("Driver registered, awaiting approval", logger.String("driver_id", d.ID))
	c.JSON(http.StatusCreated, gin.H{
		"message": "Driver registration received! Await approval.",
	})
}

func (h *Handlers) isAdmin(login, password string) bool {
	if h.Admin.Email == "" {
		return false
	}
	loginOK := subtle.ConstantTimeCompare([]byte(login), []byte(h.Admin.Email)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(h.Admin.Password)) == 1
	return loginOK && passOK
}

func translateDuplicate(err error) error {
	switch {
	case errors.Is(err, user.ErrDuplicateCPF):
		return apperrors.ErrDuplicateCPF
	case errors.Is(err, user.ErrDuplicateEmail):
		return apperrors.ErrDuplicateEmail
	default:
		return err
	}
}
