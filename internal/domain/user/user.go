package user

import (
	"context"
	"errors"
	"time"
)

// Role distinguishes the three kinds of account the backend serves.
type Role string

const (
	RoleClient Role = "client"
	RoleDriver Role = "driver"
	RoleAdmin  Role = "admin"
)

// ApprovalStatus represents a driver's admin-approval state
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Driver represents a driver account, including the documents submitted at
// registration. Only approved drivers may have ride acceptance honored.
type Driver struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Age             string         `json:"age,omitempty"`
	MaritalStatus   string         `json:"marital_status,omitempty"`
	CPF             string         `json:"cpf"`
	City            string         `json:"city"`
	Email           string         `json:"email"`
	Phone           string         `json:"phone"`
	PasswordHash    string         `json:"-"`
	LicensePhotoURL string         `json:"license_photo_url,omitempty"`
	VehicleDocURL   string         `json:"vehicle_doc_url,omitempty"`
	ProfilePhotoURL string         `json:"profile_photo_url,omitempty"`
	VehicleModel    string         `json:"vehicle_model,omitempty"`
	VehiclePlate    string         `json:"vehicle_plate,omitempty"`
	Approval        ApprovalStatus `json:"status"`
	CreatedAt       time.Time      `json:"created_at"`
}

// Client represents a rider account.
type Client struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	CPF          string    `json:"cpf"`
	Phone        string    `json:"phone"`
	City         string    `json:"city"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Credentials is the login-time view of any account: enough to verify a
// password and, for drivers, to gate acceptance on approval.
type Credentials struct {
	ID           string
	Role         Role
	Name         string
	PasswordHash string
	Approval     ApprovalStatus
}

// Directory resolves accounts referenced by the dispatch core. The core
// treats clients and drivers as opaque foreign keys plus this lookup
// capability; it never mutates them.
type Directory interface {
	// FindByLogin matches email or CPF across clients and drivers.
	FindByLogin(ctx context.Context, login string) (*Credentials, error)

	GetClient(ctx context.Context, id string) (*Client, error)
	GetDriver(ctx context.Context, id string) (*Driver, error)

	CreateClient(ctx context.Context, c *Client) error
	CreateDriver(ctx context.Context, d *Driver) error

	// ListDrivers returns every driver regardless of approval state.
	ListDrivers(ctx context.Context) ([]*Driver, error)

	// SetDriverApproval flips a driver's approval state.
	SetDriverApproval(ctx context.Context, id string, status ApprovalStatus) error
}

// Errors
var (
	ErrNotFound       = errors.New("account not found")
	ErrDuplicateCPF   = errors.New("cpf already registered")
	ErrDuplicateEmail = errors.New("email already in use")
)

// IsValid validates the approval status
func (s ApprovalStatus) IsValid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	}
	return false
}

// CanAcceptRides reports whether the driver passed the approval workflow.
func (d *Driver) CanAcceptRides() bool {
	return d.Approval == ApprovalApproved
}
