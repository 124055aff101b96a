package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/motorides/dispatch/internal/domain/user"
)

// Directory is the Postgres-backed client/driver directory.
type Directory struct {
	db *sql.DB
}

// NewDirectory creates a directory on an existing connection pool.
func NewDirectory(db *sql.DB) *Directory {
	return &Directory{db: db}
}

// FindByLogin matches email or CPF across drivers and clients. Drivers are
// checked first, mirroring the unified login order.
func (d *Directory) FindByLogin(ctx context.Context, login string) (*user.Credentials, error) {
	var c user.Credentials

	err := d.db.QueryRowContext(ctx, `
		SELECT id, name, password_hash, approval_status
		FROM drivers WHERE email = $1 OR cpf = $1
	`, login).Scan(&c.ID, &c.Name, &c.PasswordHash, &c.Approval)
	if err == nil {
		c.Role = user.RoleDriver
		return &c, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("find driver by login: %w", err)
	}

	err = d.db.QueryRowContext(ctx, `
		SELECT id, name, password_hash
		FROM clients WHERE email = $1 OR cpf = $1
	`, login).Scan(&c.ID, &c.Name, &c.PasswordHash)
	if err == sql.ErrNoRows {
		return nil, user.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find client by login: %w", err)
	}
	c.Role = user.RoleClient
	return &c, nil
}

// GetClient retrieves a client by ID.
func (d *Directory) GetClient(ctx context.Context, id string) (*user.Client, error) {
	var c user.Client
	err := d.db.QueryRowContext(ctx, `
		SELECT id, name, email, cpf, phone, city, created_at
		FROM clients WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Email, &c.CPF, &c.Phone, &c.City, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, user.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	return &c, nil
}

// GetDriver retrieves a driver by ID.
func (d *Directory) GetDriver(ctx context.Context, id string) (*user.Driver, error) {
	row := d.db.QueryRowContext(ctx, driverSelect+` WHERE id = $1`, id)
	dr, err := scanDriver(row)
	if err == sql.ErrNoRows {
		return nil, user.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get driver: %w", err)
	}
	return dr, nil
}

// CreateClient inserts a new client account.
func (d *Directory) CreateClient(ctx context.Context, c *user.Client) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO clients (id, name, email, cpf, phone, city, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, c.ID, c.Name, c.Email, c.CPF, c.Phone, c.City, c.PasswordHash, c.CreatedAt)
	return translateUniqueViolation(err, "insert client")
}

// CreateDriver inserts a new driver account in pending approval state.
func (d *Directory) CreateDriver(ctx context.Context, dr *user.Driver) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO drivers (
			id, name, age, marital_status, cpf, city, email, phone,
			password_hash, license_photo_url, vehicle_doc_url, profile_photo_url,
			vehicle_model, vehicle_plate, approval_status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`, dr.ID, dr.Name, dr.Age, dr.MaritalStatus, dr.CPF, dr.City, dr.Email, dr.Phone,
		dr.PasswordHash, dr.LicensePhotoURL, dr.VehicleDocURL, dr.ProfilePhotoURL,
		dr.VehicleModel, dr.VehiclePlate, dr.Approval, dr.CreatedAt)
	return translateUniqueViolation(err, "insert driver")
}

// ListDrivers returns every driver, newest first.
func (d *Directory) ListDrivers(ctx context.Context) ([]*user.Driver, error) {
	rows, err := d.db.QueryContext(ctx, driverSelect+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}
	defer rows.Close()

	var drivers []*user.Driver
	for rows.Next() {
		dr, err := scanDriver(rows)
		if err != nil {
			return nil, fmt.Errorf("scan driver: %w", err)
		}
		drivers = append(drivers, dr)
	}
	return drivers, rows.Err()
}

// SetDriverApproval flips a driver's approval state.
func (d *Directory) SetDriverApproval(ctx context.Context, id string, status user.ApprovalStatus) error {
	res, err := d.db.ExecContext(ctx, `
		UPDATE drivers SET approval_status = $1 WHERE id = $2
	`, status, id)
	if err != nil {
		return fmt.Errorf("set driver approval: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return user.ErrNotFound
	}
	return nil
}

const driverSelect = `
	SELECT id, name, age, marital_status, cpf, city, email, phone,
	       license_photo_url, vehicle_doc_url, profile_photo_url,
	       vehicle_model, vehicle_plate, approval_status, created_at
	FROM drivers`

func scanDriver(row rowScanner) (*user.Driver, error) {
	var dr user.Driver
	err := row.Scan(
		&dr.ID, &dr.Name, &dr.Age, &dr.MaritalStatus, &dr.CPF, &dr.City,
		&dr.Email, &dr.Phone,
		&dr.LicensePhotoURL, &dr.VehicleDocURL, &dr.ProfilePhotoURL,
		&dr.VehicleModel, &dr.VehiclePlate, &dr.Approval, &dr.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &dr, nil
}

func translateUniqueViolation(err error, op string) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		if strings.Contains(pqErr.Constraint, "cpf") {
			return user.ErrDuplicateCPF
		}
		return user.ErrDuplicateEmail
	}
	return fmt.Errorf("%s: %w", op, err)
}
