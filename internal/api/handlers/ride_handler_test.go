package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motorides/dispatch/internal/api/handlers"
	"github.com/motorides/dispatch/internal/api/routes"
	"github.com/motorides/dispatch/internal/domain/ride"
	"github.com/motorides/dispatch/internal/domain/user"
	"github.com/motorides/dispatch/internal/service/chat"
	"github.com/motorides/dispatch/internal/service/dispatch"
	"github.com/motorides/dispatch/internal/service/pricing"
	"github.com/motorides/dispatch/internal/storage/memory"
	"github.com/motorides/dispatch/pkg/logger"
	"github.com/motorides/dispatch/pkg/monitoring"
	"github.com/motorides/dispatch/pkg/token"
)

type noopBroadcaster struct{}

func (noopBroadcaster) Publish(event string, payload interface{}) {}

// stubDirectory is an in-memory user.Directory seeded per test.
type stubDirectory struct {
	clients map[string]*user.Client
	drivers map[string]*user.Driver
}

func newStubDirectory() *stubDirectory {
	return &stubDirectory{
		clients: make(map[string]*user.Client),
		drivers: make(map[string]*user.Driver),
	}
}

func (d *stubDirectory) FindByLogin(ctx context.Context, login string) (*user.Credentials, error) {
	for _, dr := range d.drivers {
		if dr.Email == login || dr.CPF == login {
			return &user.Credentials{
				ID:           dr.ID,
				Role:         user.RoleDriver,
				Name:         dr.Name,
				PasswordHash: dr.PasswordHash,
				Approval:     dr.Approval,
			}, nil
		}
	}
	for _, c := range d.clients {
		if c.Email == login || c.CPF == login {
			return &user.Credentials{
				ID:           c.ID,
				Role:         user.RoleClient,
				Name:         c.Name,
				PasswordHash: c.PasswordHash,
			}, nil
		}
	}
	return nil, user.ErrNotFound
}

func (d *stubDirectory) GetClient(ctx context.Context, id string) (*user.Client, error) {
	if c, ok := d.clients[id]; ok {
		return c, nil
	}
	return nil, user.ErrNotFound
}

func (d *stubDirectory) GetDriver(ctx context.Context, id string) (*user.Driver, error) {
	if dr, ok := d.drivers[id]; ok {
		return dr, nil
	}
	return nil, user.ErrNotFound
}

func (d *stubDirectory) CreateClient(ctx context.Context, c *user.Client) error {
	d.clients[c.ID] = c
	return nil
}

func (d *stubDirectory) CreateDriver(ctx context.Context, dr *user.Driver) error {
	d.drivers[dr.ID] = dr
	return nil
}

func (d *stubDirectory) ListDrivers(ctx context.Context) ([]*user.Driver, error) {
	var out []*user.Driver
	for _, dr := range d.drivers {
		out = append(out, dr)
	}
	return out, nil
}

func (d *stubDirectory) SetDriverApproval(ctx context.Context, id string, status user.ApprovalStatus) error {
	dr, ok := d.drivers[id]
	if !ok {
		return user.ErrNotFound
	}
	dr.Approval = status
	return nil
}

type testEnv struct {
	router    *gin.Engine
	store     *memory.RideStore
	directory *stubDirectory
	tokens    *token.Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log, err := logger.New(logger.Config{Level: "error", Format: "console"})
	require.NoError(t, err)

	monitor, err := monitoring.New(monitoring.Config{})
	require.NoError(t, err)

	store := memory.NewRideStore()
	directory := newStubDirectory()
	directory.clients["c1"] = &user.Client{ID: "c1", Name: "Maria", Phone: "555-0101"}
	directory.drivers["d1"] = &user.Driver{
		ID:           "d1",
		Name:         "Joao",
		Phone:        "555-0202",
		Approval:     user.ApprovalApproved,
		VehicleModel: "CG 160",
		VehiclePlate: "ABC1234",
	}
	directory.drivers["d-pending"] = &user.Driver{
		ID:       "d-pending",
		Name:     "Pedro",
		Approval: user.ApprovalPending,
	}

	pricingSvc := pricing.NewService(pricing.Config{
		BaseFare:    map[string]float64{"standard": 7.0, "delivery": 10.0},
		DefaultFare: 7.0,
	})
	dispatchSvc := dispatch.NewService(store, directory, noopBroadcaster{}, pricingSvc, nil, nil, log)
	chatSvc := chat.NewService(store, log)
	tokens := token.NewManager("test-secret", time.Hour)

	h := handlers.NewHandlers(dispatchSvc, chatSvc, directory, tokens, nil, monitor, log,
		handlers.AdminAccount{ID: "admin01", Email: "admin@example.com", Password: "admin-pass"})

	router := gin.New()
	routes.SetupRoutes(router, h, tokens, nil)

	return &testEnv{router: router, store: store, directory: directory, tokens: tokens}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestRequestService_CreatesPendingRide(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/client/request-service", gin.H{
		"clientId":      "c1",
		"startLocation": "Central Square",
		"endLocation":   "Bus Station",
	}, nil)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Message string    `json:"message"`
		Ride    ride.Ride `json:"ride"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Ride.ID)
	assert.Equal(t, ride.StatusPending, resp.Ride.Status)
	assert.Equal(t, 7.0, resp.Ride.Value)
	assert.Equal(t, "not informed", resp.Ride.PaymentMethod)
	assert.Equal(t, "standard", resp.Ride.RequestType)
	assert.Nil(t, resp.Ride.DriverID)
}

func TestRequestService_MissingFields(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/client/request-service", gin.H{
		"clientId": "c1",
	}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestService_UnknownClient(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/client/request-service", gin.H{
		"clientId":      "ghost",
		"startLocation": "A",
		"endLocation":   "B",
	}, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func createRide(t *testing.T, env *testEnv) string {
	t.Helper()
	w := env.do(t, http.MethodPost, "/client/request-service", gin.H{
		"clientId":      "c1",
		"startLocation": "Central Square",
		"endLocation":   "Bus Station",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Ride ride.Ride `json:"ride"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Ride.ID
}

func TestAcceptRide_FirstDriverWins(t *testing.T) {
	env := newTestEnv(t)
	rideID := createRide(t, env)

	w := env.do(t, http.MethodPost, fmt.Sprintf("/driver/rides/%s/accept", rideID),
		gin.H{"driverId": "d1"}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var accepted ride.Ride
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &accepted))
	assert.Equal(t, ride.StatusAccepted, accepted.Status)
	require.NotNil(t, accepted.DriverID)
	assert.Equal(t, "d1", *accepted.DriverID)

	// A second acceptance attempt conflicts, even by the winner.
	w = env.do(t, http.MethodPost, fmt.Sprintf("/driver/rides/%s/accept", rideID),
		gin.H{"driverId": "d1"}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAcceptRide_UnknownRideConflicts(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/driver/rides/ride999/accept",
		gin.H{"driverId": "d1"}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAcceptRide_UnapprovedDriverForbidden(t *testing.T) {
	env := newTestEnv(t)
	rideID := createRide(t, env)

	w := env.do(t, http.MethodPost, fmt.Sprintf("/driver/rides/%s/accept", rideID),
		gin.H{"driverId": "d-pending"}, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The ride stays open for approved drivers.
	w = env.do(t, http.MethodPost, fmt.Sprintf("/driver/rides/%s/accept", rideID),
		gin.H{"driverId": "d1"}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAcceptRide_UnknownDriver(t *testing.T) {
	env := newTestEnv(t)
	rideID := createRide(t, env)

	w := env.do(t, http.MethodPost, fmt.Sprintf("/driver/rides/%s/accept", rideID),
		gin.H{"driverId": "ghost"}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListAvailableRides_HidesAcceptedOnes(t *testing.T) {
	env := newTestEnv(t)
	first := createRide(t, env)
	createRide(t, env)

	w := env.do(t, http.MethodGet, "/driver/rides", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rides []ride.Ride
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rides))
	assert.Len(t, rides, 2)

	w = env.do(t, http.MethodPost, fmt.Sprintf("/driver/rides/%s/accept", first),
		gin.H{"driverId": "d1"}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/driver/rides", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rides))
	require.Len(t, rides, 1)
	assert.NotEqual(t, first, rides[0].ID)
}

func TestListAvailableRides_EmptyIsAnArray(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/driver/rides", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestRideStatus_IncludesDriverAfterAccept(t *testing.T) {
	env := newTestEnv(t)
	rideID := createRide(t, env)

	w := env.do(t, http.MethodGet, fmt.Sprintf("/ride/%s/status", rideID), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view struct {
		Status string                 `json:"status"`
		Driver map[string]interface{} `json:"driver"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "PENDING", view.Status)
	assert.Nil(t, view.Driver)

	w = env.do(t, http.MethodPost, fmt.Sprintf("/driver/rides/%s/accept", rideID),
		gin.H{"driverId": "d1"}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, fmt.Sprintf("/ride/%s/status", rideID), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "ACCEPTED", view.Status)
	require.NotNil(t, view.Driver)
	assert.Equal(t, "Joao", view.Driver["name"])
	assert.Equal(t, "555-0202", view.Driver["phone"])
}

func TestRideStatus_UnknownRide(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/ride/ride999/status", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func adminToken(t *testing.T, env *testEnv) string {
	t.Helper()
	w := env.do(t, http.MethodPost, "/auth/login", gin.H{
		"login":    "admin@example.com",
		"password": "admin-pass",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestAdminRoutes_RequireToken(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/admin/rides/stop-all", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/admin/rides/stop-all", nil,
		map[string]string{"Authorization": "Bearer not.a.token"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminRoutes_RejectNonAdminRole(t *testing.T) {
	env := newTestEnv(t)
	raw, err := env.tokens.Issue("d1", string(user.RoleDriver))
	require.NoError(t, err)

	w := env.do(t, http.MethodPost, "/admin/rides/stop-all", nil,
		map[string]string{"Authorization": "Bearer " + raw})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminStopAllRides_RemovesPendingOnly(t *testing.T) {
	env := newTestEnv(t)
	accepted := createRide(t, env)
	createRide(t, env)
	w := env.do(t, http.MethodPost, fmt.Sprintf("/driver/rides/%s/accept", accepted),
		gin.H{"driverId": "d1"}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	header := map[string]string{"Authorization": "Bearer " + adminToken(t, env)}
	w = env.do(t, http.MethodPost, "/admin/rides/stop-all", nil, header)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "1 pending rides were removed.")

	// The accepted ride survives the purge.
	w = env.do(t, http.MethodGet, fmt.Sprintf("/ride/%s/status", accepted), nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminCreateRide(t *testing.T) {
	env := newTestEnv(t)
	header := map[string]string{"Authorization": "Bearer " + adminToken(t, env)}

	w := env.do(t, http.MethodPost, "/admin/create-ride", gin.H{
		"startLocation": "Depot",
		"endLocation":   "Market",
		"paymentMethod": "cash",
	}, header)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Ride ride.Ride `json:"ride"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dispatch.AdminClientID, resp.Ride.ClientID)
	assert.Equal(t, ride.StatusPending, resp.Ride.Status)
}

func TestAdminApprovalWorkflow(t *testing.T) {
	env := newTestEnv(t)
	header := map[string]string{"Authorization": "Bearer " + adminToken(t, env)}

	w := env.do(t, http.MethodPost, "/admin/drivers/d-pending/approve", nil, header)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, user.ApprovalApproved, env.directory.drivers["d-pending"].Approval)

	w = env.do(t, http.MethodPost, "/admin/drivers/d-pending/reject", nil, header)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, user.ApprovalRejected, env.directory.drivers["d-pending"].Approval)

	w = env.do(t, http.MethodPost, "/admin/drivers/ghost/approve", nil, header)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
