package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerClient(t *testing.T, env *testEnv, email string) {
	t.Helper()
	w := env.do(t, http.MethodPost, "/register/client", gin.H{
		"name":        "Ana",
		"email":       email,
		"password":    "secret123",
		"cpf":         "111.222.333-44",
		"phoneNumber": "555-0303",
		"city":        "Ouro Preto",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestRegisterClient_ThenLogin(t *testing.T) {
	env := newTestEnv(t)
	registerClient(t, env, "ana@example.com")

	w := env.do(t, http.MethodPost, "/auth/login", gin.H{
		"login":    "ana@example.com",
		"password": "secret123",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Type  string `json:"type"`
		Token string `json:"token"`
		User  struct {
			Name string `json:"name"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "client", resp.Type)
	assert.Equal(t, "Ana", resp.User.Name)
	assert.NotEmpty(t, resp.Token)
}

func TestLogin_WrongPassword(t *testing.T) {
	env := newTestEnv(t)
	registerClient(t, env, "ana@example.com")

	w := env.do(t, http.MethodPost, "/auth/login", gin.H{
		"login":    "ana@example.com",
		"password": "wrong",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_UnknownAccount(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/auth/login", gin.H{
		"login":    "nobody@example.com",
		"password": "whatever",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterDriver_StartsPendingAndLoginReportsIt(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/register/driver", gin.H{
		"name":            "Carlos",
		"cpf":             "999.888.777-66",
		"phoneNumber":     "555-0404",
		"city":            "Ouro Preto",
		"email":           "carlos@example.com",
		"password":        "secret123",
		"cnhPhotoUrl":     "https://cdn.example.com/cnh.jpg",
		"motoDocUrl":      "https://cdn.example.com/doc.jpg",
		"profilePhotoUrl": "https://cdn.example.com/face.jpg",
		"vehicleModel":    "Biz 125",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodPost, "/auth/login", gin.H{
		"login":    "carlos@example.com",
		"password": "secret123",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Type   string `json:"type"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "driver", resp.Type)
	assert.Equal(t, "pending", resp.Status)
}

func TestRegisterDriver_MissingDocuments(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/register/driver", gin.H{
		"name":        "Carlos",
		"cpf":         "999.888.777-66",
		"phoneNumber": "555-0404",
		"city":        "Ouro Preto",
		"email":       "carlos@example.com",
		"password":    "secret123",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
