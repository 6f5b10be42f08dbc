package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/phantomlabs/phantom-backend/internal/auth"
	"github.com/phantomlabs/phantom-backend/pkg/config"
	"github.com/phantomlabs/phantom-backend/pkg/security"
)

func newTestAuthService(t *testing.T) auth.Service {
	t.Helper()

	passwordCfg := config.PasswordConfig{
		ArgonMemoryKB:    32768,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
		OperatorUsername: "operator",
	}
	hash, err := security.HashPassword("hunter2!", passwordCfg)
	require.NoError(t, err)
	passwordCfg.OperatorHash = hash

	svc, err := auth.NewService(auth.ServiceParams{
		JWTConfig:      config.JWTConfig{Secret: "test-secret", Issuer: "phantom", ExpirationMinutes: 60},
		PasswordConfig: passwordCfg,
	})
	require.NoError(t, err)
	return svc
}

func TestAuthLoginSucceeds(t *testing.T) {
	svc := newTestAuthService(t)
	body := `{"username": "operator", "password": "hunter2!"}`
	rec := httptest.NewRecorder()

	AuthLogin(svc, nil)(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Data auth.LoginResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotEmpty(t, resp.Data.AccessToken)
	require.Equal(t, "Bearer", resp.Data.TokenType)
}

func TestAuthLoginRejectsWrongPassword(t *testing.T) {
	svc := newTestAuthService(t)
	body := `{"username": "operator", "password": "wrong"}`
	rec := httptest.NewRecorder()

	AuthLogin(svc, nil)(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body)))

	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, "UNAUTHORIZED", resp.Error.Code)
	require.Equal(t, "invalid credentials", resp.Error.Message)
}

func TestAuthLoginValidatesBody(t *testing.T) {
	svc := newTestAuthService(t)
	rec := httptest.NewRecorder()

	AuthLogin(svc, nil)(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username": "operator"}`)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
