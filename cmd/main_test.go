package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zedm/louage-backend/internal/config"
	"github.com/zedm/louage-backend/internal/db"
)

func testRouter(t *testing.T) (http.Handler, *db.MemoryStore) {
	t.Helper()
	cfg := &config.Config{
		Fleet:     config.FleetConfig{SeatCapacity: 8, RouteOutbound: "Tunis", RouteInbound: "Jelma"},
		RateLimit: config.RateLimitConfig{Requests: 1000, WindowSeconds: 60},
	}
	store := db.NewMemoryStore()
	return newRouter(cfg, store, store, store, store, store), store
}

func doJSON(t *testing.T, router http.Handler, method, target, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func loginOwner(t *testing.T, router http.Handler) string {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/auth/owner-login", "", map[string]string{"password": "admin"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp.Token
}

func TestHealthNeedsNoSession(t *testing.T) {
	router, _ := testRouter(t)

	w := doJSON(t, router, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestsWithoutTokenRejected(t *testing.T) {
	router, _ := testRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/vehicles", "", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOwnerLoginAndBookingFlow(t *testing.T) {
	router, _ := testRouter(t)
	token := loginOwner(t, router)

	w := doJSON(t, router, http.MethodPost, "/api/vehicles", token, map[string]interface{}{
		"plate_number":        "127 TN 4821",
		"model":               "Renault Trafic",
		"current_odometer_km": 1000,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var vehicle struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&vehicle))

	w = doJSON(t, router, http.MethodPost, "/api/passengers", token, map[string]interface{}{
		"name":        "Moufida",
		"phone":       "21612345",
		"direction":   "outbound",
		"date":        "2026-08-28",
		"vehicle_id":  vehicle.ID,
		"seats_count": 3,
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/passengers/occupancy?vehicle_id="+vehicle.ID+"&date=2026-08-28", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDriverCannotReachOwnerRoutes(t *testing.T) {
	router, _ := testRouter(t)
	ownerToken := loginOwner(t, router)

	w := doJSON(t, router, http.MethodPost, "/api/vehicles", ownerToken, map[string]interface{}{
		"plate_number":        "127 TN 4821",
		"model":               "Renault Trafic",
		"current_odometer_km": 1000,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var vehicle struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&vehicle))

	w = doJSON(t, router, http.MethodPost, "/api/drivers", ownerToken, map[string]string{
		"name": "Hamza", "password": "secret", "vehicle_id": vehicle.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/auth/driver-login", "", map[string]string{
		"name": "Hamza", "password": "secret",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&login))

	for _, route := range []struct{ method, target string }{
		{http.MethodGet, "/api/settings"},
		{http.MethodGet, "/api/stats"},
		{http.MethodGet, "/api/drivers"},
		{http.MethodGet, "/api/vehicles/maintenance-due"},
	} {
		w = doJSON(t, router, route.method, route.target, login.Token, nil)
		assert.Equalf(t, http.StatusForbidden, w.Code, "%s %s", route.method, route.target)
	}

	// Non-owner routes still work for the driver.
	w = doJSON(t, router, http.MethodGet, "/api/trips", login.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitKicksIn(t *testing.T) {
	cfg := &config.Config{
		Fleet:     config.FleetConfig{SeatCapacity: 8},
		RateLimit: config.RateLimitConfig{Requests: 2, WindowSeconds: 60},
	}
	store := db.NewMemoryStore()
	router := newRouter(cfg, store, store, store, store, store)

	for i := 0; i < 2; i++ {
		w := doJSON(t, router, http.MethodGet, "/health", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := doJSON(t, router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
