package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zedm/louage-backend/internal/db"
	"github.com/zedm/louage-backend/internal/ledger"
	"github.com/zedm/louage-backend/internal/middleware"
	"github.com/zedm/louage-backend/internal/models"
	"github.com/zedm/louage-backend/internal/registry"
	"github.com/zedm/louage-backend/internal/session"
	"github.com/zedm/louage-backend/internal/settings"
	"github.com/zedm/louage-backend/internal/settlement"
)

// testEnv wires every handler over a single in-memory store, mirroring the
// composition in cmd/server.
type testEnv struct {
	store      *db.MemoryStore
	settings   *settings.Store
	auth       *AuthHandler
	passengers *PassengerHandler
	trips      *TripHandler
	vehicles   *VehicleHandler
	drivers    *DriverHandler
	config     *SettingsHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := db.NewMemoryStore()
	settingsStore := settings.NewStore(store)
	seatLedger := ledger.New(store, 0)
	engine := settlement.NewEngine(store, store)
	reg := registry.New(store, store)
	gate := session.NewGate(settingsStore, store, session.NewTokenService())

	return &testEnv{
		store:      store,
		settings:   settingsStore,
		auth:       NewAuthHandler(gate),
		passengers: NewPassengerHandler(seatLedger, store),
		trips:      NewTripHandler(engine, settingsStore, store),
		vehicles:   NewVehicleHandler(reg, engine, settingsStore),
		drivers:    NewDriverHandler(reg),
		config:     NewSettingsHandler(settingsStore),
	}
}

func ownerSession() *session.Session {
	return &session.Session{Role: session.RoleOwner}
}

func driverSession(driverID, vehicleID string) *session.Session {
	return &session.Session{Role: session.RoleDriver, DriverID: driverID, VehicleID: vehicleID}
}

// newRequest builds a JSON request carrying an already-resolved session, the
// way requests look after the session middleware ran.
func newRequest(t *testing.T, method, target string, body interface{}, sess *session.Session) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	r := httptest.NewRequest(method, target, &buf)
	if sess != nil {
		r = r.WithContext(context.WithValue(r.Context(), middleware.SessionContextKey, sess))
	}
	return r
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(w.Body).Decode(v))
}

func seedVehicle(t *testing.T, env *testEnv, odometerKm, lastOilChangeKm int64) string {
	t.Helper()
	id, err := env.store.InsertVehicle(context.Background(), models.Vehicle{
		PlateNumber:       "127 TN 4821",
		Model:             "Renault Trafic",
		CurrentOdometerKm: odometerKm,
		LastOilChangeKm:   lastOilChangeKm,
	})
	require.NoError(t, err)
	return id
}

func seedDriver(t *testing.T, env *testEnv, name, vehicleID string) string {
	t.Helper()
	id, err := env.store.InsertDriver(context.Background(), models.DriverAccount{
		Name:      name,
		Password:  "secret",
		VehicleID: vehicleID,
	})
	require.NoError(t, err)
	return id
}
