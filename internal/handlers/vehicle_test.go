package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zedm/louage-backend/internal/models"
)

func TestVehicleCreateAndList(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]interface{}{
		"plate_number":        "210 TN 9954",
		"model":               "Hyundai H-1",
		"current_odometer_km": 12000,
		"last_oil_change_km":  9000,
	}
	w := httptest.NewRecorder()
	env.vehicles.Create(w, newRequest(t, http.MethodPost, "/api/vehicles", body, ownerSession()))

	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Vehicle
	decodeBody(t, w, &created)
	assert.NotEmpty(t, created.ID)

	w = httptest.NewRecorder()
	env.vehicles.List(w, newRequest(t, http.MethodGet, "/api/vehicles", nil, ownerSession()))
	require.Equal(t, http.StatusOK, w.Code)
	var listed []models.Vehicle
	decodeBody(t, w, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, "210 TN 9954", listed[0].PlateNumber)
}

func TestVehicleCreateValidation(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]interface{}{
		"plate_number":        "210 TN 9954",
		"model":               "Hyundai H-1",
		"current_odometer_km": 1000,
		"last_oil_change_km":  5000,
	}
	w := httptest.NewRecorder()
	env.vehicles.Create(w, newRequest(t, http.MethodPost, "/api/vehicles", body, ownerSession()))

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp errorResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, "last_oil_change_km", resp.Field)
}

func TestDriverSeesOnlyOwnVehicle(t *testing.T) {
	env := newTestEnv(t)
	mine := seedVehicle(t, env, 1000, 0)
	seedVehicle(t, env, 2000, 0)
	driverID := seedDriver(t, env, "Hamza", mine)

	w := httptest.NewRecorder()
	env.vehicles.List(w, newRequest(t, http.MethodGet, "/api/vehicles", nil, driverSession(driverID, mine)))

	require.Equal(t, http.StatusOK, w.Code)
	var listed []models.Vehicle
	decodeBody(t, w, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, mine, listed[0].ID)
}

func TestVehicleUpdate(t *testing.T) {
	env := newTestEnv(t)
	id := seedVehicle(t, env, 1000, 0)

	body := map[string]interface{}{
		"plate_number":        "200 TN 1",
		"model":               "Peugeot Expert",
		"current_odometer_km": 1500,
		"last_oil_change_km":  1500,
	}
	r := newRequest(t, http.MethodPut, "/api/vehicles/"+id, body, ownerSession())
	r.SetPathValue("id", id)
	w := httptest.NewRecorder()
	env.vehicles.Update(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	var updated models.Vehicle
	decodeBody(t, w, &updated)
	assert.Equal(t, "200 TN 1", updated.PlateNumber)
	assert.Equal(t, "Peugeot Expert", updated.Model)
	// odometer fields in the payload are ignored; they only move
	// through settlement and maintenance acknowledgement
	assert.Equal(t, int64(1000), updated.CurrentOdometerKm)
	assert.Equal(t, int64(0), updated.LastOilChangeKm)
}

func TestVehicleDeleteBlockedWhileAssigned(t *testing.T) {
	env := newTestEnv(t)
	id := seedVehicle(t, env, 1000, 0)
	seedDriver(t, env, "Hamza", id)

	r := newRequest(t, http.MethodDelete, "/api/vehicles/"+id, nil, ownerSession())
	r.SetPathValue("id", id)
	w := httptest.NewRecorder()
	env.vehicles.Delete(w, r)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestVehicleDelete(t *testing.T) {
	env := newTestEnv(t)
	id := seedVehicle(t, env, 1000, 0)

	r := newRequest(t, http.MethodDelete, "/api/vehicles/"+id, nil, ownerSession())
	r.SetPathValue("id", id)
	w := httptest.NewRecorder()
	env.vehicles.Delete(w, r)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestMaintenanceDueAndAck(t *testing.T) {
	env := newTestEnv(t)
	// 9000 km since last change, over the default 8000 km interval.
	due := seedVehicle(t, env, 9000, 0)
	seedVehicle(t, env, 3000, 0)

	w := httptest.NewRecorder()
	env.vehicles.MaintenanceDue(w, newRequest(t, http.MethodGet, "/api/vehicles/maintenance-due", nil, ownerSession()))
	require.Equal(t, http.StatusOK, w.Code)
	var listed []models.Vehicle
	decodeBody(t, w, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, due, listed[0].ID)

	r := newRequest(t, http.MethodPost, "/api/vehicles/"+due+"/maintenance-ack", nil, ownerSession())
	r.SetPathValue("id", due)
	w = httptest.NewRecorder()
	env.vehicles.MaintenanceAck(w, r)
	require.Equal(t, http.StatusOK, w.Code)
	var acked models.Vehicle
	decodeBody(t, w, &acked)
	assert.Equal(t, int64(9000), acked.LastOilChangeKm)

	w = httptest.NewRecorder()
	env.vehicles.MaintenanceDue(w, newRequest(t, http.MethodGet, "/api/vehicles/maintenance-due", nil, ownerSession()))
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &listed)
	assert.Empty(t, listed)
}
