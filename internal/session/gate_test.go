package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zedm/louage-backend/internal/db"
	"github.com/zedm/louage-backend/internal/models"
	"github.com/zedm/louage-backend/internal/settings"
)

func newGate(t *testing.T) (*Gate, *db.MemoryStore, string) {
	t.Helper()
	store := db.NewMemoryStore()
	ctx := context.Background()

	vehicleID, err := store.InsertVehicle(ctx, models.Vehicle{PlateNumber: "1 TU 1", Model: "Berlingo"})
	require.NoError(t, err)
	_, err = store.InsertDriver(ctx, models.DriverAccount{Name: "Sami", Password: "pw", VehicleID: vehicleID})
	require.NoError(t, err)

	gate := NewGate(settings.NewStore(store), store, NewTokenService())
	return gate, store, vehicleID
}

func TestLoginAsOwner(t *testing.T) {
	gate, _, _ := newGate(t)
	ctx := context.Background()

	// default owner password from the settings singleton
	token, err := gate.LoginAsOwner(ctx, "admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	session, err := gate.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, RoleOwner, session.Role)
	assert.True(t, session.IsOwner())

	_, err = gate.LoginAsOwner(ctx, "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = gate.LoginAsOwner(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginAsDriver(t *testing.T) {
	gate, _, vehicleID := newGate(t)
	ctx := context.Background()

	token, err := gate.LoginAsDriver(ctx, "Sami", "pw")
	require.NoError(t, err)

	session, err := gate.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, RoleDriver, session.Role)
	assert.Equal(t, vehicleID, session.VehicleID)
	assert.False(t, session.IsOwner())

	_, err = gate.LoginAsDriver(ctx, "Sami", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = gate.LoginAsDriver(ctx, "Nobody", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginAsDriverDuplicateNames(t *testing.T) {
	gate, store, vehicleID := newGate(t)
	ctx := context.Background()

	// Two accounts sharing one display name; each password must reach its
	// own account.
	firstID, err := store.InsertDriver(ctx, models.DriverAccount{Name: "Ali", Password: "first", VehicleID: vehicleID})
	require.NoError(t, err)
	secondID, err := store.InsertDriver(ctx, models.DriverAccount{Name: "Ali", Password: "second", VehicleID: vehicleID})
	require.NoError(t, err)

	for _, tc := range []struct {
		password string
		driverID string
	}{
		{"first", firstID},
		{"second", secondID},
	} {
		token, err := gate.LoginAsDriver(ctx, "Ali", tc.password)
		require.NoError(t, err)
		session, err := gate.Resolve(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, tc.driverID, session.DriverID)
	}

	_, err = gate.LoginAsDriver(ctx, "Ali", "third")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestResolveRejectsDeletedDriver(t *testing.T) {
	gate, store, _ := newGate(t)
	ctx := context.Background()

	token, err := gate.LoginAsDriver(ctx, "Sami", "pw")
	require.NoError(t, err)

	session, err := gate.Resolve(ctx, token)
	require.NoError(t, err)
	require.NoError(t, store.DeleteDriver(ctx, session.DriverID))

	_, err = gate.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestResolveRejectsGarbageToken(t *testing.T) {
	gate, _, _ := newGate(t)

	_, err := gate.Resolve(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionScoping(t *testing.T) {
	owner := &Session{Role: RoleOwner}
	driver := &Session{Role: RoleDriver, DriverID: "d1", VehicleID: "v1"}

	ownTrip := &models.Trip{VehicleID: "v1", VisibleToDriver: true}
	hiddenTrip := &models.Trip{VehicleID: "v1", VisibleToDriver: false}
	otherTrip := &models.Trip{VehicleID: "v2", VisibleToDriver: true}

	assert.True(t, owner.CanViewTrip(ownTrip))
	assert.True(t, owner.CanViewTrip(hiddenTrip))
	assert.True(t, owner.CanViewTrip(otherTrip))
	assert.True(t, owner.CanAccessVehicle("v2"))

	assert.True(t, driver.CanViewTrip(ownTrip))
	assert.False(t, driver.CanViewTrip(hiddenTrip))
	assert.False(t, driver.CanViewTrip(otherTrip))
	assert.True(t, driver.CanAccessVehicle("v1"))
	assert.False(t, driver.CanAccessVehicle("v2"))
	assert.False(t, driver.CanAccessVehicle(""))
}

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokenService()

	token, err := tokens.Issue(RoleDriver, "driver-1")
	require.NoError(t, err)

	claims, err := tokens.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, RoleDriver, claims.Role)
	assert.Equal(t, "driver-1", claims.DriverID)

	// bearer prefix is tolerated
	claims, err = tokens.Validate("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "driver-1", claims.DriverID)

	_, err = tokens.Validate("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractTokenFromHeader(t *testing.T) {
	tokens := NewTokenService()

	tok, err := tokens.ExtractTokenFromHeader("Bearer abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	for _, header := range []string{"", "abc", "Basic abc", "Bearer "} {
		_, err := tokens.ExtractTokenFromHeader(header)
		assert.ErrorIs(t, err, ErrInvalidToken, header)
	}
}
