package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "louage", cfg.Mongo.Database)
	assert.Equal(t, 8, cfg.Fleet.SeatCapacity)
	assert.Equal(t, "Tunis", cfg.Fleet.RouteOutbound)
	assert.Equal(t, "Jelma", cfg.Fleet.RouteInbound)
	assert.Equal(t, "louage", cfg.MQTT.TopicPrefix)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SEAT_CAPACITY", "9")
	t.Setenv("ROUTE_OUTBOUND", "Sfax")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 9, cfg.Fleet.SeatCapacity)
	assert.Equal(t, "Sfax", cfg.Fleet.RouteOutbound)
}

func TestLoadIgnoresBadInteger(t *testing.T) {
	t.Setenv("SEAT_CAPACITY", "lots")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Fleet.SeatCapacity)
}

func TestValidateRejectsZeroCapacity(t *testing.T) {
	t.Setenv("SEAT_CAPACITY", "0")

	_, err := Load()
	assert.Error(t, err)
}
