package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidDirection(t *testing.T) {
	tests := []struct {
		name     string
		dir      Direction
		expected bool
	}{
		{"outbound", DirectionOutbound, true},
		{"inbound", DirectionInbound, true},
		{"invalid", "sideways", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsValidDirection(tt.dir))
		})
	}
}

func TestPassengerValidate(t *testing.T) {
	valid := Passenger{
		Name:       "Ahmed",
		Phone:      "21612345",
		Direction:  DirectionOutbound,
		Date:       "2024-05-01",
		VehicleID:  "veh-1",
		SeatsCount: 3,
	}

	tests := []struct {
		name      string
		mutate    func(*Passenger)
		wantField string
	}{
		{"valid", func(p *Passenger) {}, ""},
		{"missing name", func(p *Passenger) { p.Name = "" }, "name"},
		{"missing phone", func(p *Passenger) { p.Phone = "" }, "phone"},
		{"bad direction", func(p *Passenger) { p.Direction = "x" }, "direction"},
		{"missing vehicle", func(p *Passenger) { p.VehicleID = "" }, "vehicle_id"},
		{"bad date", func(p *Passenger) { p.Date = "01/05/2024" }, "date"},
		{"zero seats", func(p *Passenger) { p.SeatsCount = 0 }, "seats_count"},
		{"too many seats", func(p *Passenger) { p.SeatsCount = 9 }, "seats_count"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := p.Validate(8)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestSettingsValidate(t *testing.T) {
	s := DefaultSettings()
	assert.NoError(t, s.Validate())

	s.DriverPercentage = 101
	assert.Error(t, s.Validate())

	s = DefaultSettings()
	s.OilChangeIntervalKm = 0
	assert.Error(t, s.Validate())

	s = DefaultSettings()
	s.OwnerPassword = ""
	assert.Error(t, s.Validate())
}

func TestVehicleValidate(t *testing.T) {
	v := Vehicle{PlateNumber: "123 TU 4567", Model: "Berlingo", CurrentOdometerKm: 1000, LastOilChangeKm: 500}
	assert.NoError(t, v.Validate())

	v.LastOilChangeKm = 1500
	assert.Error(t, v.Validate())

	v = Vehicle{Model: "Berlingo"}
	assert.Error(t, v.Validate())
}
