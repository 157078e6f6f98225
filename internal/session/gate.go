// Package session resolves which role the current user acts as and restricts
// what each role may invoke. Login is a plain-equality password gate, not a
// security boundary.
package session

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/zedm/louage-backend/internal/db"
	"github.com/zedm/louage-backend/internal/models"
	"github.com/zedm/louage-backend/internal/settings"
)

// ErrInvalidCredentials rejects a login attempt. Recoverable: the user
// retries.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Role tags a session as the fleet owner or one specific driver.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleDriver Role = "driver"
)

// IsValidRole checks if a role is one of the two known tags.
func IsValidRole(role Role) bool {
	return role == RoleOwner || role == RoleDriver
}

// Session is a resolved authenticated session. VehicleID is the driver's
// assigned vehicle; it is empty for the owner, who is not vehicle-scoped.
type Session struct {
	Role      Role
	DriverID  string
	VehicleID string
}

// IsOwner reports whether the session acts as the fleet owner.
func (s *Session) IsOwner() bool {
	return s.Role == RoleOwner
}

// CanAccessVehicle reports whether the session may operate on a vehicle's
// reservations and trips.
func (s *Session) CanAccessVehicle(vehicleID string) bool {
	return s.IsOwner() || (vehicleID != "" && s.VehicleID == vehicleID)
}

// CanViewTrip reports whether the session may read a trip record. Drivers
// see only their own vehicle's trips that the owner left visible.
func (s *Session) CanViewTrip(trip *models.Trip) bool {
	if s.IsOwner() {
		return true
	}
	return trip.VehicleID == s.VehicleID && trip.VisibleToDriver
}

// Gate performs logins and resolves session tokens back into sessions.
type Gate struct {
	settings *settings.Store
	drivers  db.DriverCollection
	tokens   *TokenService
}

// NewGate creates a gate over the settings store and driver accounts.
func NewGate(settingsStore *settings.Store, drivers db.DriverCollection, tokens *TokenService) *Gate {
	return &Gate{settings: settingsStore, drivers: drivers, tokens: tokens}
}

// LoginAsOwner compares the password against the settings singleton and
// issues an owner session token on match.
func (g *Gate) LoginAsOwner(ctx context.Context, password string) (string, error) {
	current, err := g.settings.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("load settings: %w", err)
	}
	if password == "" || password != current.OwnerPassword {
		return "", ErrInvalidCredentials
	}
	token, err := g.tokens.Issue(RoleOwner, "")
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	log.Info("owner logged in")
	return token, nil
}

// LoginAsDriver looks up the account matching both name and password and
// issues a driver session token. Matching the pair, not name first, keeps
// accounts with the same display name independently able to log in.
func (g *Gate) LoginAsDriver(ctx context.Context, name, password string) (string, error) {
	if name == "" || password == "" {
		return "", ErrInvalidCredentials
	}
	driver, err := g.drivers.FindDriverByCredentials(ctx, name, password)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("look up driver: %w", err)
	}
	token, err := g.tokens.Issue(RoleDriver, driver.ID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	log.WithField("driver", driver.ID).Info("driver logged in")
	return token, nil
}

// Resolve validates a token and rebuilds the session, including the driver's
// current vehicle assignment. A driver account deleted since login no longer
// resolves.
func (g *Gate) Resolve(ctx context.Context, token string) (*Session, error) {
	claims, err := g.tokens.Validate(token)
	if err != nil {
		return nil, err
	}
	session := &Session{Role: claims.Role, DriverID: claims.DriverID}
	if claims.Role == RoleDriver {
		driver, err := g.drivers.FindDriverByID(ctx, claims.DriverID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return nil, ErrInvalidCredentials
			}
			return nil, fmt.Errorf("resolve driver: %w", err)
		}
		session.VehicleID = driver.VehicleID
	}
	return session, nil
}
