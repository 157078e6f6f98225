package main

import (
	"context"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/zedm/louage-backend/internal/config"
	"github.com/zedm/louage-backend/internal/db"
	"github.com/zedm/louage-backend/internal/handlers"
	"github.com/zedm/louage-backend/internal/ledger"
	"github.com/zedm/louage-backend/internal/middleware"
	"github.com/zedm/louage-backend/internal/realtime"
	"github.com/zedm/louage-backend/internal/registry"
	"github.com/zedm/louage-backend/internal/session"
	"github.com/zedm/louage-backend/internal/settings"
	"github.com/zedm/louage-backend/internal/settlement"
)

// newRouter composes the full HTTP surface over the given collections. Owner
// routes are wrapped with the owner check; everything except login and
// health requires a session.
func newRouter(cfg *config.Config,
	vehicles db.VehicleCollection,
	drivers db.DriverCollection,
	passengers db.PassengerCollection,
	trips db.TripCollection,
	settingsColl db.SettingsCollection,
) http.Handler {
	settingsStore := settings.NewStore(settingsColl)
	seatLedger := ledger.New(passengers, cfg.Fleet.SeatCapacity)
	engine := settlement.NewEngine(trips, vehicles)
	reg := registry.New(vehicles, drivers)
	gate := session.NewGate(settingsStore, drivers, session.NewTokenService())

	authHandler := handlers.NewAuthHandler(gate)
	passengerHandler := handlers.NewPassengerHandler(seatLedger, passengers)
	tripHandler := handlers.NewTripHandler(engine, settingsStore, trips)
	vehicleHandler := handlers.NewVehicleHandler(reg, engine, settingsStore)
	driverHandler := handlers.NewDriverHandler(reg)
	settingsHandler := handlers.NewSettingsHandler(settingsStore)

	sessionMw := middleware.NewSessionMiddleware(gate)
	rateLimitMw := middleware.NewRateLimitMiddleware()
	owner := func(h http.HandlerFunc) http.Handler {
		return sessionMw.RequireOwner(h)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	mux.HandleFunc("POST /api/auth/owner-login", authHandler.OwnerLogin)
	mux.HandleFunc("POST /api/auth/driver-login", authHandler.DriverLogin)
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)

	mux.HandleFunc("GET /api/passengers", passengerHandler.List)
	mux.HandleFunc("POST /api/passengers", passengerHandler.Reserve)
	mux.HandleFunc("GET /api/passengers/occupancy", passengerHandler.Occupancy)
	mux.HandleFunc("PUT /api/passengers/{id}", passengerHandler.Update)
	mux.HandleFunc("DELETE /api/passengers/{id}", passengerHandler.Cancel)

	mux.HandleFunc("GET /api/trips", tripHandler.List)
	mux.HandleFunc("POST /api/trips", tripHandler.Record)
	mux.Handle("PUT /api/trips/{id}/visibility", owner(tripHandler.SetVisibility))
	mux.Handle("GET /api/stats", owner(tripHandler.Stats))

	mux.HandleFunc("GET /api/vehicles", vehicleHandler.List)
	mux.Handle("POST /api/vehicles", owner(vehicleHandler.Create))
	mux.Handle("GET /api/vehicles/maintenance-due", owner(vehicleHandler.MaintenanceDue))
	mux.Handle("PUT /api/vehicles/{id}", owner(vehicleHandler.Update))
	mux.Handle("DELETE /api/vehicles/{id}", owner(vehicleHandler.Delete))
	mux.Handle("POST /api/vehicles/{id}/maintenance-ack", owner(vehicleHandler.MaintenanceAck))

	mux.Handle("GET /api/drivers", owner(driverHandler.List))
	mux.Handle("POST /api/drivers", owner(driverHandler.Create))
	mux.Handle("PUT /api/drivers/{id}", owner(driverHandler.Update))
	mux.Handle("DELETE /api/drivers/{id}", owner(driverHandler.Delete))

	mux.Handle("GET /api/settings", owner(settingsHandler.Get))
	mux.Handle("PUT /api/settings", owner(settingsHandler.Update))

	limit := rateLimitMw.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.WindowSeconds)
	return limit(sessionMw.Authenticate(mux))
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if level, err := log.ParseLevel(cfg.Server.LogLevel); err == nil {
		log.SetLevel(level)
	}

	client, err := db.ConnectMongo(cfg.Mongo.URI)
	if err != nil {
		log.Fatalf("connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())
	store := db.NewMongoStore(client.Database(cfg.Mongo.Database))
	log.WithField("database", cfg.Mongo.Database).Info("connected to MongoDB")

	if cfg.MQTT.BrokerURL != "" {
		broker, err := realtime.Connect(cfg.MQTT.BrokerURL, cfg.MQTT.ClientID)
		if err != nil {
			log.WithError(err).Warn("realtime fan-out disabled")
		} else {
			publisher := realtime.NewPublisher(broker, cfg.MQTT.TopicPrefix)
			if err := publisher.Start(context.Background(), store); err != nil {
				log.WithError(err).Warn("realtime fan-out disabled")
			}
		}
	}

	router := newRouter(cfg, store.Vehicles, store.Drivers, store.Passengers, store.Trips, store.Settings)

	log.WithFields(log.Fields{
		"port":  cfg.Server.Port,
		"route": cfg.Fleet.RouteOutbound + "-" + cfg.Fleet.RouteInbound,
	}).Info("HTTP server listening")
	log.Fatal(http.ListenAndServe(":"+cfg.Server.Port, router))
}
