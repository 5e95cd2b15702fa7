// Package gateway exposes the HTTP and WebSocket surface of the server.
package gateway

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/abderrahmenzaway/wie-empower/internal/events"
	"github.com/abderrahmenzaway/wie-empower/internal/services/dashboard"
	"github.com/abderrahmenzaway/wie-empower/internal/services/notification"
	"github.com/abderrahmenzaway/wie-empower/internal/services/telemetry"
	"github.com/abderrahmenzaway/wie-empower/internal/services/watering"
	"github.com/abderrahmenzaway/wie-empower/internal/services/weather"
)

// App wires the services to routes. Weather may be nil when no API key is
// configured; its routes then answer 503.
type App struct {
	zones         *watering.Service
	devices       *telemetry.Service
	dash          *dashboard.Service
	notifications *notification.Service
	weather       *weather.Service
	hub           *events.Hub
	monitor       *telemetry.Monitor

	auth     *Auth
	validate *validator.Validate
	logger   *zap.SugaredLogger
}

func NewApp(zones *watering.Service, devices *telemetry.Service, dash *dashboard.Service,
	notifications *notification.Service, wsvc *weather.Service, hub *events.Hub,
	monitor *telemetry.Monitor, auth *Auth, logger *zap.SugaredLogger) *App {
	return &App{
		zones:         zones,
		devices:       devices,
		dash:          dash,
		notifications: notifications,
		weather:       wsvc,
		hub:           hub,
		monitor:       monitor,
		auth:          auth,
		validate:      validator.New(),
		logger:        logger,
	}
}

// Router builds the full route table.
func (a *App) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", a.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(a.auth.Middleware)
	api.Use(metricsMiddleware)

	api.HandleFunc("/zones", a.handleListZones).Methods(http.MethodGet)
	api.HandleFunc("/zones", a.handleCreateZone).Methods(http.MethodPost)
	api.HandleFunc("/zones/{id}", a.handleGetZone).Methods(http.MethodGet)
	api.HandleFunc("/zones/{id}", a.handleUpdateZone).Methods(http.MethodPatch, http.MethodPut)
	api.HandleFunc("/zones/{id}", a.handleDeleteZone).Methods(http.MethodDelete)
	api.HandleFunc("/zones/{id}/toggle", a.handleToggleZone).Methods(http.MethodPost)
	api.HandleFunc("/zones/{id}/override", a.handleZoneOverride).Methods(http.MethodPost)
	api.HandleFunc("/zones/{id}/moisture", a.handleZoneMoisture).Methods(http.MethodPost)
	api.HandleFunc("/zones/{id}/watering-events", a.handleZoneWateringEvent).Methods(http.MethodPost)

	api.HandleFunc("/sensors", a.handleListSensors).Methods(http.MethodGet)
	api.HandleFunc("/sensors", a.handleCreateSensor).Methods(http.MethodPost)
	api.HandleFunc("/sensors/{id}", a.handleGetSensor).Methods(http.MethodGet)
	api.HandleFunc("/sensors/{id}", a.handleUpdateSensor).Methods(http.MethodPatch, http.MethodPut)
	api.HandleFunc("/sensors/{id}", a.handleDeleteSensor).Methods(http.MethodDelete)
	api.HandleFunc("/sensors/{id}/reading", a.handleSensorReading).Methods(http.MethodPost)
	api.HandleFunc("/sensors/{id}/status", a.handleSensorStatus).Methods(http.MethodPost)

	api.HandleFunc("/pumps", a.handleListPumps).Methods(http.MethodGet)
	api.HandleFunc("/pumps", a.handleCreatePump).Methods(http.MethodPost)
	api.HandleFunc("/pumps/{id}", a.handleGetPump).Methods(http.MethodGet)
	api.HandleFunc("/pumps/{id}", a.handleUpdatePump).Methods(http.MethodPatch, http.MethodPut)
	api.HandleFunc("/pumps/{id}", a.handleDeletePump).Methods(http.MethodDelete)

	api.HandleFunc("/dashboard/stats", a.handleStats).Methods(http.MethodGet)
	api.HandleFunc("/dashboard/energy", a.handleEnergySeries).Methods(http.MethodGet)
	api.HandleFunc("/dashboard/water", a.handleWaterSeries).Methods(http.MethodGet)

	api.HandleFunc("/notifications", a.handleListNotifications).Methods(http.MethodGet)
	api.HandleFunc("/notifications", a.handleCreateNotification).Methods(http.MethodPost)
	api.HandleFunc("/notifications/read-all", a.handleMarkAllRead).Methods(http.MethodPost)
	api.HandleFunc("/notifications/{id}/read", a.handleMarkRead).Methods(http.MethodPost)
	api.HandleFunc("/notifications/{id}", a.handleDeleteNotification).Methods(http.MethodDelete)
	api.HandleFunc("/notifications", a.handleDeleteAllNotifications).Methods(http.MethodDelete)

	api.HandleFunc("/weather/current", a.handleWeatherCurrent).Methods(http.MethodGet)
	api.HandleFunc("/weather/forecast", a.handleWeatherForecast).Methods(http.MethodGet)

	r.HandleFunc("/ws", a.auth.Middleware(http.HandlerFunc(a.handleWS)).ServeHTTP)

	return r
}

func (a *App) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
