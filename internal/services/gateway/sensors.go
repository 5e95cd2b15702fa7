package gateway

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/abderrahmenzaway/wie-empower/internal/model"
	"github.com/abderrahmenzaway/wie-empower/internal/model/entities"
	"github.com/abderrahmenzaway/wie-empower/internal/services/telemetry"
)

func (a *App) handleListSensors(w http.ResponseWriter, r *http.Request) {
	sensors, err := a.devices.ListSensors(r.Context(), userID(r))
	if err != nil {
		respondErr(w, err)
		return
	}
	respondData(w, http.StatusOK, sensors)
}

func (a *App) handleCreateSensor(w http.ResponseWriter, r *http.Request) {
	var in telemetry.CreateSensorInput
	if err := decodeBody(r, &in); err != nil {
		respondErr(w, err)
		return
	}
	if err := a.validate.Struct(in); err != nil {
		respondErr(w, model.Invalidf("body", "%v", err))
		return
	}
	sensor, err := a.devices.CreateSensor(r.Context(), userID(r), in)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondData(w, http.StatusCreated, sensor)
}

func (a *App) handleGetSensor(w http.ResponseWriter, r *http.Request) {
	sensor, err := a.devices.GetSensor(r.Context(), mux.Vars(r)["id"], userID(r))
	if err != nil {
		respondErr(w, err)
		return
	}
	respondData(w, http.StatusOK, sensor)
}

func (a *App) handleUpdateSensor(w http.ResponseWriter, r *http.Request) {
	var patch model.SensorPatch
	if err := decodeBody(r, &patch); err != nil {
		respondErr(w, err)
		return
	}
	sensor, err := a.devices.UpdateSensor(r.Context(), mux.Vars(r)["id"], userID(r), patch)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondData(w, http.StatusOK, sensor)
}

func (a *App) handleDeleteSensor(w http.ResponseWriter, r *http.Request) {
	if err := a.devices.DeleteSensor(r.Context(), mux.Vars(r)["id"], userID(r)); err != nil {
		respondErr(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"id": mux.Vars(r)["id"]})
}

func (a *App) handleSensorReading(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Value     float64   `json:"value"`
		Timestamp time.Time `json:"timestamp"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondErr(w, err)
		return
	}
	id, uid := mux.Vars(r)["id"], userID(r)
	sensor, err := a.devices.RecordReading(r.Context(), id, uid, body.Value, body.Timestamp, "http")
	if err != nil {
		respondErr(w, err)
		return
	}
	if a.monitor != nil {
		a.monitor.Touch(r.Context(), uid, id)
	}
	respondData(w, http.StatusOK, sensor)
}

func (a *App) handleSensorStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status entities.SensorStatus `json:"status"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondErr(w, err)
		return
	}
	sensor, err := a.devices.SetStatus(r.Context(), mux.Vars(r)["id"], userID(r), body.Status)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondData(w, http.StatusOK, sensor)
}
