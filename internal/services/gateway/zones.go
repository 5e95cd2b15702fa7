package gateway

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/abderrahmenzaway/wie-empower/internal/model"
	"github.com/abderrahmenzaway/wie-empower/internal/services/watering"
)

func (a *App) handleListZones(w http.ResponseWriter, r *http.Request) {
	zones, err := a.zones.ListZones(r.Context(), userID(r))
	if err != nil {
		respondErr(w, err)
		return
	}
	views := make([]*zoneView, 0, len(zones))
	for i := range zones {
		views = append(views, a.buildZoneView(r.Context(), &zones[i]))
	}
	respondData(w, http.StatusOK, views)
}

func (a *App) handleCreateZone(w http.ResponseWriter, r *http.Request) {
	var in watering.CreateZoneInput
	if err := decodeBody(r, &in); err != nil {
		respondErr(w, err)
		return
	}
	if err := a.validate.Struct(in); err != nil {
		respondErr(w, model.Invalidf("body", "%v", err))
		return
	}
	zone, err := a.zones.CreateZone(r.Context(), userID(r), in)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondData(w, http.StatusCreated, zone)
}

func (a *App) handleGetZone(w http.ResponseWriter, r *http.Request) {
	zone, err := a.zones.GetZone(r.Context(), mux.Vars(r)["id"], userID(r))
	if err != nil {
		respondErr(w, err)
		return
	}
	respondData(w, http.StatusOK, a.buildZoneView(r.Context(), zone))
}

func (a *App) handleUpdateZone(w http.ResponseWriter, r *http.Request) {
	var patch model.ZonePatch
	if err := decodeBody(r, &patch); err != nil {
		respondErr(w, err)
		return
	}
	zone, err := a.zones.UpdateZone(r.Context(), mux.Vars(r)["id"], userID(r), patch)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondData(w, http.StatusOK, zone)
}

func (a *App) handleDeleteZone(w http.ResponseWriter, r *http.Request) {
	if err := a.zones.DeleteZone(r.Context(), mux.Vars(r)["id"], userID(r)); err != nil {
		respondErr(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"id": mux.Vars(r)["id"]})
}

func (a *App) handleToggleZone(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Duration *int `json:"duration"`
	}
	// An empty body toggles with no explicit duration.
	if err := decodeBodyOptional(r, &body); err != nil {
		respondErr(w, err)
		return
	}
	zone, err := a.zones.Toggle(r.Context(), mux.Vars(r)["id"], userID(r), body.Duration)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondData(w, http.StatusOK, zone)
}

func (a *App) handleZoneOverride(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Override bool `json:"override"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondErr(w, err)
		return
	}
	zone, err := a.zones.SetOverride(r.Context(), mux.Vars(r)["id"], userID(r), body.Override)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondData(w, http.StatusOK, zone)
}

func (a *App) handleZoneMoisture(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Level     float64   `json:"level"`
		Timestamp time.Time `json:"timestamp"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondErr(w, err)
		return
	}
	zone, err := a.zones.UpdateMoisture(r.Context(), mux.Vars(r)["id"], userID(r), body.Level, body.Timestamp)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondData(w, http.StatusOK, zone)
}

func (a *App) handleZoneWateringEvent(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Duration float64 `json:"duration"`
		Amount   float64 `json:"amount"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondErr(w, err)
		return
	}
	zone, err := a.zones.RecordWateringEvent(r.Context(), mux.Vars(r)["id"], userID(r), body.Duration, body.Amount)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondData(w, http.StatusOK, zone)
}
