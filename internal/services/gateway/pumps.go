package gateway

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/abderrahmenzaway/wie-empower/internal/model"
	"github.com/abderrahmenzaway/wie-empower/internal/services/telemetry"
)

func (a *App) handleListPumps(w http.ResponseWriter, r *http.Request) {
	pumps, err := a.devices.ListPumps(r.Context(), userID(r))
	if err != nil {
		respondErr(w, err)
		return
	}
	respondData(w, http.StatusOK, pumps)
}

func (a *App) handleCreatePump(w http.ResponseWriter, r *http.Request) {
	var in telemetry.CreatePumpInput
	if err := decodeBody(r, &in); err != nil {
		respondErr(w, err)
		return
	}
	if err := a.validate.Struct(in); err != nil {
		respondErr(w, model.Invalidf("body", "%v", err))
		return
	}
	pump, err := a.devices.CreatePump(r.Context(), userID(r), in)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondData(w, http.StatusCreated, pump)
}

func (a *App) handleGetPump(w http.ResponseWriter, r *http.Request) {
	pump, err := a.devices.GetPump(r.Context(), mux.Vars(r)["id"], userID(r))
	if err != nil {
		respondErr(w, err)
		return
	}
	respondData(w, http.StatusOK, pump)
}

func (a *App) handleUpdatePump(w http.ResponseWriter, r *http.Request) {
	var patch model.PumpPatch
	if err := decodeBody(r, &patch); err != nil {
		respondErr(w, err)
		return
	}
	pump, err := a.devices.UpdatePump(r.Context(), mux.Vars(r)["id"], userID(r), patch)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondData(w, http.StatusOK, pump)
}

func (a *App) handleDeletePump(w http.ResponseWriter, r *http.Request) {
	if err := a.devices.DeletePump(r.Context(), mux.Vars(r)["id"], userID(r)); err != nil {
		respondErr(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"id": mux.Vars(r)["id"]})
}
