package gateway

import "net/http"

func (a *App) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.dash.Stats(r.Context(), userID(r))
	if err != nil {
		respondErr(w, err)
		return
	}
	respondData(w, http.StatusOK, stats)
}

func (a *App) handleEnergySeries(w http.ResponseWriter, r *http.Request) {
	series, err := a.dash.EnergySeries(r.Context(), userID(r))
	if err != nil {
		respondErr(w, err)
		return
	}
	respondData(w, http.StatusOK, series)
}

func (a *App) handleWaterSeries(w http.ResponseWriter, r *http.Request) {
	series, err := a.dash.WaterSeries(r.Context(), userID(r))
	if err != nil {
		respondErr(w, err)
		return
	}
	respondData(w, http.StatusOK, series)
}
