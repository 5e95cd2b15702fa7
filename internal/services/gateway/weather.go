package gateway

import (
	"net/http"

	"github.com/abderrahmenzaway/wie-empower/internal/storage"
)

func (a *App) handleWeatherCurrent(w http.ResponseWriter, r *http.Request) {
	if a.weather == nil {
		respondErr(w, storage.ErrUnavailable)
		return
	}
	current, err := a.weather.Current(r.Context(), r.URL.Query().Get("city"))
	if err != nil {
		respondErr(w, err)
		return
	}
	respondData(w, http.StatusOK, current)
}

func (a *App) handleWeatherForecast(w http.ResponseWriter, r *http.Request) {
	if a.weather == nil {
		respondErr(w, storage.ErrUnavailable)
		return
	}
	forecast, err := a.weather.Forecast(r.Context(), r.URL.Query().Get("city"))
	if err != nil {
		respondErr(w, err)
		return
	}
	respondData(w, http.StatusOK, forecast)
}
