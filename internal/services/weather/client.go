package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const apiBase = "https://api.openweathermap.org/data/2.5"

// Current is the condensed current-conditions payload served to clients.
type Current struct {
	City        string  `json:"city"`
	Temperature float64 `json:"temperature"`
	FeelsLike   float64 `json:"feelsLike"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"windSpeed"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	Rain1h      float64 `json:"rain1h"`
}

// ForecastPoint is one 3-hour forecast slot.
type ForecastPoint struct {
	Time        time.Time `json:"time"`
	Temperature float64   `json:"temperature"`
	Humidity    int       `json:"humidity"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Rain        float64   `json:"rain"`
}

// Forecast is the 5-day/3-hour forecast for a city.
type Forecast struct {
	City   string          `json:"city"`
	Points []ForecastPoint `json:"points"`
}

type owmCondition struct {
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type owmMain struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	Humidity  int     `json:"humidity"`
}

type owmCurrentResp struct {
	Name    string         `json:"name"`
	Main    owmMain        `json:"main"`
	Weather []owmCondition `json:"weather"`
	Wind    struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Rain struct {
		OneH float64 `json:"1h"`
	} `json:"rain"`
}

type owmForecastResp struct {
	City struct {
		Name string `json:"name"`
	} `json:"city"`
	List []struct {
		Dt      int64          `json:"dt"`
		Main    owmMain        `json:"main"`
		Weather []owmCondition `json:"weather"`
		Rain    struct {
			ThreeH float64 `json:"3h"`
		} `json:"rain"`
	} `json:"list"`
}

// Client talks to the OpenWeather REST API.
type Client struct {
	apiKey string
	http   *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{apiKey: apiKey, http: &http.Client{Timeout: 10 * time.Second}}
}

func (c *Client) get(ctx context.Context, path, city string, out any) error {
	if c.apiKey == "" {
		return fmt.Errorf("missing api key")
	}
	q := url.Values{}
	q.Set("q", city)
	q.Set("units", "metric")
	q.Set("appid", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiBase+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return ErrUnknownCity
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("openweather status %d: %s", resp.StatusCode, string(b))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) Current(ctx context.Context, city string) (*Current, error) {
	var raw owmCurrentResp
	if err := c.get(ctx, "/weather", city, &raw); err != nil {
		return nil, err
	}
	out := &Current{
		City:        raw.Name,
		Temperature: raw.Main.Temp,
		FeelsLike:   raw.Main.FeelsLike,
		Humidity:    raw.Main.Humidity,
		WindSpeed:   raw.Wind.Speed,
		Rain1h:      raw.Rain.OneH,
	}
	if len(raw.Weather) > 0 {
		out.Description = raw.Weather[0].Description
		out.Icon = raw.Weather[0].Icon
	}
	return out, nil
}

func (c *Client) Forecast(ctx context.Context, city string) (*Forecast, error) {
	var raw owmForecastResp
	if err := c.get(ctx, "/forecast", city, &raw); err != nil {
		return nil, err
	}
	out := &Forecast{City: raw.City.Name, Points: make([]ForecastPoint, 0, len(raw.List))}
	for _, item := range raw.List {
		p := ForecastPoint{
			Time:        time.Unix(item.Dt, 0).UTC(),
			Temperature: item.Main.Temp,
			Humidity:    item.Main.Humidity,
			Rain:        item.Rain.ThreeH,
		}
		if len(item.Weather) > 0 {
			p.Description = item.Weather[0].Description
			p.Icon = item.Weather[0].Icon
		}
		out.Points = append(out.Points, p)
	}
	return out, nil
}
