package gateway

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/abderrahmenzaway/wie-empower/internal/events"
	"github.com/abderrahmenzaway/wie-empower/internal/services/dashboard"
	"github.com/abderrahmenzaway/wie-empower/internal/services/notification"
	"github.com/abderrahmenzaway/wie-empower/internal/services/telemetry"
	"github.com/abderrahmenzaway/wie-empower/internal/services/watering"
	"github.com/abderrahmenzaway/wie-empower/internal/storage"
)

func newTestApp(t *testing.T, jwtSecret string) *App {
	t.Helper()
	logger := zap.NewNop().Sugar()
	store := storage.NewMemory()
	hub := events.NewHub(64, logger)
	t.Cleanup(hub.Close)

	notifications := notification.NewService(store, hub, logger)
	devices := telemetry.NewService(store, store, hub, notifications, nil, logger)
	zones := watering.NewService(store, store, store, hub, notifications, nil, 10, 10, logger)
	dash := dashboard.NewService(store, store, store, dashboard.SyntheticSeries{}, logger)

	auth := NewAuth(jwtSecret, logger)
	return NewApp(zones, devices, dash, notifications, nil, hub, nil, auth, logger)
}

func doJSON(t *testing.T, h http.Handler, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.True(t, env.Success, rec.Body.String())
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func errKind(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Kind string `json:"kind"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Error.Kind
}

func TestZoneLifecycleOverHTTP(t *testing.T) {
	router := newTestApp(t, "").Router()

	rec := doJSON(t, router, http.MethodPost, "/api/zones", "alice",
		map[string]any{"name": "North bed", "plantType": "Tomatoes"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeData[map[string]any](t, rec)
	id := created["id"].(string)
	assert.Equal(t, "Inactive", created["status"])

	rec = doJSON(t, router, http.MethodPost, "/api/zones/"+id+"/toggle", "alice",
		map[string]any{"duration": 15})
	require.Equal(t, http.StatusOK, rec.Code)
	toggled := decodeData[map[string]any](t, rec)
	assert.Equal(t, "Active", toggled["status"])

	// The owner sees it in the list view; a stranger gets not_found by id.
	rec = doJSON(t, router, http.MethodGet, "/api/zones", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeData[[]map[string]any](t, rec)
	assert.Len(t, list, 1)

	rec = doJSON(t, router, http.MethodGet, "/api/zones/"+id, "mallory", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", errKind(t, rec))

	rec = doJSON(t, router, http.MethodDelete, "/api/zones/"+id, "alice", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, router, http.MethodGet, "/api/zones/"+id, "alice", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestToggleBodyWithoutContentLength(t *testing.T) {
	router := newTestApp(t, "").Router()

	rec := doJSON(t, router, http.MethodPost, "/api/zones", "alice",
		map[string]any{"name": "North bed"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decodeData[map[string]any](t, rec)["id"].(string)

	// Wrapping the reader hides its length, so the request is built with
	// ContentLength -1 the way a chunked upload arrives.
	body := struct{ io.Reader }{strings.NewReader(`{"duration": 25}`)}
	req := httptest.NewRequest(http.MethodPost, "/api/zones/"+id+"/toggle", body)
	require.Equal(t, int64(-1), req.ContentLength)
	req.Header.Set("X-User-ID", "alice")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	toggled := decodeData[map[string]any](t, rec)
	ws := toggled["wateringStatus"].(map[string]any)
	assert.Equal(t, true, ws["isRunning"])
	assert.Equal(t, 25.0, ws["currentDuration"])

	// A genuinely empty body still toggles, now back off.
	rec = doJSON(t, router, http.MethodPost, "/api/zones/"+id+"/toggle", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	toggled = decodeData[map[string]any](t, rec)
	assert.Equal(t, false, toggled["wateringStatus"].(map[string]any)["isRunning"])
}

func TestValidationErrorsSurfaceAs400(t *testing.T) {
	router := newTestApp(t, "").Router()

	rec := doJSON(t, router, http.MethodPost, "/api/zones", "alice", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_failed", errKind(t, rec))

	// Unknown body fields are rejected, not silently merged.
	rec = doJSON(t, router, http.MethodPost, "/api/zones", "alice",
		map[string]any{"name": "x", "isRunning": true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSensorReadingEndpoint(t *testing.T) {
	router := newTestApp(t, "").Router()

	rec := doJSON(t, router, http.MethodPost, "/api/sensors", "alice",
		map[string]any{"name": "bed-moisture", "type": "Soil Moisture"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sensor := decodeData[map[string]any](t, rec)
	id := sensor["id"].(string)
	assert.Equal(t, "Offline", sensor["status"])

	rec = doJSON(t, router, http.MethodPost, "/api/sensors/"+id+"/reading", "alice",
		map[string]any{"value": 47.5})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeData[map[string]any](t, rec)
	assert.Equal(t, 47.5, updated["currentValue"])
	assert.Equal(t, "Offline", updated["status"])
}

func TestNotificationRoutes(t *testing.T) {
	router := newTestApp(t, "").Router()

	for i := 0; i < 2; i++ {
		rec := doJSON(t, router, http.MethodPost, "/api/notifications", "alice",
			map[string]any{"message": "water me"})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(t, router, http.MethodPost, "/api/notifications/read-all", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/notifications?unread=true", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	unread := decodeData[[]map[string]any](t, rec)
	assert.Empty(t, unread)

	rec = doJSON(t, router, http.MethodDelete, "/api/notifications", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestDashboardRoutes(t *testing.T) {
	router := newTestApp(t, "").Router()

	rec := doJSON(t, router, http.MethodGet, "/api/dashboard/stats", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decodeData[map[string]any](t, rec)
	assert.Contains(t, stats, "zones")
	assert.Contains(t, stats, "energy")

	rec = doJSON(t, router, http.MethodGet, "/api/dashboard/water", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	series := decodeData[map[string]any](t, rec)
	assert.Len(t, series["hourly"], 24)
}

func TestWeatherUnconfigured(t *testing.T) {
	router := newTestApp(t, "").Router()
	rec := doJSON(t, router, http.MethodGet, "/api/weather/current?city=Tunis", "alice", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "dependency_unavailable", errKind(t, rec))
}

func TestAuthRequired(t *testing.T) {
	router := newTestApp(t, "").Router()
	rec := doJSON(t, router, http.MethodGet, "/api/zones", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuth(t *testing.T) {
	const secret = "test-secret"
	router := newTestApp(t, secret).Router()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/zones", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// With a secret configured the header fallback is gone.
	req = httptest.NewRequest(http.MethodGet, "/api/zones", nil)
	req.Header.Set("X-User-ID", "alice")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/zones", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthz(t *testing.T) {
	router := newTestApp(t, "").Router()
	rec := doJSON(t, router, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
