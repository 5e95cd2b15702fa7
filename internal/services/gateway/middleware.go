package gateway

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/abderrahmenzaway/wie-empower/internal/metrics"
)

type ctxKey int

const userIDKey ctxKey = iota

// Auth authenticates requests with a bearer JWT and stashes the subject in
// the request context. With no secret configured it falls back to the
// X-User-ID header, which is only acceptable behind a trusted proxy or in
// development.
type Auth struct {
	secret []byte
	logger *zap.SugaredLogger
}

func NewAuth(secret string, logger *zap.SugaredLogger) *Auth {
	if secret == "" {
		logger.Warn("JWT_SECRET not set, falling back to X-User-ID header auth")
	}
	return &Auth{secret: []byte(secret), logger: logger}
}

func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := a.resolve(r)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, envelope{Error: &apiError{
				Kind: "unauthorized", Message: err.Error(),
			}})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	})
}

func (a *Auth) resolve(r *http.Request) (string, error) {
	if len(a.secret) == 0 {
		if id := r.Header.Get("X-User-ID"); id != "" {
			return id, nil
		}
		return "", errMissingIdentity
	}

	header := r.Header.Get("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		// WebSocket clients cannot set headers from the browser.
		raw = r.URL.Query().Get("token")
	}
	if raw == "" {
		return "", errMissingIdentity
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return "", errInvalidToken
	}
	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", errInvalidToken
	}
	return sub, nil
}

var (
	errMissingIdentity = authError("missing credentials")
	errInvalidToken    = authError("invalid token")
)

type authError string

func (e authError) Error() string { return string(e) }

func userID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		metrics.HTTPDuration.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).
			Observe(time.Since(start).Seconds())
	})
}
