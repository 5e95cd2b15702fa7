package telemetry

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abderrahmenzaway/wie-empower/internal/model/entities"
	"github.com/abderrahmenzaway/wie-empower/internal/storage"
)

// StatusSetter is the one primitive the monitor needs from the telemetry
// service.
type StatusSetter interface {
	SetStatus(ctx context.Context, id, userID string, status entities.SensorStatus) (*entities.Sensor, error)
}

type sensorKey struct {
	userID string
	id     string
}

// Monitor flips sensors Online when telemetry arrives and Offline when no
// reading has been seen for the configured TTL. Reading ingestion itself
// never touches status, so this is the only writer of liveness state.
type Monitor struct {
	mu       sync.Mutex
	lastSeen map[sensorKey]time.Time
	online   map[sensorKey]bool

	setter   StatusSetter
	ttl      time.Duration
	interval time.Duration
	logger   *zap.SugaredLogger
}

func NewMonitor(setter StatusSetter, ttl, interval time.Duration, logger *zap.SugaredLogger) *Monitor {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Monitor{
		lastSeen: make(map[sensorKey]time.Time),
		online:   make(map[sensorKey]bool),
		setter:   setter,
		ttl:      ttl,
		interval: interval,
		logger:   logger,
	}
}

// Touch records a proof of life for a sensor and marks it Online if it was
// not already.
func (m *Monitor) Touch(ctx context.Context, userID, id string) {
	key := sensorKey{userID: userID, id: id}

	m.mu.Lock()
	m.lastSeen[key] = time.Now()
	wasOnline := m.online[key]
	m.online[key] = true
	m.mu.Unlock()

	if wasOnline {
		return
	}
	if _, err := m.setter.SetStatus(ctx, id, userID, entities.SensorOnline); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			m.forget(key)
			return
		}
		m.logger.Errorw("failed to mark sensor online", "sensor", id, "err", err)
		// Retry on the next touch.
		m.mu.Lock()
		m.online[key] = false
		m.mu.Unlock()
	}
}

// Run sweeps for silent sensors until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sweep(ctx)
		}
	}
}

func (m *Monitor) sweep(ctx context.Context) {
	now := time.Now()

	m.mu.Lock()
	var expired []sensorKey
	for key, seen := range m.lastSeen {
		if m.online[key] && now.Sub(seen) > m.ttl {
			expired = append(expired, key)
			m.online[key] = false
		}
	}
	m.mu.Unlock()

	for _, key := range expired {
		if _, err := m.setter.SetStatus(ctx, key.id, key.userID, entities.SensorOffline); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				m.forget(key)
				continue
			}
			m.logger.Errorw("failed to mark sensor offline", "sensor", key.id, "err", err)
		} else {
			m.logger.Infow("sensor went silent", "sensor", key.id, "ttl", m.ttl)
		}
	}
}

func (m *Monitor) forget(key sensorKey) {
	m.mu.Lock()
	delete(m.lastSeen, key)
	delete(m.online, key)
	m.mu.Unlock()
}
