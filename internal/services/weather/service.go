package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/abderrahmenzaway/wie-empower/internal/model"
	"github.com/abderrahmenzaway/wie-empower/internal/storage"
)

// ErrUnknownCity is returned when the upstream does not know the city.
var ErrUnknownCity = errors.New("unknown city")

// Provider is the upstream weather API, satisfied by *Client.
type Provider interface {
	Current(ctx context.Context, city string) (*Current, error)
	Forecast(ctx context.Context, city string) (*Forecast, error)
}

// Service fronts the upstream weather API with a circuit breaker and an
// optional Redis cache. Upstream failures surface as storage.ErrUnavailable
// so callers treat them as retryable.
type Service struct {
	provider Provider
	breaker  *gobreaker.CircuitBreaker
	cache    *redis.Client
	ttl      time.Duration
	logger   *zap.SugaredLogger
}

func NewService(provider Provider, cache *redis.Client, ttl time.Duration, logger *zap.SugaredLogger) *Service {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "openweather",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// An unknown city is the caller's typo, not upstream trouble; it
		// must not count toward opening the breaker.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrUnknownCity)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warnw("weather breaker state change", "from", from.String(), "to", to.String())
		},
	})
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Service{provider: provider, breaker: breaker, cache: cache, ttl: ttl, logger: logger}
}

func (s *Service) Current(ctx context.Context, city string) (*Current, error) {
	if city == "" {
		return nil, model.Invalidf("city", "is required")
	}
	var out Current
	if err := s.fetch(ctx, "weather:current:"+city, &out, func(ctx context.Context) (any, error) {
		return s.provider.Current(ctx, city)
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) Forecast(ctx context.Context, city string) (*Forecast, error) {
	if city == "" {
		return nil, model.Invalidf("city", "is required")
	}
	var out Forecast
	if err := s.fetch(ctx, "weather:forecast:"+city, &out, func(ctx context.Context) (any, error) {
		return s.provider.Forecast(ctx, city)
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// fetch serves from cache when possible, otherwise calls upstream through
// the breaker and caches the result.
func (s *Service) fetch(ctx context.Context, key string, out any, call func(ctx context.Context) (any, error)) error {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, key).Bytes()
		if err == nil {
			return json.Unmarshal(raw, out)
		}
		if !errors.Is(err, redis.Nil) {
			s.logger.Warnw("weather cache read failed", "key", key, "err", err)
		}
	}

	fresh, err := s.breaker.Execute(func() (any, error) {
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return call(ctx)
	})
	if err != nil {
		if errors.Is(err, ErrUnknownCity) {
			return ErrUnknownCity
		}
		return fmt.Errorf("%w: weather upstream: %v", storage.ErrUnavailable, err)
	}

	raw, err := json.Marshal(fresh)
	if err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, raw, s.ttl).Err(); err != nil {
			s.logger.Warnw("weather cache write failed", "key", key, "err", err)
		}
	}
	return json.Unmarshal(raw, out)
}
