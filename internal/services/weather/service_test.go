package weather

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/abderrahmenzaway/wie-empower/internal/model"
	"github.com/abderrahmenzaway/wie-empower/internal/storage"
)

type fakeProvider struct {
	calls int
	err   error
}

func (f *fakeProvider) Current(_ context.Context, city string) (*Current, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &Current{City: city, Temperature: 21.5, Humidity: 40}, nil
}

func (f *fakeProvider) Forecast(_ context.Context, city string) (*Forecast, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &Forecast{City: city, Points: []ForecastPoint{{Time: time.Now().UTC(), Temperature: 18}}}, nil
}

func newCache(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestCurrentServedFromCache(t *testing.T) {
	provider := &fakeProvider{}
	svc := NewService(provider, newCache(t), time.Minute, zap.NewNop().Sugar())
	ctx := context.Background()

	first, err := svc.Current(ctx, "Tunis")
	require.NoError(t, err)
	assert.Equal(t, 21.5, first.Temperature)
	assert.Equal(t, 1, provider.calls)

	second, err := svc.Current(ctx, "Tunis")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, provider.calls, "second hit must come from cache")

	// Another city is a separate cache entry.
	_, err = svc.Current(ctx, "Sfax")
	require.NoError(t, err)
	assert.Equal(t, 2, provider.calls)
}

func TestForecastWithoutCache(t *testing.T) {
	provider := &fakeProvider{}
	svc := NewService(provider, nil, time.Minute, zap.NewNop().Sugar())

	forecast, err := svc.Forecast(context.Background(), "Tunis")
	require.NoError(t, err)
	require.Len(t, forecast.Points, 1)
	assert.Equal(t, 1, provider.calls)

	_, err = svc.Forecast(context.Background(), "Tunis")
	require.NoError(t, err)
	assert.Equal(t, 2, provider.calls)
}

func TestUpstreamFailureIsRetryable(t *testing.T) {
	provider := &fakeProvider{err: errors.New("boom")}
	svc := NewService(provider, nil, time.Minute, zap.NewNop().Sugar())

	_, err := svc.Current(context.Background(), "Tunis")
	assert.ErrorIs(t, err, storage.ErrUnavailable)
}

func TestUnknownCityPassesThrough(t *testing.T) {
	provider := &fakeProvider{err: ErrUnknownCity}
	svc := NewService(provider, nil, time.Minute, zap.NewNop().Sugar())

	_, err := svc.Current(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, ErrUnknownCity)
}

func TestEmptyCityRejected(t *testing.T) {
	svc := NewService(&fakeProvider{}, nil, time.Minute, zap.NewNop().Sugar())
	var verr *model.ValidationError
	_, err := svc.Current(context.Background(), "")
	assert.ErrorAs(t, err, &verr)
}

func TestUnknownCityDoesNotTripBreaker(t *testing.T) {
	provider := &fakeProvider{err: ErrUnknownCity}
	svc := NewService(provider, nil, time.Minute, zap.NewNop().Sugar())
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := svc.Current(ctx, "Atlantis")
		assert.ErrorIs(t, err, ErrUnknownCity)
	}

	// A real city right after the typo storm still reaches upstream.
	provider.err = nil
	got, err := svc.Current(ctx, "Tunis")
	require.NoError(t, err)
	assert.Equal(t, 21.5, got.Temperature)
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	provider := &fakeProvider{err: errors.New("down")}
	svc := NewService(provider, nil, time.Minute, zap.NewNop().Sugar())
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		_, _ = svc.Current(ctx, "Tunis")
	}
	before := provider.calls
	_, err := svc.Current(ctx, "Tunis")
	assert.ErrorIs(t, err, storage.ErrUnavailable)
	assert.Equal(t, before, provider.calls, "open breaker must not call upstream")
}
