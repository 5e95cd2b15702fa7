package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/abderrahmenzaway/wie-empower/internal/config"
	"github.com/abderrahmenzaway/wie-empower/internal/events"
	"github.com/abderrahmenzaway/wie-empower/internal/services/dashboard"
	"github.com/abderrahmenzaway/wie-empower/internal/services/gateway"
	"github.com/abderrahmenzaway/wie-empower/internal/services/notification"
	"github.com/abderrahmenzaway/wie-empower/internal/services/telemetry"
	"github.com/abderrahmenzaway/wie-empower/internal/services/watering"
	"github.com/abderrahmenzaway/wie-empower/internal/services/weather"
	"github.com/abderrahmenzaway/wie-empower/internal/storage"
	"github.com/abderrahmenzaway/wie-empower/pkg/dedup"
	"github.com/abderrahmenzaway/wie-empower/pkg/mqtt"
)

func newLogger(level string) (*zap.SugaredLogger, error) {
	cfg := zap.NewProductionConfig()
	var lvl zapcore.Level
	if err := lvl.Set(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Storage: Mongo when configured, in-memory otherwise (dev/test runs).
	var (
		zoneStore         storage.ZoneStore
		sensorStore       storage.SensorStore
		pumpStore         storage.PumpStore
		notificationStore storage.NotificationStore
	)
	if cfg.MongoURI != "" {
		mongoStore, err := storage.NewMongo(ctx, cfg.MongoURI, cfg.MongoDB, logger)
		if err != nil {
			logger.Fatalw("mongo connect failed", "err", err)
		}
		defer mongoStore.Close(context.Background())
		zoneStore, sensorStore, pumpStore, notificationStore = mongoStore, mongoStore, mongoStore, mongoStore
	} else {
		logger.Warn("MONGO_URI not set, using volatile in-memory storage")
		mem := storage.NewMemory()
		zoneStore, sensorStore, pumpStore, notificationStore = mem, mem, mem, mem
	}

	hub := events.NewHub(cfg.HubBuffer, logger)
	defer hub.Close()

	// Optional MQTT: telemetry ingest plus the event mirror.
	var ingestConsumer *mqtt.Consumer
	if cfg.MQTTHost != "" {
		client, err := mqtt.Connect(ctx, mqtt.Config{
			Host:     cfg.MQTTHost,
			Port:     cfg.MQTTPort,
			User:     cfg.MQTTUser,
			Password: cfg.MQTTPassword,
			ClientID: cfg.MQTTClientID,
		}, logger)
		if err != nil {
			logger.Fatalw("mqtt connect failed", "err", err)
		}
		hub.AddSink(events.NewMQTTSink(mqtt.NewPublisher(client), logger))
		ingestConsumer = mqtt.NewConsumer(client, telemetry.ReadingTopicFilter, 1, logger)
	}

	alerts := dedup.New(cfg.DedupTTL, 0)
	notifications := notification.NewService(notificationStore, hub, logger)
	devices := telemetry.NewService(sensorStore, pumpStore, hub, notifications, alerts, logger)
	monitor := telemetry.NewMonitor(devices, cfg.LivenessTTL, cfg.LivenessInterval, logger)
	go monitor.Run(ctx)

	zones := watering.NewService(zoneStore, sensorStore, pumpStore, hub, notifications, alerts,
		cfg.HumidityHistoryMax, cfg.WateringHistoryMax, logger)

	var series dashboard.SeriesSource = dashboard.SyntheticSeries{}
	if cfg.InfluxURL != "" {
		influxClient := influxdb2.NewClient(cfg.InfluxURL, cfg.InfluxToken)
		defer influxClient.Close()
		series = dashboard.NewInfluxSeries(influxClient, cfg.InfluxOrg, cfg.InfluxBucket, logger)
	} else {
		logger.Warn("INFLUX_URL not set, dashboard series are synthetic")
	}
	dash := dashboard.NewService(zoneStore, sensorStore, pumpStore, series, logger)

	var weatherSvc *weather.Service
	if cfg.WeatherAPIKey != "" {
		var cache *redis.Client
		if cfg.RedisAddr != "" {
			cache = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
			defer cache.Close()
		}
		weatherSvc = weather.NewService(weather.NewClient(cfg.WeatherAPIKey), cache, cfg.WeatherTTL, logger)
	} else {
		logger.Warn("OPENWEATHER_API_KEY not set, weather routes disabled")
	}

	if ingestConsumer != nil {
		ingest := telemetry.NewIngest(devices, monitor, ingestConsumer,
			dedup.New(cfg.DedupTTL, 0), logger)
		go func() {
			if err := ingest.Run(ctx); err != nil {
				logger.Errorw("telemetry ingest stopped", "err", err)
			}
		}()
	}

	auth := gateway.NewAuth(cfg.JWTSecret, logger)
	app := gateway.NewApp(zones, devices, dash, notifications, weatherSvc, hub, monitor, auth, logger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           app.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Infow("http listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalw("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	stop()

	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shCtx)
	logger.Info("shutdown complete")
}
