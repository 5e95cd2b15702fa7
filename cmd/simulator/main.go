package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/abderrahmenzaway/wie-empower/internal/config"
	"github.com/abderrahmenzaway/wie-empower/internal/simulator"
	"github.com/abderrahmenzaway/wie-empower/pkg/mqtt"
)

// SIM_USER_ID and SIM_SENSOR_IDS (comma separated) select which sensors the
// fleet impersonates; SIM_INTERVAL sets the reporting period.
func main() {
	cfg := config.Load()

	zl, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	logger := zl.Sugar()
	defer logger.Sync() //nolint:errcheck

	userID := os.Getenv("SIM_USER_ID")
	sensorIDs := strings.Split(os.Getenv("SIM_SENSOR_IDS"), ",")
	if userID == "" || len(sensorIDs) == 0 || sensorIDs[0] == "" {
		logger.Fatal("SIM_USER_ID and SIM_SENSOR_IDS are required")
	}
	interval := 30 * time.Second
	if v := os.Getenv("SIM_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			interval = d
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := mqtt.Connect(ctx, mqtt.Config{
		Host:     cfg.MQTTHost,
		Port:     cfg.MQTTPort,
		User:     cfg.MQTTUser,
		Password: cfg.MQTTPassword,
		ClientID: "irrigation-simulator",
	}, logger)
	if err != nil {
		logger.Fatalw("mqtt connect failed", "err", err)
	}

	sim := simulator.New(mqtt.NewPublisher(client), interval, logger)
	for _, id := range sensorIDs {
		sim.AddDevice(userID, strings.TrimSpace(id), 100)
	}

	toggles := mqtt.NewConsumer(client, "event/zone_toggle/"+userID, 0, logger)
	toggles.SetHandler(sim.HandleToggle)
	go func() {
		if err := toggles.Consume(ctx); err != nil {
			logger.Errorw("toggle consumer stopped", "err", err)
		}
	}()

	logger.Infow("simulator running", "sensors", len(sensorIDs), "interval", interval)
	sim.Run(ctx)
}
