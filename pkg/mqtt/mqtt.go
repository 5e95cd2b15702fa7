package mqtt

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// Config carries the broker connection settings.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	ClientID string
}

// Connect dials the broker with exponential backoff and returns a live
// client. The client disconnects itself when ctx is cancelled.
func Connect(ctx context.Context, cfg Config, logger *zap.SugaredLogger) (paho.Client, error) {
	addr := fmt.Sprintf("tcp://%s:%d", cfg.Host, cfg.Port)

	opts := paho.NewClientOptions()
	opts.AddBroker(addr)
	opts.SetUsername(cfg.User)
	opts.SetPassword(cfg.Password)
	opts.SetClientID(cfg.ClientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		logger.Warnw("mqtt connection lost", "err", err)
	})

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second

	var client paho.Client
	err := backoff.Retry(func() error {
		client = paho.NewClient(opts)
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			logger.Warnw("mqtt connect failed, retrying", "broker", addr, "err", token.Error())
			return token.Error()
		}
		return nil
	}, backoff.WithContext(bo, ctx))
	if err != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", addr, err)
	}

	logger.Infow("connected to mqtt broker", "broker", addr, "clientId", cfg.ClientID)

	go func() {
		<-ctx.Done()
		client.Disconnect(250)
		logger.Info("mqtt connection closed")
	}()

	return client, nil
}
