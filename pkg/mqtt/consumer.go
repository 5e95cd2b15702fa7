package mqtt

import (
	"context"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// Handler processes one inbound message. Errors are logged, never retried:
// the broker has already acknowledged delivery at this point.
type Handler func(topic string, payload []byte) error

// Consumer subscribes to one topic filter and runs a handler per message.
type Consumer struct {
	client  paho.Client
	filter  string
	qos     byte
	handler Handler
	logger  *zap.SugaredLogger
}

func NewConsumer(client paho.Client, filter string, qos byte, logger *zap.SugaredLogger) *Consumer {
	return &Consumer{client: client, filter: filter, qos: qos, logger: logger}
}

func (c *Consumer) SetHandler(h Handler) { c.handler = h }

// Consume subscribes and blocks until ctx is cancelled, then unsubscribes.
func (c *Consumer) Consume(ctx context.Context) error {
	token := c.client.Subscribe(c.filter, c.qos, func(_ paho.Client, msg paho.Message) {
		if c.handler == nil {
			c.logger.Warnw("no handler set", "topic", msg.Topic())
			return
		}
		if err := c.handler(msg.Topic(), msg.Payload()); err != nil {
			c.logger.Errorw("message handler failed", "topic", msg.Topic(), "err", err)
		}
	})
	if token.Wait() && token.Error() != nil {
		return token.Error()
	}
	c.logger.Infow("subscribed", "filter", c.filter, "qos", c.qos)

	<-ctx.Done()

	unsub := c.client.Unsubscribe(c.filter)
	unsub.Wait()
	return nil
}
