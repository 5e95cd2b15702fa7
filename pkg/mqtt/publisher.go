package mqtt

import (
	"fmt"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// Publisher sends payloads to broker topics.
type Publisher interface {
	Publish(topic string, qos byte, payload []byte) error
}

type publisher struct {
	client paho.Client
}

func NewPublisher(client paho.Client) Publisher {
	return &publisher{client: client}
}

func (p *publisher) Publish(topic string, qos byte, payload []byte) error {
	token := p.client.Publish(topic, qos, false, payload)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("publish %s: %w", topic, token.Error())
	}
	return nil
}
