package events

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/abderrahmenzaway/wie-empower/pkg/mqtt"
)

// MQTTSink mirrors every dispatched event onto the broker so headless
// integrations can follow state changes without holding a websocket.
// Topic layout: event/{type}/{userId}.
type MQTTSink struct {
	pub    mqtt.Publisher
	logger *zap.SugaredLogger
}

func NewMQTTSink(pub mqtt.Publisher, logger *zap.SugaredLogger) *MQTTSink {
	return &MQTTSink{pub: pub, logger: logger}
}

func (s *MQTTSink) Deliver(ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		s.logger.Errorw("event marshal failed", "type", ev.Type, "err", err)
		return
	}
	topic := fmt.Sprintf("event/%s/%s", ev.Type, ev.UserID)
	if err := s.pub.Publish(topic, 0, payload); err != nil {
		s.logger.Warnw("event mirror publish failed", "topic", topic, "err", err)
	}
}
