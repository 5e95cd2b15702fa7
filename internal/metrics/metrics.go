package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReadingsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "irrigation_sensor_readings_total",
		Help: "Sensor readings accepted, by source (http, mqtt).",
	}, []string{"source"})

	ReadingsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "irrigation_sensor_readings_rejected_total",
		Help: "Sensor readings rejected by validation or dedup.",
	})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "irrigation_events_published_total",
		Help: "Events enqueued on the fan-out hub, by type.",
	}, []string{"type"})

	EventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "irrigation_events_dropped_total",
		Help: "Events dropped because a queue or subscriber was full.",
	})

	WateringToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "irrigation_watering_toggles_total",
		Help: "Zone watering toggles, by resulting state (on, off).",
	}, []string{"state"})

	NotificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "irrigation_notifications_total",
		Help: "Notifications created, by kind.",
	}, []string{"kind"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "irrigation_http_request_duration_seconds",
		Help:    "HTTP request latency by route and status code.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method", "code"})
)
