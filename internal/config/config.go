package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full runtime configuration, loaded from the environment
// with an optional .env overlay for local development.
type Config struct {
	Port     int
	LogLevel string

	MongoURI string
	MongoDB  string

	MQTTHost     string
	MQTTPort     int
	MQTTUser     string
	MQTTPassword string
	MQTTClientID string

	InfluxURL    string
	InfluxToken  string
	InfluxOrg    string
	InfluxBucket string

	RedisAddr     string
	RedisPassword string
	WeatherAPIKey string
	WeatherTTL    time.Duration

	JWTSecret string

	HumidityHistoryMax int
	WateringHistoryMax int
	LivenessTTL        time.Duration
	LivenessInterval   time.Duration
	HubBuffer          int
	DedupTTL           time.Duration
}

func Load() *Config {
	// Missing .env is fine, production config comes from the environment.
	_ = godotenv.Load()

	return &Config{
		Port:     getenvInt("PORT", 8080),
		LogLevel: getenv("LOG_LEVEL", "info"),

		MongoURI: getenv("MONGO_URI", ""),
		MongoDB:  getenv("MONGO_DB", "irrigation"),

		MQTTHost:     getenv("MQTT_HOST", ""),
		MQTTPort:     getenvInt("MQTT_PORT", 1883),
		MQTTUser:     getenv("MQTT_USER", ""),
		MQTTPassword: getenv("MQTT_PASSWORD", ""),
		MQTTClientID: getenv("MQTT_CLIENT_ID", "irrigation-server"),

		InfluxURL:    getenv("INFLUX_URL", ""),
		InfluxToken:  getenv("INFLUX_TOKEN", ""),
		InfluxOrg:    getenv("INFLUX_ORG", "irrigation"),
		InfluxBucket: getenv("INFLUX_BUCKET", "pump-usage"),

		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		WeatherAPIKey: getenv("OPENWEATHER_API_KEY", ""),
		WeatherTTL:    getenvDuration("WEATHER_CACHE_TTL", 10*time.Minute),

		JWTSecret: getenv("JWT_SECRET", ""),

		HumidityHistoryMax: getenvInt("HUMIDITY_HISTORY_MAX", 288),
		WateringHistoryMax: getenvInt("WATERING_HISTORY_MAX", 200),
		LivenessTTL:        getenvDuration("SENSOR_LIVENESS_TTL", 2*time.Minute),
		LivenessInterval:   getenvDuration("SENSOR_LIVENESS_INTERVAL", 30*time.Second),
		HubBuffer:          getenvInt("EVENT_HUB_BUFFER", 256),
		DedupTTL:           getenvDuration("DEDUP_TTL", 10*time.Minute),
	}
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
