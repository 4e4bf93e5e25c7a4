package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/ukydev/taller-finder/internal/models"
)

// Config holds all application configuration. It is the only place that reads
// the process environment; services receive their values through constructors.
type Config struct {
	Port      string `yaml:"port"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	GoogleMapsAPIKey string        `yaml:"google_maps_api_key"`
	PlacesBaseURL    string        `yaml:"places_base_url"`
	GeocoderBaseURL  string        `yaml:"geocoder_base_url"`
	HTTPTimeout      time.Duration `yaml:"http_timeout"`

	OpenAIAPIKey  string `yaml:"openai_api_key"`
	OpenAIBaseURL string `yaml:"openai_base_url"`
	GeminiAPIKey  string `yaml:"gemini_api_key"`
	GeminiBaseURL string `yaml:"gemini_base_url"`

	DeviceLocation        *models.GeoPoint `yaml:"device_location"`
	DeviceLocationGranted bool             `yaml:"device_location_granted"`
	LocationTimeout       time.Duration    `yaml:"location_timeout"`

	MongoURI string `yaml:"mongo_uri"`
	MongoDB  string `yaml:"mongo_db"`

	JWTSecret string        `yaml:"jwt_secret"`
	JWTExpiry time.Duration `yaml:"jwt_expiry"`

	MQTTBroker string `yaml:"mqtt_broker"`
	MQTTTopic  string `yaml:"mqtt_topic"`

	TracingEnabled    bool          `yaml:"tracing_enabled"`
	RateLimitRequests int           `yaml:"rate_limit_requests"`
	RateLimitWindow   time.Duration `yaml:"rate_limit_window"`
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() Config {
	return Config{
		Port:                  "8080",
		LogLevel:              "info",
		LogFormat:             "text",
		HTTPTimeout:           10 * time.Second,
		LocationTimeout:       10 * time.Second,
		DeviceLocationGranted: true,
		MongoDB:               "taller_finder",
		JWTSecret:             "default-secret-key-change-in-production",
		JWTExpiry:             24 * time.Hour,
		MQTTTopic:             "taller-finder/searches",
		RateLimitRequests:     60,
		RateLimitWindow:       time.Minute,
	}
}

// Load builds the configuration from, in increasing precedence: defaults, a .env
// file in the working directory, the YAML file named by FINDER_CONFIG_FILE, and
// environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Defaults()
	if path := os.Getenv("FINDER_CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	log.WithField("path", path).Debug("Loaded config file")
	return nil
}

func (c *Config) applyEnv() error {
	c.Port = getEnv("PORT", c.Port)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)

	c.GoogleMapsAPIKey = getEnv("EXPO_PUBLIC_GOOGLE_MAPS_API_KEY", getEnv("GOOGLE_MAPS_API_KEY", c.GoogleMapsAPIKey))
	c.PlacesBaseURL = getEnv("PLACES_BASE_URL", c.PlacesBaseURL)
	c.GeocoderBaseURL = getEnv("GEOCODER_BASE_URL", c.GeocoderBaseURL)
	c.HTTPTimeout = getEnvDuration("HTTP_TIMEOUT", c.HTTPTimeout)

	c.OpenAIAPIKey = getEnv("EXPO_PUBLIC_OPENAI_API_KEY", getEnv("OPENAI_API_KEY", c.OpenAIAPIKey))
	c.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", c.OpenAIBaseURL)
	c.GeminiAPIKey = getEnv("EXPO_PUBLIC_GEMINI_API_KEY", getEnv("GEMINI_API_KEY", c.GeminiAPIKey))
	c.GeminiBaseURL = getEnv("GEMINI_BASE_URL", c.GeminiBaseURL)

	if lat, lng := os.Getenv("DEVICE_LAT"), os.Getenv("DEVICE_LNG"); lat != "" && lng != "" {
		point, err := parsePoint(lat, lng)
		if err != nil {
			return fmt.Errorf("DEVICE_LAT/DEVICE_LNG: %w", err)
		}
		c.DeviceLocation = &point
	}
	c.DeviceLocationGranted = getEnvBool("DEVICE_LOCATION_GRANTED", c.DeviceLocationGranted)
	c.LocationTimeout = getEnvDuration("LOCATION_TIMEOUT", c.LocationTimeout)

	c.MongoURI = getEnv("MONGO_URI", c.MongoURI)
	c.MongoDB = getEnv("MONGO_DB", c.MongoDB)

	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.JWTExpiry = getEnvDuration("JWT_EXPIRY", c.JWTExpiry)

	c.MQTTBroker = getEnv("MQTT_BROKER", c.MQTTBroker)
	c.MQTTTopic = getEnv("MQTT_TOPIC", c.MQTTTopic)

	c.TracingEnabled = getEnvBool("TRACING_ENABLED", c.TracingEnabled)
	c.RateLimitRequests = getEnvInt("RATE_LIMIT_REQUESTS", c.RateLimitRequests)
	c.RateLimitWindow = getEnvDuration("RATE_LIMIT_WINDOW", c.RateLimitWindow)
	return nil
}

func parsePoint(lat, lng string) (models.GeoPoint, error) {
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return models.GeoPoint{}, fmt.Errorf("parse latitude %q: %w", lat, err)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil {
		return models.GeoPoint{}, fmt.Errorf("parse longitude %q: %w", lng, err)
	}
	point := models.GeoPoint{Lat: la, Lng: lo}
	return point, point.Validate()
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.WithField("key", key).Warn("Ignoring non-integer environment value")
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		log.WithField("key", key).Warn("Ignoring non-boolean environment value")
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
		log.WithField("key", key).Warn("Ignoring invalid duration environment value")
	}
	return fallback
}
