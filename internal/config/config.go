package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config - структура для хранения конфигурации приложения
type Config struct {
	DatabaseURL string `env:"DATABASE_URL"`
	DBMaxConns  int    `env:"DB_MAX_CONNS" envDefault:"10"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Redis Config
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Webhook Config
	WebhookURL        string        `env:"WEBHOOK_URL"`
	WebhookSecret     string        `env:"WEBHOOK_SECRET"`
	WebhookTimeout    time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"5s"`
	WebhookMaxRetries int           `env:"WEBHOOK_MAX_RETRIES" envDefault:"3"`
	WebhookBaseDelay  time.Duration `env:"WEBHOOK_BASE_DELAY" envDefault:"1s"`

	// Engine Config
	DedupWindow      time.Duration `env:"DEDUP_WINDOW" envDefault:"10m"`
	AckSLA           time.Duration `env:"ACK_SLA" envDefault:"15m"`
	RetentionHorizon time.Duration `env:"RETENTION_HORIZON" envDefault:"24h"`
	FanoutQueueSize  int           `env:"FANOUT_QUEUE_SIZE" envDefault:"256"`

	// Health Config
	ProbeTimeout          time.Duration `env:"PROBE_TIMEOUT" envDefault:"2s"`
	HealthRefreshInterval time.Duration `env:"HEALTH_REFRESH_INTERVAL" envDefault:"30s"`
	OpenIncidentAlarm     int           `env:"OPEN_INCIDENT_ALARM" envDefault:"50"`
	ProbesFile            string        `env:"PROBES_FILE"`
	MaintenanceSchedule   string        `env:"MAINTENANCE_SCHEDULE" envDefault:"@every 10s"`

	// Detector Config
	CrowdDetectorURL      string        `env:"CROWD_DETECTOR_URL"`
	FaceMatcherURL        string        `env:"FACE_MATCHER_URL"`
	AnomalyDetectorURL    string        `env:"ANOMALY_DETECTOR_URL"`
	NavigationProviderURL string        `env:"NAVIGATION_PROVIDER_URL"`
	DetectorTimeout       time.Duration `env:"DETECTOR_TIMEOUT" envDefault:"5s"`
	CrowdCountThreshold   int           `env:"CROWD_COUNT_THRESHOLD" envDefault:"500"`

	// Attachment Config
	AttachmentTTL     time.Duration `env:"ATTACHMENT_TTL" envDefault:"72h"`
	AttachmentMaxSize int64         `env:"ATTACHMENT_MAX_SIZE" envDefault:"10485760"`

	// API Keys for authentication
	APIKeys []string `env:"API_KEYS"`
}

// LoadConfig загружает конфигурацию из переменных окружения и .env файла
func LoadConfig() (*Config, error) {
	// Загрузка переменных окружения из .env файла (если есть)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ошибка загрузки файла .env: %w", err)
	}

	cfg := &Config{
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		DBMaxConns:            getEnvAsInt("DB_MAX_CONNS", 10),
		HTTPPort:              getEnv("HTTP_PORT", "8080"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		RedisAddr:             getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:             os.Getenv("REDIS_PASSWORD"),
		RedisDB:               getEnvAsInt("REDIS_DB", 0),
		WebhookURL:            os.Getenv("WEBHOOK_URL"),
		WebhookSecret:         os.Getenv("WEBHOOK_SECRET"),
		WebhookTimeout:        getEnvAsDuration("WEBHOOK_TIMEOUT", 5*time.Second),
		WebhookMaxRetries:     getEnvAsInt("WEBHOOK_MAX_RETRIES", 3),
		WebhookBaseDelay:      getEnvAsDuration("WEBHOOK_BASE_DELAY", time.Second),
		DedupWindow:           getEnvAsDuration("DEDUP_WINDOW", 10*time.Minute),
		AckSLA:                getEnvAsDuration("ACK_SLA", 15*time.Minute),
		RetentionHorizon:      getEnvAsDuration("RETENTION_HORIZON", 24*time.Hour),
		FanoutQueueSize:       getEnvAsInt("FANOUT_QUEUE_SIZE", 256),
		ProbeTimeout:          getEnvAsDuration("PROBE_TIMEOUT", 2*time.Second),
		HealthRefreshInterval: getEnvAsDuration("HEALTH_REFRESH_INTERVAL", 30*time.Second),
		OpenIncidentAlarm:     getEnvAsInt("OPEN_INCIDENT_ALARM", 50),
		ProbesFile:            os.Getenv("PROBES_FILE"),
		MaintenanceSchedule:   getEnv("MAINTENANCE_SCHEDULE", "@every 10s"),
		CrowdDetectorURL:      os.Getenv("CROWD_DETECTOR_URL"),
		FaceMatcherURL:        os.Getenv("FACE_MATCHER_URL"),
		AnomalyDetectorURL:    os.Getenv("ANOMALY_DETECTOR_URL"),
		NavigationProviderURL: os.Getenv("NAVIGATION_PROVIDER_URL"),
		DetectorTimeout:       getEnvAsDuration("DETECTOR_TIMEOUT", 5*time.Second),
		CrowdCountThreshold:   getEnvAsInt("CROWD_COUNT_THRESHOLD", 500),
		AttachmentTTL:         getEnvAsDuration("ATTACHMENT_TTL", 72*time.Hour),
		AttachmentMaxSize:     int64(getEnvAsInt("ATTACHMENT_MAX_SIZE", 10<<20)),
	}

	// Загрузка API ключей
	apiKeysStr := os.Getenv("API_KEYS")
	if apiKeysStr != "" {
		cfg.APIKeys = strings.Split(apiKeysStr, ",")
		for i, key := range cfg.APIKeys {
			cfg.APIKeys[i] = strings.TrimSpace(key)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет параметры движка. Нулевые окна и очереди не допускаются:
// все они должны быть заданы явно или взяты из значений по умолчанию.
func (c *Config) Validate() error {
	if c.DedupWindow <= 0 {
		return fmt.Errorf("DEDUP_WINDOW must be positive")
	}
	if c.AckSLA <= 0 {
		return fmt.Errorf("ACK_SLA must be positive")
	}
	if c.RetentionHorizon <= 0 {
		return fmt.Errorf("RETENTION_HORIZON must be positive")
	}
	if c.FanoutQueueSize <= 0 {
		return fmt.Errorf("FANOUT_QUEUE_SIZE must be positive")
	}
	if c.ProbeTimeout <= 0 {
		return fmt.Errorf("PROBE_TIMEOUT must be positive")
	}
	if c.OpenIncidentAlarm < 0 {
		return fmt.Errorf("OPEN_INCIDENT_ALARM must not be negative")
	}
	return nil
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt возвращает значение переменной окружения как int или значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsDuration возвращает значение переменной окружения как time.Duration или значение по умолчанию
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}
