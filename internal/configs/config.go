package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ListingSourceAPI      = "api"
	ListingSourcePostgres = "postgres"
)

type ListingAPIConfig struct {
	URL        string
	APIKey     string
	Collection string
	PageLimit  int
	Timeout    time.Duration
}

// DBconfig хранит конфигурацию для БД
type DBconfig struct {
	URL      string
	MaxConns int
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	// TTL кэша рабочего набора; 0 - без истечения
	TTL time.Duration
}

// RabbitMQConfig хранит конфигурацию для RabbitMQ
type RabbitMQConfig struct {
	Enabled           bool
	URL               string
	BatchSize         int
	BatchTimeout      time.Duration
	ReconnectInterval time.Duration
}

type RESTconfig struct {
	PORT               string
	CORSAllowedOrigins []string
	DefaultPageSize    int
}

type StdoutLogConfig struct {
	Level  string
	IsJSON bool
}

type FluentBitConfig struct {
	Host    string
	Port    int
	Enabled bool
	Level   string
}

// AppConfig хранит всю конфигурацию приложения
type AppConfig struct {
	AppName       string
	ListingSource string
	ListingAPI    ListingAPIConfig
	Database      DBconfig
	Redis         RedisConfig
	RabbitMQ      RabbitMQConfig
	Rest          RESTconfig
	FluentBit     FluentBitConfig
	StdoutLogger  StdoutLogConfig
}

// LoadConfig загружает конфигурацию из переменных окружения.
// .env необязателен: в контейнере переменные приходят из окружения.
func LoadConfig(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 {
		err = godotenv.Load(envPath[0])
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("could not load .env file (path: %v): %w", envPath, err)
		}
		log.Printf("Info: .env file not found (path: %v), using process environment.\n", envPath)
	}

	cfg := &AppConfig{}

	cfg.AppName = getEnvAsString("APP_NAME", "listing-service")

	cfg.ListingSource = strings.ToLower(getEnvAsString("LISTING_SOURCE", ListingSourceAPI))
	switch cfg.ListingSource {
	case ListingSourceAPI:
		cfg.ListingAPI.URL = os.Getenv("LISTING_API_URL")
		if cfg.ListingAPI.URL == "" {
			return nil, fmt.Errorf("LISTING_API_URL environment variable is required when LISTING_SOURCE=api")
		}
		cfg.ListingAPI.APIKey = os.Getenv("LISTING_API_KEY")
		cfg.ListingAPI.Collection = getEnvAsString("LISTING_API_COLLECTION", "hotels")
		cfg.ListingAPI.PageLimit = getEnvAsInt("LISTING_API_PAGE_LIMIT", 100)
		cfg.ListingAPI.Timeout = getEnvAsDuration("LISTING_API_TIMEOUT", 15*time.Second)
	case ListingSourcePostgres:
		cfg.Database.URL = os.Getenv("DATABASE_URL")
		if cfg.Database.URL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is required when LISTING_SOURCE=postgres")
		}
		cfg.Database.MaxConns = getEnvAsInt("DATABASE_MAX_CONNS", 0)
	default:
		return nil, fmt.Errorf("unknown LISTING_SOURCE %q (expected %q or %q)", cfg.ListingSource, ListingSourceAPI, ListingSourcePostgres)
	}

	cfg.Redis.Enabled = getEnvAsBool("REDIS_ENABLED", false)
	if cfg.Redis.Enabled {
		cfg.Redis.Addr = getEnvAsString("REDIS_ADDR", "localhost:6379")
		cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
		cfg.Redis.DB = getEnvAsInt("REDIS_DB", 0)
	}
	cfg.Redis.TTL = getEnvAsDuration("CACHE_TTL", 5*time.Minute)

	cfg.RabbitMQ.Enabled = getEnvAsBool("RABBITMQ_ENABLED", false)
	if cfg.RabbitMQ.Enabled {
		cfg.RabbitMQ.URL = os.Getenv("RABBITMQ_URL")
		if cfg.RabbitMQ.URL == "" {
			return nil, fmt.Errorf("RABBITMQ_URL environment variable is required when RABBITMQ_ENABLED=true")
		}
		cfg.RabbitMQ.BatchSize = getEnvAsInt("RABBITMQ_BATCH_SIZE", 50)
		cfg.RabbitMQ.BatchTimeout = getEnvAsDuration("RABBITMQ_BATCH_TIMEOUT", 2*time.Second)
		cfg.RabbitMQ.ReconnectInterval = getEnvAsDuration("RABBITMQ_RECONNECT_INTERVAL", 5*time.Second)
	}

	cfg.Rest.PORT = getEnvAsString("PORT", "8080")
	cfg.Rest.CORSAllowedOrigins = getEnvAsList("CORS_ALLOWED_ORIGINS")
	cfg.Rest.DefaultPageSize = getEnvAsInt("DEFAULT_PAGE_SIZE", 25)
	if cfg.Rest.DefaultPageSize <= 0 {
		return nil, fmt.Errorf("DEFAULT_PAGE_SIZE must be positive, got %d", cfg.Rest.DefaultPageSize)
	}

	cfg.FluentBit.Enabled = getEnvAsBool("FLUENTBIT_ENABLED", false)
	if cfg.FluentBit.Enabled {
		cfg.FluentBit.Host = os.Getenv("FLUENTBIT_HOST")
		if cfg.FluentBit.Host == "" {
			log.Println("WARNING: FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
			cfg.FluentBit.Enabled = false
		}
		cfg.FluentBit.Port = getEnvAsInt("FLUENTBIT_PORT", 24224)
		cfg.FluentBit.Level = getEnvAsString("FLUENTBIT_LOG_LEVEL", "info")
	}

	cfg.StdoutLogger.Level = getEnvAsString("STDOUT_LOG_LEVEL", "debug")
	cfg.StdoutLogger.IsJSON = getEnvAsBool("STDOUT_LOG_JSON", false)

	return cfg, nil
}

// getEnvAsString читает переменную окружения как строку или возвращает значение по умолчанию
func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt логирует и возвращает default, если значение не парсится
func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueInt
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as bool: %v. Using default value: %t\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valBool
}

// getEnvAsDuration понимает "30s", "5m" и т.п.; голое число считается секундами
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	if secs, err := strconv.Atoi(valStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as duration: %v. Using default value: %s\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return d
}

// getEnvAsList - список через запятую, пустые элементы отбрасываются
func getEnvAsList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
