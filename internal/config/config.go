package config

import (
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env      string         `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig     `yaml:"http"`
	MongoDB  MongoDBConfig  `yaml:"mongo"`
	Redis    RedisConfig    `yaml:"redis"`
	NATS     NATSConfig     `yaml:"nats"`
	Realtime RealtimeConfig `yaml:"realtime"`
	Logger   LoggerConfig   `yaml:"logger"`
}

type HTTPConfig struct {
	Port            string        `yaml:"port" env:"HTTP_PORT" env-default:"5001"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"15s"`
	// Comma separated; "*" allows every origin.
	AllowedOrigins string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"*"`
}

// Origins splits AllowedOrigins into a trimmed list.
func (c HTTPConfig) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

type MongoDBConfig struct {
	URI             string `yaml:"uri" env:"MONGO_URI" env-default:"mongodb://localhost:27017/ecommerce"`
	User            string `yaml:"user" env:"MONGO_USER"`
	Password        string `yaml:"password" env:"MONGO_PASSWORD"`
	Database        string `yaml:"database" env:"MONGO_DATABASE" env-default:"ecommerce"`
	UseTransactions bool   `yaml:"use_transactions" env:"MONGO_USE_TRANSACTIONS" env-default:"false"`
}

type RedisConfig struct {
	// Empty address disables the catalog cache.
	Addr     string        `yaml:"addr" env:"REDIS_ADDR"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	TTL      time.Duration `yaml:"catalog_ttl" env:"CATALOG_CACHE_TTL" env-default:"5m"`
}

type NATSConfig struct {
	// Empty URL keeps broadcasts local to this process.
	URL     string `yaml:"url" env:"NATS_URL"`
	Subject string `yaml:"subject" env:"NATS_SUBJECT" env-default:"storefront.events"`
}

type RealtimeConfig struct {
	SendBuffer int `yaml:"send_buffer" env:"WS_SEND_BUFFER" env-default:"64"`
}

type LoggerConfig struct {
	Level      string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Encoding   string `yaml:"encoding" env:"LOG_ENCODING" env-default:"json"`
	TimeFormat string `yaml:"time_format" env:"LOG_TIME_FORMAT" env-default:"2006-01-02T15:04:05.000Z07:00"`
}

func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	err := cleanenv.ReadConfig(path, &cfg)
	if err != nil {
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			log.Printf("config file %s not found, reading environment only", path)
			if errEnv := cleanenv.ReadEnv(&cfg); errEnv != nil {
				return nil, errEnv
			}
			return &cfg, nil
		}
		return nil, err
	}
	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}
	return cfg
}
