package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	JWT struct {
		Secret string `yaml:"secret"`
		TTL    int    `yaml:"ttl"` // minutes
	} `yaml:"jwt"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
		Enabled      bool   `yaml:"enabled"`
	} `yaml:"email"`

	Payment struct {
		BaseURL         string  `yaml:"base_url"`
		ClientID        string  `yaml:"client_id"`
		ClientSecret    string  `yaml:"client_secret"`
		WalletID        string  `yaml:"wallet_id"`         // platform split recipient
		PlatformFeeRate float64 `yaml:"platform_fee_rate"` // single source of truth for the marketplace fee
		PollInterval    int     `yaml:"poll_interval"`     // seconds between charge reconciliation runs
	} `yaml:"payment"`

	Location struct {
		FallbackLat  float64 `yaml:"fallback_lat"`
		FallbackLng  float64 `yaml:"fallback_lng"`
		StaleMinutes int     `yaml:"stale_minutes"` // provider considered offline after this window
	} `yaml:"location"`

	Cache struct {
		FreshnessMinutes int `yaml:"freshness_minutes"` // session/dashboard freshness window
	} `yaml:"cache"`

	// Seeded admin account; admin accounts cannot self-register.
	FirstAdminEmail    string `yaml:"first_admin_email"`
	FirstAdminPassword string `yaml:"first_admin_password"`
}

var AppConfig *Config

// LoadConfig reads config.yaml, or falls back to environment variables when
// DATABASE_URL is set (test/deploy mode). A .env file is honored if present.
func LoadConfig() {
	var cfg Config

	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")

	if dbURL == "" {
		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config/config.yaml"
		}

		f, err := os.Open(configPath)
		if err != nil {
			log.Fatalf("Failed to open config file at %s: %v", configPath, err)
		}
		defer f.Close()

		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			log.Fatalf("Failed to parse config file at %s: %v", configPath, err)
		}

		applyDefaults(&cfg)
		AppConfig = &cfg
		return
	}

	log.Println("Loading configuration from environment variables")

	cfg.Database.DSN = dbURL
	cfg.Server.Env = os.Getenv("SERVER_ENV")
	cfg.Server.Port, _ = strconv.Atoi(os.Getenv("SERVER_PORT"))
	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	cfg.JWT.TTL = 60

	cfg.Redis.Addr = os.Getenv("REDIS_ADDR")
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")

	cfg.Payment.BaseURL = os.Getenv("PAYMENT_BASE_URL")
	cfg.Payment.ClientID = os.Getenv("PAYMENT_CLIENT_ID")
	cfg.Payment.ClientSecret = os.Getenv("PAYMENT_CLIENT_SECRET")
	cfg.Payment.WalletID = os.Getenv("PAYMENT_WALLET_ID")

	cfg.FirstAdminEmail = os.Getenv("FIRST_ADMIN_EMAIL")
	cfg.FirstAdminPassword = os.Getenv("FIRST_ADMIN_PASSWORD")

	applyDefaults(&cfg)
	AppConfig = &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 4000
	}
	if cfg.JWT.TTL == 0 {
		cfg.JWT.TTL = 60
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Payment.PlatformFeeRate == 0 {
		cfg.Payment.PlatformFeeRate = 0.15
	}
	if cfg.Payment.PollInterval == 0 {
		cfg.Payment.PollInterval = 60
	}
	// São Paulo, substituted when a client reports a geolocation failure
	if cfg.Location.FallbackLat == 0 && cfg.Location.FallbackLng == 0 {
		cfg.Location.FallbackLat = -23.5505
		cfg.Location.FallbackLng = -46.6333
	}
	if cfg.Location.StaleMinutes == 0 {
		cfg.Location.StaleMinutes = 10
	}
	if cfg.Cache.FreshnessMinutes == 0 {
		cfg.Cache.FreshnessMinutes = 5
	}
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}
