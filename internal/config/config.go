package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Environment string          `json:"environment"`
	Backend     BackendConfig   `json:"backend"`
	LocalStore  LocalStoreConfig `json:"local_store"`
	Auth        AuthConfig      `json:"auth"`
	Sync        SyncConfig      `json:"sync"`
}

// BackendConfig describes the hosted document database the app reads and
// writes through the remote accessor.
type BackendConfig struct {
	Host            string        `json:"host"`
	Port            string        `json:"port"`
	User            string        `json:"user"`
	Password        string        `json:"password"`
	Name            string        `json:"name"`
	SSLMode         string        `json:"ssl_mode"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time"`
	RequestsPerSec  int           `json:"requests_per_sec"`
	RequestBurst    int           `json:"request_burst"`
}

// LocalStoreConfig describes the device-local key/value store that holds the
// change-stamp channels and cached preferences.
type LocalStoreConfig struct {
	Host         string        `json:"host"`
	Port         string        `json:"port"`
	Password     string        `json:"password"`
	DB           int           `json:"db"`
	PoolSize     int           `json:"pool_size"`
	MinIdleConns int           `json:"min_idle_conns"`
	MaxRetries   int           `json:"max_retries"`
	DialTimeout  time.Duration `json:"dial_timeout"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
}

type AuthConfig struct {
	JWTSecret       string        `json:"jwt_secret"`
	AccessTokenTTL  time.Duration `json:"access_token_ttl"`
	RefreshTokenTTL time.Duration `json:"refresh_token_ttl"`
	BCryptCost      int           `json:"bcrypt_cost"`
	AllowAnonymous  bool          `json:"allow_anonymous"`
}

type SyncConfig struct {
	PollInterval time.Duration `json:"poll_interval"`
	FetchTimeout time.Duration `json:"fetch_timeout"`
}

func LoadConfig() (*Config, error) {
	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Backend: BackendConfig{
			Host:            getEnv("BACKEND_DB_HOST", "localhost"),
			Port:            getEnv("BACKEND_DB_PORT", "5432"),
			User:            getEnv("BACKEND_DB_USER", "postgres"),
			Password:        getEnv("BACKEND_DB_PASSWORD", ""),
			Name:            getEnv("BACKEND_DB_NAME", "taskify"),
			SSLMode:         getEnv("BACKEND_DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvAsInt("BACKEND_DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("BACKEND_DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getEnvAsDuration("BACKEND_DB_CONN_MAX_LIFETIME", time.Hour),
			ConnMaxIdleTime: getEnvAsDuration("BACKEND_DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
			RequestsPerSec:  getEnvAsInt("BACKEND_REQUESTS_PER_SEC", 50),
			RequestBurst:    getEnvAsInt("BACKEND_REQUEST_BURST", 10),
		},
		LocalStore: LocalStoreConfig{
			Host:         getEnv("LOCAL_STORE_HOST", "localhost"),
			Port:         getEnv("LOCAL_STORE_PORT", "6379"),
			Password:     getEnv("LOCAL_STORE_PASSWORD", ""),
			DB:           getEnvAsInt("LOCAL_STORE_DB", 0),
			PoolSize:     getEnvAsInt("LOCAL_STORE_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("LOCAL_STORE_MIN_IDLE_CONNS", 5),
			MaxRetries:   getEnvAsInt("LOCAL_STORE_MAX_RETRIES", 3),
			DialTimeout:  getEnvAsDuration("LOCAL_STORE_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvAsDuration("LOCAL_STORE_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvAsDuration("LOCAL_STORE_WRITE_TIMEOUT", 3*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret:       getEnv("JWT_SECRET", "your-secret-key"),
			AccessTokenTTL:  getEnvAsDuration("ACCESS_TOKEN_TTL", time.Hour),
			RefreshTokenTTL: getEnvAsDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
			BCryptCost:      getEnvAsInt("BCRYPT_COST", 10),
			AllowAnonymous:  getEnvAsBool("ALLOW_ANONYMOUS_SIGNIN", true),
		},
		Sync: SyncConfig{
			PollInterval: getEnvAsDuration("SYNC_POLL_INTERVAL", time.Second),
			FetchTimeout: getEnvAsDuration("SYNC_FETCH_TIMEOUT", 10*time.Second),
		},
	}

	if config.Backend.Password == "" && config.IsProduction() {
		return nil, fmt.Errorf("backend database password is required in production")
	}

	if config.Auth.JWTSecret == "your-secret-key" && config.IsProduction() {
		return nil, fmt.Errorf("JWT secret must be set in production")
	}

	if config.Sync.PollInterval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive")
	}

	return config, nil
}

func (c *Config) GetBackendDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Backend.Host,
		c.Backend.Port,
		c.Backend.User,
		c.Backend.Password,
		c.Backend.Name,
		c.Backend.SSLMode,
	)
}

func (c *Config) GetLocalStoreAddr() string {
	return fmt.Sprintf("%s:%s", c.LocalStore.Host, c.LocalStore.Port)
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
