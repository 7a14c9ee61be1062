package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bassista/circum/internal/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StorageTypeFile   = "file"
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// Config is the process configuration (not the kiosk Settings shown on screen).
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Kiosk   KioskConfig
	Misc    MiscConfig
}

type ServerConfig struct {
	Port               int
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	ShutDownTimeout    time.Duration
	RequestTimeout     time.Duration
	CORSAllowedOrigins string
}

// StorageConfig selects the durable key-value backend holding the kiosk settings.
type StorageConfig struct {
	Type     string
	FilePath string
	Key      string
	Watch    bool
	// PollInterval re-reads backends that cannot be watched; 0 disables polling.
	PollInterval  time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

type KioskConfig struct {
	PollInterval     time.Duration
	NotificationTTL  time.Duration
	IsolateListeners bool
}

type MiscConfig struct {
	GinMode  string
	LogLevel string
}

// LoadConfig reads config.yaml from CIRCUM_CONFIG_PATH (default ./config), then
// .env, then CIRCUM_* environment variables, which override everything.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.WithComponent("config").Warnf("cannot read .env file: %v", err)
	}

	confPath := getEnvOrDefault("CIRCUM_CONFIG_PATH", "./config")

	v := viper.GetViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(confPath)

	setDefaults(v)

	v.SetEnvPrefix("CIRCUM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config file error: %w", err)
		}
		logger.WithComponent("config").Info("No config file found, using defaults and env vars")
	}

	port, err := getEnvOrViperPort("PORT", "server.port")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:               port,
			ReadTimeout:        v.GetDuration("server.read_timeout"),
			WriteTimeout:       v.GetDuration("server.write_timeout"),
			IdleTimeout:        v.GetDuration("server.idle_timeout"),
			ShutDownTimeout:    v.GetDuration("server.shutdown_timeout"),
			RequestTimeout:     v.GetDuration("server.request_timeout"),
			CORSAllowedOrigins: v.GetString("server.cors_allowed_origins"),
		},
		Storage: StorageConfig{
			Type:          v.GetString("storage.type"),
			FilePath:      v.GetString("storage.file_path"),
			Key:           v.GetString("storage.key"),
			Watch:         v.GetBool("storage.watch"),
			RedisAddr:     v.GetString("storage.redis_addr"),
			RedisPassword: v.GetString("storage.redis_password"),
			RedisDB:       v.GetInt("storage.redis_db"),
			RedisPrefix:   v.GetString("storage.redis_prefix"),
		},
		Kiosk: KioskConfig{
			PollInterval:     v.GetDuration("kiosk.poll_interval"),
			NotificationTTL:  v.GetDuration("kiosk.notification_ttl"),
			IsolateListeners: v.GetBool("kiosk.isolate_listeners"),
		},
		Misc: MiscConfig{
			GinMode:  v.GetString("misc.gin_mode"),
			LogLevel: v.GetString("misc.log_level"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.request_timeout", 1000*time.Millisecond)
	v.SetDefault("server.cors_allowed_origins", "*")

	v.SetDefault("storage.type", StorageTypeFile)
	v.SetDefault("storage.file_path", "./config/data/storage.json")
	v.SetDefault("storage.key", "config")
	v.SetDefault("storage.watch", true)
	v.SetDefault("storage.poll_interval", 5*time.Second)
	v.SetDefault("storage.redis_addr", "localhost:6379")
	v.SetDefault("storage.redis_db", 0)
	v.SetDefault("storage.redis_prefix", "circum:")

	v.SetDefault("kiosk.poll_interval", time.Second)
	v.SetDefault("kiosk.notification_ttl", 10*time.Minute)
	v.SetDefault("kiosk.isolate_listeners", true)

	v.SetDefault("misc.gin_mode", "release")
	v.SetDefault("misc.log_level", "info")
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.IdleTimeout <= 0 {
		return errors.New("server timeouts must be positive")
	}
	if c.Server.ShutDownTimeout <= 0 {
		return errors.New("server shutdown timeout must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		return errors.New("server request timeout must be positive")
	}

	switch c.Storage.Type {
	case StorageTypeFile, "":
		if c.Storage.FilePath == "" {
			return errors.New("storage file path is required for the file backend")
		}
	case StorageTypeMemory:
	case StorageTypeRedis:
		if c.Storage.RedisAddr == "" {
			return errors.New("redis address is required for the redis backend")
		}
		if c.Storage.RedisDB < 0 {
			return fmt.Errorf("invalid redis db: %d", c.Storage.RedisDB)
		}
	default:
		return fmt.Errorf("unknown storage type: %s (supported: %s, %s, %s)", c.Storage.Type, StorageTypeFile, StorageTypeMemory, StorageTypeRedis)
	}
	if c.Storage.PollInterval < 0 {
		return errors.New("storage poll interval cannot be negative")
	}
	if c.Storage.Key == "" {
		return errors.New("storage key is required")
	}

	if c.Kiosk.PollInterval <= 0 {
		return errors.New("kiosk poll interval must be positive")
	}
	if c.Kiosk.NotificationTTL <= 0 {
		return errors.New("notification ttl must be positive")
	}
	return nil
}

func getEnvOrDefault(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvOrViperPort lets a bare env var (PORT on most PaaS) win over viper.
func getEnvOrViperPort(envKey, viperKey string) (int, error) {
	if val := os.Getenv(envKey); val != "" {
		port, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", envKey, err)
		}
		return port, nil
	}
	return viper.GetInt(viperKey), nil
}
