package config

import (
	"fmt"
	"net"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel     string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	Server       Server        `yaml:"server"`
	Auth         Auth          `yaml:"auth"`
	Room         Room          `yaml:"room"`
	PollInterval time.Duration `yaml:"poll-interval" env:"POLL_INTERVAL" env-default:"0s"`
	Redis        Redis         `yaml:"redis"`
}

type Server struct {
	BaseURL        string        `yaml:"base-url" env:"SERVER_BASE_URL" env-default:"http://localhost:8080"`
	RequestTimeout time.Duration `yaml:"request-timeout" env:"SERVER_REQUEST_TIMEOUT" env-default:"10s"`
}

type Auth struct {
	Token string `yaml:"token" env:"AUTH_TOKEN"`
}

type Room struct {
	ID       uint64 `yaml:"id" env:"ROOM_ID"`
	Password string `yaml:"password" env:"ROOM_PASSWORD"`
}

// Redis is optional; an empty host disables the snapshot store.
type Redis struct {
	Host        string        `yaml:"host" env:"REDIS_HOST"`
	Port        string        `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	DB          int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	SnapshotTTL time.Duration `yaml:"snapshot-ttl" env:"REDIS_SNAPSHOT_TTL" env-default:"1h"`
}

// MustLoad - load all configurations from the yaml file at path, with environment overrides.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (that *Config) Validate() error {
	if that.Server.BaseURL == "" {
		return fmt.Errorf("server.base-url is required")
	}

	if that.Room.ID == 0 {
		return fmt.Errorf("room.id is required")
	}

	if that.PollInterval < 0 {
		return fmt.Errorf("poll-interval must not be negative")
	}

	return nil
}

func (that *Redis) Enabled() bool {
	return that.Host != ""
}

func (that *Redis) GetRedisAddr() string {
	return net.JoinHostPort(that.Host, that.Port)
}
