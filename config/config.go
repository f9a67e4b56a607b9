// Package config reads the application settings from the environment.
package config

import (
	"errors"
	"slices"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	DevEnv = "dev"
	ProEnv = "pro"

	CacheMemory = "memory"
	CacheNATS   = "nats"
)

var ErrNoSecret = errors.New("no JWT_SECRET defined")

type Config struct {
	Env           string `envconfig:"ENV" default:"pro"`
	Addr          string `envconfig:"ADDRESS_LISTEN"`
	WhitelistHost string `envconfig:"WHITELIST_HOST"`

	DBURL string `envconfig:"DB_URL" default:"./blogyard.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(3000)"`

	JWTSecret       string        `envconfig:"JWT_SECRET"`
	SessionLifetime time.Duration `envconfig:"SESSION_LIFETIME" default:"168h"`
	EnableSignup    bool          `envconfig:"ENABLE_SIGNUP"`
	AdminUsers      []string      `envconfig:"ADMIN_USERS"`

	PostsPerPage int           `envconfig:"DEFAULT_POSTS_PER_PAGE" default:"10"`
	TimelineTTL  time.Duration `envconfig:"TIMELINE_CACHE_TTL" default:"20s"`
	CacheBackend string        `envconfig:"CACHE_BACKEND" default:"memory"`
	NATSURL      string        `envconfig:"NATS_URL" default:"nats://127.0.0.1:4222"`

	MediaRoot string `envconfig:"MEDIA_ROOT" default:"media"`
}

// Load processes the environment and fills in the development fallbacks.
func Load() (*Config, error) {
	c := &Config{}
	if err := envconfig.Process("", c); err != nil {
		return nil, err
	}
	if err := c.finish(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) finish() error {
	if c.IsDev() {
		if c.JWTSecret == "" {
			c.JWTSecret = "unsecure"
		}
		if c.Addr == "" {
			c.Addr = ":8080"
		}
	}
	if c.JWTSecret == "" {
		return ErrNoSecret
	}
	if c.CacheBackend != CacheMemory && c.CacheBackend != CacheNATS {
		return errors.New("CACHE_BACKEND must be memory or nats")
	}
	return nil
}

func (c *Config) IsDev() bool {
	return c.Env == DevEnv
}

func (c *Config) SignupAllowed() bool {
	return c.IsDev() || c.EnableSignup
}

func (c *Config) IsAdmin(username string) bool {
	return username != "" && slices.Contains(c.AdminUsers, username)
}
