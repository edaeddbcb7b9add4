package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token      string `yaml:"token"`
	Mode       string `yaml:"mode"` // polling | webhook (future)
	Workers    int    `yaml:"workers"`
	OperatorID int64  `yaml:"operator_id"` // the single chat allowed to broadcast
	Channel    string `yaml:"channel"`     // e.g. "@my_channel"; membership gate target
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type ResolverConfig struct {
	YouTubeURL   string        `yaml:"youtube_url"`
	InstagramURL string        `yaml:"instagram_url"`
	Timeout      time.Duration `yaml:"timeout"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type OpsConfig struct {
	Port      int           `yaml:"port"`
	JWTSecret string        `yaml:"jwt_secret"`
	AdminKey  string        `yaml:"admin_key"` // credential exchanged for a session token
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type SessionConfig struct {
	TTL           time.Duration `yaml:"ttl"`            // negative disables the janitor
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

type BroadcastConfig struct {
	Workers    int `yaml:"workers"`
	RatePerSec int `yaml:"rate_per_sec"`
}

type Config struct {
	Bot       BotConfig       `yaml:"bot"`
	Log       LogConfig       `yaml:"log"`
	Resolver  ResolverConfig  `yaml:"resolver"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Ops       OpsConfig       `yaml:"ops"`
	Sessions  SessionConfig   `yaml:"sessions"`
	Broadcast BroadcastConfig `yaml:"broadcast"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Resolver.Timeout <= 0 {
		cfg.Resolver.Timeout = 15 * time.Second
	}
	if cfg.Ops.Port == 0 {
		cfg.Ops.Port = 8080
	}
	if cfg.Ops.TokenTTL <= 0 {
		cfg.Ops.TokenTTL = 30 * time.Minute
	}
	if cfg.Sessions.TTL < 0 {
		cfg.Sessions.TTL = 0
	} else if cfg.Sessions.TTL == 0 {
		cfg.Sessions.TTL = 24 * time.Hour
	}
	if cfg.Sessions.SweepInterval <= 0 {
		cfg.Sessions.SweepInterval = time.Hour
	}
	if cfg.Broadcast.Workers <= 0 {
		cfg.Broadcast.Workers = 4
	}
	if cfg.Broadcast.RatePerSec <= 0 {
		cfg.Broadcast.RatePerSec = 25
	}

	// Minimal validation
	if cfg.Bot.Token == "" {
		return nil, errors.New("bot.token is required")
	}
	if cfg.Bot.OperatorID == 0 {
		return nil, errors.New("bot.operator_id is required")
	}
	if cfg.Bot.Channel == "" {
		return nil, errors.New("bot.channel is required")
	}
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Resolver.YouTubeURL == "" || cfg.Resolver.InstagramURL == "" {
		return nil, errors.New("resolver.youtube_url and resolver.instagram_url are required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
