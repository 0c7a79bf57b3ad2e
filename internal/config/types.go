package config

import "time"

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AuthConfig struct {
	SessionSecret     string        `mapstructure:"session_secret"`
	SessionName       string        `mapstructure:"session_name"`
	LoginMaxAttempts  int           `mapstructure:"login_max_attempts"`
	LoginDecaySeconds int           `mapstructure:"login_decay_seconds"`
	ResetTokenTTL     time.Duration `mapstructure:"reset_token_ttl"`
	VerificationTTL   time.Duration `mapstructure:"verification_ttl"`
	LinkSecret        string        `mapstructure:"link_secret"`
	BaseURL           string        `mapstructure:"base_url"`
}

type AppConfig struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
}
