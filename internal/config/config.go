package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`
	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUser     string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
	} `yaml:"email"`
	Auth struct {
		EmailDomain     string `yaml:"email_domain"`
		AccessSecret    string `yaml:"access_secret"`
		RefreshSecret   string `yaml:"refresh_secret"`
		AccessTTLHours  int    `yaml:"access_ttl_hours"`
		RefreshTTLHours int    `yaml:"refresh_ttl_hours"`
	} `yaml:"auth"`
	Otp struct {
		ExpirationMinutes int `yaml:"expiration_minutes"`
		MaxAttempts       int `yaml:"max_attempts"`
		RateLimitMinutes  int `yaml:"rate_limit_minutes"`
	} `yaml:"otp"`
}

// LoadConfig reads the YAML file and applies environment overrides for the
// secret-bearing fields, so deployments never have to write secrets to disk.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("JWT_SECRET_KEY"); v != "" {
		cfg.Auth.AccessSecret = v
	}
	if v := os.Getenv("JWT_REFRESH_SECRET"); v != "" {
		cfg.Auth.RefreshSecret = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.Email.SMTPPassword = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3000
	}
	if cfg.Auth.EmailDomain == "" {
		cfg.Auth.EmailDomain = "unimar.edu.ve"
	}
	if cfg.Auth.AccessTTLHours == 0 {
		cfg.Auth.AccessTTLHours = 8 * 24
	}
	if cfg.Auth.RefreshTTLHours == 0 {
		cfg.Auth.RefreshTTLHours = 7 * 24
	}
	if cfg.Otp.ExpirationMinutes == 0 {
		cfg.Otp.ExpirationMinutes = 10
	}
	if cfg.Otp.MaxAttempts == 0 {
		cfg.Otp.MaxAttempts = 3
	}
	if cfg.Otp.RateLimitMinutes == 0 {
		cfg.Otp.RateLimitMinutes = 15
	}
}
