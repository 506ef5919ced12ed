package config

import (
	"errors"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port         string `yaml:"port"`
		ReadTimeout  string `yaml:"read_timeout"`
		WriteTimeout string `yaml:"write_timeout"`
	} `yaml:"server"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Database struct {
		// Driver is "postgres" or "sqlite".
		Driver string `yaml:"driver"`
		URL    string `yaml:"url"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Cache struct {
		TTL string `yaml:"ttl"`
	} `yaml:"cache"`
	Security struct {
		AdminSecret    string `yaml:"admin_secret"`
		ObfuscationKey string `yaml:"obfuscation_key"`
		JWTSecret      string `yaml:"jwt_secret"`
	} `yaml:"security"`
	Schedule struct {
		Timezone    string `yaml:"timezone"`
		HorizonDays int    `yaml:"horizon_days"`
	} `yaml:"schedule"`
	Audio struct {
		ProxyPath string `yaml:"proxy_path"`
		Timeout   string `yaml:"timeout"`
	} `yaml:"audio"`
}

// Load reads YAML config from path, then applies environment overrides.
// A missing file is not an error so env-only deployments work.
func Load(path string) (Config, error) {
	cfg := Config{}
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	override := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	override(&cfg.Server.Port, "PORT")
	override(&cfg.Log.Level, "LOG_LEVEL")
	override(&cfg.Database.Driver, "DATABASE_DRIVER")
	override(&cfg.Database.URL, "DATABASE_URL")
	override(&cfg.Redis.Addr, "REDIS_ADDR")
	override(&cfg.Redis.Password, "REDIS_PASSWORD")
	override(&cfg.Security.AdminSecret, "ADMIN_SECRET")
	override(&cfg.Security.ObfuscationKey, "OBFUSCATION_KEY")
	override(&cfg.Security.JWTSecret, "JWT_SECRET")
	override(&cfg.Schedule.Timezone, "SCHEDULE_TIMEZONE")
	if v := os.Getenv("SCHEDULE_HORIZON_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Schedule.HorizonDays = n
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.URL == "" && cfg.Database.Driver == "sqlite" {
		cfg.Database.URL = "file:quiz.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(10000)"
	}
	if cfg.Schedule.Timezone == "" {
		cfg.Schedule.Timezone = "UTC"
	}
	if cfg.Schedule.HorizonDays <= 0 {
		cfg.Schedule.HorizonDays = 14
	}
	if cfg.Audio.ProxyPath == "" {
		cfg.Audio.ProxyPath = "/api/audio"
	}
}

// Location resolves the schedule time zone.
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Schedule.Timezone)
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
