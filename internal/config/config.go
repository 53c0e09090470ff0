package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds settings shared by the server, worker and scheduler.
type Config struct {
	Port        string `yaml:"port"`
	DatabaseURL string `yaml:"database_url"`
	RedisAddr   string `yaml:"redis_addr"`
	// PublicURL is the externally visible base URL used in feed links.
	PublicURL string `yaml:"public_url"`

	Services ServicesConfig `yaml:"services"`
	Storage  StorageConfig  `yaml:"storage"`
	Limits   LimitsConfig   `yaml:"limits"`

	// ScriptSweepInterval is the scheduler cron expression for re-issuing the
	// auto-scripting trigger for projects whose trigger was lost, e.g.
	// "@every 1h". Empty, the default, disables the sweep. A failed scripting
	// run is never retried automatically, so only enable this where enqueues
	// are known to be dropped.
	ScriptSweepInterval string `yaml:"script_sweep_interval"`
}

// ServicesConfig points at the external collaborators.
type ServicesConfig struct {
	ExtractURL     string        `yaml:"extract_url"`
	ScriptURL      string        `yaml:"script_url"`
	ClipSearchURL  string        `yaml:"clip_search_url"`
	VoiceURL       string        `yaml:"voice_url"`
	APIKey         string        `yaml:"api_key"`
	Timeout        time.Duration `yaml:"timeout"`
	ClipsPerSecond float64       `yaml:"clips_per_second"`
}

// StorageConfig configures the object store for narration audio. An empty
// Endpoint means audio is stored inline as a data URL.
type StorageConfig struct {
	Endpoint  string        `yaml:"endpoint"`
	AccessKey string        `yaml:"access_key"`
	SecretKey string        `yaml:"secret_key"`
	Bucket    string        `yaml:"bucket"`
	Region    string        `yaml:"region"`
	UseSSL    bool          `yaml:"use_ssl"`
	// URLExpiry is the lifetime of presigned narration links, at most 7 days.
	URLExpiry time.Duration `yaml:"url_expiry"`
}

// LimitsConfig configures per-client API rate limiting.
type LimitsConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
	// TrustedProxies lists CIDRs or addresses whose X-Forwarded-For header
	// identifies the client. Empty means the peer address is always used.
	TrustedProxies []string `yaml:"trusted_proxies"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Port:      "8080",
		RedisAddr: "127.0.0.1:6379",
		Services: ServicesConfig{
			Timeout:        60 * time.Second,
			ClipsPerSecond: 2,
		},
		Storage: StorageConfig{
			Bucket:    "reels",
			Region:    "us-east-1",
			URLExpiry: 72 * time.Hour,
		},
		Limits: LimitsConfig{
			RequestsPerSecond: 5,
			Burst:             10,
		},
	}
}

// Load reads .env (if present), the optional YAML file named by CONFIG_FILE,
// and finally environment variables, which take precedence.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file loaded, using environment")
	}

	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return cfg, err
		}
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()
	if err := yaml.NewDecoder(f).Decode(c); err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	str("PORT", &c.Port)
	str("DATABASE_URL", &c.DatabaseURL)
	str("REDIS_ADDR", &c.RedisAddr)
	str("BASE_URL", &c.PublicURL)
	str("EXTRACT_URL", &c.Services.ExtractURL)
	str("SCRIPT_URL", &c.Services.ScriptURL)
	str("CLIP_SEARCH_URL", &c.Services.ClipSearchURL)
	str("VOICE_URL", &c.Services.VoiceURL)
	str("SERVICES_API_KEY", &c.Services.APIKey)
	str("MINIO_ENDPOINT", &c.Storage.Endpoint)
	str("MINIO_ACCESS_KEY", &c.Storage.AccessKey)
	str("MINIO_SECRET_KEY", &c.Storage.SecretKey)
	str("MINIO_BUCKET", &c.Storage.Bucket)
	str("MINIO_REGION", &c.Storage.Region)
	str("SCRIPT_SWEEP_INTERVAL", &c.ScriptSweepInterval)

	if v := getenv("MINIO_USE_SSL"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("MINIO_USE_SSL: %w", err)
		}
		c.Storage.UseSSL = b
	}
	if v := getenv("SERVICES_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SERVICES_TIMEOUT: %w", err)
		}
		c.Services.Timeout = d
	}
	if v := getenv("CLIPS_PER_SECOND"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("CLIPS_PER_SECOND: %w", err)
		}
		c.Services.ClipsPerSecond = f
	}
	if v := getenv("RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_RPS: %w", err)
		}
		c.Limits.RequestsPerSecond = f
	}
	if v := getenv("RATE_LIMIT_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_BURST: %w", err)
		}
		c.Limits.Burst = n
	}
	if v := getenv("TRUSTED_PROXIES"); v != "" {
		c.Limits.TrustedProxies = strings.Split(v, ",")
	}
	return nil
}
