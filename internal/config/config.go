package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Installation defaults
const (
	DefaultName        = "n8n"
	DefaultOutputField = "output"
	DefaultTimeout     = 30
	MinTimeout         = 1
	MaxTimeout         = 300
)

type Config struct {
	// NATS configuration
	NatsURL           string
	NatsSubjectPrefix string
	NatsTimeout       time.Duration

	// Host registry mirror (optional)
	RedisURL string
	// YAML registry snapshot used when no Redis mirror is configured (optional)
	SnapshotFile string

	// HTTP ingress (optional)
	HTTPAddr string

	// Service configuration
	ServiceName string

	Installations []Installation
}

// Installation is one configured n8n instance
type Installation struct {
	Name             string `yaml:"name"`
	WebhookURL       string `yaml:"webhook_url"`
	OutputField      string `yaml:"output_field"`
	AITaskWebhookURL string `yaml:"ai_task_webhook_url"`
	Timeout          int    `yaml:"timeout"`
}

// fileConfig is the layout of N8N_CONFIG_FILE
type fileConfig struct {
	Installations []Installation `yaml:"installations"`
}

func Load() (*Config, error) {
	cfg := &Config{
		// NATS settings
		NatsURL:           getEnv("NATS_URL", "nats://localhost:4222"),
		NatsSubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "n8n"),
		NatsTimeout:       getDurationEnv("NATS_TIMEOUT", 30*time.Second),

		// Host registry settings
		RedisURL:     getEnv("REDIS_URL", ""),
		SnapshotFile: getEnv("HASS_SNAPSHOT_FILE", ""),

		HTTPAddr: getEnv("HTTP_ADDR", ""),

		// Service settings
		ServiceName: getEnv("SERVICE_NAME", "n8n-conversation"),
	}

	if path := getEnv("N8N_CONFIG_FILE", ""); path != "" {
		installations, err := LoadInstallations(path)
		if err != nil {
			return nil, err
		}
		cfg.Installations = installations
	} else {
		timeout, err := getIntEnv("N8N_TIMEOUT", DefaultTimeout)
		if err != nil {
			return nil, err
		}
		cfg.Installations = []Installation{{
			Name:             getEnv("N8N_NAME", DefaultName),
			WebhookURL:       getEnv("N8N_WEBHOOK_URL", ""),
			OutputField:      getEnv("N8N_OUTPUT_FIELD", DefaultOutputField),
			AITaskWebhookURL: getEnv("N8N_AI_TASK_WEBHOOK_URL", ""),
			Timeout:          timeout,
		}}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// LoadInstallations reads installations from a YAML file. ${VAR} references
// are expanded from the environment.
func LoadInstallations(path string) ([]Installation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := envVarPattern.ReplaceAllStringFunc(string(data), func(match string) string {
		if val, ok := os.LookupEnv(match[2 : len(match)-1]); ok {
			return val
		}
		return match
	})

	var fc fileConfig
	if err := yaml.Unmarshal([]byte(expanded), &fc); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	for i := range fc.Installations {
		fc.Installations[i].applyDefaults()
	}
	return fc.Installations, nil
}

func (i *Installation) applyDefaults() {
	if i.Name == "" {
		i.Name = DefaultName
	}
	if i.OutputField == "" {
		i.OutputField = DefaultOutputField
	}
	if i.Timeout == 0 {
		i.Timeout = DefaultTimeout
	}
}

// Validate checks every installation the way the setup form does
func (c *Config) Validate() error {
	if len(c.Installations) == 0 {
		return fmt.Errorf("no n8n installation configured")
	}

	seen := make(map[string]bool, len(c.Installations))
	for _, inst := range c.Installations {
		if err := inst.Validate(); err != nil {
			return err
		}
		slug := inst.Slug()
		if seen[slug] {
			return fmt.Errorf("duplicate installation name %q", inst.Name)
		}
		seen[slug] = true
	}
	return nil
}

func (i Installation) Validate() error {
	if !validWebhookURL(i.WebhookURL) {
		return fmt.Errorf("installation %q: invalid webhook_url %q: must start with http:// or https://", i.Name, i.WebhookURL)
	}
	if i.AITaskWebhookURL != "" && !validWebhookURL(i.AITaskWebhookURL) {
		return fmt.Errorf("installation %q: invalid ai_task_webhook_url %q: must start with http:// or https://", i.Name, i.AITaskWebhookURL)
	}
	if i.OutputField == "" {
		return fmt.Errorf("installation %q: output_field is required", i.Name)
	}
	if i.Timeout < MinTimeout || i.Timeout > MaxTimeout {
		return fmt.Errorf("installation %q: timeout must be between %d and %d seconds, got %d", i.Name, MinTimeout, MaxTimeout, i.Timeout)
	}
	return nil
}

// TimeoutDuration returns the webhook timeout
func (i Installation) TimeoutDuration() time.Duration {
	return time.Duration(i.Timeout) * time.Second
}

// HasAITask reports whether the generate-data capability is enabled
func (i Installation) HasAITask() bool {
	return i.AITaskWebhookURL != ""
}

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

// Slug derives the id used in entity ids and NATS subjects from the name
func (i Installation) Slug() string {
	slug := slugInvalid.ReplaceAllString(strings.ToLower(i.Name), "_")
	slug = strings.Trim(slug, "_")
	if slug == "" {
		return DefaultName
	}
	return slug
}

func validWebhookURL(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
