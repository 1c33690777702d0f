package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"huntd/pkg/keys"
)

// Config is the main configuration struct.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Hunt     HuntConfig     `yaml:"hunt"`
	Security SecurityConfig `yaml:"security"`
	Logging  LoggingConfig  `yaml:"logging"`
	Sweep    SweepConfig    `yaml:"sweep"`
	Activity ActivityConfig `yaml:"activity"`
}

// ServerConfig holds http and tls settings.
type ServerConfig struct {
	Address string    `yaml:"address"`
	Port    int       `yaml:"port"`
	DBPath  string    `yaml:"db_path"`
	TLS     TLSConfig `yaml:"tls"`
}

// TLSConfig holds TLS certificate configuration.
type TLSConfig struct {
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// HuntConfig describes the active hunt: its time window and the ordered
// key catalog. Exactly one hunt is active per process.
type HuntConfig struct {
	// Start and End are unix second timestamps bounding the hunt window.
	Start int64 `yaml:"start"`
	End   int64 `yaml:"end"`
	// Keys is the ordered catalog; the entry with ordinal -1 is the
	// terminal (decoding) key.
	Keys []keys.Entry `yaml:"keys"`
}

// Window returns the hunt window as a pair of times.
func (h HuntConfig) Window() (time.Time, time.Time) {
	return time.Unix(h.Start, 0).UTC(), time.Unix(h.End, 0).UTC()
}

// SecurityConfig holds security related settings.
type SecurityConfig struct {
	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`
	RateLimit struct {
		RPS   float64 `yaml:"rps"`
		Burst int     `yaml:"burst"`
	} `yaml:"rate_limit"`
	IPWhitelist []string `yaml:"ip_whitelist"`
	APIKeys     struct {
		Backend []string `yaml:"backend"`
		Admin   []string `yaml:"admin"`
	} `yaml:"api_keys"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SweepConfig controls the periodic stats snapshot and suspicion sweep.
type SweepConfig struct {
	Enabled bool   `yaml:"enabled"`
	Cron    string `yaml:"cron"`
}

// ActivityConfig holds the outcome-event queue tunables.
type ActivityConfig struct {
	QueueCapacity int `yaml:"queue_capacity"`
}

// Duration wraps time.Duration supporting YAML strings like "100ms" or
// plain numbers (interpreted as seconds).
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node == nil {
		*d = Duration(0)
		return nil
	}
	raw := strings.TrimSpace(node.Value)
	if raw == "" {
		*d = Duration(0)
		return nil
	}
	if td, err := time.ParseDuration(raw); err == nil {
		*d = Duration(td)
		return nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		*d = Duration(time.Duration(f * float64(time.Second)))
		return nil
	}
	return fmt.Errorf("invalid duration value: %q", node.Value)
}

func (d Duration) Duration() time.Duration { return time.Duration(d) }
