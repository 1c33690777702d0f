package config

import (
	"flag"
	"net"
	"os"
	"strconv"
	"strings"
)

// Flags holds parsed command-line flag values and which were set.
type Flags struct {
	Addr   string
	DB     string
	Config string
	Set    map[string]bool
}

// EffectiveConfigResult is the merged view of flags, env and config file
// that the rest of the server consumes.
type EffectiveConfigResult struct {
	Config *Config
	Addr   string
	DBPath string
	Source string // "flags", "env" or "config"
}

// ParseConfigFlags parses command-line flags and returns them as a Flags
// struct.
func ParseConfigFlags() Flags {
	addrPtr := flag.String("addr", ":8080", "HTTP listen address")
	dbPtr := flag.String("db", "./.database", "Pebble DB path")
	cfgPtr := flag.String("config", "./config.yaml", "Path to config file")
	flag.Parse()
	setFlags := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })
	return Flags{Addr: *addrPtr, DB: *dbPtr, Config: *cfgPtr, Set: setFlags}
}

// ParseConfigFile resolves the config path and loads the YAML file. The
// second return reports whether a file was present.
func ParseConfigFile(flags Flags) (*Config, bool, error) {
	cfgPath := ResolveConfigPath(flags.Config, flags.Set["config"])
	cfg, err := Load(cfgPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, false, nil
		}
		return nil, false, err
	}
	return cfg, true, nil
}

func parseList(v string) []string {
	if v == "" {
		return nil
	}
	var parts []string
	for _, p := range strings.Split(v, ",") {
		if s := strings.TrimSpace(p); s != "" {
			parts = append(parts, s)
		}
	}
	return parts
}

// applyEnvOverrides mutates cfg with HUNTD_* environment values and
// reports whether any env var was used. Key catalogs are file-only; only
// scalars and key lists suited to env injection are supported.
func applyEnvOverrides(cfg *Config) bool {
	envUsed := false

	if v := os.Getenv("HUNTD_ADDR"); v != "" {
		envUsed = true
		if h, p, err := net.SplitHostPort(v); err == nil {
			cfg.Server.Address = h
			if pi, err := strconv.Atoi(p); err == nil {
				cfg.Server.Port = pi
			}
		} else {
			cfg.Server.Address = v
		}
	} else {
		if host := os.Getenv("HUNTD_SERVER_ADDRESS"); host != "" {
			envUsed = true
			cfg.Server.Address = host
		}
		if port := os.Getenv("HUNTD_SERVER_PORT"); port != "" {
			envUsed = true
			if pi, err := strconv.Atoi(port); err == nil {
				cfg.Server.Port = pi
			}
		}
	}

	if v := os.Getenv("HUNTD_DB_PATH"); v != "" {
		envUsed = true
		cfg.Server.DBPath = v
	}
	if v := os.Getenv("HUNTD_HUNT_START"); v != "" {
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			envUsed = true
			cfg.Hunt.Start = n
		}
	}
	if v := os.Getenv("HUNTD_HUNT_END"); v != "" {
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			envUsed = true
			cfg.Hunt.End = n
		}
	}
	if v := os.Getenv("HUNTD_API_BACKEND_KEYS"); v != "" {
		envUsed = true
		cfg.Security.APIKeys.Backend = parseList(v)
	}
	if v := os.Getenv("HUNTD_API_ADMIN_KEYS"); v != "" {
		envUsed = true
		cfg.Security.APIKeys.Admin = parseList(v)
	}
	if v := os.Getenv("HUNTD_RATE_RPS"); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			envUsed = true
			cfg.Security.RateLimit.RPS = f
		}
	}
	if v := os.Getenv("HUNTD_RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			envUsed = true
			cfg.Security.RateLimit.Burst = n
		}
	}
	if v := os.Getenv("HUNTD_IP_WHITELIST"); v != "" {
		envUsed = true
		cfg.Security.IPWhitelist = parseList(v)
	}
	if v := os.Getenv("HUNTD_CORS_ORIGINS"); v != "" {
		envUsed = true
		cfg.Security.CORS.AllowedOrigins = parseList(v)
	}
	if v := os.Getenv("HUNTD_SWEEP_CRON"); v != "" {
		envUsed = true
		cfg.Sweep.Enabled = true
		cfg.Sweep.Cron = v
	}
	if c := os.Getenv("HUNTD_TLS_CERT"); c != "" {
		envUsed = true
		cfg.Server.TLS.CertFile = c
	}
	if k := os.Getenv("HUNTD_TLS_KEY"); k != "" {
		envUsed = true
		cfg.Server.TLS.KeyFile = k
	}

	return envUsed
}

// LoadEffective merges config file, env overrides and flags (flags win
// over env, env wins over file) into the effective runtime view.
func LoadEffective(flags Flags) (EffectiveConfigResult, error) {
	cfg, fromFile, err := ParseConfigFile(flags)
	if err != nil {
		return EffectiveConfigResult{}, err
	}
	envUsed := applyEnvOverrides(cfg)

	eff := EffectiveConfigResult{Config: cfg}
	switch {
	case fromFile:
		eff.Source = "config"
	case envUsed:
		eff.Source = "env"
	default:
		eff.Source = "flags"
	}

	if flags.Set["addr"] {
		eff.Addr = flags.Addr
		eff.Source = "flags"
	} else {
		eff.Addr = cfg.Addr()
	}
	if flags.Set["db"] {
		eff.DBPath = flags.DB
		eff.Source = "flags"
	} else if cfg.Server.DBPath != "" {
		eff.DBPath = cfg.Server.DBPath
	} else {
		eff.DBPath = flags.DB
	}
	return eff, nil
}
