package app

import (
	"fmt"
	"os"

	"huntd/pkg/config"
)

// validateConfig performs quick, fail-fast validation of the effective
// configuration before starting long-running services. Keep checks light
// and focused so callers can surface user-friendly errors.
func validateConfig(eff config.EffectiveConfigResult) error {
	// DB path must be present
	if p := eff.DBPath; p == "" {
		return fmt.Errorf("database path is empty: set --db flag, HUNTD_DB_PATH env, or server.db_path in config")
	}

	// TLS cert/key presence check if one is set
	cert := eff.Config.Server.TLS.CertFile
	key := eff.Config.Server.TLS.KeyFile
	if (cert != "" && key == "") || (cert == "" && key != "") {
		return fmt.Errorf("incomplete TLS configuration: both server.tls.cert_file and server.tls.key_file must be set")
	}
	if cert != "" {
		if _, err := os.Stat(cert); err != nil {
			return fmt.Errorf("tls cert file not accessible: %w", err)
		}
		if _, err := os.Stat(key); err != nil {
			return fmt.Errorf("tls key file not accessible: %w", err)
		}
	}

	// the hunt window must be a real interval
	h := eff.Config.Hunt
	if h.Start == 0 || h.End == 0 {
		return fmt.Errorf("hunt window not configured: set hunt.start and hunt.end (unix seconds)")
	}
	if h.End <= h.Start {
		return fmt.Errorf("hunt window is empty: hunt.end (%d) must be after hunt.start (%d)", h.End, h.Start)
	}

	if len(h.Keys) == 0 {
		return fmt.Errorf("no hunt keys configured: set hunt.keys in config")
	}

	return nil
}
