package banner

import (
	"fmt"
	"time"

	"huntd/pkg/config"
)

const banner = `
██╗  ██╗██╗   ██╗███╗   ██╗████████╗██████╗
██║  ██║██║   ██║████╗  ██║╚══██╔══╝██╔══██╗
███████║██║   ██║██╔██╗ ██║   ██║   ██║  ██║
██╔══██║██║   ██║██║╚██╗██║   ██║   ██║  ██║
██║  ██║╚██████╔╝██║ ╚████║   ██║   ██████╔╝
╚═╝  ╚═╝ ╚═════╝ ╚═╝  ╚═══╝   ╚═╝   ╚═════╝
`

// PrintWithEff prints the startup banner using the effective config plus
// the validated key count so a misloaded catalog is obvious at boot.
func PrintWithEff(eff config.EffectiveConfigResult, version string, keyCount int) {
	addr := eff.Addr
	if addr == "" && eff.Config != nil {
		addr = eff.Config.Addr()
	}
	dbPath := eff.DBPath
	src := eff.Source
	if src == "" {
		src = "flags"
	}

	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:   %s\n", addr)
	fmt.Printf("DB Path:  %s\n", dbPath)
	if version != "" {
		fmt.Printf("Version:  %s\n", version)
	}
	fmt.Printf("Config: %s\n", src)

	if eff.Config != nil {
		start, end := eff.Config.Hunt.Window()
		fmt.Println("\n== Hunt =======================================================")
		fmt.Printf("Window: %s -> %s\n", start.Format(time.RFC3339), end.Format(time.RFC3339))
		fmt.Printf("Keys:   %d regular + terminal\n", keyCount)
	}

	fmt.Println("\n== Endpoints ==================================================")
	fmt.Println("POST   /v1/hunt/users/{id}/guesses - Submit a guess (JSON: text)")
	fmt.Println("GET    /v1/hunt/users/{id}/status  - Progress view")
	fmt.Println("GET    /v1/hunt/users/{id}/clue    - Current clue")
	fmt.Println("GET    /v1/hunt/users/{id}/codes   - Codes found so far")
	fmt.Println("GET    /v1/admin/stats             - Global stats (admin key)")
	fmt.Println("DELETE /v1/admin/users/{id}        - Reset a user (admin key)")

	fmt.Println("\n== Production? =================================================")
	be, ak := 0, 0
	if eff.Config != nil {
		be = len(eff.Config.Security.APIKeys.Backend)
		ak = len(eff.Config.Security.APIKeys.Admin)
	}
	if be > 0 {
		fmt.Printf("- Backend API keys: OK (%d)\n", be)
	} else {
		fmt.Println("- Backend API keys: MISSING (required for the bot front-end)")
	}
	if ak > 0 {
		fmt.Printf("- Admin API keys: OK (%d)\n", ak)
	} else {
		fmt.Println("- Admin API keys: MISSING (staff endpoints unreachable)")
	}
	fmt.Println()
}
