// Package auth gates every request on the shared HTTP surface: API key
// authentication, CORS, optional IP whitelisting and per-key rate limits.
// Backend keys act on behalf of users (the bot or site making submissions);
// admin keys unlock the staff endpoints.
package auth

// Role represents the resolved caller role for a request.
type Role int

const (
	RoleUnauth Role = iota
	RoleBackend
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleBackend:
		return "backend"
	case RoleAdmin:
		return "admin"
	default:
		return "unauth"
	}
}

// SecConfig mirrors the security-related configuration used to drive
// authentication, CORS and rate limiting behavior. Put here so limiter.go
// and gateway.go can reference the shared type.
type SecConfig struct {
	AllowedOrigins []string
	RPS            float64
	Burst          int
	IPWhitelist    []string
	BackendKeys    map[string]struct{}
	AdminKeys      map[string]struct{}
}
