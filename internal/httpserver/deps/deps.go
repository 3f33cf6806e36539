package deps

import (
	"time"

	"github.com/MrSnakeDoc/shelf/internal/identity"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/store"
)

type Deps struct {
	Logger          logger.Logger
	StartTime       time.Time
	Version         string
	Commit          string
	BuildDate       string
	GoVersion       string
	TimeNow         func() time.Time  // for testing, defaults to time.Now
	AllowedHosts    []string          // Host headers allowed to access the server
	AllowedCIDRS    []string          // IPs allowed to access healthz/readyz/infra endpoints
	TrustProxy      bool              // true if running behind a trusted reverse proxy (e.g., cloudflared)
	RateLimitBurst  int               // API requests allowed in a burst per owner/IP
	RateLimitPerMin int               // API token refill per owner/IP per minute
	Store           store.Store       // Bookmark store backing the API
	Backend         string            // Store backend name, reported by /infra
	Identity        identity.Provider // Resolves the owner of each API request
	IdentityMode    string            // header | oidc, reported by /infra
}

// Now returns d.TimeNow() or time.Now().
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
