package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
	BackendRemote = "remote" // clients only: talk to a `shelf serve` instance
)

// Identity modes for the HTTP API.
const (
	IdentityHeader = "header"
	IdentityOIDC   = "oidc"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request timeout on the API (ex: 5s)

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)
	LogFile   string // optional, used by the TUI so logs don't hit the terminal

	// Store
	StoreBackend string // memory | redis | sqlite | remote
	SQLitePath   string // path to the sqlite database file

	// Remote store (clients)
	RemoteURL     string        // ex: "https://shelf.domain.ext"
	RemoteToken   string        // optional bearer token (OIDC id_token)
	RemoteTimeout time.Duration // http client timeout

	// Identity
	Owner          string // owner id used by clients (CLI/TUI)
	IdentityMode   string // header | oidc
	IdentityHeader string // trusted header set by the auth proxy
	OIDCIssuer     string // ex: "https://accounts.google.com"
	OIDCClientID   string // audience expected in id tokens

	RefreshInterval time.Duration // TUI background refresh (0 = manual only)

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	// Access restrictions
	AllowedHosts    []string // optional, restrict access to specific Host headers
	AllowedCIDRS    []string // optional, restrict health endpoints to specific IPs/CIDRs
	TrustProxy      bool     // true => trust X-Forwarded-For headers
	RateLimitBurst  int      // API requests allowed in a burst per owner
	RateLimitPerMin int      // API token refill per owner per minute
}

// Load reads configuration from SHELF_* environment variables and an
// optional YAML file (SHELF_CONFIG, or ~/.config/shelf/config.yaml).
// Environment values win over the file. Invalid setups panic.
func Load() *Config {
	src := newSource()
	if err := src.readFile(); err != nil {
		panic(fmt.Sprintf("❌ FATAL: %v", err))
	}

	cfg := &Config{
		// Server settings
		ListenPort:      src.getString("listen_port", ":8080"),
		ShutdownTimeout: src.getDuration("shutdown_timeout", 5*time.Second),
		RequestTimeout:  src.getDuration("request_timeout", 5*time.Second),

		// Logging
		LogLevel:  src.getString("log_level", "info"),
		PrettyLog: src.getBool("pretty_log", true),
		LogFile:   src.getString("log_file", ""),

		// Store
		StoreBackend: strings.ToLower(src.getString("store_backend", BackendSQLite)),
		SQLitePath:   src.getString("sqlite_path", defaultSQLitePath()),

		RemoteURL:     strings.TrimRight(src.getString("remote_url", ""), "/"),
		RemoteToken:   src.getString("remote_token", ""),
		RemoteTimeout: src.getDuration("remote_timeout", 10*time.Second),

		// Identity
		Owner:          src.getString("owner", ""),
		IdentityMode:   strings.ToLower(src.getString("identity_mode", IdentityHeader)),
		IdentityHeader: src.getString("identity_header", "X-Auth-Request-User"),
		OIDCIssuer:     src.getString("oidc_issuer", ""),
		OIDCClientID:   src.getString("oidc_client_id", ""),

		RefreshInterval: src.getDuration("refresh_interval", 0),

		// Redis settings
		RedisAddr:             src.getString("redis_addr", "localhost:6379"),
		RedisUser:             src.getString("redis_username", "default"),
		RedisPasswordRequired: src.getBool("redis_password_required", false),
		RedisPassword:         src.getString("redis_password", ""),
		RedisDB:               src.getInt("redis_db", 0),
		RedisDT:               src.getDuration("redis_dial_timeout", 5*time.Second),
		RedisRT:               src.getDuration("redis_read_timeout", 3*time.Second),
		RedisWT:               src.getDuration("redis_write_timeout", 3*time.Second),
		RedisMaxWait:          src.getDuration("redis_max_wait", 10*time.Second),
		RedisPingTimeout:      src.getDuration("redis_ping_timeout", 5*time.Second),
		RedisPoolSize:         src.getInt("redis_pool_size", 10),
		RedisConnectTimeout:   src.getDuration("redis_connect_timeout", 30*time.Second),
		RedisRetryInterval:    src.getDuration("redis_retry_interval", 2*time.Second),
		RedisWarnThreshold:    src.getInt("redis_warn_threshold", 3),

		// Access restrictions
		AllowedHosts:    src.getSlice("allowed_hosts"),
		AllowedCIDRS:    src.getSlice("allowed_cidrs"),
		TrustProxy:      src.getBool("trust_proxy", false),
		RateLimitBurst:  src.getInt("rate_limit_burst", 30),
		RateLimitPerMin: src.getInt("rate_limit_per_min", 120),
	}

	if err := cfg.validate(src); err != nil {
		panic(fmt.Sprintf("❌ FATAL: %v", err))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	cp := *c
	if cp.RedisPassword != "" {
		cp.RedisPassword = "***REDACTED***"
	}
	if cp.RemoteToken != "" {
		cp.RemoteToken = "***REDACTED***"
	}
	return cp
}

func (c *Config) validate(src *source) error {
	switch c.StoreBackend {
	case BackendMemory, BackendSQLite:
	case BackendRedis:
		if c.RedisPasswordRequired && c.RedisPassword == "" {
			return errors.New("SHELF_REDIS_PASSWORD is required when SHELF_REDIS_PASSWORD_REQUIRED=true")
		}
	case BackendRemote:
		c.RemoteURL = strings.TrimRight(src.requireString("remote_url"), "/")
	default:
		return fmt.Errorf("unknown store backend %q (want memory, redis, sqlite or remote)", c.StoreBackend)
	}

	switch c.IdentityMode {
	case IdentityHeader:
		if c.IdentityHeader == "" {
			return errors.New("SHELF_IDENTITY_HEADER must not be empty in header mode")
		}
	case IdentityOIDC:
		c.OIDCIssuer = src.requireString("oidc_issuer")
		c.OIDCClientID = src.requireString("oidc_client_id")
	default:
		return fmt.Errorf("unknown identity mode %q (want header or oidc)", c.IdentityMode)
	}

	if c.RefreshInterval < 0 {
		return fmt.Errorf("SHELF_REFRESH_INTERVAL must be >= 0, got %v", c.RefreshInterval)
	}
	return nil
}

func defaultSQLitePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "shelf.db"
	}
	return filepath.Join(dir, "shelf", "shelf.db")
}

// source resolves keys from the environment (SHELF_<KEY>) and the config file.
type source struct {
	v *viper.Viper
}

func newSource() *source {
	v := viper.New()
	v.SetEnvPrefix("SHELF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return &source{v: v}
}

func (s *source) readFile() error {
	if path := os.Getenv("SHELF_CONFIG"); path != "" {
		s.v.SetConfigFile(path)
	} else {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil
		}
		s.v.SetConfigName("config")
		s.v.SetConfigType("yaml")
		s.v.AddConfigPath(filepath.Join(dir, "shelf"))
	}

	if err := s.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// raw returns the trimmed value for key, "" when unset.
func (s *source) raw(key string) string {
	return strings.TrimSpace(s.v.GetString(key))
}

func (s *source) getString(key, def string) string {
	if v := s.raw(key); v != "" {
		return v
	}
	return def
}

func (s *source) requireString(key string) string {
	v := s.raw(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required setting %s is not set", envName(key)))
	}
	return v
}

func (s *source) getInt(key string, def int) int {
	if v := s.raw(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func (s *source) getBool(key string, def bool) bool {
	if v := s.raw(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func (s *source) getDuration(key string, def time.Duration) time.Duration {
	if v := s.raw(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// getSlice accepts a comma separated string (env) or a YAML list (file).
func (s *source) getSlice(key string) []string {
	if list := s.v.GetStringSlice(key); len(list) > 1 {
		return splitAndTrim(strings.Join(list, ","))
	}
	return splitAndTrim(s.raw(key))
}

func envName(key string) string {
	return "SHELF_" + strings.ToUpper(key)
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
