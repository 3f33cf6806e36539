package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRequireString(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		value     string
		shouldSet bool
		wantPanic bool
	}{
		{
			name:      "variable set",
			key:       "test_var",
			value:     "test_value",
			shouldSet: true,
			wantPanic: false,
		},
		{
			name:      "variable not set",
			key:       "test_var_missing",
			shouldSet: false,
			wantPanic: true,
		},
		{
			name:      "whitespace only",
			key:       "test_var_blank",
			value:     "   ",
			shouldSet: true,
			wantPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				t.Setenv(envName(tt.key), tt.value)
			}

			if tt.wantPanic {
				defer func() {
					if r := recover(); r == nil {
						t.Errorf("requireString() should have panicked")
					}
				}()
			}

			result := newSource().requireString(tt.key)
			if !tt.wantPanic && result != tt.value {
				t.Errorf("requireString() = %v, want %v", result, tt.value)
			}
		})
	}
}

func TestGetSlice(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		expected []string
	}{
		{
			name:     "single value",
			key:      "test_slice",
			value:    "value1",
			expected: []string{"value1"},
		},
		{
			name:     "multiple values",
			key:      "test_slice_multi",
			value:    "value1, value2, value3",
			expected: []string{"value1", "value2", "value3"},
		},
		{
			name:     "quoted values",
			key:      "test_slice_quoted",
			value:    `"10.0.0.0/8", '127.0.0.1'`,
			expected: []string{"10.0.0.0/8", "127.0.0.1"},
		},
		{
			name:     "missing variable",
			key:      "test_slice_missing",
			value:    "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(envName(tt.key), tt.value)
			}

			result := newSource().getSlice(tt.key)
			if len(result) != len(tt.expected) {
				t.Fatalf("getSlice() length = %v, want %v", len(result), len(tt.expected))
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("getSlice()[%d] = %v, want %v", i, result[i], tt.expected[i])
				}
			}
		})
	}
}

func TestGetDuration(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      time.Duration
		expected time.Duration
	}{
		{
			name:     "valid duration",
			key:      "test_duration",
			value:    "5s",
			def:      1 * time.Second,
			expected: 5 * time.Second,
		},
		{
			name:     "invalid duration uses default",
			key:      "test_duration_invalid",
			value:    "invalid",
			def:      10 * time.Second,
			expected: 10 * time.Second,
		},
		{
			name:     "missing variable uses default",
			key:      "test_duration_missing",
			value:    "",
			def:      15 * time.Second,
			expected: 15 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(envName(tt.key), tt.value)
			}

			result := newSource().getDuration(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("getDuration() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestGetBool(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      bool
		expected bool
	}{
		{name: "true value", key: "test_bool", value: "true", def: false, expected: true},
		{name: "false value", key: "test_bool_false", value: "false", def: true, expected: false},
		{name: "invalid value uses default", key: "test_bool_invalid", value: "invalid", def: true, expected: true},
		{name: "missing variable uses default", key: "test_bool_missing", value: "", def: false, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(envName(tt.key), tt.value)
			}

			result := newSource().getBool(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("getBool() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{}\n"), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("SHELF_CONFIG", path)
	t.Setenv("SHELF_STORE_BACKEND", "memory")

	cfg := Load()

	if cfg.StoreBackend != BackendMemory {
		t.Errorf("StoreBackend = %v, want %v", cfg.StoreBackend, BackendMemory)
	}
	if cfg.ListenPort != ":8080" {
		t.Errorf("ListenPort = %v, want :8080", cfg.ListenPort)
	}
	if cfg.IdentityMode != IdentityHeader || cfg.IdentityHeader != "X-Auth-Request-User" {
		t.Errorf("identity = %v/%v, want header/X-Auth-Request-User", cfg.IdentityMode, cfg.IdentityHeader)
	}
	if cfg.RefreshInterval != 0 {
		t.Errorf("RefreshInterval = %v, want 0", cfg.RefreshInterval)
	}
}

func TestLoadMissingExplicitFilePanics(t *testing.T) {
	t.Setenv("SHELF_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Load() should have panicked on a missing SHELF_CONFIG file")
		}
	}()
	_ = Load()
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `store_backend: memory
owner: alice
refresh_interval: 30s
allowed_cidrs:
  - 10.0.0.0/8
  - 127.0.0.1
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("SHELF_CONFIG", path)
	t.Setenv("SHELF_OWNER", "bob") // env wins over file

	cfg := Load()

	if cfg.StoreBackend != BackendMemory {
		t.Errorf("StoreBackend = %v, want %v", cfg.StoreBackend, BackendMemory)
	}
	if cfg.Owner != "bob" {
		t.Errorf("Owner = %v, want bob", cfg.Owner)
	}
	if cfg.RefreshInterval != 30*time.Second {
		t.Errorf("RefreshInterval = %v, want 30s", cfg.RefreshInterval)
	}
	if len(cfg.AllowedCIDRS) != 2 || cfg.AllowedCIDRS[0] != "10.0.0.0/8" {
		t.Errorf("AllowedCIDRS = %v, want [10.0.0.0/8 127.0.0.1]", cfg.AllowedCIDRS)
	}
}

func TestLoadPanics(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "unknown backend",
			env:  map[string]string{"SHELF_STORE_BACKEND": "postgres"},
		},
		{
			name: "remote without url",
			env:  map[string]string{"SHELF_STORE_BACKEND": "remote"},
		},
		{
			name: "oidc without issuer",
			env: map[string]string{
				"SHELF_STORE_BACKEND": "memory",
				"SHELF_IDENTITY_MODE": "oidc",
			},
		},
		{
			name: "redis password required but empty",
			env: map[string]string{
				"SHELF_STORE_BACKEND":           "redis",
				"SHELF_REDIS_PASSWORD_REQUIRED": "true",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte("{}\n"), 0o644); err != nil {
				t.Fatalf("failed to write config file: %v", err)
			}
			t.Setenv("SHELF_CONFIG", path)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			defer func() {
				if r := recover(); r == nil {
					t.Errorf("Load() should have panicked")
				}
			}()
			_ = Load()
		})
	}
}

func TestRedacted(t *testing.T) {
	cfg := &Config{RedisPassword: "secret", RemoteToken: "token"}
	red := cfg.Redacted()

	if red.RedisPassword == "secret" || red.RemoteToken == "token" {
		t.Errorf("Redacted() leaked secrets: %+v", red)
	}
	if cfg.RedisPassword != "secret" {
		t.Error("Redacted() must not mutate the original config")
	}
}
