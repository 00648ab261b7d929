package config

import (
	"testing"
	"time"
)

func TestRequireEnv(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		value     string
		shouldSet bool
		wantPanic bool
	}{
		{
			name:      "variable set",
			key:       "TEST_VAR",
			value:     "test_value",
			shouldSet: true,
			wantPanic: false,
		},
		{
			name:      "variable not set",
			key:       "TEST_VAR_MISSING",
			shouldSet: false,
			wantPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				t.Setenv(tt.key, tt.value)
			}

			if tt.wantPanic {
				defer func() {
					if r := recover(); r == nil {
						t.Errorf("requireEnv() should have panicked")
					}
				}()
			}

			result := requireEnv(tt.key)
			if !tt.wantPanic && result != tt.value {
				t.Errorf("requireEnv() = %v, want %v", result, tt.value)
			}
		})
	}
}

func TestGetenv(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      string
		expected string
	}{
		{
			name:     "variable set",
			key:      "TEST_GETENV",
			value:    "from_env",
			def:      "fallback",
			expected: "from_env",
		},
		{
			name:     "missing variable uses default",
			key:      "TEST_GETENV_MISSING",
			value:    "",
			def:      "fallback",
			expected: "fallback",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(tt.key, tt.value)
			}

			if result := getenv(tt.key, tt.def); result != tt.expected {
				t.Errorf("getenv() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestGetenvInt(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      int
		expected int
	}{
		{
			name:     "valid integer",
			key:      "TEST_INT",
			value:    "42",
			def:      3,
			expected: 42,
		},
		{
			name:     "invalid integer uses default",
			key:      "TEST_INT_INVALID",
			value:    "not_a_number",
			def:      3,
			expected: 3,
		},
		{
			name:     "missing variable uses default",
			key:      "TEST_INT_MISSING",
			value:    "",
			def:      7,
			expected: 7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(tt.key, tt.value)
			}

			if result := getenvInt(tt.key, tt.def); result != tt.expected {
				t.Errorf("getenvInt() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      time.Duration
		expected time.Duration
	}{
		{
			name:     "valid duration",
			key:      "TEST_DURATION",
			value:    "5s",
			def:      1 * time.Second,
			expected: 5 * time.Second,
		},
		{
			name:     "invalid duration uses default",
			key:      "TEST_DURATION_INVALID",
			value:    "invalid",
			def:      10 * time.Second,
			expected: 10 * time.Second,
		},
		{
			name:     "missing variable uses default",
			key:      "TEST_DURATION_MISSING",
			value:    "",
			def:      15 * time.Second,
			expected: 15 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(tt.key, tt.value)
			}

			if result := mustDuration(tt.key, tt.def); result != tt.expected {
				t.Errorf("mustDuration() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMustBool(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      bool
		expected bool
	}{
		{
			name:     "true value",
			key:      "TEST_BOOL",
			value:    "true",
			def:      false,
			expected: true,
		},
		{
			name:     "false value",
			key:      "TEST_BOOL_FALSE",
			value:    "false",
			def:      true,
			expected: false,
		},
		{
			name:     "invalid value uses default",
			key:      "TEST_BOOL_INVALID",
			value:    "invalid",
			def:      true,
			expected: true,
		},
		{
			name:     "missing variable uses default",
			key:      "TEST_BOOL_MISSING",
			value:    "",
			def:      false,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(tt.key, tt.value)
			}

			if result := mustBool(tt.key, tt.def); result != tt.expected {
				t.Errorf("mustBool() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONDUCTOR_ROSTER_FILE", "/etc/conductor/nodes.yaml")

	cfg := Load()

	if cfg.RosterFile != "/etc/conductor/nodes.yaml" {
		t.Errorf("RosterFile = %v, want /etc/conductor/nodes.yaml", cfg.RosterFile)
	}
	if cfg.ListenPort != ":8080" {
		t.Errorf("ListenPort = %v, want :8080", cfg.ListenPort)
	}
	if cfg.ConnectAttempts != 3 {
		t.Errorf("ConnectAttempts = %v, want 3", cfg.ConnectAttempts)
	}
	if cfg.SelectionWindow != 30*time.Second {
		t.Errorf("SelectionWindow = %v, want 30s", cfg.SelectionWindow)
	}
	if cfg.RedisAddr != "" {
		t.Errorf("RedisAddr = %v, want empty (disabled)", cfg.RedisAddr)
	}
	if cfg.SpotifyEnabled {
		t.Error("SpotifyEnabled = true, want false by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CONDUCTOR_ROSTER_FILE", "/tmp/nodes.yaml")
	t.Setenv("CONDUCTOR_LISTEN_PORT", ":9090")
	t.Setenv("CONDUCTOR_CONNECT_ATTEMPTS", "5")
	t.Setenv("CONDUCTOR_SELECTION_WINDOW", "10s")
	t.Setenv("CONDUCTOR_DEEZER_ENABLED", "true")
	t.Setenv("CONDUCTOR_REDIS_ADDR", "redis:6379")

	cfg := Load()

	if cfg.ListenPort != ":9090" {
		t.Errorf("ListenPort = %v, want :9090", cfg.ListenPort)
	}
	if cfg.ConnectAttempts != 5 {
		t.Errorf("ConnectAttempts = %v, want 5", cfg.ConnectAttempts)
	}
	if cfg.SelectionWindow != 10*time.Second {
		t.Errorf("SelectionWindow = %v, want 10s", cfg.SelectionWindow)
	}
	if !cfg.DeezerEnabled {
		t.Error("DeezerEnabled = false, want true")
	}
	if cfg.RedisAddr != "redis:6379" {
		t.Errorf("RedisAddr = %v, want redis:6379", cfg.RedisAddr)
	}
}
