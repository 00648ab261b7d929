package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	RosterFile string // path to the nodes.yaml roster (required)

	// Node link behavior
	ConnectAttempts int           // probe attempts per connect (default: 3)
	RetryInterval   time.Duration // fixed wait between probe attempts (default: 5s)
	RequestTimeout  time.Duration // per-request timeout toward a node (default: 10s)
	SelectionWindow time.Duration // best-node decision cache window (default: 30s)
	HealthInterval  time.Duration // health watcher probe interval (default: 30s)

	// Catalog collaborators (empty base URL = disabled)
	SpotifyEnabled    bool
	AppleMusicEnabled bool
	DeezerEnabled     bool

	// Redis persistent search store (empty addr = disabled)
	RedisAddr           string
	RedisUser           string
	RedisPassword       string
	RedisDB             int
	RedisDialTimeout    time.Duration
	RedisReadTimeout    time.Duration
	RedisWriteTimeout   time.Duration
	RedisPoolSize       int
	RedisConnectTimeout time.Duration // total time to retry connecting
	RedisRetryInterval  time.Duration // initial wait between retries, grows exponentially
	RedisMaxWait        time.Duration // cap on wait between retries
	RedisPingTimeout    time.Duration // timeout per ping attempt
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("CONDUCTOR_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("CONDUCTOR_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("CONDUCTOR_LOG_LEVEL", "info"),
		PrettyLog: mustBool("CONDUCTOR_PRETTY_LOG", false),

		// Node roster
		RosterFile: requireEnv("CONDUCTOR_ROSTER_FILE"),

		// Link behavior
		ConnectAttempts: getenvInt("CONDUCTOR_CONNECT_ATTEMPTS", 3),
		RetryInterval:   mustDuration("CONDUCTOR_CONNECT_RETRY_INTERVAL", 5*time.Second),
		RequestTimeout:  mustDuration("CONDUCTOR_REQUEST_TIMEOUT", 10*time.Second),
		SelectionWindow: mustDuration("CONDUCTOR_SELECTION_WINDOW", 30*time.Second),
		HealthInterval:  mustDuration("CONDUCTOR_HEALTH_INTERVAL", 30*time.Second),

		// Catalogs
		SpotifyEnabled:    mustBool("CONDUCTOR_SPOTIFY_ENABLED", false),
		AppleMusicEnabled: mustBool("CONDUCTOR_APPLEMUSIC_ENABLED", false),
		DeezerEnabled:     mustBool("CONDUCTOR_DEEZER_ENABLED", false),

		// Redis settings
		RedisAddr:           getenv("CONDUCTOR_REDIS_ADDR", ""),
		RedisUser:           getenv("CONDUCTOR_REDIS_USERNAME", "default"),
		RedisPassword:       getenv("CONDUCTOR_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("CONDUCTOR_REDIS_DB", 0),
		RedisDialTimeout:    mustDuration("CONDUCTOR_REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisReadTimeout:    mustDuration("CONDUCTOR_REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWriteTimeout:   mustDuration("CONDUCTOR_REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisPoolSize:       getenvInt("CONDUCTOR_REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("CONDUCTOR_REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("CONDUCTOR_REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisMaxWait:        mustDuration("CONDUCTOR_REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("CONDUCTOR_REDIS_PING_TIMEOUT", 5*time.Second),
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
