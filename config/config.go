// Package config resolves server settings from CLI flags, falling back to
// PAR_TERM_-prefixed environment variables, then to built-in defaults. It
// holds no file-based configuration; everything is a flag or an env var.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the fully resolved set of server settings.
type Config struct {
	Host string
	Port int

	Cols int
	Rows int

	Shell         string
	ShellArgs     []string
	InjectCommand string
	Theme         string
	Presets       map[string]Preset

	MaxSessions        int
	SessionIdleTimeout time.Duration
	MaxClientsPerSess  int
	InputRateLimit     int

	TLSCertFile string
	TLSKeyFile  string
	TLSPEMFile  string

	EnableHTTP bool
	WebRoot    string

	HTTPUser         string
	HTTPPassword     string
	HTTPPasswordHash string
	HTTPPasswordFile string
	APIKey           string

	NoRestartShell bool

	EnableSystemStats   bool
	SystemStatsInterval time.Duration

	LogLevel string
	Dev      bool
}

// Preset is one named shell command selectable via ?preset=.
type Preset struct {
	Name    string
	Command string
	Args    []string
}

// Default returns the baseline configuration before flags or env vars are
// applied.
func Default() Config {
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}
	return Config{
		Host:                "127.0.0.1",
		Port:                7681,
		Cols:                80,
		Rows:                24,
		Shell:               shell,
		Presets:             map[string]Preset{},
		MaxSessions:         100,
		SessionIdleTimeout:  30 * time.Minute,
		MaxClientsPerSess:   0,
		InputRateLimit:      0,
		SystemStatsInterval: 2 * time.Second,
		LogLevel:            "info",
	}
}

// envString returns the PAR_TERM_<key> environment variable, or fallback.
func envString(key, fallback string) string {
	if v, ok := os.LookupEnv("PAR_TERM_" + key); ok {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv("PAR_TERM_" + key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v, ok := os.LookupEnv("PAR_TERM_" + key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv("PAR_TERM_" + key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		if secs, err2 := strconv.Atoi(v); err2 == nil {
			return time.Duration(secs) * time.Second
		}
		return fallback
	}
	return d
}

// ApplyEnv overlays PAR_TERM_* environment variables onto cfg. Flags that
// were explicitly set on the command line should be applied after this call
// so they take final precedence.
func (c *Config) ApplyEnv() {
	c.Host = envString("HOST", c.Host)
	c.Port = envInt("PORT", c.Port)
	c.InjectCommand = envString("COMMAND", c.InjectCommand)
	c.Theme = envString("THEME", c.Theme)
	c.MaxSessions = envInt("MAX_SESSIONS", c.MaxSessions)
	c.SessionIdleTimeout = envDuration("SESSION_IDLE_TIMEOUT", c.SessionIdleTimeout)
	c.MaxClientsPerSess = envInt("MAX_CLIENTS_PER_SESSION", c.MaxClientsPerSess)
	c.InputRateLimit = envInt("INPUT_RATE_LIMIT", c.InputRateLimit)
	c.TLSCertFile = envString("TLS_CERT", c.TLSCertFile)
	c.TLSKeyFile = envString("TLS_KEY", c.TLSKeyFile)
	c.TLSPEMFile = envString("TLS_PEM", c.TLSPEMFile)
	c.EnableHTTP = envBool("ENABLE_HTTP", c.EnableHTTP)
	c.WebRoot = envString("WEB_ROOT", c.WebRoot)
	c.HTTPUser = envString("HTTP_USER", c.HTTPUser)
	c.HTTPPassword = envString("HTTP_PASSWORD", c.HTTPPassword)
	c.HTTPPasswordHash = envString("HTTP_PASSWORD_HASH", c.HTTPPasswordHash)
	c.HTTPPasswordFile = envString("HTTP_PASSWORD_FILE", c.HTTPPasswordFile)
	c.APIKey = envString("API_KEY", c.APIKey)
	c.NoRestartShell = envBool("NO_RESTART_SHELL", c.NoRestartShell)
	c.EnableSystemStats = envBool("ENABLE_SYSTEM_STATS", c.EnableSystemStats)
	c.SystemStatsInterval = envDuration("SYSTEM_STATS_INTERVAL", c.SystemStatsInterval)
	c.LogLevel = envString("LOG_LEVEL", c.LogLevel)
}

// ParseSize parses a "COLSxROWS" string as used by the --size flag.
func ParseSize(s string) (cols, rows int, err error) {
	parts := strings.SplitN(s, "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("config: invalid --size %q, want COLSxROWS", s)
	}
	cols, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("config: invalid --size %q: %w", s, err)
	}
	rows, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("config: invalid --size %q: %w", s, err)
	}
	return cols, rows, nil
}

// ParsePreset parses a "NAME=CMD" string as used by the repeatable --preset
// flag. CMD is split on whitespace; it does not support quoting.
func ParsePreset(s string) (Preset, error) {
	parts := strings.SplitN(s, "=", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Preset{}, fmt.Errorf("config: invalid --preset %q, want NAME=CMD", s)
	}
	fields := strings.Fields(parts[1])
	if len(fields) == 0 {
		return Preset{}, fmt.Errorf("config: invalid --preset %q, empty command", s)
	}
	return Preset{Name: parts[0], Command: fields[0], Args: fields[1:]}, nil
}

// Validate checks cross-field constraints that flag parsing alone can't
// catch, returning a configuration error (exit code 1).
func (c *Config) Validate() error {
	if c.Cols < 2 || c.Cols > 1000 {
		return fmt.Errorf("config: --size cols out of range [2,1000]: %d", c.Cols)
	}
	if c.Rows < 2 || c.Rows > 500 {
		return fmt.Errorf("config: --size rows out of range [2,500]: %d", c.Rows)
	}
	if c.HTTPUser != "" {
		set := 0
		if c.HTTPPassword != "" {
			set++
		}
		if c.HTTPPasswordHash != "" {
			set++
		}
		if c.HTTPPasswordFile != "" {
			set++
		}
		if set != 1 {
			return fmt.Errorf("config: --http-user requires exactly one of --http-password, --http-password-hash, --http-password-file")
		}
	}
	if (c.TLSCertFile != "") != (c.TLSKeyFile != "") {
		return fmt.Errorf("config: --tls-cert and --tls-key must be set together")
	}
	return nil
}

// ResolvedHTTPPassword reads --http-password-file when set, otherwise
// returns HTTPPassword or HTTPPasswordHash as-is.
func (c *Config) ResolvedHTTPPassword() (password, hash string, err error) {
	if c.HTTPPasswordHash != "" {
		return "", c.HTTPPasswordHash, nil
	}
	if c.HTTPPasswordFile != "" {
		data, err := os.ReadFile(c.HTTPPasswordFile)
		if err != nil {
			return "", "", fmt.Errorf("config: reading --http-password-file: %w", err)
		}
		return strings.TrimSpace(string(data)), "", nil
	}
	return c.HTTPPassword, "", nil
}
