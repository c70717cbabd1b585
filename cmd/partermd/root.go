package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/parterm-dev/parterm/config"
	"github.com/parterm-dev/parterm/log"
)

// run builds the root command, executes it against args, and maps the
// outcome to the exit codes the external interface promises: 0 normal
// shutdown, 1 configuration error, 2 bind failure.
func run(args []string) int {
	cfg := config.Default()
	cfg.ApplyEnv() // env vars become the flag defaults; CLI flags still win

	var size string
	var presetFlags []string
	var exitCode int

	cmd := &cobra.Command{
		Use:   "partermd",
		Short: "Terminal emulation core with a WebSocket broker",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if size != "" {
				cols, rows, err := config.ParseSize(size)
				if err != nil {
					exitCode = 1
					return err
				}
				cfg.Cols, cfg.Rows = cols, rows
			}
			for _, p := range presetFlags {
				preset, err := config.ParsePreset(p)
				if err != nil {
					exitCode = 1
					return err
				}
				cfg.Presets[preset.Name] = preset
			}
			if err := cfg.Validate(); err != nil {
				exitCode = 1
				return err
			}

			log.Configure(cfg.LogLevel, cfg.Dev)

			code, err := serve(cfg)
			exitCode = code
			return err
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetArgs(args)

	registerFlags(cmd, &cfg, &size, &presetFlags)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "partermd:", err)
		if exitCode == 0 {
			exitCode = 1
		}
	}
	return exitCode
}

func registerFlags(cmd *cobra.Command, cfg *config.Config, size *string, presets *[]string) {
	f := cmd.Flags()
	f.StringVar(&cfg.Host, "host", cfg.Host, "Bind address")
	f.IntVar(&cfg.Port, "port", cfg.Port, "Bind port")
	f.StringVar(size, "size", "", "Initial terminal size as COLSxROWS")
	f.StringVar(&cfg.InjectCommand, "command", cfg.InjectCommand, "Initial command injected after shell spawn")
	f.StringVar(&cfg.Theme, "theme", cfg.Theme, "Named color theme sent in the Connected handshake")
	f.StringArrayVar(presets, "preset", nil, "Shell preset as NAME=CMD, repeatable")
	f.IntVar(&cfg.MaxSessions, "max-sessions", cfg.MaxSessions, "Upper bound on concurrent sessions")
	f.DurationVar(&cfg.SessionIdleTimeout, "session-idle-timeout", cfg.SessionIdleTimeout, "Idle session reap timeout, 0 disables")
	f.IntVar(&cfg.MaxClientsPerSess, "max-clients-per-session", cfg.MaxClientsPerSess, "0 = unlimited")
	f.IntVar(&cfg.InputRateLimit, "input-rate-limit", cfg.InputRateLimit, "Bytes/sec per client, 0 = unlimited")
	f.StringVar(&cfg.TLSCertFile, "tls-cert", cfg.TLSCertFile, "TLS certificate file")
	f.StringVar(&cfg.TLSKeyFile, "tls-key", cfg.TLSKeyFile, "TLS key file")
	f.StringVar(&cfg.TLSPEMFile, "tls-pem", cfg.TLSPEMFile, "Combined TLS PEM file")
	f.BoolVar(&cfg.EnableHTTP, "enable-http", cfg.EnableHTTP, "Serve static files from web-root")
	f.StringVar(&cfg.WebRoot, "web-root", cfg.WebRoot, "Static file root when enable-http is set")
	f.StringVar(&cfg.HTTPUser, "http-user", cfg.HTTPUser, "Basic auth username")
	f.StringVar(&cfg.HTTPPassword, "http-password", cfg.HTTPPassword, "Basic auth password (plaintext)")
	f.StringVar(&cfg.HTTPPasswordHash, "http-password-hash", cfg.HTTPPasswordHash, "Basic auth bcrypt password hash")
	f.StringVar(&cfg.HTTPPasswordFile, "http-password-file", cfg.HTTPPasswordFile, "File containing the basic auth password")
	f.StringVar(&cfg.APIKey, "api-key", cfg.APIKey, "API key accepted via query string or Authorization: Bearer")
	f.BoolVar(&cfg.NoRestartShell, "no-restart-shell", cfg.NoRestartShell, "Disable shell auto-restart on exit")
	f.BoolVar(&cfg.EnableSystemStats, "enable-system-stats", cfg.EnableSystemStats, "Serve periodic system stats on /stats")
	f.DurationVar(&cfg.SystemStatsInterval, "system-stats-interval", cfg.SystemStatsInterval, "System stats sampling interval")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn, or error")
	f.BoolVar(&cfg.Dev, "dev", cfg.Dev, "Use human-readable console logging")
}
