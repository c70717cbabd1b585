package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/parterm-dev/parterm/broker"
	"github.com/parterm-dev/parterm/config"
	"github.com/parterm-dev/parterm/log"
	"github.com/parterm-dev/parterm/transport"
)

const reapInterval = 10 * time.Second

// serve wires the resolved configuration into a broker.Registry and a
// transport.Server, runs until interrupted or the listener dies, and
// returns the process exit code alongside any error worth printing.
func serve(cfg config.Config) (int, error) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	presets := make(map[string]broker.Preset, len(cfg.Presets))
	for name, p := range cfg.Presets {
		presets[name] = broker.Preset{Name: p.Name, Command: p.Command, Args: p.Args}
	}

	registry := broker.New(broker.Config{
		MaxSessions:        cfg.MaxSessions,
		SessionIdleTimeout: cfg.SessionIdleTimeout,
		MaxClientsPerSess:  cfg.MaxClientsPerSess,
		DefaultCommand:     cfg.Shell,
		DefaultArgs:        cfg.ShellArgs,
		DefaultCols:        cfg.Cols,
		DefaultRows:        cfg.Rows,
		RestartShell:       !cfg.NoRestartShell,
		InputRateLimit:     cfg.InputRateLimit,
		InjectCommand:      cfg.InjectCommand,
		Theme:              cfg.Theme,
		Presets:            presets,
	}, log.Logger)

	go registry.Reap(ctx, reapInterval)

	auth, err := buildAuth(cfg)
	if err != nil {
		return 1, err
	}

	srv := transport.New(transport.Config{
		Host:                cfg.Host,
		Port:                cfg.Port,
		TLSCertFile:         cfg.TLSCertFile,
		TLSKeyFile:          cfg.TLSKeyFile,
		TLSPEMFile:          cfg.TLSPEMFile,
		EnableHTTP:          cfg.EnableHTTP,
		WebRoot:             cfg.WebRoot,
		Auth:                auth,
		EnableSystemStats:   cfg.EnableSystemStats,
		SystemStatsInterval: cfg.SystemStatsInterval,
		InputRateLimitBytes: cfg.InputRateLimit,
	}, registry, log.Logger)

	log.Logger.Info().Str("host", cfg.Host).Int("port", cfg.Port).Msg("partermd listening")

	err = srv.ListenAndServe(ctx)
	if err == nil || errors.Is(err, http.ErrServerClosed) || errors.Is(err, context.Canceled) {
		return 0, nil
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return 2, err
	}
	return 2, err
}

func buildAuth(cfg config.Config) (transport.Auth, error) {
	if cfg.HTTPUser == "" {
		return transport.Auth{APIKey: cfg.APIKey}, nil
	}
	password, hash, err := cfg.ResolvedHTTPPassword()
	if err != nil {
		return transport.Auth{}, err
	}
	return transport.Auth{
		User:         cfg.HTTPUser,
		Password:     password,
		PasswordHash: []byte(hash),
		APIKey:       cfg.APIKey,
	}, nil
}
