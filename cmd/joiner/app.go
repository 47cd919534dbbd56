package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/larriantoniy/tg_group_joiner/internal/adapters/redisstore"
	"github.com/larriantoniy/tg_group_joiner/internal/adapters/sink"
	"github.com/larriantoniy/tg_group_joiner/internal/adapters/tg"
	"github.com/larriantoniy/tg_group_joiner/internal/config"
	"github.com/larriantoniy/tg_group_joiner/internal/domain"
	"github.com/larriantoniy/tg_group_joiner/internal/ports"
	"github.com/larriantoniy/tg_group_joiner/internal/useCases"
)

// app собирает зависимости одной команды.
type app struct {
	cfg     *config.AppConfig
	log     *slog.Logger
	creds   ports.CredentialStore
	history *sink.SQLite
	closers []func() error
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(config.ConfigPath(configPath))
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: setupLogger(cfg.Env)}

	switch cfg.Credentials.Backend {
	case config.BackendRedis:
		c := cfg.Credentials
		store, err := redisstore.Dial(ctx, c.RedisAddr, c.RedisPassword, c.RedisDB, c.RedisPrefix)
		if err != nil {
			return nil, err
		}
		a.creds = store
		a.closers = append(a.closers, store.Close)
	default:
		a.creds = config.NewJSONCredentialStore(cfg.BaseDir)
	}

	return a, nil
}

// openHistory лениво открывает SQLite: accounts/auth она не нужна.
func (a *app) openHistory() (*sink.SQLite, error) {
	if a.history != nil {
		return a.history, nil
	}
	if dir := filepath.Dir(a.cfg.DatabasePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	h, err := sink.NewSQLite(a.cfg.DatabasePath, a.log)
	if err != nil {
		return nil, err
	}
	a.history = h
	a.closers = append(a.closers, h.Close)
	return h, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("close", "error", err)
		}
	}
}

func (a *app) resultSink() (ports.ResultSink, error) {
	history, err := a.openHistory()
	if err != nil {
		return nil, err
	}
	sinks := sink.Multi{
		sink.NewLog(a.log),
		history,
		sink.NewReport(a.cfg.ResultsDir, a.log),
	}
	if a.cfg.SaveFailedLinks {
		sinks = append(sinks, sink.NewFailedLinks(a.cfg.ResultsDir, a.log))
	}
	return sinks, nil
}

func (a *app) sessionFactory() useCases.SessionFactory {
	return func(creds *domain.Credentials, log *slog.Logger) (ports.Session, error) {
		full := withDefaultAPI(creds, a.cfg)
		if err := full.ValidateAPI(); err != nil {
			return nil, err
		}
		c, err := tg.NewClient(full, a.cfg.BaseDir, log, tg.ClientModeRuntime)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

// withDefaultAPI подставляет api_id/api_hash из конфига, если у аккаунта своих нет.
func withDefaultAPI(creds *domain.Credentials, cfg *config.AppConfig) *domain.Credentials {
	c := *creds
	if c.APIID == 0 {
		c.APIID = cfg.ApiID
	}
	if c.APIHash == "" {
		c.APIHash = cfg.ApiHash
	}
	return &c
}

// pacingPolicy: конфиг, поверх него явно заданные флаги.
func pacingPolicy(cmd *cobra.Command, cfg *config.AppConfig) (domain.PacingPolicy, int) {
	policy := cfg.Policy()
	retries := cfg.Pacing.MaxRetryAttempts

	if cmd.Flags().Changed("interval") {
		policy.BaseIntervalSeconds = interval
	}
	if noRandomize {
		policy.JitterEnabled = false
	}
	if cmd.Flags().Changed("retries") {
		retries = maxRetries
	}
	return policy, retries
}

// pickSession: явное имя или последний использованный аккаунт.
func pickSession(ctx context.Context, store ports.CredentialStore, name string) (string, error) {
	if name != "" {
		return name, nil
	}
	all, err := store.List(ctx)
	if err != nil {
		return "", err
	}
	if len(all) == 0 {
		return "", fmt.Errorf("%w: no saved accounts, run `joiner auth --session <name>` first", useCases.ErrNoSession)
	}
	return all[0].SessionName, nil
}
