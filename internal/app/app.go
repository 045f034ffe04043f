// Package app wires configuration, logging, transport, storage, and the
// scan cycle into one runnable unit.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"coursewatch/internal/catalog"
	"coursewatch/internal/config"
	"coursewatch/internal/ledger"
	"coursewatch/internal/notify"
	"coursewatch/internal/services/keepalive"
	"coursewatch/internal/services/trigger"
	kit "coursewatch/internal/transport"
	"coursewatch/internal/transport/telegram/adapter"
	"coursewatch/internal/watch"
	logx "coursewatch/pkg/logx"
)

type App struct {
	cfgMgr *config.Manager
	logSvc *logx.Service
	log    logx.Logger

	adapter *adapter.Adapter
	store   ledger.Store
	watcher *watch.Watcher
	trig    *trigger.Service
	keep    *keepalive.Service

	admins  map[int64]struct{}
	updates chan kit.Update

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(cfgPath string) (*App, error) {
	mgr := config.NewManager(cfgPath)
	cfg, err := mgr.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	pollTimeout, err := config.ParseDurationOrDefault("telegram.poll_timeout", cfg.Telegram.PollTimeout, 10*time.Second)
	if err != nil {
		return nil, err
	}
	retryBackoff, err := config.ParseDurationOrDefault("catalog.retry_backoff", cfg.Catalog.RetryBackoff, 5*time.Second)
	if err != nil {
		return nil, err
	}
	reqTimeout, err := config.ParseDurationOrDefault("catalog.request_timeout", cfg.Catalog.RequestTimeout, 10*time.Second)
	if err != nil {
		return nil, err
	}
	sendDelay, err := config.ParseDurationOrDefault("watcher.send_delay", cfg.Watcher.SendDelay, 2*time.Second)
	if err != nil {
		return nil, err
	}
	busyTimeout, err := config.ParseDurationField("storage.busy_timeout", cfg.Storage.BusyTimeout)
	if err != nil {
		return nil, err
	}

	// The adapter is the log service's admin mirror, so it boots on a
	// plain console logger first.
	boot := logx.NewConsole(cfg.Logging.Level)
	tg, err := adapter.New(adapter.Config{Token: cfg.Telegram.Token, PollTimeout: pollTimeout}, boot)
	if err != nil {
		return nil, fmt.Errorf("telegram adapter: %w", err)
	}

	logSvc, log := logx.New(loggingConfig(cfg), tg)
	logSvc.SetAdminTarget(cfg.Telegram.AdminLogChatID)
	mgr.SetLogger(log.With(logx.String("comp", "config")))

	store, err := ledger.Open(ledger.Config{
		Driver:      cfg.Storage.Driver,
		Path:        cfg.Storage.Path,
		BusyTimeout: busyTimeout,
	}, log.With(logx.String("comp", "ledger")))
	if err != nil {
		_ = logSvc.Close()
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	source := catalog.New(catalog.Config{
		ProxyBase:      cfg.Catalog.ProxyBase,
		APIHost:        cfg.Catalog.APIHost,
		RetryCount:     cfg.Catalog.RetryCount,
		RetryBackoff:   retryBackoff,
		RequestTimeout: reqTimeout,
	}, log.With(logx.String("comp", "catalog")))

	sink := notify.New(tg, cfg.Telegram.ChannelID, log.With(logx.String("comp", "notify")))

	watcher := watch.New(watch.Config{
		BatchID:    cfg.Catalog.BatchID,
		PlayerBase: cfg.Catalog.PlayerBase,
		SendDelay:  sendDelay,
	}, source, store, sink, log.With(logx.String("comp", "watch")))

	a := &App{
		cfgMgr:  mgr,
		logSvc:  logSvc,
		log:     log,
		adapter: tg,
		store:   store,
		watcher: watcher,
		keep: keepalive.New(keepalive.Config{
			Enabled: cfg.Keepalive.Enabled,
			Addr:    cfg.Keepalive.Addr,
		}, log.With(logx.String("comp", "keepalive"))),
		admins:  make(map[int64]struct{}, len(cfg.Telegram.AdminUserIDs)),
		updates: make(chan kit.Update, 64),
	}
	for _, id := range cfg.Telegram.AdminUserIDs {
		a.admins[id] = struct{}{}
	}

	a.trig = trigger.New(trigger.Config{
		Schedule: cfg.Watcher.Schedule,
		Timezone: cfg.Watcher.Timezone,
	}, a.scheduledRun, log.With(logx.String("comp", "trigger")))

	return a, nil
}

func loggingConfig(cfg *config.Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
		Admin: logx.AdminConfig{
			Enabled:    cfg.Logging.Admin.Enabled,
			MinLevel:   cfg.Logging.Admin.MinLevel,
			RatePerSec: cfg.Logging.Admin.RatePerSec,
		},
	}
}

func (a *App) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if err := a.adapter.Start(runCtx, a.updates); err != nil {
		cancel()
		return err
	}
	if err := a.trig.Start(runCtx); err != nil {
		cancel()
		return err
	}
	if err := a.keep.Start(runCtx); err != nil {
		// Non-fatal: the bot works without the liveness endpoint.
		a.log.Warn("keepalive start failed", logx.Err(err))
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.routeUpdates(runCtx)
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.cfgMgr.Watch(runCtx); err != nil {
			a.log.Warn("config watch unavailable", logx.Err(err))
		}
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.applyConfigUpdates(runCtx)
	}()

	a.log.Info("coursewatch started")
	return nil
}

func (a *App) Stop(ctx context.Context) error {
	if a.cancel != nil {
		a.cancel()
	}
	a.trig.Stop(ctx)
	a.keep.Stop(ctx)
	_ = a.adapter.Stop(ctx)

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}

	err := a.store.Close()
	_ = a.logSvc.Close()
	return err
}

// scheduledRun is the cron entry point. Overlap with a manual run is
// rejected by the watcher itself.
func (a *App) scheduledRun(ctx context.Context) {
	if _, err := a.watcher.Run(ctx); err != nil && !errors.Is(err, watch.ErrCycleRunning) {
		// Run already logged the detail; this line is for the admin mirror.
		a.log.Error("scheduled cycle failed", logx.Err(err))
	}
}

func (a *App) routeUpdates(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case up := <-a.updates:
			if up.Message == nil {
				continue
			}
			a.handleMessage(ctx, up.Message)
		}
	}
}

func (a *App) handleMessage(ctx context.Context, m *kit.Message) {
	cmd := strings.TrimSpace(m.Text)
	if i := strings.IndexByte(cmd, '@'); i > 0 && strings.HasPrefix(cmd, "/") {
		cmd = cmd[:i]
	}
	if cmd != "/force_update" {
		return
	}
	if m.IsGroup {
		return
	}
	if _, ok := a.admins[m.FromID]; !ok {
		a.log.Warn("unauthorized /force_update",
			logx.Int64("from", m.FromID),
			logx.String("username", m.FromUsername))
		return
	}

	reply := kit.ChatTarget{ChatID: m.ChatID}
	_, _ = a.adapter.SendText(ctx, reply, "🔄 checking for updates...", nil)

	rep, err := a.watcher.Run(ctx)
	switch {
	case errors.Is(err, watch.ErrCycleRunning):
		_, _ = a.adapter.SendText(ctx, reply, "⏳ a check is already running.", nil)
	case err != nil:
		_, _ = a.adapter.SendText(ctx, reply, "❌ check failed: "+err.Error(), nil)
	default:
		_, _ = a.adapter.SendText(ctx, reply, "✅ Check complete. "+rep.Summary(), nil)
	}
}

// applyConfigUpdates re-applies the hot-reloadable config subset
// (logging sinks/levels and the admin mirror target).
func (a *App) applyConfigUpdates(ctx context.Context) {
	sub := a.cfgMgr.Subscribe(1)
	defer a.cfgMgr.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case cfg, ok := <-sub:
			if !ok || cfg == nil {
				return
			}
			a.logSvc.Apply(loggingConfig(cfg))
			a.logSvc.SetAdminTarget(cfg.Telegram.AdminLogChatID)
			a.log.Info("logging config re-applied")
		}
	}
}
