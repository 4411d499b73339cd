package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/zoheirhassoun/Telegram-bot/internal/audit"
	"github.com/zoheirhassoun/Telegram-bot/internal/bot"
	"github.com/zoheirhassoun/Telegram-bot/internal/config"
	"github.com/zoheirhassoun/Telegram-bot/internal/core"
	"github.com/zoheirhassoun/Telegram-bot/internal/logging"
	"github.com/zoheirhassoun/Telegram-bot/internal/web"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot",
		Long: `Run the bot until interrupted.

Updates arrive by long polling (TELEGRAM_MODE=polling) or on the webhook
server (TELEGRAM_MODE=webhook). On SIGINT or SIGTERM the bot stops taking
updates and finishes the queued ones within SHUTDOWN_TIMEOUT.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
			slog.Info("configuration loaded", "config", cfg.String())

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	src, err := newSource(cfg)
	if err != nil {
		return err
	}

	var sessionOpts []core.SessionOption
	var store *audit.Store
	if cfg.Audit.Enabled() {
		pool, err := audit.Open(ctx, cfg.Audit)
		if err != nil {
			return fmt.Errorf("query log: %w", err)
		}
		defer pool.Close()

		store = audit.NewStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("query log: %w", err)
		}
		sessionOpts = append(sessionOpts, core.WithRecorder(store))
	}
	session := newSession(cfg, src, sessionOpts...)

	tg, err := bot.NewTelegram(cfg.Telegram.Token, cfg.Telegram.APIEndpoint, cfg.Telegram.Debug)
	if err != nil {
		return fmt.Errorf("connect to telegram: %w", err)
	}
	slog.Info("authorized on telegram", "username", tg.Username())

	v := newVoice(ctx, cfg.Voice)
	defer v.Close()

	handlerOpts := []bot.HandlerOption{bot.WithMaxVoiceDuration(cfg.Voice.MaxDuration)}
	if v.transcriber != nil {
		handlerOpts = append(handlerOpts, bot.WithTranscriber(v.transcriber))
	}
	if v.synthesizer != nil {
		handlerOpts = append(handlerOpts, bot.WithSynthesizer(v.synthesizer))
	}

	handler := bot.NewHandler(session, tg, handlerOpts...)
	dispatcher := bot.NewDispatcher(handler, cfg.Telegram.QueueSize, cfg.Telegram.EnqueueWait)

	// The dispatcher outlives intake so queued updates can drain.
	dispatchCtx, stopDispatch := context.WithCancel(context.WithoutCancel(ctx))
	defer stopDispatch()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return dispatcher.Run(dispatchCtx)
	})

	g.Go(func() error {
		defer stopDispatch()

		var err error
		if cfg.Telegram.Mode == config.ModeWebhook {
			err = runWebhook(gctx, cfg, tg, dispatcher)
		} else {
			err = runPolling(gctx, cfg, tg, dispatcher)
		}

		drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Telegram.ShutdownTimeout)
		defer cancel()

		slog.Info("shutting down...", "pending", dispatcher.Pending())
		if derr := dispatcher.WaitForDrain(drainCtx); derr != nil {
			slog.Warn("updates did not complete in time", "pending", dispatcher.Pending(), "error", derr)
		}
		return err
	})

	if store != nil {
		g.Go(func() error {
			audit.StartRetention(gctx, store, audit.RetentionConfig{
				Days:          cfg.Audit.RetentionDays,
				CheckInterval: cfg.Audit.CheckInterval,
			})
			return nil
		})
	}

	err = g.Wait()
	slog.Info("bot stopped")
	return err
}

func runPolling(ctx context.Context, cfg *config.Config, tg *bot.Telegram, queue bot.Enqueuer) error {
	// getUpdates is refused while a webhook is registered.
	if err := tg.DeleteWebhook(); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}
	return bot.NewPoller(tg.API(), queue, cfg.Telegram.PollTimeout).Run(ctx)
}

func runWebhook(ctx context.Context, cfg *config.Config, tg *bot.Telegram, queue web.Queue) error {
	if cfg.Webhook.PublicURL != "" {
		if err := tg.SetWebhook(cfg.Webhook.PublicURL, cfg.Webhook.SecretToken); err != nil {
			return fmt.Errorf("set webhook: %w", err)
		}
		slog.Info("webhook registered", "url", cfg.Webhook.PublicURL)
	}

	srv := web.NewServer(cfg.Webhook, queue)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Telegram.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	return <-errCh
}
