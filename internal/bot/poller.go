package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/zoheirhassoun/Telegram-bot/internal/logging"
)

// UpdateSource delivers updates by long polling. *tgbotapi.BotAPI implements it.
type UpdateSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Enqueuer accepts messages for handling. *Dispatcher implements it.
type Enqueuer interface {
	Enqueue(ctx context.Context, m Message) error
}

// Poller pulls updates with getUpdates and enqueues their messages.
type Poller struct {
	src     UpdateSource
	queue   Enqueuer
	timeout int
}

// NewPoller creates a Poller with a long-poll timeout in seconds.
func NewPoller(src UpdateSource, queue Enqueuer, timeout int) *Poller {
	return &Poller{src: src, queue: queue, timeout: timeout}
}

// Run polls until ctx is cancelled or the update channel closes.
func (p *Poller) Run(ctx context.Context) error {
	logger := logging.FromContext(ctx)

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = p.timeout

	updates := p.src.GetUpdatesChan(cfg)
	defer p.src.StopReceivingUpdates()

	logger.Info("polling for updates", "timeout_s", p.timeout)

	for {
		select {
		case <-ctx.Done():
			logger.Info("polling stopped")
			return nil

		case u, ok := <-updates:
			if !ok {
				return nil
			}
			m, ok := FromUpdate(u)
			if !ok {
				continue
			}
			if err := p.queue.Enqueue(ctx, m); err != nil {
				logger.Warn("update dropped", "update_id", m.UpdateID, "chat_id", m.ChatID, "error", err)
			}
		}
	}
}
