package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// maxDownloadBytes caps a downloaded voice note. The Bot API serves files
// up to 20MB.
const maxDownloadBytes = 20 << 20

var _ Client = (*Telegram)(nil)

// Telegram talks to the Bot API.
type Telegram struct {
	api          *tgbotapi.BotAPI
	http         *http.Client
	fileEndpoint string
}

// NewTelegram connects with token and verifies it with getMe. An empty
// endpoint uses the public Bot API; otherwise it is a format string like
// tgbotapi.APIEndpoint.
func NewTelegram(token, endpoint string, debug bool) (*Telegram, error) {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	client := &http.Client{}
	api, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}
	api.Debug = debug

	return &Telegram{
		api:          api,
		http:         client,
		fileEndpoint: strings.Replace(endpoint, "/bot%s/%s", "/file/bot%s/%s", 1),
	}, nil
}

// API exposes the underlying client for long polling.
func (t *Telegram) API() *tgbotapi.BotAPI {
	return t.api
}

// Username returns the bot's @username without the @.
func (t *Telegram) Username() string {
	return t.api.Self.UserName
}

// SendText sends a plain text message. The Bot API client takes no context.
func (t *Telegram) SendText(_ context.Context, chatID int64, text string) error {
	if _, err := t.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// SendVoice uploads an OGG/Opus voice note.
func (t *Telegram) SendVoice(_ context.Context, chatID int64, audio []byte) error {
	voice := tgbotapi.NewVoice(chatID, tgbotapi.FileBytes{Name: "reply.ogg", Bytes: audio})
	if _, err := t.api.Send(voice); err != nil {
		return fmt.Errorf("send voice: %w", err)
	}
	return nil
}

// DownloadFile fetches the content of fileID.
func (t *Telegram) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := t.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	url := fmt.Sprintf(t.fileEndpoint, t.api.Token, file.FilePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}

	resp, err := t.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	return data, nil
}

// SetWebhook registers publicURL for update delivery. Telegram echoes secret
// in the X-Telegram-Bot-Api-Secret-Token header of every delivery.
func (t *Telegram) SetWebhook(publicURL, secret string) error {
	params := tgbotapi.Params{"url": publicURL}
	params.AddNonEmpty("secret_token", secret)

	if _, err := t.api.MakeRequest("setWebhook", params); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	return nil
}

// DeleteWebhook switches the bot back to getUpdates delivery.
func (t *Telegram) DeleteWebhook() error {
	if _, err := t.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}
	return nil
}
