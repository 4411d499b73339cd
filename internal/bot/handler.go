package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zoheirhassoun/Telegram-bot/internal/core"
	"github.com/zoheirhassoun/Telegram-bot/internal/logging"
	"github.com/zoheirhassoun/Telegram-bot/internal/speech"
)

// Answerer produces replies. *core.Session implements it.
type Answerer interface {
	Answer(ctx context.Context, query string) string
	Summary(ctx context.Context) string
	Refresh(ctx context.Context) string
}

// Client is the chat side of the bot. *Telegram implements it.
type Client interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendVoice(ctx context.Context, chatID int64, audio []byte) error
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
}

// DefaultMaxVoiceDuration matches the synchronous recognition limit.
const DefaultMaxVoiceDuration = time.Minute

// Handler answers one Message at a time.
type Handler struct {
	answers     Answerer
	client      Client
	transcriber speech.Transcriber
	synthesizer speech.Synthesizer
	maxVoice    time.Duration
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithTranscriber enables voice queries.
func WithTranscriber(t speech.Transcriber) HandlerOption {
	return func(h *Handler) {
		h.transcriber = t
	}
}

// WithSynthesizer sends answers to voice queries back as voice notes too.
func WithSynthesizer(s speech.Synthesizer) HandlerOption {
	return func(h *Handler) {
		h.synthesizer = s
	}
}

// WithMaxVoiceDuration rejects longer voice notes without downloading them.
func WithMaxVoiceDuration(d time.Duration) HandlerOption {
	return func(h *Handler) {
		h.maxVoice = d
	}
}

// NewHandler creates a Handler.
func NewHandler(answers Answerer, client Client, opts ...HandlerOption) *Handler {
	h := &Handler{
		answers:  answers,
		client:   client,
		maxVoice: DefaultMaxVoiceDuration,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle replies to m. The returned error is a failed send; query failures
// are already part of the reply.
func (h *Handler) Handle(ctx context.Context, m Message) error {
	ctx = core.ContextWithChatID(ctx, m.ChatID)

	if m.IsVoice() {
		return h.handleVoice(ctx, m)
	}

	switch m.Command {
	case "start":
		return h.send(ctx, m.ChatID, h.startText())
	case "help":
		return h.send(ctx, m.ChatID, h.helpText())
	case "summary":
		return h.send(ctx, m.ChatID, h.answers.Summary(ctx))
	case "search":
		if m.Args == "" {
			return h.send(ctx, m.ChatID, msgSearchUsage)
		}
		return h.send(ctx, m.ChatID, h.answers.Answer(ctx, m.Args))
	case "refresh":
		return h.send(ctx, m.ChatID, h.answers.Refresh(ctx))
	case "":
		query := strings.TrimSpace(m.Text)
		if query == "" {
			return nil
		}
		return h.send(ctx, m.ChatID, h.answers.Answer(ctx, query))
	default:
		return h.send(ctx, m.ChatID, msgUnknownCommand)
	}
}

func (h *Handler) handleVoice(ctx context.Context, m Message) error {
	logger := logging.FromContext(ctx)

	if h.transcriber == nil {
		return h.send(ctx, m.ChatID, msgVoiceDisabled)
	}
	if h.maxVoice > 0 && m.VoiceDuration > h.maxVoice {
		return h.send(ctx, m.ChatID, fmt.Sprintf(msgVoiceTooLong, int(h.maxVoice.Seconds())))
	}

	audio, err := h.client.DownloadFile(ctx, m.VoiceFileID)
	if err != nil {
		logger.Error("voice download failed", "error", err)
		return h.send(ctx, m.ChatID, speech.MsgVoiceFailed)
	}

	text, err := h.transcriber.Transcribe(ctx, audio)
	if err != nil {
		msg := core.MapError(err)
		logger.Warn("voice transcription failed", "code", msg.Code, "error", err)
		return h.send(ctx, m.ChatID, speech.Apology(err))
	}
	logger.Info("voice transcribed", "chars", len(text))

	if err := h.send(ctx, m.ChatID, msgHeardPrefix+text); err != nil {
		return err
	}

	reply := h.answers.Answer(ctx, text)
	if err := h.send(ctx, m.ChatID, reply); err != nil {
		return err
	}

	h.speak(ctx, m.ChatID, reply)
	return nil
}

// speak sends reply as a voice note. Failures are logged only.
func (h *Handler) speak(ctx context.Context, chatID int64, reply string) {
	if h.synthesizer == nil {
		return
	}
	logger := logging.FromContext(ctx)

	audio, err := h.synthesizer.Synthesize(ctx, reply)
	if err != nil {
		logger.Warn("voice reply synthesis failed", "error", err)
		return
	}
	if err := h.client.SendVoice(ctx, chatID, audio); err != nil {
		logger.Warn("voice reply send failed", "error", err)
	}
}

// send delivers text, split to fit Telegram's message limit.
func (h *Handler) send(ctx context.Context, chatID int64, text string) error {
	for _, chunk := range splitMessage(text, MaxMessageLength) {
		if err := h.client.SendText(ctx, chatID, chunk); err != nil {
			return fmt.Errorf("send reply: %w", err)
		}
	}
	return nil
}

func (h *Handler) startText() string {
	if h.transcriber != nil {
		return voiceStartText
	}
	return startText
}

func (h *Handler) helpText() string {
	if h.transcriber != nil {
		return voiceHelpText
	}
	return helpText
}
