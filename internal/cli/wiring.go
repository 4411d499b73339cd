package cli

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/api/option"

	"github.com/zoheirhassoun/Telegram-bot/internal/config"
	"github.com/zoheirhassoun/Telegram-bot/internal/core"
	"github.com/zoheirhassoun/Telegram-bot/internal/source"
	"github.com/zoheirhassoun/Telegram-bot/internal/speech"
)

// newAuthorizer builds the Sheets authorizer for cfg.
func newAuthorizer(cfg *config.Config, interactive bool, opts ...source.AuthOption) *source.Authorizer {
	return source.NewAuthorizer(source.AuthConfig{
		CredentialsFile: cfg.Data.CredentialsFile,
		TokenFile:       cfg.Data.TokenFile,
		Interactive:     interactive,
		ListenAddr:      cfg.Data.AuthAddr,
		Timeout:         cfg.Data.AuthTimeout,
	}, opts...)
}

// newSource builds the configured data source.
func newSource(cfg *config.Config, opts ...source.AuthOption) (source.Source, error) {
	switch cfg.Data.Source {
	case config.SourceCSV:
		return source.NewCSV(cfg.Data.CSVPath), nil
	case config.SourceSheets:
		auth := newAuthorizer(cfg, cfg.Data.InteractiveAuth, opts...)
		return source.NewSheets(cfg.Data.SheetID, auth), nil
	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.Data.Source)
	}
}

// newSession wires a Session over src.
func newSession(cfg *config.Config, src source.Source, opts ...core.SessionOption) *core.Session {
	opts = append([]core.SessionOption{core.WithFetchTimeout(cfg.Data.FetchTimeout)}, opts...)
	return core.NewSession(src, cfg.Data.Range, opts...)
}

// voice holds the speech clients for the bot. Nil fields mean disabled.
type voice struct {
	transcriber *speech.GoogleTranscriber
	synthesizer *speech.GoogleSynthesizer
}

// newVoice creates speech clients when voice is enabled. A client that
// fails to start is logged and left nil so the bot runs text-only.
func newVoice(ctx context.Context, cfg config.VoiceConfig) *voice {
	v := &voice{}
	if !cfg.Enabled {
		return v
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	t, err := speech.NewGoogleTranscriber(ctx, cfg.Language, opts...)
	if err != nil {
		slog.Warn("speech recognition unavailable, voice messages disabled", "error", err)
		return v
	}
	v.transcriber = t

	if cfg.Replies {
		s, err := speech.NewGoogleSynthesizer(ctx, cfg.Language, opts...)
		if err != nil {
			slog.Warn("speech synthesis unavailable, voice replies disabled", "error", err)
		} else {
			v.synthesizer = s
		}
	}

	slog.Info("voice enabled", "language", cfg.Language, "replies", v.synthesizer != nil)
	return v
}

func (v *voice) Close() {
	if v.transcriber != nil {
		if err := v.transcriber.Close(); err != nil {
			slog.Warn("close speech client", "error", err)
		}
	}
	if v.synthesizer != nil {
		if err := v.synthesizer.Close(); err != nil {
			slog.Warn("close text-to-speech client", "error", err)
		}
	}
}
