// Package bot connects Telegram chats to a query session.
//
// Updates arrive from a Poller or the webhook server, go through a
// Dispatcher one at a time, and are answered by a Handler.
package bot

import (
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Message is the part of an update the Handler acts on.
type Message struct {
	UpdateID      int
	ChatID        int64
	Text          string
	Command       string // without the leading slash or @botname
	Args          string
	VoiceFileID   string
	VoiceDuration time.Duration
}

// IsVoice reports whether the message carries a voice note.
func (m Message) IsVoice() bool {
	return m.VoiceFileID != ""
}

// FromUpdate extracts the Message of u. It returns false for updates
// without a message, such as edits or callback queries.
func FromUpdate(u tgbotapi.Update) (Message, bool) {
	msg := u.Message
	if msg == nil || msg.Chat == nil {
		return Message{}, false
	}

	m := Message{
		UpdateID: u.UpdateID,
		ChatID:   msg.Chat.ID,
		Text:     msg.Text,
	}

	if msg.Voice != nil {
		m.VoiceFileID = msg.Voice.FileID
		m.VoiceDuration = time.Duration(msg.Voice.Duration) * time.Second
	}

	if msg.IsCommand() {
		m.Command = strings.ToLower(msg.Command())
		m.Args = strings.TrimSpace(msg.CommandArguments())
	}

	return m, true
}
