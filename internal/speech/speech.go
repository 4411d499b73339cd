// Package speech turns voice notes into text and replies into voice notes.
//
// Both capabilities are optional. Callers hold a nil Transcriber or
// Synthesizer when voice support is disabled.
package speech

import (
	"context"
	"errors"
)

// Error kinds returned by a Transcriber. Match them with errors.Is.
var (
	ErrTranscription = errors.New("transcription failed")
	ErrNoSpeech      = errors.New("no speech recognized")
)

// Fixed replies for failed voice input.
const (
	MsgNotUnderstood = "Sorry, I couldn't understand the audio."
	MsgVoiceFailed   = "Sorry, there was an error processing your voice message."
)

// Transcriber converts an OGG/Opus voice note to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// Synthesizer converts text to an OGG/Opus voice note.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Apology returns the reply sent to the user when voice input fails.
func Apology(err error) string {
	if errors.Is(err, ErrNoSpeech) {
		return MsgNotUnderstood
	}
	return MsgVoiceFailed
}
