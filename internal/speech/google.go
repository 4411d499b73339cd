package speech

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	speechapi "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	ttsapi "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"
)

// Telegram voice notes are Opus in an OGG container at 48 kHz.
const voiceSampleRate = 48000

// maxSynthesisBytes keeps requests under the Text-to-Speech input limit.
const maxSynthesisBytes = 4800

// DefaultLanguage is used when no language code is configured.
const DefaultLanguage = "en-US"

type recognizer interface {
	Recognize(ctx context.Context, req *speechpb.RecognizeRequest, opts ...gax.CallOption) (*speechpb.RecognizeResponse, error)
	Close() error
}

type synthesizer interface {
	SynthesizeSpeech(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest, opts ...gax.CallOption) (*texttospeechpb.SynthesizeSpeechResponse, error)
	Close() error
}

var (
	_ Transcriber = (*GoogleTranscriber)(nil)
	_ Synthesizer = (*GoogleSynthesizer)(nil)
)

// GoogleTranscriber uses Cloud Speech-to-Text.
type GoogleTranscriber struct {
	client   recognizer
	language string
}

// NewGoogleTranscriber dials Speech-to-Text. Credentials come from opts or
// application default credentials.
func NewGoogleTranscriber(ctx context.Context, language string, opts ...option.ClientOption) (*GoogleTranscriber, error) {
	client, err := speechapi.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create speech client: %w", err)
	}
	return newGoogleTranscriber(client, language), nil
}

func newGoogleTranscriber(client recognizer, language string) *GoogleTranscriber {
	if language == "" {
		language = DefaultLanguage
	}
	return &GoogleTranscriber{client: client, language: language}
}

func (g *GoogleTranscriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", ErrNoSpeech
	}

	resp, err := g.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        speechpb.RecognitionConfig_OGG_OPUS,
			SampleRateHertz: voiceSampleRate,
			LanguageCode:    g.language,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTranscription, err)
	}

	var parts []string
	for _, result := range resp.GetResults() {
		alts := result.GetAlternatives()
		if len(alts) == 0 {
			continue
		}
		if text := strings.TrimSpace(alts[0].GetTranscript()); text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return "", ErrNoSpeech
	}
	return strings.Join(parts, " "), nil
}

func (g *GoogleTranscriber) Close() error {
	return g.client.Close()
}

// GoogleSynthesizer uses Cloud Text-to-Speech.
type GoogleSynthesizer struct {
	client   synthesizer
	language string
}

// NewGoogleSynthesizer dials Text-to-Speech.
func NewGoogleSynthesizer(ctx context.Context, language string, opts ...option.ClientOption) (*GoogleSynthesizer, error) {
	client, err := ttsapi.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create text-to-speech client: %w", err)
	}
	return newGoogleSynthesizer(client, language), nil
}

func newGoogleSynthesizer(client synthesizer, language string) *GoogleSynthesizer {
	if language == "" {
		language = DefaultLanguage
	}
	return &GoogleSynthesizer{client: client, language: language}
}

func (g *GoogleSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	resp, err := g.client.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: truncate(text, maxSynthesisBytes)},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: g.language,
			SsmlGender:   texttospeechpb.SsmlVoiceGender_NEUTRAL,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_OGG_OPUS,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("synthesize speech: %w", err)
	}
	return resp.GetAudioContent(), nil
}

func (g *GoogleSynthesizer) Close() error {
	return g.client.Close()
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
