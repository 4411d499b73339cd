package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoheirhassoun/Telegram-bot/internal/core"
	"github.com/zoheirhassoun/Telegram-bot/internal/speech"
)

type fakeAnswerer struct {
	queries []string
	chatIDs []int64
	calls   []string
}

func (f *fakeAnswerer) Answer(ctx context.Context, q string) string {
	f.calls = append(f.calls, "answer")
	f.queries = append(f.queries, q)
	f.chatIDs = append(f.chatIDs, core.ChatIDFromContext(ctx))
	return "answer for " + q
}

func (f *fakeAnswerer) Summary(context.Context) string {
	f.calls = append(f.calls, "summary")
	return "summary"
}

func (f *fakeAnswerer) Refresh(context.Context) string {
	f.calls = append(f.calls, "refresh")
	return "refreshed"
}

type fakeClient struct {
	mu       sync.Mutex
	texts    []string
	voices   [][]byte
	audio    []byte
	dlErr    error
	sendErr  error
	voiceErr error
}

func (f *fakeClient) SendText(_ context.Context, _ int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.texts = append(f.texts, text)
	return nil
}

func (f *fakeClient) SendVoice(_ context.Context, _ int64, audio []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.voiceErr != nil {
		return f.voiceErr
	}
	f.voices = append(f.voices, audio)
	return nil
}

func (f *fakeClient) DownloadFile(context.Context, string) ([]byte, error) {
	return f.audio, f.dlErr
}

func (f *fakeClient) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.texts...)
}

type fakeTranscriber struct {
	text string
	err  error
}

func (f fakeTranscriber) Transcribe(context.Context, []byte) (string, error) {
	return f.text, f.err
}

type fakeSynthesizer struct {
	err error
}

func (f fakeSynthesizer) Synthesize(_ context.Context, text string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("ogg:" + text), nil
}

func TestHandler_Commands(t *testing.T) {
	tests := []struct {
		name      string
		msg       Message
		wantReply string
		wantCalls []string
	}{
		{"start", Message{Command: "start"}, startText, nil},
		{"help", Message{Command: "help"}, helpText, nil},
		{"summary", Message{Command: "summary"}, "summary", []string{"summary"}},
		{"search", Message{Command: "search", Args: "widgets"}, "answer for widgets", []string{"answer"}},
		{"search without query", Message{Command: "search"}, msgSearchUsage, nil},
		{"refresh", Message{Command: "refresh"}, "refreshed", []string{"refresh"}},
		{"free text", Message{Text: "  ann  "}, "answer for ann", []string{"answer"}},
		{"unknown command", Message{Command: "frobnicate"}, msgUnknownCommand, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answers := &fakeAnswerer{}
			client := &fakeClient{}
			h := NewHandler(answers, client)

			require.NoError(t, h.Handle(context.Background(), tt.msg))

			assert.Equal(t, []string{tt.wantReply}, client.sent())
			assert.Equal(t, tt.wantCalls, answers.calls)
		})
	}
}

func TestHandler_BlankTextIgnored(t *testing.T) {
	answers := &fakeAnswerer{}
	client := &fakeClient{}

	require.NoError(t, NewHandler(answers, client).Handle(context.Background(), Message{Text: "   "}))
	assert.Empty(t, client.sent())
	assert.Empty(t, answers.calls)
}

func TestHandler_TagsChatID(t *testing.T) {
	answers := &fakeAnswerer{}
	h := NewHandler(answers, &fakeClient{})

	require.NoError(t, h.Handle(context.Background(), Message{ChatID: 99, Text: "ann"}))
	assert.Equal(t, []int64{99}, answers.chatIDs)
}

func TestHandler_VoiceHelpText(t *testing.T) {
	client := &fakeClient{}
	h := NewHandler(&fakeAnswerer{}, client, WithTranscriber(fakeTranscriber{}))

	require.NoError(t, h.Handle(context.Background(), Message{Command: "start"}))
	require.NoError(t, h.Handle(context.Background(), Message{Command: "help"}))
	assert.Equal(t, []string{voiceStartText, voiceHelpText}, client.sent())
}

func TestHandler_SplitsLongReplies(t *testing.T) {
	line := strings.Repeat("x", 99) + "\n"
	long := strings.Repeat(line, 100) // 10,000 characters

	client := &fakeClient{}
	h := NewHandler(staticAnswer(long), client)

	require.NoError(t, h.Handle(context.Background(), Message{Text: "q"}))

	sent := client.sent()
	require.Len(t, sent, 3)
	assert.Equal(t, long, strings.Join(sent, ""))
	for _, chunk := range sent {
		assert.LessOrEqual(t, len([]rune(chunk)), MaxMessageLength)
	}
}

func TestHandler_SendError(t *testing.T) {
	client := &fakeClient{sendErr: errors.New("bot was blocked by the user")}
	err := NewHandler(&fakeAnswerer{}, client).Handle(context.Background(), Message{Text: "ann"})
	assert.ErrorContains(t, err, "blocked")
}

func TestHandler_Voice(t *testing.T) {
	answers := &fakeAnswerer{}
	client := &fakeClient{audio: []byte("opus")}
	h := NewHandler(answers, client,
		WithTranscriber(fakeTranscriber{text: "find ann"}),
		WithSynthesizer(fakeSynthesizer{}),
	)

	require.NoError(t, h.Handle(context.Background(), Message{ChatID: 1, VoiceFileID: "file-1", VoiceDuration: 3 * time.Second}))

	assert.Equal(t, []string{"🎤 I heard: find ann", "answer for find ann"}, client.sent())
	assert.Equal(t, []string{"find ann"}, answers.queries)
	assert.Equal(t, [][]byte{[]byte("ogg:answer for find ann")}, client.voices)
}

func TestHandler_VoiceFailures(t *testing.T) {
	tests := []struct {
		name        string
		client      *fakeClient
		transcriber speech.Transcriber
		duration    time.Duration
		want        string
	}{
		{
			name:   "voice disabled",
			client: &fakeClient{},
			want:   msgVoiceDisabled,
		},
		{
			name:        "too long",
			client:      &fakeClient{},
			transcriber: fakeTranscriber{text: "x"},
			duration:    2 * time.Minute,
			want:        "Sorry, that voice message is too long. Please keep it under 60 seconds.",
		},
		{
			name:        "download fails",
			client:      &fakeClient{dlErr: errors.New("404")},
			transcriber: fakeTranscriber{text: "x"},
			want:        speech.MsgVoiceFailed,
		},
		{
			name:        "no speech",
			client:      &fakeClient{audio: []byte("opus")},
			transcriber: fakeTranscriber{err: speech.ErrNoSpeech},
			want:        speech.MsgNotUnderstood,
		},
		{
			name:        "transcription error",
			client:      &fakeClient{audio: []byte("opus")},
			transcriber: fakeTranscriber{err: speech.ErrTranscription},
			want:        speech.MsgVoiceFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answers := &fakeAnswerer{}
			var opts []HandlerOption
			if tt.transcriber != nil {
				opts = append(opts, WithTranscriber(tt.transcriber))
			}
			h := NewHandler(answers, tt.client, opts...)

			require.NoError(t, h.Handle(context.Background(), Message{VoiceFileID: "f", VoiceDuration: tt.duration}))

			assert.Equal(t, []string{tt.want}, tt.client.sent())
			assert.Empty(t, answers.calls, "failed voice input is never matched")
		})
	}
}

func TestHandler_VoiceReplyFailureIgnored(t *testing.T) {
	client := &fakeClient{audio: []byte("opus"), voiceErr: errors.New("upload failed")}
	h := NewHandler(&fakeAnswerer{}, client,
		WithTranscriber(fakeTranscriber{text: "ann"}),
		WithSynthesizer(fakeSynthesizer{err: errors.New("quota")}),
	)

	require.NoError(t, h.Handle(context.Background(), Message{VoiceFileID: "f"}))
	assert.Len(t, client.sent(), 2)
	assert.Empty(t, client.voices)
}

type staticAnswer string

func (s staticAnswer) Answer(context.Context, string) string { return string(s) }
func (s staticAnswer) Summary(context.Context) string        { return string(s) }
func (s staticAnswer) Refresh(context.Context) string        { return string(s) }
