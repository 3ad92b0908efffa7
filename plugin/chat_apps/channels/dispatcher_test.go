package channels

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/hrygo/linguapet/ai/brain"
	"github.com/hrygo/linguapet/plugin/chat_apps"
	"github.com/hrygo/linguapet/store"
	"github.com/hrygo/linguapet/store/db/memory"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *brain.Engine) {
	t.Helper()
	engine := brain.New(store.New(memory.NewDB(), nil), brain.WithRand(rand.New(rand.NewSource(3))))
	return NewDispatcher(engine, "小语", "日常会话", slog.New(slog.NewTextHandler(io.Discard, nil))), engine
}

func text(content string) *chat_apps.IncomingMessage {
	return &chat_apps.IncomingMessage{
		Platform:       chat_apps.PlatformTelegram,
		PlatformChatID: "100",
		Type:           chat_apps.MessageTypeText,
		Content:        content,
	}
}

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		input       string
		wantCommand string
		wantArgs    string
	}{
		{"你好", "", "你好"},
		{"/note 背单词", CommandNote, "背单词"},
		{"/note\n换行也行", CommandNote, "换行也行"},
		{"/NOTE 大写", CommandNote, "大写"},
		{"/note@linguapet_bot 群里", CommandNote, "群里"},
		{"/topics", CommandTopics, ""},
		{"/unknown hi", "", "/unknown hi"},
		{"  /learned  ", CommandLearned, ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			command, args := splitCommand(tt.input)
			assert.Equal(t, tt.wantCommand, command)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestDispatcher_Chat(t *testing.T) {
	d, _ := newTestDispatcher(t)
	ctx := context.Background()

	out := d.Handle(ctx, text("你好"))
	require.NotNil(t, out)
	assert.Equal(t, "100", out.PlatformChatID)
	assert.Equal(t, "你好呀！今天想聊点什么？", out.Content)
	assert.Equal(t, string(brain.EmotionHappy), out.Emotion)

	out = d.Handle(ctx, text("/start"))
	assert.Equal(t, "我在，想聊什么呀？", out.Content)

	out = d.Handle(ctx, text("你是谁"))
	assert.Equal(t, "我是小语，你的语言学习小伙伴！", out.Content)
}

func TestDispatcher_Notes(t *testing.T) {
	d, engine := newTestDispatcher(t)
	ctx := context.Background()

	assert.Equal(t, noNotesYet, d.Handle(ctx, text("/notes")).Content)

	out := d.Handle(ctx, text("/note 背单词"))
	assert.Equal(t, "记下来了，现在一共有 1 条笔记。", out.Content)
	assert.Equal(t, string(brain.EmotionHappy), out.Emotion)

	out = d.Handle(ctx, text("/note   "))
	assert.Equal(t, noteEmpty, out.Content)

	d.Handle(ctx, text("/note 练口语"))
	assert.Equal(t, []string{"背单词", "练口语"}, engine.Notes(ctx))
	assert.Equal(t, "1. 背单词\n2. 练口语", d.Handle(ctx, text("/notes")).Content)
}

func TestDispatcher_TopicsAndLearned(t *testing.T) {
	d, _ := newTestDispatcher(t)
	ctx := context.Background()

	assert.Equal(t, noTopicsYet, d.Handle(ctx, text("/topics")).Content)
	assert.Equal(t, noLearnedYet, d.Handle(ctx, text("/learned")).Content)

	d.Handle(ctx, text("coffee time"))
	assert.Equal(t, "我们最近聊过：coffee、time。", d.Handle(ctx, text("/topics")).Content)

	d.Handle(ctx, text("记住：早安=早上好"))
	d.Handle(ctx, text("学习：晚安=好梦"))
	assert.Equal(t, "早安 → 早上好\n晚安 → 好梦", d.Handle(ctx, text("/learned")).Content)
}

func TestDispatcher_Unsupported(t *testing.T) {
	d, _ := newTestDispatcher(t)

	out := d.Handle(context.Background(), &chat_apps.IncomingMessage{
		Platform:       chat_apps.PlatformTelegram,
		PlatformChatID: "100",
		Type:           chat_apps.MessageTypeUnsupported,
	})
	assert.Equal(t, unsupportedMsg, out.Content)
	assert.Nil(t, d.Handle(context.Background(), nil))
}

func TestDispatcher_UnknownPlatform(t *testing.T) {
	d, engine := newTestDispatcher(t)
	msg := text("/note 不该记下")
	msg.Platform = "irc"

	assert.Nil(t, d.Handle(context.Background(), msg))
	assert.Empty(t, engine.Notes(context.Background()))
}

func TestDispatcher_RepliesToOriginalMessage(t *testing.T) {
	d, _ := newTestDispatcher(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		metadata map[string]string
		want     int
	}{
		{"telegram message id", map[string]string{"message_id": "9"}, 9},
		{"no metadata", nil, 0},
		{"not a number", map[string]string{"message_id": "abc"}, 0},
		{"zero", map[string]string{"message_id": "0"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := text("你好")
			msg.Metadata = tt.metadata
			out := d.Handle(ctx, msg)
			require.NotNil(t, out)
			assert.Equal(t, tt.want, out.ReplyToID)
		})
	}
}

// failingBrain rejects every note with a storage error.
type failingBrain struct{ Brain }

func (failingBrain) AppendNote(context.Context, string) error { return errors.New("disk full") }

func TestDispatcher_NoteFailure(t *testing.T) {
	d := NewDispatcher(failingBrain{}, "小语", "日常会话", slog.New(slog.NewTextHandler(io.Discard, nil)))
	out := d.Handle(context.Background(), text("/note x"))
	assert.Equal(t, noteFailed, out.Content)
	assert.Equal(t, string(brain.EmotionSad), out.Emotion)
}

func TestChannelError(t *testing.T) {
	cause := errors.New("network down")
	err := ErrSendFailed.Wrap(cause)

	assert.ErrorIs(t, err, ErrSendFailed)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrInvalidPayload)
	assert.True(t, err.IsRetryable())
	assert.False(t, ErrInvalidChatID.IsRetryable())
	assert.Contains(t, err.Error(), "network down")
}
