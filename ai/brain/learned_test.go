package brain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssociations_Match(t *testing.T) {
	learned := associations{
		"hi":       "hello!",
		"hi there": "hey there!",
		"你好":       "halo",
		"天气":       "cuaca",
		"今天天气":     "cuaca hari ini",
		"ab":       "first",
		"bc":       "second",
	}

	testCases := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"exact beats containment", "hi there", "hey there!", true},
		{"exact is case-insensitive", "Hi There", "hey there!", true},
		{"containment", "你好呀", "halo", true},
		{"longest containment wins", "今天天气怎么样", "cuaca hari ini", true},
		{"equal length ties break lexicographically", "abc", "first", true},
		{"no match", "再见", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := learned.match(tc.input)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEngine_LearnedReplyIsHappy(t *testing.T) {
	e := newTestEngine(newMemKV())
	ctx := context.Background()

	e.Reply(ctx, "记住：你好=halo", "", "")
	reply := e.Reply(ctx, "你好呀", "", "")

	assert.Equal(t, Reply{Text: "halo", Emotion: EmotionHappy}, reply)
}

func TestEngine_LearnedMatchSkipsTopicMemory(t *testing.T) {
	kv := newMemKV()
	e := newTestEngine(kv)
	ctx := context.Background()

	e.Reply(ctx, "记住：天气=cuaca", "", "")
	e.Reply(ctx, "今天 天气 怎么样", "", "")

	assert.Empty(t, e.Topics(ctx))
}

func TestEngine_CorruptLearnedBlobDegradesToEmpty(t *testing.T) {
	kv := newMemKV()
	kv.data[KeyLearned] = "{not json"
	e := newTestEngine(kv)
	ctx := context.Background()

	_, ok := e.Lookup(ctx, "天气")
	assert.False(t, ok)

	reply := e.Reply(ctx, "记住：天气=cuaca", "", "")
	assert.Equal(t, EmotionHappy, reply.Emotion)

	got, ok := e.Lookup(ctx, "天气")
	assert.True(t, ok)
	assert.Equal(t, "cuaca", got)
}

func TestEngine_ReadErrorsDoNotFailTheTurn(t *testing.T) {
	kv := newMemKV()
	kv.getErr = errStorage
	kv.setErr = errStorage
	e := newTestEngine(kv)

	reply := e.Reply(context.Background(), "你好", "", "")

	assert.Equal(t, EmotionHappy, reply.Emotion)
	assert.NotEmpty(t, reply.Text)
}
