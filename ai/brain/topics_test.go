package brain

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestExtractTopics(t *testing.T) {
	testCases := []struct {
		input string
		want  []string
	}{
		{"I love learning Go, really!", []string{"love", "learning", "Go"}},
		{"今天 天气 很好，我们 去 公园", []string{"今天", "天气", "很好"}},
		{"a b c", []string{}},
		{"咖啡。", []string{"咖啡"}},
		{"", []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, extractTopics(tc.input)); diff != "" {
				t.Errorf("extractTopics(%q) mismatch (-want +got):\n%s", tc.input, diff)
			}
		})
	}
}

func TestMergeTopics(t *testing.T) {
	got := mergeTopics([]string{"apple", "banana"}, []string{"banana", "cherry"})
	assert.Equal(t, []string{"apple", "banana", "cherry"}, got)
}

func TestEngine_TopicMemoryIsCapped(t *testing.T) {
	e := newTestEngine(newMemKV())
	ctx := context.Background()

	for i := 1; i <= 20; i++ {
		e.Reply(ctx, fmt.Sprintf("topic%02d", i), "", "")
	}

	want := make([]string, 0, 12)
	for i := 9; i <= 20; i++ {
		want = append(want, fmt.Sprintf("topic%02d", i))
	}
	if diff := cmp.Diff(want, e.Topics(ctx)); diff != "" {
		t.Errorf("topics mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_TopicsDeduplicateAcrossTurns(t *testing.T) {
	kv := newMemKV()
	e := newTestEngine(kv)
	ctx := context.Background()

	e.Reply(ctx, "apple banana", "", "")
	e.Reply(ctx, "banana cherry", "", "")

	assert.Equal(t, []string{"apple", "banana", "cherry"}, e.Topics(ctx))
	assert.Equal(t, "apple,banana,cherry", kv.data[KeyTopics])
}

func TestEngine_TopicsRecordedEvenWhenRuleFires(t *testing.T) {
	e := newTestEngine(newMemKV())
	ctx := context.Background()

	reply := e.Reply(ctx, "谢谢 朋友", "", "")

	assert.Equal(t, EmotionHappy, reply.Emotion)
	assert.Equal(t, []string{"谢谢", "朋友"}, e.Topics(ctx))
}

func TestEngine_TopicRecall(t *testing.T) {
	e := newTestEngine(newMemKV())
	ctx := context.Background()

	e.Reply(ctx, "apple banana", "", "")
	reply := e.Reply(ctx, "我们聊过什么", "", "")

	assert.Equal(t, EmotionThinking, reply.Emotion)
	assert.Contains(t, reply.Text, "apple、banana")
}

func TestRecallTopics_Empty(t *testing.T) {
	assert.Equal(t, noTopicsYet, recallTopics(Turn{}))
}
