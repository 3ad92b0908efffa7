package brain

import (
	"fmt"
	"strings"
)

// Condition decides whether a rule applies to the lower-cased input.
type Condition interface {
	Match(input string) bool
}

// Single matches when the input contains the substring.
type Single string

func (s Single) Match(input string) bool {
	return strings.Contains(input, strings.ToLower(string(s)))
}

// AnyOf matches when at least one child matches.
type AnyOf []Condition

func (a AnyOf) Match(input string) bool {
	for _, c := range a {
		if c.Match(input) {
			return true
		}
	}
	return false
}

// AllOf matches when every child matches. An empty AllOf never matches.
type AllOf []Condition

func (a AllOf) Match(input string) bool {
	if len(a) == 0 {
		return false
	}
	for _, c := range a {
		if !c.Match(input) {
			return false
		}
	}
	return true
}

// Any is shorthand for an AnyOf over literal substrings.
func Any(substrings ...string) AnyOf {
	conds := make(AnyOf, len(substrings))
	for i, s := range substrings {
		conds[i] = Single(s)
	}
	return conds
}

// All is shorthand for an AllOf over literal substrings.
func All(substrings ...string) AllOf {
	conds := make(AllOf, len(substrings))
	for i, s := range substrings {
		conds[i] = Single(s)
	}
	return conds
}

// Turn carries the per-call values a rule may render into its reply.
type Turn struct {
	Input         string
	PetName       string
	FavoriteTopic string
	Topics        []string
}

// Rule is one ordered fallback entry.
type Rule struct {
	Name    string
	When    Condition
	Emotion Emotion
	Respond func(turn Turn) string
}

// Static returns a responder that always says text.
func Static(text string) func(Turn) string {
	return func(Turn) string { return text }
}

// Template returns a responder that substitutes {pet}, {topic} and {topics}.
func Template(text string) func(Turn) string {
	return func(t Turn) string {
		return strings.NewReplacer(
			"{pet}", t.PetName,
			"{topic}", t.FavoriteTopic,
			"{topics}", strings.Join(t.Topics, topicListSeparator),
		).Replace(text)
	}
}

const (
	topicListSeparator = "、"
	noTopicsYet        = "我们还没有聊到特别的话题呢。"
)

func recallTopics(t Turn) string {
	if len(t.Topics) == 0 {
		return noTopicsYet
	}
	return fmt.Sprintf("我们最近聊过：%s。", strings.Join(t.Topics, topicListSeparator))
}

// DefaultRules returns the built-in rules in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:    "greeting",
			When:    Any("你好", "嗨", "hello"),
			Emotion: EmotionHappy,
			Respond: Static("你好呀！今天想聊点什么？"),
		},
		{
			Name:    "identity",
			When:    Any("你是谁", "你叫什么"),
			Emotion: EmotionHappy,
			Respond: Template("我是{pet}，你的语言学习小伙伴！"),
		},
		{
			Name:    "topic_recall",
			When:    Any("聊过什么", "记得什么"),
			Emotion: EmotionThinking,
			Respond: recallTopics,
		},
		{
			Name:    "tired_today",
			When:    AllOf{Single("今天"), Any("累", "烦")},
			Emotion: EmotionSad,
			Respond: Static("今天辛苦啦，先休息一下，我一直陪着你。"),
		},
		{
			Name:    "study",
			When:    Single("学习"),
			Emotion: EmotionHappy,
			Respond: Static("学习贵在坚持，我们一起加油！"),
		},
		{
			Name:    "translate",
			When:    Single("翻译"),
			Emotion: EmotionThinking,
			Respond: Static("想翻译什么？去翻译页面把句子交给我吧。"),
		},
		{
			Name:    "practice",
			When:    Any("练习", "复习"),
			Emotion: EmotionHappy,
			Respond: Template("好呀，那我们来练习{topic}吧！"),
		},
		{
			Name:    "thanks",
			When:    Any("谢谢", "thank"),
			Emotion: EmotionHappy,
			Respond: Static("不客气～能帮到你我很开心。"),
		},
		{
			Name:    "sad",
			When:    Any("难过", "伤心"),
			Emotion: EmotionSad,
			Respond: Static("抱抱你，想说说发生了什么吗？"),
		},
		{
			Name:    "angry",
			When:    Any("生气", "讨厌"),
			Emotion: EmotionAngry,
			Respond: Static("哼，谁惹你生气了？我帮你一起骂他！"),
		},
		{
			Name:    "goodbye",
			When:    Any("再见", "bye"),
			Emotion: EmotionHappy,
			Respond: Static("再见啦，记得明天也来找我玩！"),
		},
	}
}

// defaultPool is the uniform random fallback when no rule matches.
var defaultPool = []string{
	"嗯嗯，我在听呢。",
	"然后呢？再多说一点吧～",
	"原来是这样呀！",
	"我明白你的意思啦。",
	"这个话题好有意思！",
}
