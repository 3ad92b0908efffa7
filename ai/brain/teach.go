package brain

import (
	"context"
	"fmt"
	"strings"
)

// Direct teach prefixes ("remember:" / "learn:"). Both are stripped from the
// body regardless of which one matched.
var teachPrefixes = []string{"记住：", "学习："}

// pairDelimiters is tried in order; the first one that splits the body into
// exactly two segments wins.
var pairDelimiters = []string{"=", "=>", "->", "：", ":"}

// Conversational teach markers: "当我说 X 你就说 Y".
const (
	whenISayMarker = "当我说"
	youSayMarker   = "你就说"
)

const (
	teachFormatHint = "我没看懂要记住什么，试试「记住：关键词=回复」或者「当我说…你就说…」。"
	teachRejected   = "关键词和回复都不能为空哦，这次我没有记下来。"
	teachNotSaved   = "哎呀，我的小本子出了点问题，这次没能记住，等会儿再教我一次吧。"
	teachConfirmed  = "好的，我记住了！以后你说「%s」，我就回答「%s」。"
)

type teachKind int

const (
	notTeach teachKind = iota
	teachMalformed
	teachPair
)

type teachCommand struct {
	key   string
	value string
	kind  teachKind
}

// parseTeach recognizes the direct and conversational teach forms.
// input must already be trimmed.
func parseTeach(input string) teachCommand {
	if hasAnyPrefix(input, teachPrefixes) {
		body := input
		for _, prefix := range teachPrefixes {
			body = strings.TrimPrefix(body, prefix)
		}
		key, value, ok := splitPair(body, pairDelimiters)
		if !ok {
			return teachCommand{kind: teachMalformed}
		}
		return teachCommand{key: key, value: value, kind: teachPair}
	}

	if strings.Contains(input, whenISayMarker) && strings.Contains(input, youSayMarker) {
		parts := strings.Split(input, youSayMarker)
		if len(parts) != 2 {
			return teachCommand{kind: teachMalformed}
		}
		key := strings.TrimSpace(strings.ReplaceAll(parts[0], whenISayMarker, ""))
		value := strings.TrimSpace(parts[1])
		return teachCommand{key: key, value: value, kind: teachPair}
	}

	return teachCommand{kind: notTeach}
}

// splitPair splits s on the first delimiter producing exactly two segments.
// Segments are trimmed but may be empty; emptiness is judged by the caller.
func splitPair(s string, delimiters []string) (string, string, bool) {
	for _, delim := range delimiters {
		parts := strings.Split(s, delim)
		if len(parts) == 2 {
			return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), true
		}
	}
	return "", "", false
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// teach applies a parsed command. The caller holds e.mu.
func (e *Engine) teach(ctx context.Context, cmd teachCommand) (Reply, Route) {
	if cmd.kind == teachMalformed {
		return Reply{Text: teachFormatHint, Emotion: EmotionThinking}, RouteTeachFormat
	}
	if cmd.key == "" || cmd.value == "" {
		return Reply{Text: teachRejected, Emotion: EmotionSad}, RouteTeachRejected
	}

	learned := e.loadLearned(ctx)
	learned[strings.ToLower(cmd.key)] = cmd.value
	if err := e.saveLearned(ctx, learned); err != nil {
		return Reply{Text: teachNotSaved, Emotion: EmotionSad}, RouteTeachFailed
	}

	e.logger.Debug("learned association", "trigger", strings.ToLower(cmd.key))
	return Reply{Text: fmt.Sprintf(teachConfirmed, cmd.key, cmd.value), Emotion: EmotionHappy}, RouteTeach
}
