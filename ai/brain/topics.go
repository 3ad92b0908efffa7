package brain

import (
	"context"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxTopics        = 12
	maxTokensPerTurn = 3
	minTokenRunes    = 2

	// topicSeparator is punctuation, so it can never occur inside a token.
	topicSeparator = ","
)

// extractTopics splits input on whitespace and punctuation and returns at
// most the first three tokens of two or more runes.
func extractTopics(input string) []string {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})

	tokens := make([]string, 0, maxTokensPerTurn)
	for _, f := range fields {
		if utf8.RuneCountInString(f) < minTokenRunes {
			continue
		}
		tokens = append(tokens, f)
		if len(tokens) == maxTokensPerTurn {
			break
		}
	}
	return tokens
}

// mergeTopics appends tokens not already present in history and keeps the
// newest maxTopics entries.
func mergeTopics(history, tokens []string) []string {
	for _, t := range tokens {
		if !slices.Contains(history, t) {
			history = append(history, t)
		}
	}
	if len(history) > maxTopics {
		history = history[len(history)-maxTopics:]
	}
	return history
}

func (e *Engine) loadTopics(ctx context.Context) []string {
	raw := e.load(ctx, KeyTopics)
	topics := []string{}
	for _, t := range strings.Split(raw, topicSeparator) {
		if t = strings.TrimSpace(t); t != "" {
			topics = append(topics, t)
		}
	}
	return topics
}

// recordTopics harvests tokens from input into topic memory and returns the
// updated list. The caller holds e.mu.
func (e *Engine) recordTopics(ctx context.Context, input string) []string {
	tokens := extractTopics(input)
	topics := e.loadTopics(ctx)
	if len(tokens) == 0 {
		return topics
	}
	topics = mergeTopics(topics, tokens)
	_ = e.save(ctx, KeyTopics, strings.Join(topics, topicSeparator))
	return topics
}

// Topics returns the remembered topics, oldest first.
func (e *Engine) Topics(ctx context.Context) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loadTopics(ctx)
}
