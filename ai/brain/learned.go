package brain

import (
	"context"
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// associations maps a lower-cased trigger to its learned response.
type associations map[string]string

func (e *Engine) loadLearned(ctx context.Context) associations {
	raw := e.load(ctx, KeyLearned)
	if strings.TrimSpace(raw) == "" {
		return associations{}
	}

	var learned associations
	if err := json.Unmarshal([]byte(raw), &learned); err != nil || learned == nil {
		e.logger.Warn("discarding unreadable learned associations", "error", err)
		return associations{}
	}
	return learned
}

func (e *Engine) saveLearned(ctx context.Context, learned associations) error {
	data, err := json.Marshal(learned)
	if err != nil {
		e.logger.Error("failed to encode learned associations", "error", err)
		return err
	}
	return e.save(ctx, KeyLearned, string(data))
}

// match returns the learned response for input. An exact trigger match wins;
// otherwise the longest trigger contained in input is used, with ties broken
// lexicographically so the result never depends on map iteration order.
func (a associations) match(input string) (string, bool) {
	lower := strings.ToLower(input)
	if response, ok := a[lower]; ok && response != "" {
		return response, true
	}

	best, bestLen := "", 0
	for trigger, response := range a {
		if trigger == "" || response == "" || !strings.Contains(lower, trigger) {
			continue
		}
		n := utf8.RuneCountInString(trigger)
		if n > bestLen || (n == bestLen && trigger < best) {
			best, bestLen = trigger, n
		}
	}
	if best == "" {
		return "", false
	}
	return a[best], true
}
