package brain

import (
	"context"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"
)

const greeting = "我在，想聊什么呀？"

// Engine answers one user turn at a time. All state lives in the KV; the
// engine only holds a mutex so read-modify-write cycles never interleave.
type Engine struct {
	kv       KV
	logger   *slog.Logger
	observer Observer
	rng      *rand.Rand
	rules    []Rule
	pool     []string
	mu       sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand injects the random source used for the fallback pool.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		if rng != nil {
			e.rng = rng
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithObserver registers an observer for turn and note events.
func WithObserver(observer Observer) Option {
	return func(e *Engine) {
		e.observer = observer
	}
}

// WithRules places extra rules ahead of the built-in ones.
func WithRules(rules ...Rule) Option {
	return func(e *Engine) {
		e.rules = append(append([]Rule{}, rules...), e.rules...)
	}
}

// WithPool replaces the random fallback pool. An empty pool is ignored.
func WithPool(pool ...string) Option {
	return func(e *Engine) {
		if len(pool) > 0 {
			e.pool = pool
		}
	}
}

// New creates an engine persisting through kv.
func New(kv KV, opts ...Option) *Engine {
	e := &Engine{
		kv:     kv,
		logger: slog.Default(),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		rules:  DefaultRules(),
		pool:   defaultPool,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Reply produces the response for one user turn. It never fails: storage
// errors are logged and the turn proceeds with empty state.
func (e *Engine) Reply(ctx context.Context, input, petName, favoriteTopic string) Reply {
	start := time.Now()
	reply, route := e.respond(ctx, input, petName, favoriteTopic)
	if e.observer != nil {
		e.observer.ObserveTurn(route, time.Since(start))
	}
	return reply
}

func (e *Engine) respond(ctx context.Context, input, petName, favoriteTopic string) (Reply, Route) {
	text := strings.TrimSpace(input)
	if text == "" {
		return Reply{Text: greeting, Emotion: EmotionNeutral}, RouteGreeting
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if cmd := parseTeach(text); cmd.kind != notTeach {
		return e.teach(ctx, cmd)
	}

	if response, ok := e.loadLearned(ctx).match(text); ok {
		return Reply{Text: response, Emotion: EmotionHappy}, RouteLearned
	}

	turn := Turn{
		Input:         text,
		PetName:       petName,
		FavoriteTopic: favoriteTopic,
		Topics:        e.recordTopics(ctx, text),
	}
	lower := strings.ToLower(text)
	for _, rule := range e.rules {
		if rule.When == nil || rule.Respond == nil {
			continue
		}
		if rule.When.Match(lower) {
			return Reply{Text: rule.Respond(turn), Emotion: rule.Emotion}, RouteRule
		}
	}

	return Reply{Text: e.pool[e.rng.Intn(len(e.pool))], Emotion: EmotionNeutral}, RouteRandom
}

// Lookup reports the learned response for input without touching topic memory.
func (e *Engine) Lookup(ctx context.Context, input string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loadLearned(ctx).match(strings.TrimSpace(input))
}

// Learned returns a copy of the learned associations.
func (e *Engine) Learned(ctx context.Context) map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loadLearned(ctx)
}
