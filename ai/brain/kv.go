package brain

import "context"

// KV is the persistence collaborator. Values are opaque strings; a missing
// key is reported with ok == false rather than an error.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Persistence keys. Each collection is stored and decoded independently.
const (
	KeyLearned = "brain.learned"
	KeyTopics  = "brain.topics"
	KeyNotes   = "brain.notes"
)

// load reads key and returns "" when it is missing or unreadable.
func (e *Engine) load(ctx context.Context, key string) string {
	raw, ok, err := e.kv.Get(ctx, key)
	if err != nil {
		e.logger.Warn("failed to read brain state, using empty value", "key", key, "error", err)
		return ""
	}
	if !ok {
		return ""
	}
	return raw
}

// save writes value under key. Failures are logged and returned so callers
// that promise durability can report them.
func (e *Engine) save(ctx context.Context, key, value string) error {
	if err := e.kv.Set(ctx, key, value); err != nil {
		e.logger.Error("failed to persist brain state", "key", key, "error", err)
		return err
	}
	return nil
}
