package brain

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

const maxNotes = 30

// ErrEmptyNote is returned by AppendNote for blank input.
var ErrEmptyNote = errors.New("note is empty")

// AppendNote trims note and appends it to the capped note log. Unlike chat
// turns, a storage failure is returned to the caller.
func (e *Engine) AppendNote(ctx context.Context, note string) error {
	note = strings.TrimSpace(note)
	if note == "" {
		e.observeNote(false)
		return ErrEmptyNote
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	notes := append(e.loadNotes(ctx), note)
	if len(notes) > maxNotes {
		notes = notes[len(notes)-maxNotes:]
	}

	data, err := json.Marshal(notes)
	if err != nil {
		return errors.Wrap(err, "failed to encode notes")
	}
	if err := e.save(ctx, KeyNotes, string(data)); err != nil {
		e.observeNote(false)
		return errors.Wrap(err, "failed to save notes")
	}
	e.observeNote(true)
	return nil
}

// Notes returns the note log, oldest first.
func (e *Engine) Notes(ctx context.Context) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loadNotes(ctx)
}

func (e *Engine) loadNotes(ctx context.Context) []string {
	raw := e.load(ctx, KeyNotes)
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}

	var notes []string
	if err := json.Unmarshal([]byte(raw), &notes); err != nil || notes == nil {
		e.logger.Warn("discarding unreadable note log", "error", err)
		return []string{}
	}
	return notes
}

func (e *Engine) observeNote(accepted bool) {
	if e.observer != nil {
		e.observer.ObserveNote(accepted)
	}
}
