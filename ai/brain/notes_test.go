package brain

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_AppendNoteIsCapped(t *testing.T) {
	e := newTestEngine(newMemKV())
	ctx := context.Background()

	for i := 1; i <= 40; i++ {
		require.NoError(t, e.AppendNote(ctx, fmt.Sprintf("note %d", i)))
	}

	want := make([]string, 0, 30)
	for i := 11; i <= 40; i++ {
		want = append(want, fmt.Sprintf("note %d", i))
	}
	if diff := cmp.Diff(want, e.Notes(ctx)); diff != "" {
		t.Errorf("notes mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_AppendNoteTrimsAndRejectsEmpty(t *testing.T) {
	kv := newMemKV()
	obs := &recordingObserver{}
	e := newTestEngine(kv, WithObserver(obs))
	ctx := context.Background()

	assert.ErrorIs(t, e.AppendNote(ctx, "   "), ErrEmptyNote)
	assert.Empty(t, kv.data)

	require.NoError(t, e.AppendNote(ctx, "  记得复习单词  "))
	assert.Equal(t, []string{"记得复习单词"}, e.Notes(ctx))
	assert.Equal(t, []bool{false, true}, obs.notes)
}

func TestEngine_CorruptNotesDegradeToEmpty(t *testing.T) {
	kv := newMemKV()
	kv.data[KeyNotes] = "[broken"
	e := newTestEngine(kv)
	ctx := context.Background()

	assert.Empty(t, e.Notes(ctx))
	require.NoError(t, e.AppendNote(ctx, "fresh"))
	assert.Equal(t, []string{"fresh"}, e.Notes(ctx))
}

func TestEngine_NotesDoNotTouchOtherState(t *testing.T) {
	kv := newMemKV()
	e := newTestEngine(kv)

	require.NoError(t, e.AppendNote(context.Background(), "hello world"))

	assert.Len(t, kv.data, 1)
	assert.Contains(t, kv.data, KeyNotes)
}

func TestEngine_AppendNoteReportsStorageFailure(t *testing.T) {
	kv := newMemKV()
	kv.setErr = errStorage
	obs := &recordingObserver{}
	e := newTestEngine(kv, WithObserver(obs))

	err := e.AppendNote(context.Background(), "背单词")

	require.ErrorIs(t, err, errStorage)
	assert.NotErrorIs(t, err, ErrEmptyNote)
	assert.Equal(t, []bool{false}, obs.notes)
	assert.Empty(t, kv.data)
}
