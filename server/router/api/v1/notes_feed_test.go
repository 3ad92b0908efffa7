package v1

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/feeds"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildNotesFeed(t *testing.T) {
	now := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	notes := []string{"first", "**bold** note", "first"}

	feed, err := buildNotesFeed("小语", "http://localhost", notes, now)
	require.NoError(t, err)

	assert.Equal(t, "小语 的笔记", feed.Title)
	require.Len(t, feed.Items, 3)

	// Newest first.
	assert.Equal(t, "first", feed.Items[0].Title)
	assert.Equal(t, "**bold** note", feed.Items[1].Title)
	assert.Contains(t, feed.Items[1].Description, "<strong>bold</strong>")

	// Repeated notes get distinct, stable GUIDs.
	assert.NotEqual(t, feed.Items[0].Id, feed.Items[2].Id)
	again, err := buildNotesFeed("小语", "http://localhost", notes, now)
	require.NoError(t, err)
	assert.Equal(t, feed.Items[0].Id, again.Items[0].Id)

	assert.Equal(t, now, feed.Created)
	for _, item := range feed.Items {
		assert.True(t, item.Created.IsZero(), "item %q should carry no date", item.Title)
	}
}

func TestBuildNotesFeed_GUIDsSurviveEviction(t *testing.T) {
	now := time.Now()
	before, err := buildNotesFeed("小语", "http://localhost", []string{"x", "y", "z"}, now)
	require.NoError(t, err)
	after, err := buildNotesFeed("小语", "http://localhost", []string{"y", "z", "w"}, now)
	require.NoError(t, err)

	ids := func(items []*feeds.Item) map[string]string {
		m := make(map[string]string, len(items))
		for _, item := range items {
			m[item.Title] = item.Id
		}
		return m
	}
	b, a := ids(before.Items), ids(after.Items)
	assert.Equal(t, b["y"], a["y"])
	assert.Equal(t, b["z"], a["z"])
	assert.NotEqual(t, b["x"], a["w"])
}

func TestNoteTitle(t *testing.T) {
	assert.Equal(t, "第一行", noteTitle("第一行\n第二行"))

	long := strings.Repeat("字", feedTitleRunes+5)
	title := noteTitle(long)
	assert.Equal(t, feedTitleRunes+1, len([]rune(title)))
	assert.True(t, strings.HasSuffix(title, "…"))
}

func TestNotesFeedEndpoint(t *testing.T) {
	e, engine := newTestAPI(t)
	require.NoError(t, engine.AppendNote(context.Background(), "今天学了 *过去式*"))

	rec := doJSON(e, http.MethodGet, "/api/v1/brain/notes/rss", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/rss+xml")

	body := rec.Body.String()
	assert.Contains(t, body, "<rss")
	assert.Contains(t, body, "小语 的笔记")
	assert.Contains(t, body, "今天学了")
	assert.Equal(t, 1, strings.Count(body, "<pubDate>"), "only the channel is dated")
}
