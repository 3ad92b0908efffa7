package v1

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/feeds"
	"github.com/labstack/echo/v4"
	"github.com/yuin/goldmark"
)

// feedTitleRunes caps the item title taken from the first line of a note.
const feedTitleRunes = 30

// UUID v5 namespace for note feed GUIDs.
// 笔记 RSS 条目的 GUID 命名空间，保证同一条笔记的 GUID 稳定。
var noteNamespace = uuid.Must(uuid.FromBytes([]byte{
	0x6c, 0x69, 0x6e, 0x67, 0x75, 0x61, 0x40, 0x70,
	0x81, 0x65, 0x74, 0x2d, 0x6e, 0x6f, 0x74, 0x65,
}))

// NotesFeed serves the note log as RSS, newest first.
func (s *BrainService) NotesFeed(c echo.Context) error {
	notes := s.Brain.Notes(c.Request().Context())
	feed, err := buildNotesFeed(s.Profile.PetName, baseURL(c), notes, time.Now())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to build feed").SetInternal(err)
	}

	rss, err := feed.ToRss()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to render feed").SetInternal(err)
	}
	return c.Blob(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(rss))
}

// buildNotesFeed renders notes newest first. Notes carry no timestamps, so
// items have no pubDate; only the channel is stamped with now.
func buildNotesFeed(petName, link string, notes []string, now time.Time) (*feeds.Feed, error) {
	feed := &feeds.Feed{
		Title:       fmt.Sprintf("%s 的笔记", petName),
		Link:        &feeds.Link{Href: link},
		Description: "Notes saved while chatting",
		Created:     now,
		Items:       make([]*feeds.Item, 0, len(notes)),
	}

	seen := make(map[string]int, len(notes))
	guids := make([]string, len(notes))
	for i, note := range notes {
		guids[i] = noteGUID(note, seen[note])
		seen[note]++
	}

	for i := len(notes) - 1; i >= 0; i-- {
		html, err := renderMarkdown(notes[i])
		if err != nil {
			return nil, err
		}
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          guids[i],
			Title:       noteTitle(notes[i]),
			Link:        &feeds.Link{Href: link},
			Description: html,
		})
	}
	return feed, nil
}

// noteGUID is stable for a note's text; repeated notes are told apart by
// their occurrence index counted from the oldest copy. Evicting the oldest
// copy of a repeated note therefore renumbers the copies that remain.
func noteGUID(note string, occurrence int) string {
	return uuid.NewSHA1(noteNamespace, []byte(fmt.Sprintf("linguapet:note:%d:%s", occurrence, note))).String()
}

func noteTitle(note string) string {
	line, _, _ := strings.Cut(note, "\n")
	runes := []rune(line)
	if len(runes) > feedTitleRunes {
		return string(runes[:feedTitleRunes]) + "…"
	}
	return line
}

func renderMarkdown(source string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func baseURL(c echo.Context) string {
	return c.Scheme() + "://" + c.Request().Host
}
