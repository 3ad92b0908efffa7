package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/linguapet/ai/brain"
	"github.com/hrygo/linguapet/internal/logging"
	"github.com/hrygo/linguapet/internal/profile"
)

// maxInputRunes bounds a single chat turn or note submitted over HTTP.
const maxInputRunes = 2000

type BrainService struct {
	Profile *profile.Profile
	Brain   Brain
}

type ReplyRequest struct {
	Input         string `json:"input"`
	PetName       string `json:"petName,omitempty"`
	FavoriteTopic string `json:"favoriteTopic,omitempty"`
}

type NoteRequest struct {
	Note string `json:"note"`
}

type NotesResponse struct {
	Notes []string `json:"notes"`
}

type TopicsResponse struct {
	Topics []string `json:"topics"`
}

type LearnedResponse struct {
	Learned map[string]string `json:"learned"`
}

type LookupResponse struct {
	Input    string `json:"input"`
	Response string `json:"response,omitempty"`
	Found    bool   `json:"found"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// Reply runs one conversation turn. Missing pet name or favorite topic fall
// back to the instance profile.
func (s *BrainService) Reply(c echo.Context) error {
	var req ReplyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body").SetInternal(err)
	}
	if len([]rune(req.Input)) > maxInputRunes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "input too long")
	}

	petName := strings.TrimSpace(req.PetName)
	if petName == "" {
		petName = s.Profile.PetName
	}
	favoriteTopic := strings.TrimSpace(req.FavoriteTopic)
	if favoriteTopic == "" {
		favoriteTopic = s.Profile.FavoriteTopic
	}

	reply := s.Brain.Reply(c.Request().Context(), req.Input, petName, favoriteTopic)
	return c.JSON(http.StatusOK, reply)
}

func (s *BrainService) ListNotes(c echo.Context) error {
	return c.JSON(http.StatusOK, NotesResponse{Notes: nonNil(s.Brain.Notes(c.Request().Context()))})
}

// AppendNote stores a note and returns the updated log.
func (s *BrainService) AppendNote(c echo.Context) error {
	var req NoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body").SetInternal(err)
	}
	if len([]rune(req.Note)) > maxInputRunes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "note too long")
	}

	ctx := c.Request().Context()
	if err := s.Brain.AppendNote(ctx, req.Note); err != nil {
		if errors.Is(err, brain.ErrEmptyNote) {
			return echo.NewHTTPError(http.StatusBadRequest, "note is empty")
		}
		logging.FromContext(ctx).Error("failed to append note", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to append note").SetInternal(err)
	}
	return c.JSON(http.StatusCreated, NotesResponse{Notes: nonNil(s.Brain.Notes(ctx))})
}

func (s *BrainService) ListTopics(c echo.Context) error {
	return c.JSON(http.StatusOK, TopicsResponse{Topics: nonNil(s.Brain.Topics(c.Request().Context()))})
}

func (s *BrainService) ListLearned(c echo.Context) error {
	learned := s.Brain.Learned(c.Request().Context())
	if learned == nil {
		learned = map[string]string{}
	}
	return c.JSON(http.StatusOK, LearnedResponse{Learned: learned})
}

// Lookup reports the learned response for ?input= without recording topics.
func (s *BrainService) Lookup(c echo.Context) error {
	input := c.QueryParam("input")
	if strings.TrimSpace(input) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "input is required")
	}
	if len([]rune(input)) > maxInputRunes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "input too long")
	}

	response, found := s.Brain.Lookup(c.Request().Context(), input)
	return c.JSON(http.StatusOK, LookupResponse{Input: input, Response: response, Found: found})
}

func (s *BrainService) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok", Version: s.Profile.Version})
}

// nonNil keeps empty lists encoded as [] rather than null.
func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
