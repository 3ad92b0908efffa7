package v1

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/linguapet/ai/brain"
	"github.com/hrygo/linguapet/internal/profile"
)

// Brain is the conversational engine surface exposed over HTTP.
type Brain interface {
	Reply(ctx context.Context, input, petName, favoriteTopic string) brain.Reply
	AppendNote(ctx context.Context, note string) error
	Notes(ctx context.Context) []string
	Topics(ctx context.Context) []string
	Learned(ctx context.Context) map[string]string
	Lookup(ctx context.Context, input string) (string, bool)
}

var _ Brain = (*brain.Engine)(nil)

type APIV1Service struct {
	Profile      *profile.Profile
	BrainService *BrainService
}

func NewAPIV1Service(profile *profile.Profile, engine Brain) *APIV1Service {
	return &APIV1Service{
		Profile: profile,
		BrainService: &BrainService{
			Profile: profile,
			Brain:   engine,
		},
	}
}

// RegisterRoutes mounts the v1 API on the given Echo instance.
func (s *APIV1Service) RegisterRoutes(_ context.Context, echoServer *echo.Echo) {
	echoServer.GET("/healthz", s.BrainService.Healthz)

	brainGroup := echoServer.Group("/api/v1/brain")
	brainGroup.POST("/reply", s.BrainService.Reply)
	brainGroup.GET("/notes", s.BrainService.ListNotes)
	brainGroup.POST("/notes", s.BrainService.AppendNote)
	brainGroup.GET("/notes/rss", s.BrainService.NotesFeed)
	brainGroup.GET("/topics", s.BrainService.ListTopics)
	brainGroup.GET("/learned", s.BrainService.ListLearned)
	brainGroup.GET("/lookup", s.BrainService.Lookup)
}
