// Package brain implements the local conversational rule engine.
//
// A turn flows through four stages that share one persisted state:
// teach-command parsing, learned-association lookup, topic memory,
// and the ordered fallback rules. Every turn produces exactly one Reply.
package brain

import "time"

// Emotion tags a reply for the presentation layer.
type Emotion string

const (
	EmotionNeutral   Emotion = "neutral"
	EmotionHappy     Emotion = "happy"
	EmotionSad       Emotion = "sad"
	EmotionThinking  Emotion = "thinking"
	EmotionListening Emotion = "listening"
	EmotionAngry     Emotion = "angry"
)

// IsValid reports whether e is one of the known emotions.
func (e Emotion) IsValid() bool {
	switch e {
	case EmotionNeutral, EmotionHappy, EmotionSad, EmotionThinking, EmotionListening, EmotionAngry:
		return true
	default:
		return false
	}
}

// Reply is the engine's output unit.
type Reply struct {
	Text    string  `json:"text"`
	Emotion Emotion `json:"emotion"`
}

// Route identifies which stage produced a reply.
type Route string

const (
	RouteGreeting      Route = "greeting"
	RouteTeach         Route = "teach"
	RouteTeachRejected Route = "teach_rejected"
	RouteTeachFormat   Route = "teach_format"
	RouteTeachFailed   Route = "teach_failed"
	RouteLearned       Route = "learned"
	RouteRule          Route = "rule"
	RouteRandom        Route = "random"
)

// Observer receives per-turn and per-note events. Implementations must be
// cheap; they run inline with the turn.
type Observer interface {
	ObserveTurn(route Route, latency time.Duration)
	ObserveNote(accepted bool)
}
