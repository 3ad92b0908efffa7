package channels

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/hrygo/linguapet/ai/brain"
	"github.com/hrygo/linguapet/plugin/chat_apps"
)

// Slash commands understood by every channel.
const (
	CommandStart   = "/start"
	CommandNote    = "/note"
	CommandNotes   = "/notes"
	CommandTopics  = "/topics"
	CommandLearned = "/learned"
	CommandHelp    = "/help"
)

const (
	noteSaved      = "记下来了，现在一共有 %d 条笔记。"
	noteEmpty      = "笔记内容不能为空哦，试试「/note 今天学了过去式」。"
	noteFailed     = "哎呀，笔记没存上，稍后再试试吧。"
	noNotesYet     = "还没有笔记呢，用「/note 内容」记一条吧。"
	noTopicsYet    = "我们还没有聊到特别的话题呢。"
	noLearnedYet   = "我还没有学会新的说法，试试「记住：关键词=回复」。"
	unsupportedMsg = "我现在只看得懂文字哦。"
	helpText       = "直接和我聊天就好！\n" +
		"/note 内容 记一条笔记\n" +
		"/notes 查看笔记\n" +
		"/topics 看看我们聊过什么\n" +
		"/learned 看看我学会了什么\n" +
		"教我说话：记住：关键词=回复"
)

// Brain is the engine surface a dispatcher needs.
type Brain interface {
	Reply(ctx context.Context, input, petName, favoriteTopic string) brain.Reply
	AppendNote(ctx context.Context, note string) error
	Notes(ctx context.Context) []string
	Topics(ctx context.Context) []string
	Learned(ctx context.Context) map[string]string
}

// Dispatcher maps incoming chat messages onto brain operations.
type Dispatcher struct {
	brain         Brain
	petName       string
	favoriteTopic string
	logger        *slog.Logger
}

// NewDispatcher creates a dispatcher speaking as petName.
func NewDispatcher(engine Brain, petName, favoriteTopic string, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		brain:         engine,
		petName:       petName,
		favoriteTopic: favoriteTopic,
		logger:        logger,
	}
}

// Handle implements Handler. Replies thread under the incoming message when
// the platform supplied its message_id.
func (d *Dispatcher) Handle(ctx context.Context, msg *chat_apps.IncomingMessage) *chat_apps.OutgoingMessage {
	if msg == nil {
		return nil
	}
	if !msg.Platform.IsValid() {
		d.logger.Warn("dropping message from unknown platform", "platform", msg.Platform)
		return nil
	}
	out := &chat_apps.OutgoingMessage{
		PlatformChatID: msg.PlatformChatID,
		Emotion:        string(brain.EmotionNeutral),
		ReplyToID:      replyToID(msg.Metadata),
	}

	if msg.Type != chat_apps.MessageTypeText {
		d.logger.Debug("unsupported message", "platform", msg.Platform, "type", msg.Type.String())
		out.Content = unsupportedMsg
		return out
	}

	command, args := splitCommand(msg.Content)
	switch command {
	case CommandStart:
		out.Content, out.Emotion = d.reply(ctx, "")
	case CommandHelp:
		out.Content = helpText
	case CommandNote:
		out.Content, out.Emotion = d.appendNote(ctx, args)
	case CommandNotes:
		out.Content = d.listNotes(ctx)
	case CommandTopics:
		out.Content = d.listTopics(ctx)
	case CommandLearned:
		out.Content = d.listLearned(ctx)
	default:
		out.Content, out.Emotion = d.reply(ctx, msg.Content)
	}
	return out
}

func (d *Dispatcher) reply(ctx context.Context, input string) (string, string) {
	r := d.brain.Reply(ctx, input, d.petName, d.favoriteTopic)
	return r.Text, string(r.Emotion)
}

func (d *Dispatcher) appendNote(ctx context.Context, note string) (string, string) {
	if err := d.brain.AppendNote(ctx, note); err != nil {
		if errors.Is(err, brain.ErrEmptyNote) {
			return noteEmpty, string(brain.EmotionThinking)
		}
		d.logger.Error("failed to append note", "error", err)
		return noteFailed, string(brain.EmotionSad)
	}
	return fmt.Sprintf(noteSaved, len(d.brain.Notes(ctx))), string(brain.EmotionHappy)
}

func (d *Dispatcher) listNotes(ctx context.Context) string {
	notes := d.brain.Notes(ctx)
	if len(notes) == 0 {
		return noNotesYet
	}
	var sb strings.Builder
	for i, note := range notes {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%d. %s", i+1, note)
	}
	return sb.String()
}

func (d *Dispatcher) listTopics(ctx context.Context) string {
	topics := d.brain.Topics(ctx)
	if len(topics) == 0 {
		return noTopicsYet
	}
	return fmt.Sprintf("我们最近聊过：%s。", strings.Join(topics, "、"))
}

func (d *Dispatcher) listLearned(ctx context.Context) string {
	learned := d.brain.Learned(ctx)
	if len(learned) == 0 {
		return noLearnedYet
	}
	keys := make([]string, 0, len(learned))
	for k := range learned {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%s → %s", k, learned[k])
	}
	return sb.String()
}

func replyToID(metadata map[string]string) int {
	id, err := strconv.Atoi(metadata["message_id"])
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

// splitCommand separates a leading slash command from its arguments.
// Telegram group mentions such as /note@linguapet_bot are normalized.
// Non-command text yields an empty command.
func splitCommand(text string) (string, string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", text
	}
	command, args := text, ""
	if i := strings.IndexFunc(text, unicode.IsSpace); i > 0 {
		command, args = text[:i], text[i:]
	}
	if at := strings.IndexByte(command, '@'); at > 0 {
		command = command[:at]
	}
	command = strings.ToLower(command)
	switch command {
	case CommandStart, CommandNote, CommandNotes, CommandTopics, CommandLearned, CommandHelp:
		return command, strings.TrimSpace(args)
	default:
		return "", text
	}
}
