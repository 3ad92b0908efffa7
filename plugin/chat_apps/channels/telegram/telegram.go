// Package telegram implements the Telegram Bot channel over long polling.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hrygo/linguapet/plugin/chat_apps"
	"github.com/hrygo/linguapet/plugin/chat_apps/channels"
)

// DefaultPollTimeout is the long-poll timeout in seconds.
const DefaultPollTimeout = 30

// TelegramConfig holds configuration for the Telegram channel.
type TelegramConfig struct {
	BotToken    string
	PollTimeout int
	Debug       bool
}

// botAPI is the subset of *tgbotapi.BotAPI the channel uses.
type botAPI interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramChannel implements ChatChannel for Telegram Bot API.
type TelegramChannel struct {
	bot         botAPI
	pollTimeout int
	logger      *slog.Logger
}

// NewTelegramChannel creates a new Telegram channel. It contacts Telegram
// once to verify the token.
func NewTelegramChannel(config *TelegramConfig) (*TelegramChannel, error) {
	bot, err := tgbotapi.NewBotAPI(config.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	bot.Debug = config.Debug
	slog.Info("telegram: authorized", "username", bot.Self.UserName)

	return newChannel(bot, config.PollTimeout), nil
}

func newChannel(bot botAPI, pollTimeout int) *TelegramChannel {
	if pollTimeout <= 0 {
		pollTimeout = DefaultPollTimeout
	}
	t := &TelegramChannel{
		bot:         bot,
		pollTimeout: pollTimeout,
	}
	t.logger = slog.Default().With("platform", t.Name())
	return t
}

// Name returns the platform name.
func (t *TelegramChannel) Name() chat_apps.Platform {
	return chat_apps.PlatformTelegram
}

// Run long-polls for updates until ctx is done. Messages are handled one at
// a time in arrival order.
func (t *TelegramChannel) Run(ctx context.Context, handler channels.Handler) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = t.pollTimeout
	updates := t.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			t.bot.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			msg, err := parseUpdate(update)
			if err != nil {
				t.logger.Debug("telegram: skipping update", "update_id", update.UpdateID, "error", err)
				continue
			}
			out := handler(ctx, msg)
			if out == nil {
				continue
			}
			if err := t.sendReply(ctx, out); err != nil {
				t.logger.Warn("telegram: failed to send reply", "chat_id", out.PlatformChatID, "error", err)
			}
		}
	}
}

// sendReply sends out, retrying once when the failure is transient.
func (t *TelegramChannel) sendReply(ctx context.Context, out *chat_apps.OutgoingMessage) error {
	err := t.SendMessage(ctx, out)
	var channelErr *channels.ChannelError
	if err != nil && errors.As(err, &channelErr) && channelErr.IsRetryable() {
		t.logger.Debug("telegram: retrying send", "chat_id", out.PlatformChatID, "error", err)
		err = t.SendMessage(ctx, out)
	}
	return err
}

// parseUpdate converts a Telegram update into an IncomingMessage.
func parseUpdate(update tgbotapi.Update) (*chat_apps.IncomingMessage, error) {
	var tgMsg *tgbotapi.Message
	switch {
	case update.Message != nil:
		tgMsg = update.Message
	case update.EditedMessage != nil:
		tgMsg = update.EditedMessage
	default:
		return nil, channels.ErrInvalidPayload
	}
	if tgMsg.Chat == nil {
		return nil, channels.ErrInvalidPayload
	}

	msg := &chat_apps.IncomingMessage{
		Platform:       chat_apps.PlatformTelegram,
		PlatformChatID: strconv.FormatInt(tgMsg.Chat.ID, 10),
		Type:           chat_apps.MessageTypeText,
		Content:        tgMsg.Text,
		Timestamp:      tgMsg.Time(),
		Metadata: map[string]string{
			"update_id":  strconv.Itoa(update.UpdateID),
			"message_id": strconv.Itoa(tgMsg.MessageID),
		},
	}
	if tgMsg.Date == 0 {
		msg.Timestamp = time.Now()
	}
	if tgMsg.From != nil {
		msg.PlatformUserID = strconv.FormatInt(tgMsg.From.ID, 10)
		msg.Metadata["username"] = tgMsg.From.UserName
		msg.Metadata["language_code"] = tgMsg.From.LanguageCode
	}
	if tgMsg.Text == "" {
		msg.Type = chat_apps.MessageTypeUnsupported
	}
	return msg, nil
}

// SendMessage sends a text message to Telegram.
func (t *TelegramChannel) SendMessage(_ context.Context, msg *chat_apps.OutgoingMessage) error {
	chatID, err := strconv.ParseInt(msg.PlatformChatID, 10, 64)
	if err != nil {
		return channels.ErrInvalidChatID.Wrap(err)
	}

	tgMsg := tgbotapi.NewMessage(chatID, msg.Content)
	if msg.ReplyToID != 0 {
		tgMsg.ReplyToMessageID = msg.ReplyToID
	}
	if _, err := t.bot.Send(tgMsg); err != nil {
		return channels.ErrSendFailed.Wrap(err)
	}
	return nil
}

// Close closes the Telegram channel.
func (t *TelegramChannel) Close() error {
	return nil
}

// Ensure TelegramChannel implements ChatChannel
var _ channels.ChatChannel = (*TelegramChannel)(nil)
