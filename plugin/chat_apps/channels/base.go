// Package channels provides the ChatChannel interface for all chat platform integrations.
package channels

import (
	"context"
	"io"

	"github.com/hrygo/linguapet/plugin/chat_apps"
)

// Handler turns one incoming message into a reply. A nil reply means
// nothing should be sent.
type Handler func(ctx context.Context, msg *chat_apps.IncomingMessage) *chat_apps.OutgoingMessage

// ChatChannel defines the interface for all chat platform integrations.
type ChatChannel interface {
	io.Closer

	// Name returns the platform name.
	Name() chat_apps.Platform

	// Run receives messages until ctx is done, passing each to handler and
	// sending back whatever it returns.
	Run(ctx context.Context, handler Handler) error

	// SendMessage sends a single message to the chat platform.
	SendMessage(ctx context.Context, msg *chat_apps.OutgoingMessage) error
}

// Errors
var (
	ErrInvalidPayload = &ChannelError{Code: "INVALID_PAYLOAD", Message: "could not parse update"}
	ErrInvalidChatID  = &ChannelError{Code: "INVALID_CHAT_ID", Message: "chat id is not valid for platform"}
	ErrSendFailed     = &ChannelError{Code: "SEND_FAILED", Message: "failed to send message"}
)

// ChannelError represents an error in channel operations.
type ChannelError struct {
	Code    string
	Message string
	Err     error
}

func (e *ChannelError) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Code + ": " + e.Message
}

func (e *ChannelError) Unwrap() error {
	return e.Err
}

// Is matches channel errors by code so wrapped instances compare equal to
// the sentinels above.
func (e *ChannelError) Is(target error) bool {
	t, ok := target.(*ChannelError)
	return ok && t.Code == e.Code
}

// Wrap returns a copy of e carrying err.
func (e *ChannelError) Wrap(err error) *ChannelError {
	return &ChannelError{Code: e.Code, Message: e.Message, Err: err}
}

// IsRetryable returns true if the error is transient and the operation can be retried.
func (e *ChannelError) IsRetryable() bool {
	switch e.Code {
	case "INVALID_PAYLOAD", "INVALID_CHAT_ID":
		return false
	default:
		return true
	}
}
