package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/hrygo/linguapet/ai/brain"
	"github.com/hrygo/linguapet/plugin/chat_apps"
	"github.com/hrygo/linguapet/plugin/chat_apps/channels"
)

const (
	commandQuit = "/quit"
	commandExit = "/exit"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the pet in the terminal",
	RunE: func(cmd *cobra.Command, _ []string) error {
		instanceProfile, err := loadProfile()
		if err != nil {
			return err
		}
		app, err := newApp(cmd.Context(), instanceProfile)
		if err != nil {
			printDatabaseError(err, instanceProfile)
			return err
		}
		defer app.Close()

		repl := newChatREPL(filepath.Join(historyDir(instanceProfile.Data), ".linguapet_history"))
		defer repl.Close()

		dispatcher := channels.NewDispatcher(app.engine, instanceProfile.PetName, instanceProfile.FavoriteTopic, nil)
		return repl.Run(cmd.Context(), instanceProfile.PetName, dispatcher.Handle, cmd.OutOrStdout())
	},
}

// chatREPL provides input history and line editing for terminal chat.
type chatREPL struct {
	line        *liner.State
	historyFile string
}

func newChatREPL(historyFile string) *chatREPL {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	r := &chatREPL{line: line, historyFile: historyFile}
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	return r
}

// Run reads lines until /quit, Ctrl+C or EOF and prints each reply.
func (r *chatREPL) Run(ctx context.Context, petName string, handle channels.Handler, out io.Writer) error {
	fmt.Fprintf(out, "%s: 我在，想聊什么呀？（输入 /help 查看命令，/quit 退出）\n", petName)
	for {
		input, err := r.line.Prompt("你> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		r.line.AppendHistory(input)

		if input == commandQuit || input == commandExit {
			fmt.Fprintf(out, "%s: 再见啦！\n", petName)
			return nil
		}

		reply := handle(ctx, &chat_apps.IncomingMessage{
			Platform:       chat_apps.PlatformTerminal,
			PlatformChatID: "local",
			Type:           chat_apps.MessageTypeText,
			Content:        input,
		})
		if reply == nil {
			continue
		}
		fmt.Fprintln(out, formatReply(petName, reply))
	}
}

// Close saves history and restores the terminal.
func (r *chatREPL) Close() {
	if f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
		_, _ = r.line.WriteHistory(f)
		f.Close()
	}
	r.line.Close()
}

var emotionMarks = map[brain.Emotion]string{
	brain.EmotionHappy:     "(^_^)",
	brain.EmotionSad:       "(T_T)",
	brain.EmotionThinking:  "(._.)?",
	brain.EmotionListening: "(o_o)",
	brain.EmotionAngry:     "(>_<)",
}

func formatReply(petName string, reply *chat_apps.OutgoingMessage) string {
	if mark, ok := emotionMarks[brain.Emotion(reply.Emotion)]; ok {
		return fmt.Sprintf("%s %s: %s", mark, petName, reply.Content)
	}
	return fmt.Sprintf("%s: %s", petName, reply.Content)
}

// historyDir is the data directory, or the home directory for the
// in-memory driver.
func historyDir(data string) string {
	if data != "" {
		return data
	}
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return os.TempDir()
}
