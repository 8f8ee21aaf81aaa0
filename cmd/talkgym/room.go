package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/talkgym/talkgym-client/internal/app"
	"github.com/talkgym/talkgym-client/internal/audio"
	"github.com/talkgym/talkgym-client/internal/player"
	"github.com/talkgym/talkgym-client/internal/room"
	"github.com/talkgym/talkgym-client/internal/view"
)

func newRoomCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "room <session-id>",
		Short: "Enter a session room interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoom(cmd.Context(), env, args[0])
		},
	}
}

func runRoom(ctx context.Context, env *cliEnv, sessionID string) error {
	visit, err := env.app.EnterRoom(ctx, sessionID, audio.NewFFmpegDevice())
	if err != nil {
		return err
	}
	defer visit.Leave()

	identity, err := env.app.Identity()
	if err != nil {
		return err
	}
	console := view.NewConsole(os.Stdout, identity.UserID)

	fmt.Printf("Room: %s — %s\n", visit.Session.Title, visit.Session.Topic)
	fmt.Println("Type to chat. Commands: /record /stop /who /play <n> /quit")

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	rendered := 0
	for {
		select {
		case <-ctx.Done():
			return nil

		case err := <-visit.Done():
			return err

		case <-visit.Sync.Updates():
			msgs := visit.Sync.State().Messages()
			for ; rendered < len(msgs); rendered++ {
				console.RenderMessage(msgs[rendered])
			}
			if visit.Controller.Recording() {
				console.RenderTranscript(visit.Controller.LiveTranscript())
			}
			console.RenderError(visit.Controller.Err())

		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if done := handleInput(ctx, env, visit, console, line); done {
				return nil
			}
		}
	}
}

// handleInput dispatches one line of operator input. Returns true on /quit.
func handleInput(ctx context.Context, env *cliEnv, visit *app.RoomVisit, console *view.Console, line string) bool {
	text := strings.TrimSpace(line)
	switch {
	case text == "/quit":
		return true

	case text == "/record":
		if err := visit.Controller.StartRecording(); err != nil {
			console.RenderError(visit.Controller.Err())
		} else {
			fmt.Println("Recording... type /stop to finish.")
		}

	case text == "/stop":
		visit.Controller.StopRecording()
		fmt.Println("Processing...")

	case text == "/who":
		console.RenderRoster(visit.Sync.State().Participants())

	case strings.HasPrefix(text, "/play "):
		playMessage(ctx, env, visit, strings.TrimPrefix(text, "/play "))

	case text == "":
		// Blank composer input emits nothing.

	default:
		if err := visit.Controller.SendText(text); err != nil {
			console.RenderError("Failed to send message")
		}
	}
	return false
}

// playMessage streams an audio message's clip through the speakers. The
// argument is the 1-based index of the message in the feed.
func playMessage(ctx context.Context, env *cliEnv, visit *app.RoomVisit, arg string) {
	msgs := visit.Sync.State().Messages()

	var target *room.Message
	var n int
	if _, err := fmt.Sscanf(strings.TrimSpace(arg), "%d", &n); err == nil && n >= 1 && n <= len(msgs) {
		if m := msgs[n-1]; m.Kind == room.MessageAudio {
			target = &m
		}
	}
	if target == nil {
		fmt.Println("No audio message at that position.")
		return
	}

	p := player.New(&player.FFplaySink{}, env.logger)
	if err := p.Load(ctx, target.AudioURL); err != nil {
		fmt.Println("Failed to load audio.")
		return
	}
	if err := p.Play(ctx); err != nil {
		fmt.Println("Failed to play audio.")
	}
}
