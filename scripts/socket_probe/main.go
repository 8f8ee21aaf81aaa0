// Command socket_probe is a development helper that attaches to a session's
// realtime channel and prints every event, optionally sending text lines from
// stdin. Useful for poking at a backend without the full client.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/talkgym/talkgym-client/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("socket_probe: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:5000/socket", "realtime channel address")
	roomID := flag.String("room", "", "session/room id to join")
	userID := flag.String("user", "probe", "user id")
	userName := flag.String("name", "probe", "display name")
	flag.Parse()

	if *roomID == "" {
		return fmt.Errorf("-room is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	join, err := proto.Wrap(proto.EventJoinRoom, proto.JoinRoomData{
		RoomID: *roomID, UserID: *userID, UserName: *userName,
	})
	if err != nil {
		return err
	}
	if err := wsjson.Write(ctx, conn, join); err != nil {
		return fmt.Errorf("join: %w", err)
	}
	fmt.Printf("joined room %s as %s\n", *roomID, *userName)

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				continue
			}
			env, err := proto.Wrap(proto.EventTextMessage, proto.MessageData{
				MessageID: uuid.NewString(),
				RoomID:    *roomID,
				UserID:    *userID,
				UserName:  *userName,
				Content:   text,
				Timestamp: time.Now().UnixMilli(),
			})
			if err != nil {
				log.Printf("marshal: %v", err)
				continue
			}
			if err := wsjson.Write(ctx, conn, env); err != nil {
				log.Printf("send: %v", err)
				return
			}
		}
	}()

	for {
		var env proto.Envelope
		if err := wsjson.Read(ctx, conn, &env); err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		pretty, _ := json.Marshal(env.Data)
		fmt.Printf("event=%s data=%s\n", env.Event, pretty)
	}
}
