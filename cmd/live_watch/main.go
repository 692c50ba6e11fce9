package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/yungbote/edupulse-backend/internal/app"
	"github.com/yungbote/edupulse-backend/internal/realtime"
)

// live_watch streams realtime events for a live session or a student as JSON lines.
func main() {
	var sessionID, userID string
	flag.StringVar(&sessionID, "session", "", "live session id to follow")
	flag.StringVar(&userID, "user", "", "user id whose profile events to follow")
	flag.Parse()

	var channels []string
	if id, err := uuid.Parse(sessionID); err == nil && id != uuid.Nil {
		channels = append(channels, realtime.SessionChannel(id))
	}
	if id, err := uuid.Parse(userID); err == nil && id != uuid.Nil {
		channels = append(channels, realtime.UserChannel(id))
	}
	if len(channels) == 0 {
		fmt.Fprintln(os.Stderr, "provide -session and/or -user")
		os.Exit(2)
	}

	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	if application.Cfg.Redis.Addr == "" {
		fmt.Fprintln(os.Stderr, "REDIS_ADDR is unset; only events published by this process are visible")
	}

	client := application.Hub.NewClient(uuid.Nil)
	for _, ch := range channels {
		application.Hub.AddChannel(client, ch)
	}
	defer application.Hub.CloseClient(client)

	if err := application.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "start app: %v\n", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-client.Outbound:
			if !ok {
				return
			}
			if err := enc.Encode(msg); err != nil {
				fmt.Fprintf(os.Stderr, "encode event: %v\n", err)
				return
			}
		}
	}
}
