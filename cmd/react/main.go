// Command react sends a reaction or a comment to a live presentation from
// this device.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/livedeck/reactions-backend/device"
	"github.com/livedeck/reactions-backend/redis"
	"github.com/livedeck/reactions-backend/session"
)

func main() {
	var (
		presentation = flag.String("presentation", "", "presentation slug")
		reaction     = flag.String("reaction", "", "reaction kind to send")
		comment      = flag.String("comment", "", "comment text to send")
		username     = flag.String("username", "", "set the display name before sending")
		tokenURL     = flag.String("tokens", "http://localhost:8080/api/tokens", "token endpoint")
		redisAddr    = flag.String("redis", "localhost:6379", "redis address")
		namespace    = flag.String("namespace", "conference", "cache/topic namespace")
		devicePath   = flag.String("device", defaultDevicePath(), "device identity file")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := run(logger, *presentation, *reaction, *comment, *username, *tokenURL, *redisAddr, *namespace, *devicePath); err != nil {
		logger.Error("react failed", "error", err.Error())
		os.Exit(1)
	}
}

func run(logger *slog.Logger, presentation, reaction, comment, username, tokenURL, redisAddr, namespace, devicePath string) error {
	if presentation == "" {
		return fmt.Errorf("-presentation is required")
	}
	if (reaction == "") == (comment == "") {
		return fmt.Errorf("exactly one of -reaction or -comment is required")
	}

	ctx := context.Background()

	store := device.NewStore(devicePath)
	id, err := store.Load()
	if err != nil {
		return err
	}
	if username != "" {
		if id, err = store.SetUsername(username); err != nil {
			return err
		}
	}
	if id.Username == "" {
		return fmt.Errorf("no display name set; pass -username once to choose one")
	}

	rdb, err := redis.Connect(ctx, redis.Config{
		Addr:      redisAddr,
		Namespace: namespace,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	s, err := session.New(session.Config{
		Presentation: presentation,
		Username:     id.Username,
		Credentials:  session.NewCredentials(tokenURL, id.ID),
		Transport:    session.RedisTransport{R: rdb},
		Boards:       rdb,
		Logger:       logger,
	})
	if err != nil {
		return err
	}
	defer s.Close()

	if reaction != "" {
		return s.SendReaction(ctx, reaction)
	}
	return s.SendComment(ctx, comment)
}

func defaultDevicePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "device.json"
	}
	return home + "/.livedeck/device.json"
}
