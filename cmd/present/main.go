// Command present runs the presenter side of a live session: it subscribes
// to the presentation's topic, feeds the leaderboards and prints incoming
// comments until interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/livedeck/reactions-backend/device"
	"github.com/livedeck/reactions-backend/redis"
	"github.com/livedeck/reactions-backend/session"
)

func main() {
	var (
		presentation = flag.String("presentation", "", "presentation slug to listen on")
		tokenURL     = flag.String("tokens", "http://localhost:8080/api/tokens", "token endpoint")
		redisAddr    = flag.String("redis", "localhost:6379", "redis address")
		namespace    = flag.String("namespace", "conference", "cache/topic namespace")
		devicePath   = flag.String("device", defaultDevicePath(), "device identity file")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := run(logger, *presentation, *tokenURL, *redisAddr, *namespace, *devicePath); err != nil {
		logger.Error("present failed", "error", err.Error())
		os.Exit(1)
	}
}

func run(logger *slog.Logger, presentation, tokenURL, redisAddr, namespace, devicePath string) error {
	if presentation == "" {
		return fmt.Errorf("-presentation is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	id, err := device.NewStore(devicePath).Load()
	if err != nil {
		return err
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
		OnComment: func(username, message string) {
			fmt.Printf("%s: %s\n", username, message)
		},
		OnReaction: func(username, kind string) {
			fmt.Printf("%s reacted with %s\n", username, kind)
		},
	})
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Open(ctx); err != nil {
		return err
	}
	logger.Info("Presenting", "presentation", presentation, "device", id.ID)

	<-ctx.Done()
	return nil
}

func defaultDevicePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "device.json"
	}
	return home + "/.livedeck/device.json"
}
