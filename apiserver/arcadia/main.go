// Command arcadia-api serves the score leaderboard REST API.
package main

import (
	"arcadia/leaderboard"
	"arcadia/util"
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	util.InitLogging("arcadia-api")
	defer func() {
		if err := recover(); err != nil {
			util.LogPanic(err)
			panic(err)
		}
	}()

	cfg, err := leaderboard.ConfigFromEnv()
	if err != nil {
		log.Fatalf("api: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, err := leaderboard.NewServer(ctx, cfg)
	if err != nil {
		log.Fatalf("api: %v\n", err)
	}
	if err = server.Run(ctx); err != nil {
		log.Printf("api: %v\n", err)
	}
	_ = util.FlushLogger()
}
