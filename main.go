package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"gamblelog/cmd"

	log "github.com/sirupsen/logrus"
)

func main() {
	// Cancel on SIGINT/SIGTERM so the server and workers shut down gracefully
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		log.Errorf("Application error: %v", err)
		stop()
		os.Exit(1)
	}
}
