// Package main provides the entry point for the Larder server application.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/larderapp/larder-server/internal/di"
	"github.com/larderapp/larder-server/internal/logger"
)

func main() {
	// Create DI container
	injector := di.NewContainer()

	// Bootstrap all services
	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap server: %v\n", err)
		os.Exit(1)
	}

	// Get logger for shutdown messages
	log := do.MustInvoke[*logger.Logger](injector)

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	// Handles implement do.Shutdownable, so the container stops the HTTP
	// server first and closes the search index and database after it.
	if err := injector.Shutdown(); err != nil {
		log.Fatal("Shutdown error", "error", err)
	}

	log.Info("Kitchen closed")
}
