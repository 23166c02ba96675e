package main

import (
	"os"
	"os/signal"
	"syscall"

	"rolerag/app/server"
	"rolerag/config"
	"rolerag/logger"
)

func main() {
	cfg := config.Load()

	log := logger.New(cfg.App.LogFilePath, cfg.App.Environment == "production")
	defer log.Sync()

	s := server.NewServer(cfg, log)

	go s.Run()

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	<-sigch
	log.Info("received shutdown signal, shutting down server")
	s.Stop()
}
