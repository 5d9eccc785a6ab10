package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"registrar/internal/config"
	gsheetsconnector "registrar/internal/connectors/gsheets"
	"registrar/internal/listener"
	"registrar/internal/registry"
	"registrar/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	source, err := gsheetsconnector.NewConnector(ctx, cfg)
	must(err)

	cache := registry.NewCache(time.Duration(cfg.CacheTTLSec) * time.Second)
	svc := listener.NewService(db, cfg, source, cache)
	must(svc.Run(ctx))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
