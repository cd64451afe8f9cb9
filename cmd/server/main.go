package main

import (
	"context"
	"log"
	"net/http"

	"github.com/canteen-pay/api/internal/config"
	"github.com/canteen-pay/api/internal/database"
	"github.com/canteen-pay/api/internal/router"
	"github.com/canteen-pay/api/internal/ws"
)

func main() {
	cfg := config.Load()

	if err := database.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatalf("FATAL: running migrations: %v", err)
	}

	pool, err := database.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("FATAL: connecting to database: %v", err)
	}
	defer pool.Close()

	queries := database.New(pool)

	hub := ws.NewHub()
	go hub.Run()

	r := router.New(cfg, queries, pool, hub)

	addr := ":" + cfg.Port
	log.Printf("listening on %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("FATAL: server stopped: %v", err)
	}
}
