package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"studio-backend/internal/common/config"
	"studio-backend/internal/relay"
)

// ============================================================
// Collaboration Relay
// ============================================================

func main() {
	cfg := config.Load()

	hub := relay.NewHub()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /rooms/{room}", hub.HandleWS)
	mux.HandleFunc("GET /health/live", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status": "alive",
			"rooms":  hub.RoomCount(),
		})
	})

	addr := fmt.Sprintf(":%s", cfg.RelayPort)
	server := &http.Server{
		Addr:        addr,
		Handler:     mux,
		ReadTimeout: time.Duration(cfg.ReadTimeout) * time.Second,
	}

	log.Printf("Starting Collaboration Relay on %s (env: %s)", addr, cfg.Environment)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Failed to start relay: %v", err)
	}
}
