// Package main wires a demo host around the engine: a SQLite persistence
// backend, the WebSocket-driven simhost.Host adapter, and a thin REST
// surface for the player lifecycle edges a real game host would normally
// call straight out of its own tick loop. No business logic belongs here.
package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/briarwatch/survivalcore/internal/config"
	"github.com/briarwatch/survivalcore/internal/domain/player"
	"github.com/briarwatch/survivalcore/internal/engine"
	"github.com/briarwatch/survivalcore/internal/hostport/simhost"
	"github.com/briarwatch/survivalcore/internal/infra/storage"
	"github.com/briarwatch/survivalcore/internal/platform/logger"
)

func main() {
	appLogger := logger.NewDefault()
	appLogger.Info("Initializing survivalcore demo host...")

	env := config.LoadEnvSource()

	cfg, err := config.New(config.Default())
	if err != nil {
		appLogger.Error("invalid configuration: " + err.Error())
		os.Exit(1)
	}

	db, err := storage.OpenSQLite(env.StorageDSN)
	if err != nil {
		appLogger.Error("failed to open storage: " + err.Error())
		os.Exit(1)
	}
	defer db.Close()

	hub := simhost.NewHub(appLogger)
	host := simhost.NewHost(hub, appLogger)

	eng := engine.New(cfg, host, db, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go hub.Run(ctx)
	eng.Start(ctx)

	http.HandleFunc("/ws", host.ServeHTTP)
	http.HandleFunc("/api/player/ready", readyHandler(eng))
	http.HandleFunc("/api/player/disconnect", disconnectHandler(eng))
	http.HandleFunc("/api/player/kill", killHandler(eng))
	http.HandleFunc("/api/player/death", deathHandler(eng))
	http.HandleFunc("/api/player/damage-dealt", damageDealtHandler(eng))
	http.HandleFunc("/api/player/sleep", sleepHandler(eng))

	go func() {
		appLogger.Info("HTTP + WS server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			log.Fatalf("server failed: %v", err)
		}
	}()

	appLogger.Info("Demo host running. Press Ctrl+C to exit.")
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	eng.Stop()
}

func parsePlayerID(r *http.Request) (player.ID, error) {
	raw := r.URL.Query().Get("player_id")
	return uuid.Parse(raw)
}

func readyHandler(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parsePlayerID(r)
		if err != nil {
			http.Error(w, "invalid player_id", http.StatusBadRequest)
			return
		}
		eng.OnPlayerReady(r.Context(), id)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	}
}

func disconnectHandler(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parsePlayerID(r)
		if err != nil {
			http.Error(w, "invalid player_id", http.StatusBadRequest)
			return
		}
		eng.OnPlayerDisconnect(r.Context(), id)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "disconnected"})
	}
}

func deathHandler(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parsePlayerID(r)
		if err != nil {
			http.Error(w, "invalid player_id", http.StatusBadRequest)
			return
		}
		eng.OnDeath(r.Context(), id)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func damageDealtHandler(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parsePlayerID(r)
		if err != nil {
			http.Error(w, "invalid player_id", http.StatusBadRequest)
			return
		}
		eng.OnDamageDealt(id)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func sleepHandler(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parsePlayerID(r)
		if err != nil {
			http.Error(w, "invalid player_id", http.StatusBadRequest)
			return
		}
		var body struct {
			BedBlockID string `json:"bed_block_id"`
			IsNight    bool   `json:"is_night"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		eng.OnSleep(r.Context(), id, body.BedBlockID, body.IsNight)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func killHandler(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parsePlayerID(r)
		if err != nil {
			http.Error(w, "invalid player_id", http.StatusBadRequest)
			return
		}
		var body struct {
			XP float64 `json:"xp"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		eng.OnKill(r.Context(), id, body.XP)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
