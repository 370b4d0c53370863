// Entry point for the recolte MCP service — stdio MCP transport plus an
// optional chi admin surface.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	recolte "github.com/hazyhaar/recolte"
	"github.com/hazyhaar/recolte/dbopen"
	"github.com/hazyhaar/recolte/session"

	"log/slog"
)

func main() {
	configPath := env("CONFIG_PATH", "recolte.yaml")
	sessionDB := env("SESSION_DB", "db/session.db")
	sessionID := env("SESSION_ID", "default")
	adminAddr := env("ADMIN_ADDR", "")
	logLevel := env("LOG_LEVEL", "info")

	// Logging goes to stderr: stdout carries the MCP transport.
	var lvl slog.Level
	switch logLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := dbopen.Open(sessionDB, dbopen.WithMkdirAll(), dbopen.WithSchema(session.Schema))
	if err != nil {
		slog.Error("session db", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	svc, err := recolte.NewService(recolte.Options{
		ConfigPath: configPath,
		Log:        session.NewLog(db),
		SessionID:  sessionID,
		Logger:     logger,
	})
	if err != nil {
		slog.Error("service", "error", err)
		os.Exit(1)
	}
	defer svc.Shutdown()

	// Re-hydrate recent results from the previous run of this session.
	svc.SessionBoundary(ctx, sessionID)

	mcpSrv := mcp.NewServer(&mcp.Implementation{
		Name:    "recolte",
		Version: "1.0.0",
	}, nil)
	if err := svc.RegisterMCP(mcpSrv); err != nil {
		slog.Error("register tools", "error", err)
		os.Exit(1)
	}

	if adminAddr != "" {
		go runAdmin(ctx, adminAddr, svc)
	}

	slog.Info("recolte starting", "session", sessionID, "config", configPath)
	if err := mcpSrv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		slog.Error("mcp server", "error", err)
		os.Exit(1)
	}
	slog.Info("recolte stopped")
}

// runAdmin serves a small operational surface next to the MCP loop.
func runAdmin(ctx context.Context, addr string, svc *recolte.Service) {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, map[string]string{"status": "ok"})
	})

	r.Get("/api/results", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, svc.Store().GetAll())
	})

	r.Post("/api/abort", func(w http.ResponseWriter, _ *http.Request) {
		svc.AbortAll()
		writeJSON(w, 200, map[string]string{"status": "aborted"})
	})

	r.Post("/api/session", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			SessionID string `json:"session_id"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.SessionID == "" {
			writeJSON(w, 400, map[string]string{"error": "session_id required"})
			return
		}
		svc.SessionBoundary(req.Context(), body.SessionID)
		writeJSON(w, 200, map[string]string{"status": "switched", "session_id": body.SessionID})
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("admin server starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("admin server", "error", err)
	}
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
