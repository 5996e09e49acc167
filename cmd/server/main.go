package main

import (
	"context"
	"embed"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"notesvilla/internal/auth"
	"notesvilla/internal/config"
	"notesvilla/internal/db"
	mcpserver "notesvilla/internal/mcp"
	"notesvilla/internal/notes"
	"notesvilla/internal/storage"
	"notesvilla/internal/upload"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
)

//go:embed static
var staticFS embed.FS

func main() {
	// Config: .env is optional, real env always wins
	_ = godotenv.Load()
	cfg := config.Load()

	// Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}
	if cfg.AdminPassword == "" {
		log.Fatal("ADMIN_PASSWORD must be set")
	}

	// Context for startup
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Connect to MongoDB
	logger.Info("connecting to MongoDB", "uri", cfg.MongoURI)
	database, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("failed to connect to MongoDB: %v", err)
	}
	logger.Info("connected to MongoDB")

	// Wire dependencies
	noteRepo := notes.NewRepo(database)
	if err := noteRepo.EnsureIndexes(ctx); err != nil {
		logger.Warn("failed to ensure indexes", "error", err)
	}

	store, err := storage.NewUploader(cfg, logger)
	if err != nil {
		log.Fatalf("failed to set up storage backend: %v", err)
	}
	receiver, err := upload.NewReceiver(cfg.UploadsDir, cfg.MaxFileSize, cfg.MaxFiles, logger)
	if err != nil {
		log.Fatalf("failed to set up upload staging: %v", err)
	}

	noteSvc := notes.NewService(noteRepo, store, logger)
	noteHandler := notes.NewHandler(noteSvc, receiver, store, logger)

	tokenSvc := auth.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry)
	authHandler := auth.NewHandler(tokenSvc, cfg.AdminUsername, cfg.AdminPassword, logger)
	admin := auth.RequireAdmin(tokenSvc)

	// Create MCP server
	mcpSrv := mcpserver.NewServer(noteSvc, cfg.BaseURL)

	// HTTP router
	mux := http.NewServeMux()

	// Static assets (download orchestrator script, landing page)
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		log.Fatalf("failed to get static fs: %v", err)
	}
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(sub))))

	// Locally stored files, served under their randomized names
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(cfg.UploadsDir))))

	// Admin auth
	mux.HandleFunc("POST /api/admin/login", authHandler.Login)

	// Notes API: public reads
	mux.HandleFunc("GET /api/notes", noteHandler.List)
	mux.HandleFunc("GET /api/notes/search", noteHandler.Search)
	mux.HandleFunc("GET /api/notes/subjects", noteHandler.Subjects)
	mux.HandleFunc("GET /api/notes/subject/{subjectName}", noteHandler.BySubject)
	mux.HandleFunc("GET /api/notes/note/{id}", noteHandler.GetByID)
	mux.HandleFunc("GET /api/notes/download/{storedName}", noteHandler.Download)

	// Notes API: admin mutations
	mux.Handle("POST /api/notes/upload", admin(http.HandlerFunc(noteHandler.Upload)))
	mux.Handle("POST /api/notes/upload-single", admin(http.HandlerFunc(noteHandler.UploadSingle)))
	mux.Handle("PUT /api/notes/note/{id}", admin(http.HandlerFunc(noteHandler.Update)))
	mux.Handle("DELETE /api/notes/note/{id}", admin(http.HandlerFunc(noteHandler.Delete)))

	// MCP endpoint (HTTP transport)
	mcpHTTP := server.NewStreamableHTTPServer(mcpSrv)
	mux.Handle("POST /mcp", mcpHTTP)
	mux.Handle("GET /mcp", mcpHTTP)
	mux.Handle("DELETE /mcp", mcpHTTP)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Start server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      withCORS(mux),
		ReadTimeout:  5 * time.Minute, // uploads can be slow on bad links
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
	}()

	logger.Info("server starting", "port", cfg.Port, "storage", store.BackendName())

	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}

	logger.Info("server stopped")
}

// withCORS lets the separately hosted frontend talk to the API and,
// importantly, lets its fetch-based download strategy read file bodies.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
