package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/finease/finease-server/internal/api/handlers"
	"github.com/finease/finease-server/internal/api/middleware"
	"github.com/finease/finease-server/internal/auth"
	"github.com/finease/finease-server/internal/finance"
	infraMongo "github.com/finease/finease-server/internal/infra/mongo"
	"github.com/finease/finease-server/internal/logger"
)

func main() {
	// Parse command-line flags
	var (
		port       = flag.String("port", "5000", "HTTP server port")
		mongoURI   = flag.String("mongo-uri", os.Getenv("MONGODB_URI"), "MongoDB connection URI (or set MONGODB_URI env)")
		database   = flag.String("database", "finease", "MongoDB database name")
		collection = flag.String("collection", "finance-all", "MongoDB collection name")
		audience   = flag.String("audience", os.Getenv("GOOGLE_PROJECT_ID"), "ID token audience, the Firebase project ID (or set GOOGLE_PROJECT_ID env)")
		origin     = flag.String("origin", "*", "Allowed CORS origin")
	)
	flag.Parse()

	// Initialize logger
	log := logger.New()

	if *mongoURI == "" {
		log.Fatal().Msg("No MongoDB URI configured - set MONGODB_URI or pass -mongo-uri")
	}
	if *audience == "" {
		log.Fatal().Msg("No token audience configured - set GOOGLE_PROJECT_ID or pass -audience")
	}

	ctx := context.Background()

	// Connect the record store once at startup; the driver pools connections.
	recordStore, err := infraMongo.NewStore(ctx, *mongoURI, *database, *collection)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect record store")
	}
	defer recordStore.Close(ctx)

	log.Info().Str("database", *database).Str("collection", *collection).Msg("Connected to MongoDB")

	verifier, err := auth.NewGoogleVerifier(ctx, *audience)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create token verifier")
	}

	// Initialize service and handlers
	service := finance.NewService(recordStore, log)
	transactionsHandler := handlers.NewTransactionsHandler(service, log)

	// Every data-access route runs behind the auth guard.
	requireAuth := middleware.RequireAuth(verifier, log)

	// Create router
	mux := http.NewServeMux()

	// Transactions collection endpoints
	mux.Handle("/finance-all", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			transactionsHandler.List(w, r)
		case http.MethodPost:
			transactionsHandler.Create(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})))

	// Single-transaction endpoints
	mux.Handle("/finance-all/", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/finance-all/")
		if id == "" || strings.Contains(id, "/") {
			middleware.WriteError(w, http.StatusBadRequest, "Transaction ID is required")
			return
		}

		switch r.Method {
		case http.MethodGet:
			transactionsHandler.Get(w, r, id)
		case http.MethodPut:
			transactionsHandler.Update(w, r, id)
		case http.MethodDelete:
			transactionsHandler.Delete(w, r, id)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})))

	// Overview endpoint
	mux.Handle("/overview", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			transactionsHandler.Overview(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})))

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Liveness root. The catch-all pattern also sees unknown paths.
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			middleware.WriteError(w, http.StatusNotFound, "Not found")
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("Server is running fine"))
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(*origin)(mux),
			),
		),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	if err := recordStore.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to close record store")
	}

	log.Info().Msg("Server exited")
}
