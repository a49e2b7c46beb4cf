/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the care-engine server. Handles flag parsing,
  store selection, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Initialize SQLite store (migrates and seeds on first run)
  3. Optionally route shift state to DynamoDB
  4. Create API handler with dependencies
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port   HTTP server port (default: 8080)
  -db     SQLite database path (default: care.db)
          Use ":memory:" for an in-memory database
  -store  "sqlite" (default), "memory" (no persistence, dev only), or
          "dynamo". With "dynamo" the contended shift state machine
          lives in DynamoDB while bookings and configuration stay in
          SQLite.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/care.db"

  # Run with in-memory database
  ./server -db=":memory:"

  # Run with DynamoDB-backed shifts against a local stack
  DYNAMODB_ENDPOINT=http://localhost:8000 ./server -store=dynamo

ENVIRONMENT:
  Loaded from .env via godotenv. Used with -store=dynamo:
    AWS_REGION, AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY,
    DYNAMODB_ENDPOINT, SHIFTS_TABLE

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
  - store/dynamo/dynamo.go: DynamoDB shift store
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/pswdirect/care-engine/api"
	"github.com/pswdirect/care-engine/shift"
	"github.com/pswdirect/care-engine/store/dynamo"
	"github.com/pswdirect/care-engine/store/memory"
	"github.com/pswdirect/care-engine/store/sqlite"
)

// logNotifier is the default completion-notice sink until a real email
// sender is wired in front of it.
type logNotifier struct{}

func (logNotifier) Notify(event string, payload map[string]string) error {
	log.Printf("notify %s: shift=%s booking=%s to=%s", event,
		payload["shift_id"], payload["booking_id"], payload["notify_email"])
	return nil
}

// splitStore routes shift persistence to DynamoDB while bookings and
// configuration stay relational.
type splitStore struct {
	*sqlite.Store
	shifts shift.Store
}

func (s *splitStore) CreateShift(ctx context.Context, sh shift.Shift) error {
	return s.shifts.CreateShift(ctx, sh)
}

func (s *splitStore) GetShift(ctx context.Context, id string) (shift.Shift, error) {
	return s.shifts.GetShift(ctx, id)
}

func (s *splitStore) TransitionShift(ctx context.Context, id string, from shift.Status, apply func(*shift.Shift) error) (shift.Shift, error) {
	return s.shifts.TransitionShift(ctx, id, from, apply)
}

func (s *splitStore) ShiftsByStatus(ctx context.Context, status shift.Status) ([]shift.Shift, error) {
	return s.shifts.ShiftsByStatus(ctx, status)
}

func (s *splitStore) CompletedShifts(ctx context.Context, from, to time.Time) ([]shift.Shift, error) {
	return s.shifts.CompletedShifts(ctx, from, to)
}

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "care.db", "SQLite database path")
	backend := flag.String("store", "sqlite", "store backend: sqlite, memory, or dynamo")
	flag.Parse()

	// Initialize store
	var store api.Store
	switch *backend {
	case "memory":
		store = memory.New()
	case "sqlite", "dynamo":
		sqliteStore, err := sqlite.New(*dbPath)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer sqliteStore.Close()
		store = sqliteStore

		if *backend == "dynamo" {
			ddb, err := dynamo.NewFromEnv(context.Background())
			if err != nil {
				log.Fatalf("Failed to initialize DynamoDB shift store: %v", err)
			}
			store = &splitStore{Store: sqliteStore, shifts: ddb}
		}
	default:
		log.Fatalf("Unknown -store %q (want sqlite, memory, or dynamo)", *backend)
	}

	// Initialize handler
	handler := api.NewHandler(store, logNotifier{})

	// Create router
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on http://localhost:%d", *port)
		log.Printf("📊 API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
