package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"alarm_gateway/api"
	"alarm_gateway/config"
	"alarm_gateway/database"
	"alarm_gateway/events"
	"alarm_gateway/logger"
	"alarm_gateway/models"
	"alarm_gateway/store"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

func main() {
	command := "serve"
	if len(os.Args) >= 2 {
		command = os.Args[1]
	}

	if command == "help" {
		showHelp()
		return
	}

	cfg := loadConfig()
	if err := logger.Init(cfg); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer func() {
		if err := logger.Close(); err != nil {
			log.Fatalf("Failed to close logging: %v", err)
		}
	}()

	switch command {
	case "serve":
		serveCommand(cfg)
	case "connect":
		connectCommand(cfg)
	case "db:info":
		dbInfoCommand(cfg)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		showHelp()
	}
}

func showHelp() {
	fmt.Println("Alarm Gateway - HTTP gateway for the alarm database")
	fmt.Println("")
	fmt.Println("Usage: go run main.go [command]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  serve      Start the HTTP server (default)")
	fmt.Println("  connect    Test database connection")
	fmt.Println("  db:info    Show database information")
	fmt.Println("  help       Show this help message")
	fmt.Println("")
	fmt.Println("Configuration:")
	fmt.Println("  config.yaml (optional), .env (optional) and the environment:")
	fmt.Println("  DB_HOST, DB_NAME, DB_USER, DB_PASSWORD, SECRET_KEY")
	fmt.Println("")
	fmt.Println("Sensor payload:")
	fmt.Println("  POST /receber_dados with body \"<movimento>,<fumo>\", e.g. \"1,230\"")
}

func loadConfig() *config.Config {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	return cfg
}

func serveCommand(cfg *config.Config) {
	// fail fast when the database is unreachable at startup
	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatalf("Connection failed: %v", err)
	}
	defer database.Close(db)
	logger.Printf("Connected to %s database", cfg.Database.Driver)

	publisher, err := events.NewPublisher(cfg.MQTT)
	if err != nil {
		logger.Fatalf("Event publisher failed: %v", err)
	}
	defer publisher.Close()

	statuses := api.DefaultStatusMap()
	if cfg.Server.StrictValidation {
		statuses = api.StrictStatusMap()
	}

	if cfg.Logging.LogLevel != logger.DEBUG {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := api.NewHandler(store.New(db, cfg.Database), publisher, statuses)

	srv := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           api.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("Server listening on http://%s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server failed: %v", err)
		}
	case <-ctx.Done():
		logger.Println("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("Graceful shutdown failed: %v", err)
		}
	}
}

func connectCommand(cfg *config.Config) {
	logger.Println("Testing database connection...")

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatalf("Connection failed: %v", err)
	}
	defer database.Close(db)

	logger.Printf("Successfully connected to %s database", cfg.Database.Driver)

	// Show connection info
	info := database.GetDatabaseInfo(context.Background(), db, cfg)
	infoJSON, _ := json.MarshalIndent(info, "", "  ")
	logger.Printf("Connection info: %s", infoJSON)
}

func dbInfoCommand(cfg *config.Config) {
	fmt.Println("Database Information:")
	fmt.Println(strings.Repeat("=", 50))

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	ctx := context.Background()
	info := database.GetDatabaseInfo(ctx, db, cfg)

	// Display basic database info
	fmt.Printf("Database Type:     %v\n", info["driver"])
	fmt.Printf("Schema:            %v\n", info["schema"])
	fmt.Printf("Connection Status: %v\n", getConnectionStatusText(info["connected"]))

	// Display database-specific connection details
	switch cfg.Database.Driver {
	case "mysql", "postgres":
		fmt.Printf("Host:              %v\n", info["host"])
		fmt.Printf("Port:              %v\n", info["port"])
		fmt.Printf("Database:          %v\n", info["database"])
	case "sqlite":
		fmt.Printf("File Path:         %v\n", info["path"])
	}

	if info["connected"] != true {
		fmt.Println("\nConnection failed - unable to retrieve detailed information")
		fmt.Println(strings.Repeat("=", 50))
		return
	}

	fmt.Println("\nConnection Pool:")
	fmt.Printf("  Max Connections: %v\n", info["max_open_connections"])
	fmt.Printf("  Open Connections:%v\n", info["open_connections"])
	fmt.Printf("  In Use:          %v\n", info["in_use"])
	fmt.Printf("  Idle:            %v\n", info["idle"])

	s := store.New(db, cfg.Database)
	fmt.Println("\nData Information:")
	counts, err := s.Counts(ctx)
	if err != nil {
		fmt.Printf("  Unable to count rows: %v\n", err)
	} else {
		fmt.Printf("  Alerts:          %d\n", counts[models.AlertsTable])
		fmt.Printf("  Actions:         %d\n", counts[models.ActionsTable])
		fmt.Printf("  Alarm States:    %d\n", counts[models.AlarmStateTable])
	}

	if state, err := s.AlarmState(ctx); err == nil {
		fmt.Printf("  Alarm State:     %s\n", state)
	} else {
		fmt.Printf("  Alarm State:     %v\n", err)
	}

	fmt.Println(strings.Repeat("=", 50))
}

func getConnectionStatusText(connected interface{}) string {
	if conn, ok := connected.(bool); ok && conn {
		return "✓ Connected"
	}
	return "✗ Disconnected"
}
