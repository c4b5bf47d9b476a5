package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/evidenceledger/veritas/internal/config"
	"github.com/evidenceledger/veritas/internal/server"
)

var (
	configFile    string
	port          string
	publicURL     string
	adminPassword string
	rpcURL        string
	contract      string
	network       string
	chainID       int64
	forceMock     bool
	development   bool
	databasePath  string
	templateDir   string
)

func main() {
	// Optional YAML file, overridden by environment variables and then by flags
	flag.StringVar(&configFile, "config", "", "Path to a YAML configuration file")

	flag.StringVar(&port, "port", "", "Port for the HTTP server")
	flag.StringVar(&publicURL, "public-url", "", "Public URL of the server, used in verification links")

	// The password for admin screens
	flag.StringVar(&adminPassword, "admin-password", "", "Admin password for the server")

	// Ledger access. Without an RPC URL and a contract the server runs in mock mode.
	flag.StringVar(&rpcURL, "rpc-url", "", "JSON-RPC endpoint of the ledger")
	flag.StringVar(&contract, "contract", "", "Address of the registry contract")
	flag.StringVar(&network, "network", "", "Network name, for explorer links")
	flag.Int64Var(&chainID, "chain-id", 0, "Chain ID used to sign transactions")
	flag.BoolVar(&forceMock, "mock", false, "Simulate anchors even when a ledger is configured")

	flag.BoolVar(&development, "dev", false, "Development mode: debug logs and error causes in responses")
	flag.StringVar(&databasePath, "db", "", "Path of the SQLite record store, empty to disable")
	flag.StringVar(&templateDir, "templates", "", "Load page templates from this directory instead of the embedded ones")

	flag.Parse()

	cfg, err := config.Load(configFile, os.Getenv)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Only flags given on the command line override the configuration
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Port = port
		case "public-url":
			cfg.PublicURL = strings.TrimRight(publicURL, "/")
		case "admin-password":
			cfg.AdminPassword = adminPassword
		case "rpc-url":
			cfg.Chain.RPCURL = rpcURL
		case "contract":
			cfg.Chain.ContractAddress = contract
		case "network":
			cfg.Chain.Network = network
		case "chain-id":
			cfg.Chain.ChainID = chainID
		case "mock":
			cfg.Chain.ForceMock = forceMock
		case "dev":
			cfg.Development = development
		case "db":
			cfg.DatabasePath = databasePath
		case "templates":
			cfg.TemplateDir = templateDir
		}
	})

	// Initialize logging
	level := slog.LevelInfo
	if cfg.Development {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	if cfg.Chain.Simulated() {
		slog.Warn("Running in mock mode, anchors are not sent to any ledger")
	}

	// Create the server. This opens the record store and builds the ledger clients.
	srv, err := server.New(cfg, server.Options{})
	if err != nil {
		slog.Error("Failed to create server", "error", err)
		os.Exit(1)
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received")
		cancel()
	}()

	// Start server
	if err := srv.Start(ctx); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
