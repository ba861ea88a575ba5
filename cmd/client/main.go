package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/offsync/internal/client/cli"
	"github.com/iudanet/offsync/internal/client/iocli"
	"github.com/iudanet/offsync/internal/client/offline"
	"github.com/iudanet/offsync/internal/config"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Глобальные флаги
	showVersion := flag.Bool("version", false, "Show version information")
	configPath := flag.String("config", "", "Path to YAML configuration")
	serverURL := flag.String("server", "", "Server URL")
	dbPath := flag.String("db", "", "Path to local database")
	token := flag.String("token", "", "Bearer token")
	clientID := flag.String("client-id", "", "Client id")
	passphraseFile := flag.String("passphrase-file", "", "Path to file containing the storage passphrase")
	passphrase := flag.String("passphrase", "", "Storage passphrase (not recommended, use env var or file)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")
	flag.Parse()

	stdio := iocli.NewStdio()

	if *showVersion {
		printVersion(stdio)
		return 0
	}

	args := flag.Args()
	if len(args) == 0 {
		cli.PrintUsage(stdio)
		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	// флаги переопределяют конфигурацию
	if *serverURL != "" {
		cfg.Transport.ServerURL = *serverURL
	}
	if *dbPath != "" {
		cfg.Storage.Path = *dbPath
	}
	if *token != "" {
		cfg.Transport.AuthToken = *token
	}
	if *clientID != "" {
		cfg.ClientID = *clientID
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if cfg.ClientID == "" {
		fmt.Fprintln(os.Stderr, "Error: client id is required (clientId in config or -client-id)")
		return 1
	}

	level, _ := config.ParseLevel(cfg.Log.Level)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var secret string
	if cfg.Encryption.Enabled {
		secret, err = cli.ReadPassphrase(stdio, cfg.Encryption.PassphraseEnv, cli.Passphrases{
			FromFile: *passphraseFile,
			FromArgs: *passphrase,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	store, err := offline.OpenStore(ctx, cfg, secret, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		return 1
	}

	transport, err := offline.NewTransport(cfg)
	if err != nil {
		_ = store.Close()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	client, err := offline.New(cfg, offline.Options{Store: store, Transport: transport}, logger)
	if err != nil {
		_ = store.Close()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close client", "error", err)
		}
	}()

	if err := client.Init(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// Выполняем команду
	if err := cli.New(stdio, client).Run(ctx, args[0], args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, cli.ErrUnknownCommand) {
			cli.PrintUsage(stdio)
		}
		return 1
	}
	return 0
}

func printVersion(io iocli.IO) {
	io.Printf("Offsync Client\n")
	io.Printf("Version:    %s\n", Version)
	io.Printf("Build Date: %s\n", BuildDate)
	io.Printf("Git Commit: %s\n", GitCommit)
}
