package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/iudanet/offsync/internal/config"
	"github.com/iudanet/offsync/internal/server"
	"github.com/iudanet/offsync/internal/server/jwt"
	"github.com/iudanet/offsync/internal/server/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// envJWTSecret переменная окружения с секретом для подписи токенов
const envJWTSecret = "OFFSYNC_JWT_SECRET"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "token" {
		os.Exit(runToken(os.Args[2:]))
	}
	os.Exit(runServer(os.Args[1:]))
}

func runServer(args []string) int {
	fs := flag.NewFlagSet("offsync-server", flag.ExitOnError)
	showVersion := fs.Bool("version", false, "Show version information")
	addr := fs.String("addr", ":8080", "HTTP listen address")
	dbPath := fs.String("db", "offsync-server.db", "SQLite database path")
	signingKey := fs.String("signing-key", "", "HMAC key for sync envelopes (empty disables signatures)")
	rateLimit := fs.Int("rate-limit", 120, "Requests per client per window (0 disables)")
	rateWindow := fs.Duration("rate-window", time.Minute, "Rate limit window")
	wsIdle := fs.Duration("ws-idle", 5*time.Minute, "Close idle websocket connections after this duration")
	logLevel := fs.String("log-level", "info", "Log level: debug, info, warn, error")
	_ = fs.Parse(args)

	if *showVersion {
		printVersion()
		return 0
	}

	level, err := config.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	secret := os.Getenv(envJWTSecret)
	if secret == "" {
		logger.Error("jwt secret is not set", "env", envJWTSecret)
		return 1
	}
	tokens, err := jwt.NewService(secret, 0)
	if err != nil {
		logger.Error("failed to create jwt service", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(ctx, *dbPath)
	if err != nil {
		logger.Error("failed to open storage", "path", *dbPath, "error", err)
		return 1
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close storage", "error", err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv, err := server.New(server.Config{
		Addr:          *addr,
		Version:       Version,
		SigningKey:    []byte(*signingKey),
		RateLimit:     *rateLimit,
		RateWindow:    *rateWindow,
		WSIdleTimeout: *wsIdle,
	}, store, tokens, reg, logger)
	if err != nil {
		logger.Error("failed to create server", "error", err)
		return 1
	}

	if err := srv.Run(ctx); err != nil {
		logger.Error("server stopped with error", "error", err)
		return 1
	}
	logger.Info("server stopped")
	return 0
}

// runToken печатает bearer токен для клиента
func runToken(args []string) int {
	fs := flag.NewFlagSet("offsync-server token", flag.ExitOnError)
	clientID := fs.String("client", "", "Client id the token is issued for")
	ttl := fs.Duration("ttl", 0, "Token lifetime (0 means no expiry)")
	_ = fs.Parse(args)

	if *clientID == "" {
		fmt.Fprintln(os.Stderr, "Error: -client is required")
		fs.Usage()
		return 2
	}

	tokens, err := jwt.NewService(os.Getenv(envJWTSecret), *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v (set %s)\n", err, envJWTSecret)
		return 1
	}

	token, expiresAt, err := tokens.GenerateToken(*clientID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Println(token)
	if !expiresAt.IsZero() {
		fmt.Fprintf(os.Stderr, "expires at %s\n", expiresAt.Format(time.RFC3339))
	}
	return 0
}

func printVersion() {
	fmt.Printf("Offsync Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
