// Package cli implements the offsync client commands.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/iudanet/offsync/internal/client/iocli"
	"github.com/iudanet/offsync/internal/client/network"
	"github.com/iudanet/offsync/internal/client/quota"
	"github.com/iudanet/offsync/internal/client/resource"
	clientsync "github.com/iudanet/offsync/internal/client/sync"
	"github.com/iudanet/offsync/internal/models"
)

//go:generate moq -out client_mock.go . Client

// Client is the part of the offline facade the commands use
type Client interface {
	Put(ctx context.Context, key string, docType string, value json.RawMessage) (*models.Document, error)
	Get(ctx context.Context, key string) (*models.Document, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]*models.Document, error)
	Sync(ctx context.Context) (*clientsync.Result, error)
	QueueSize(ctx context.Context) (int, error)
	PendingOperations(ctx context.Context) ([]models.Operation, error)
	DeadLetterHead(ctx context.Context, reason string) (*models.DeadLetter, error)
	RetryHead(ctx context.Context) error
	DeadLetters(ctx context.Context) ([]models.DeadLetter, error)
	EnforceQuota(ctx context.Context) (*quota.EvictionReport, error)
	PurgeExpired(ctx context.Context) (*quota.EvictionReport, error)
	Track(ctx context.Context, meta models.ResourceMetadata) error
	Resources(ctx context.Context) ([]models.ResourceMetadata, error)
	Usage(ctx context.Context) (int64, int64, error)
	RouteChanged(ctx context.Context, route string) (*resource.Report, error)
	Connectivity() (network.Mode, network.Quality)
	State() clientsync.State
}

// ErrUsage is returned when a command is called with wrong arguments
var ErrUsage = errors.New("invalid usage")

// ErrUnknownCommand is returned for commands Run does not know
var ErrUnknownCommand = errors.New("unknown command")

// Cli dispatches commands to the client and prints results
type Cli struct {
	io     iocli.IO
	client Client
}

// New creates a Cli
func New(io iocli.IO, client Client) *Cli {
	return &Cli{
		io:     io,
		client: client,
	}
}

// Run executes one command
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "put":
		return c.runPut(ctx, args)
	case "get":
		return c.runGet(ctx, args)
	case "delete":
		return c.runDelete(ctx, args)
	case "list":
		return c.runList(ctx, args)
	case "sync":
		return c.runSync(ctx)
	case "status":
		return c.runStatus(ctx)
	case "queue":
		return c.runQueue(ctx, args)
	case "evict":
		return c.runEvict(ctx, args)
	case "track":
		return c.runTrack(ctx, args)
	case "prefetch":
		return c.runPrefetch(ctx, args)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, command)
	}
}

// flagSet создает набор флагов команды, ошибки печатаются в io
func (c *Cli) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.io)
	return fs
}

// Passphrases are the non-interactive passphrase sources
type Passphrases struct {
	FromFile string
	FromArgs string
}

// ReadPassphrase reads the storage passphrase from various sources with priority:
// 1. Environment variable envName
// 2. File
// 3. Command-line parameter
// 4. Interactive prompt (fallback)
func ReadPassphrase(io iocli.IO, envName string, sources Passphrases) (string, error) {
	// Priority 1: Environment variable
	if envName != "" {
		if envPassphrase := os.Getenv(envName); envPassphrase != "" {
			return envPassphrase, nil
		}
	}

	// Priority 2: File
	if sources.FromFile != "" {
		content, err := os.ReadFile(sources.FromFile)
		if err != nil {
			return "", fmt.Errorf("failed to read passphrase file: %w", err)
		}
		// Убираем trailing newline/whitespace
		passphrase := strings.TrimSpace(string(content))
		if passphrase == "" {
			return "", fmt.Errorf("passphrase file is empty")
		}
		return passphrase, nil
	}

	// Priority 3: CLI parameter
	if sources.FromArgs != "" {
		return sources.FromArgs, nil
	}

	// Priority 4: Interactive prompt
	passphrase, err := io.ReadPassword("Storage passphrase: ")
	if err != nil {
		return "", fmt.Errorf("failed to read passphrase: %w", err)
	}
	if passphrase == "" {
		return "", fmt.Errorf("passphrase cannot be empty")
	}
	return passphrase, nil
}

// PrintUsage prints the command reference
func PrintUsage(io iocli.IO) {
	io.Println("Offsync Client")
	io.Println()
	io.Println("Usage:")
	io.Println("  offsync [OPTIONS] COMMAND [ARGS]")
	io.Println()
	io.Println("Options:")
	io.Println("  -version                  Show version information")
	io.Println("  -config PATH              YAML configuration file")
	io.Println("  -server URL               Server URL (overrides config)")
	io.Println("  -db PATH                  Local database path (overrides config)")
	io.Println("  -token TOKEN              Bearer token (overrides config)")
	io.Println("  -client-id ID             Client id (overrides config)")
	io.Println("  -passphrase-file PATH     File containing the storage passphrase")
	io.Println("  -log-level LEVEL          debug, info, warn, error")
	io.Println()
	io.Println("Commands:")
	io.Println("  put [-type T] <key> <json>      Write a document locally and queue it")
	io.Println("  get <key>                       Show a document")
	io.Println("  delete <key>                    Delete a document (tombstone)")
	io.Println("  list [-type T]                  List live documents")
	io.Println("  sync                            Run one sync cycle")
	io.Println("  status                          Show network, queue and quota state")
	io.Println("  queue [list|retry|drop <reason>|dead]")
	io.Println("                                  Inspect or unblock the mutation queue")
	io.Println("  evict [-expired]                Run an eviction pass")
	io.Println("  track [flags] <key> <bytes>     Track a cached resource")
	io.Println("  prefetch <route>                Prefetch resources predicted for a route")
	io.Println()
	io.Println("Examples:")
	io.Println("  offsync put -type note n1 '{\"title\":\"hello\"}'")
	io.Println("  offsync sync")
	io.Println("  offsync queue drop \"server rejects payload\"")
}
