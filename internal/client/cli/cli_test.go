package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/offsync/internal/client/iocli"
	"github.com/iudanet/offsync/internal/client/network"
	"github.com/iudanet/offsync/internal/client/quota"
	"github.com/iudanet/offsync/internal/client/resource"
	"github.com/iudanet/offsync/internal/client/storage"
	clientsync "github.com/iudanet/offsync/internal/client/sync"
	"github.com/iudanet/offsync/internal/models"
)

func newTestCli(t *testing.T, client *ClientMock, input string) (*Cli, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	return New(iocli.New(strings.NewReader(input), &out), client), &out
}

func TestRun_UnknownCommand(t *testing.T) {
	c, _ := newTestCli(t, &ClientMock{}, "")

	err := c.Run(context.Background(), "frobnicate", nil)
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestPut(t *testing.T) {
	client := &ClientMock{
		PutFunc: func(ctx context.Context, key, docType string, value json.RawMessage) (*models.Document, error) {
			return &models.Document{Key: key, Type: docType, Value: value, Version: 1, Dirty: true}, nil
		},
	}
	c, out := newTestCli(t, client, "")

	err := c.Run(context.Background(), "put", []string{"-type", "note", "n1", `{"title":"hello"}`})
	require.NoError(t, err)

	calls := client.PutCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "n1", calls[0].Key)
	assert.Equal(t, "note", calls[0].DocType)
	assert.JSONEq(t, `{"title":"hello"}`, string(calls[0].Value))
	assert.Contains(t, out.String(), "n1 saved locally (version 1)")
}

func TestPut_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "value.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a":1}`), 0o600))

	client := &ClientMock{
		PutFunc: func(ctx context.Context, key, docType string, value json.RawMessage) (*models.Document, error) {
			return &models.Document{Key: key, Version: 2}, nil
		},
	}
	c, _ := newTestCli(t, client, "")

	require.NoError(t, c.Run(context.Background(), "put", []string{"-file", path, "k"}))
	require.Len(t, client.PutCalls(), 1)
	assert.Equal(t, models.DefaultDocumentType, client.PutCalls()[0].DocType)
	assert.JSONEq(t, `{"a":1}`, string(client.PutCalls()[0].Value))
}

func TestPut_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "no args", args: nil},
		{name: "missing value", args: []string{"k"}},
		{name: "not json", args: []string{"k", "{oops"}},
		{name: "unknown flag", args: []string{"-bogus", "k", "{}"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &ClientMock{}
			c, _ := newTestCli(t, client, "")

			err := c.Run(context.Background(), "put", tt.args)
			assert.ErrorIs(t, err, ErrUsage)
			assert.Empty(t, client.PutCalls())
		})
	}
}

func TestGet(t *testing.T) {
	updated := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	client := &ClientMock{
		GetFunc: func(ctx context.Context, key string) (*models.Document, error) {
			return &models.Document{
				Key:       key,
				Type:      "note",
				Value:     json.RawMessage(`{"title":"hello"}`),
				Version:   3,
				Dirty:     true,
				UpdatedAt: updated,
			}, nil
		},
	}
	c, out := newTestCli(t, client, "")

	require.NoError(t, c.Run(context.Background(), "get", []string{"n1"}))

	text := out.String()
	assert.Contains(t, text, "Key:      n1")
	assert.Contains(t, text, "Type:     note")
	assert.Contains(t, text, "Version:  3")
	assert.Contains(t, text, "Status:   pending sync")
	assert.Contains(t, text, "Updated:  2026-01-02T03:04:05Z")
	assert.NotContains(t, text, "Synced:")
	assert.Contains(t, text, "\"title\": \"hello\"")
}

func TestGet_NotFound(t *testing.T) {
	client := &ClientMock{
		GetFunc: func(ctx context.Context, key string) (*models.Document, error) {
			return nil, storage.ErrNotFound
		},
	}
	c, _ := newTestCli(t, client, "")

	err := c.Run(context.Background(), "get", []string{"missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document not found: missing")
}

func TestDelete(t *testing.T) {
	client := &ClientMock{
		DeleteFunc: func(ctx context.Context, key string) error { return nil },
	}
	c, out := newTestCli(t, client, "")

	require.NoError(t, c.Run(context.Background(), "delete", []string{"n1"}))
	require.Len(t, client.DeleteCalls(), 1)
	assert.Equal(t, "n1", client.DeleteCalls()[0].Key)
	assert.Contains(t, out.String(), "n1 deleted locally")

	assert.ErrorIs(t, c.Run(context.Background(), "delete", nil), ErrUsage)
}

func TestList(t *testing.T) {
	client := &ClientMock{
		ListFunc: func(ctx context.Context) ([]*models.Document, error) {
			return []*models.Document{
				{Key: "a", Type: "note", Version: 1, Dirty: true},
				{Key: "b", Type: "task", Version: 4},
			}, nil
		},
	}

	t.Run("all", func(t *testing.T) {
		c, out := newTestCli(t, client, "")
		require.NoError(t, c.Run(context.Background(), "list", nil))

		text := out.String()
		assert.Contains(t, text, "* a")
		assert.Contains(t, text, "  b")
		assert.Contains(t, text, "2 document(s)")
	})

	t.Run("by type", func(t *testing.T) {
		c, out := newTestCli(t, client, "")
		require.NoError(t, c.Run(context.Background(), "list", []string{"-type", "task"}))

		text := out.String()
		assert.NotContains(t, text, "* a")
		assert.Contains(t, text, "1 document(s)")
	})

	t.Run("no match", func(t *testing.T) {
		c, out := newTestCli(t, client, "")
		require.NoError(t, c.Run(context.Background(), "list", []string{"-type", "other"}))
		assert.Contains(t, out.String(), "No documents found.")
	})
}

func TestSync(t *testing.T) {
	tests := []struct {
		name     string
		result   *clientsync.Result
		contains []string
	}{
		{
			name:     "offline",
			result:   &clientsync.Result{Offline: true},
			contains: []string{"Offline: sync skipped"},
		},
		{
			name:     "reentrant",
			result:   &clientsync.Result{Reentrant: true},
			contains: []string{"already running"},
		},
		{
			name:   "completed",
			result: &clientsync.Result{Delivered: 2, Pushed: 3, Pulled: 1, Applied: 3, Conflicts: 1},
			contains: []string{
				"Delivered operations: 2",
				"Pushed patches:       3",
				"Conflicts resolved:   1",
			},
		},
		{
			name:     "stuck",
			result:   &clientsync.Result{Stuck: true},
			contains: []string{"offsync queue retry"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &ClientMock{
				SyncFunc: func(ctx context.Context) (*clientsync.Result, error) { return tt.result, nil },
			}
			c, out := newTestCli(t, client, "")

			require.NoError(t, c.Run(context.Background(), "sync", nil))
			for _, s := range tt.contains {
				assert.Contains(t, out.String(), s)
			}
		})
	}
}

func TestSync_Error(t *testing.T) {
	client := &ClientMock{
		SyncFunc: func(ctx context.Context) (*clientsync.Result, error) { return nil, errors.New("boom") },
	}
	c, _ := newTestCli(t, client, "")

	err := c.Run(context.Background(), "sync", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "synchronization failed")
}

func TestStatus(t *testing.T) {
	client := &ClientMock{
		ConnectivityFunc: func() (network.Mode, network.Quality) {
			return network.ModeOffline, network.QualityOffline
		},
		StateFunc:       func() clientsync.State { return clientsync.StateIdle },
		QueueSizeFunc:   func(ctx context.Context) (int, error) { return 3, nil },
		DeadLettersFunc: func(ctx context.Context) ([]models.DeadLetter, error) { return make([]models.DeadLetter, 1), nil },
		UsageFunc: func(ctx context.Context) (int64, int64, error) {
			return 3 * 1024 * 1024, 2 * 1024 * 1024, nil
		},
	}
	c, out := newTestCli(t, client, "")

	require.NoError(t, c.Run(context.Background(), "status", nil))

	text := out.String()
	assert.Contains(t, text, "Network:  OFFLINE (OFFLINE)")
	assert.Contains(t, text, "Engine:   IDLE")
	assert.Contains(t, text, "3 operation(s) waiting")
	assert.Contains(t, text, "Dead:     1 operation(s)")
	assert.Contains(t, text, "Storage:  3.0 MiB of 2.0 MiB")
	assert.Contains(t, text, "Storage budget exceeded")
}

func TestQueue(t *testing.T) {
	enqueued := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	client := &ClientMock{
		PendingOperationsFunc: func(ctx context.Context) ([]models.Operation, error) {
			return []models.Operation{
				{ID: "op-1", Type: models.OperationCreate, Key: "a", RetryCount: 5, EnqueuedAt: enqueued},
			}, nil
		},
		RetryHeadFunc: func(ctx context.Context) error { return nil },
		DeadLetterHeadFunc: func(ctx context.Context, reason string) (*models.DeadLetter, error) {
			return &models.DeadLetter{
				Reason:    reason,
				Operation: models.Operation{ID: "op-1", Type: models.OperationCreate, Key: "a"},
			}, nil
		},
		DeadLettersFunc: func(ctx context.Context) ([]models.DeadLetter, error) { return nil, nil },
	}
	ctx := context.Background()

	c, out := newTestCli(t, client, "")
	require.NoError(t, c.Run(ctx, "queue", nil))
	assert.Contains(t, out.String(), "1. CREATE")
	assert.Contains(t, out.String(), "retries=5")

	c, out = newTestCli(t, client, "")
	require.NoError(t, c.Run(ctx, "queue", []string{"retry"}))
	assert.Len(t, client.RetryHeadCalls(), 1)
	assert.Contains(t, out.String(), "retried on the next sync")

	c, out = newTestCli(t, client, "")
	require.NoError(t, c.Run(ctx, "queue", []string{"drop", "server", "rejects"}))
	require.Len(t, client.DeadLetterHeadCalls(), 1)
	assert.Equal(t, "server rejects", client.DeadLetterHeadCalls()[0].Reason)
	assert.Contains(t, out.String(), "Moved CREATE a (op-1)")

	c, out = newTestCli(t, client, "")
	require.NoError(t, c.Run(ctx, "queue", []string{"dead"}))
	assert.Contains(t, out.String(), "No dead letters.")

	c, _ = newTestCli(t, client, "")
	assert.ErrorIs(t, c.Run(ctx, "queue", []string{"drop"}), ErrUsage)
	assert.ErrorIs(t, c.Run(ctx, "queue", []string{"bogus"}), ErrUsage)
}

func TestEvict(t *testing.T) {
	client := &ClientMock{
		EnforceQuotaFunc: func(ctx context.Context) (*quota.EvictionReport, error) {
			return &quota.EvictionReport{Evicted: []string{"img:1"}, Freed: 2048, Usage: 100, Residual: 10}, nil
		},
		PurgeExpiredFunc: func(ctx context.Context) (*quota.EvictionReport, error) {
			return &quota.EvictionReport{}, nil
		},
	}
	ctx := context.Background()

	c, out := newTestCli(t, client, "")
	require.NoError(t, c.Run(ctx, "evict", nil))
	assert.Contains(t, out.String(), "Evicted 1 resource(s), freed 2.0 KiB")
	assert.Contains(t, out.String(), "- img:1")
	assert.Contains(t, out.String(), "10 B over budget")

	c, out = newTestCli(t, client, "")
	require.NoError(t, c.Run(ctx, "evict", []string{"-expired"}))
	assert.Len(t, client.PurgeExpiredCalls(), 1)
	assert.Contains(t, out.String(), "Nothing to evict.")
}

func TestTrack(t *testing.T) {
	client := &ClientMock{
		TrackFunc: func(ctx context.Context, meta models.ResourceMetadata) error { return nil },
	}
	c, out := newTestCli(t, client, "")

	err := c.Run(context.Background(), "track", []string{"-priority", "2", "-ttl", "1h", "-tags", "img,avatar", "avatar.png", "4096"})
	require.NoError(t, err)

	require.Len(t, client.TrackCalls(), 1)
	meta := client.TrackCalls()[0].Meta
	assert.Equal(t, "avatar.png", meta.Key)
	assert.Equal(t, int64(4096), meta.SizeBytes)
	assert.Equal(t, 2, meta.Priority)
	assert.Equal(t, []string{"img", "avatar"}, meta.Tags)
	require.NotNil(t, meta.ExpiresAt)
	assert.WithinDuration(t, meta.LastUsed.Add(time.Hour), *meta.ExpiresAt, time.Second)
	assert.Contains(t, out.String(), "Tracking avatar.png (4.0 KiB, priority 2)")

	assert.ErrorIs(t, c.Run(context.Background(), "track", []string{"k", "-1"}), ErrUsage)
	assert.ErrorIs(t, c.Run(context.Background(), "track", []string{"k"}), ErrUsage)
}

func TestPrefetch(t *testing.T) {
	t.Run("fetched", func(t *testing.T) {
		client := &ClientMock{
			RouteChangedFunc: func(ctx context.Context, route string) (*resource.Report, error) {
				return &resource.Report{Quality: network.QualityGood, Fetched: 2, Cached: 1}, nil
			},
		}
		c, out := newTestCli(t, client, "")

		require.NoError(t, c.Run(context.Background(), "prefetch", []string{"/profile"}))
		assert.Equal(t, "/profile", client.RouteChangedCalls()[0].Route)
		assert.Contains(t, out.String(), "Fetched: 2, already cached: 1, failed: 0")
	})

	t.Run("skipped", func(t *testing.T) {
		client := &ClientMock{
			RouteChangedFunc: func(ctx context.Context, route string) (*resource.Report, error) {
				return &resource.Report{Quality: network.QualityPoor, Skipped: true}, nil
			},
		}
		c, out := newTestCli(t, client, "")

		require.NoError(t, c.Run(context.Background(), "prefetch", []string{"/profile"}))
		assert.Contains(t, out.String(), "Prefetch skipped: network quality is POOR")
	})
}

// TestReadPassphrase_FromEnvVar проверяет чтение из переменной окружения
func TestReadPassphrase_FromEnvVar(t *testing.T) {
	t.Setenv("OFFSYNC_TEST_PASSPHRASE", "env_passphrase")
	io := iocli.New(strings.NewReader(""), &bytes.Buffer{})

	passphrase, err := ReadPassphrase(io, "OFFSYNC_TEST_PASSPHRASE", Passphrases{FromArgs: "cli"})
	require.NoError(t, err)
	assert.Equal(t, "env_passphrase", passphrase)
}

// TestReadPassphrase_FileOverCLI проверяет что файл имеет приоритет над CLI
func TestReadPassphrase_FileOverCLI(t *testing.T) {
	path := filepath.Join(t.TempDir(), "passphrase.txt")
	require.NoError(t, os.WriteFile(path, []byte("  file_passphrase  \n\n"), 0o600))
	io := iocli.New(strings.NewReader(""), &bytes.Buffer{})

	passphrase, err := ReadPassphrase(io, "OFFSYNC_TEST_UNSET", Passphrases{FromFile: path, FromArgs: "cli"})
	require.NoError(t, err)
	assert.Equal(t, "file_passphrase", passphrase)
}

func TestReadPassphrase_FromCLIParam(t *testing.T) {
	io := iocli.New(strings.NewReader(""), &bytes.Buffer{})

	passphrase, err := ReadPassphrase(io, "", Passphrases{FromArgs: "cli"})
	require.NoError(t, err)
	assert.Equal(t, "cli", passphrase)
}

func TestReadPassphrase_Prompt(t *testing.T) {
	var out bytes.Buffer
	io := iocli.New(strings.NewReader("typed\n"), &out)

	passphrase, err := ReadPassphrase(io, "", Passphrases{})
	require.NoError(t, err)
	assert.Equal(t, "typed", passphrase)
	assert.Contains(t, out.String(), "Storage passphrase: ")
}

func TestReadPassphrase_Errors(t *testing.T) {
	empty := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))

	tests := []struct {
		name    string
		sources Passphrases
		input   string
		wantErr string
	}{
		{name: "empty file", sources: Passphrases{FromFile: empty}, wantErr: "passphrase file is empty"},
		{name: "missing file", sources: Passphrases{FromFile: "/nonexistent/file/path.txt"}, wantErr: "failed to read passphrase file"},
		{name: "empty prompt", input: "\n", wantErr: "passphrase cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			io := iocli.New(strings.NewReader(tt.input), &bytes.Buffer{})

			passphrase, err := ReadPassphrase(io, "", tt.sources)
			require.Error(t, err)
			assert.Empty(t, passphrase)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPrintUsage(t *testing.T) {
	var out bytes.Buffer
	PrintUsage(iocli.New(strings.NewReader(""), &out))

	for _, cmd := range []string{"put", "get", "delete", "list", "sync", "status", "queue", "evict", "track", "prefetch"} {
		assert.Contains(t, out.String(), "  "+cmd)
	}
}
