package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/iudanet/offsync/internal/client/storage"
	"github.com/iudanet/offsync/internal/models"
)

// documentView документ с отформатированным значением для шаблона
type documentView struct {
	*models.Document
	Body string
}

func (c *Cli) runPut(ctx context.Context, args []string) error {
	fs := c.flagSet("put")
	docType := fs.String("type", models.DefaultDocumentType, "Document type")
	file := fs.String("file", "", "Read the JSON value from a file")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}

	rest := fs.Args()
	var raw []byte
	switch {
	case len(rest) == 1 && *file != "":
		data, err := os.ReadFile(*file)
		if err != nil {
			return fmt.Errorf("failed to read value file: %w", err)
		}
		raw = data
	case len(rest) == 2 && *file == "":
		raw = []byte(rest[1])
	default:
		return fmt.Errorf("%w: offsync put [-type T] <key> <json> | offsync put -file PATH <key>", ErrUsage)
	}

	if !json.Valid(raw) {
		return fmt.Errorf("%w: value is not valid JSON", ErrUsage)
	}

	doc, err := c.client.Put(ctx, rest[0], *docType, json.RawMessage(raw))
	if err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}

	c.io.Printf("✓ %s saved locally (version %d), queued for sync\n", doc.Key, doc.Version)
	return nil
}

func (c *Cli) runGet(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: offsync get <key>", ErrUsage)
	}

	doc, err := c.client.Get(ctx, args[0])
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("document not found: %s", args[0])
		}
		return fmt.Errorf("failed to get document: %w", err)
	}

	return documentTmpl.Execute(c.io, documentView{Document: doc, Body: formatValue(doc.Value)})
}

func (c *Cli) runDelete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: offsync delete <key>", ErrUsage)
	}

	if err := c.client.Delete(ctx, args[0]); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("document not found: %s", args[0])
		}
		return fmt.Errorf("failed to delete document: %w", err)
	}

	c.io.Printf("✓ %s deleted locally, queued for sync\n", args[0])
	return nil
}

func (c *Cli) runList(ctx context.Context, args []string) error {
	fs := c.flagSet("list")
	docType := fs.String("type", "", "Only list documents of this type")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}

	all, err := c.client.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	var shown int
	for _, doc := range all {
		if *docType != "" && doc.Type != *docType {
			continue
		}
		shown++
		marker := " "
		if doc.Dirty {
			marker = "*"
		}
		c.io.Printf("%s %-32s %-16s v%d\n", marker, doc.Key, doc.Type, doc.Version)
	}

	if shown == 0 {
		c.io.Println("No documents found.")
		return nil
	}
	c.io.Println()
	c.io.Printf("%d document(s), * marks changes not yet confirmed by the server\n", shown)
	return nil
}

// formatValue печатает JSON с отступами, невалидный выводит как есть
func formatValue(value json.RawMessage) string {
	if len(value) == 0 {
		return "(empty)"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, value, "", "  "); err != nil {
		return string(value)
	}
	return buf.String()
}
