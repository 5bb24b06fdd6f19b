package rewrite

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"unicode/utf8"

	"github.com/dtnitsch/lwp-links/models"
	"github.com/dtnitsch/lwp-links/pkg/storage"
	"github.com/dtnitsch/lwp-links/pkg/walker"
)

// ErrPassInProgress is returned when another rewrite already holds the tree.
var ErrPassInProgress = errors.New("another rewrite pass is running on this tree")

// Store is the document tree a pass reads and writes.
type Store interface {
	FS() fs.FS
	ReadFile(name string) ([]byte, error)
	SaveFile(name string, content []byte) error
	Lock() (func() error, error)
}

// Pass runs the Engine over every document of a tree.
type Pass struct {
	Store  Store
	Config models.Config
	Engine *Engine
	Logger *slog.Logger
	DryRun bool
}

// Run rewrites each document in walk order, writing only documents whose
// content changed. Per-document failures are collected and the pass goes on.
// A cancelled context stops the pass between documents.
func (p *Pass) Run(ctx context.Context) (*models.RewriteSummary, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	unlock, err := p.Store.Lock()
	if errors.Is(err, storage.ErrLocked) {
		return nil, ErrPassInProgress
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock document tree: %w", err)
	}
	defer func() {
		if err := unlock(); err != nil {
			logger.Warn("Failed to release rewrite lock", "error", err)
		}
	}()

	summary := &models.RewriteSummary{DryRun: p.DryRun}
	w := walker.New(p.Store.FS(), p.Config)
	for doc, walkErr := range w.Documents() {
		var docErr *models.DocumentError
		if errors.As(walkErr, &docErr) {
			logger.Error("Skipping unreadable path", "path", docErr.Path, "error", docErr.Err)
			summary.Errors = append(summary.Errors, *docErr)
			continue
		}
		if walkErr != nil {
			return summary, walkErr
		}
		if err := ctx.Err(); err != nil {
			logger.Warn("Rewrite pass cancelled", "error", err)
			return summary, err
		}

		name := string(doc)
		data, err := p.Store.ReadFile(name)
		if err != nil {
			logger.Error("Error reading document", "file", name, "error", err)
			summary.Errors = append(summary.Errors, *models.NewDocumentError(name, models.ErrorKindFilesystem, err))
			continue
		}
		if !utf8.Valid(data) {
			logger.Error("Skipping non UTF-8 document", "file", name)
			summary.Errors = append(summary.Errors, *models.NewDocumentError(name, models.ErrorKindEncoding, errors.New("content is not valid UTF-8")))
			continue
		}

		original := string(data)
		updated, n := p.Engine.Rewrite(original)
		if updated == original {
			continue
		}

		if !p.DryRun {
			if err := p.Store.SaveFile(name, []byte(updated)); err != nil {
				logger.Error("Error writing document", "file", name, "error", err)
				summary.Errors = append(summary.Errors, *models.NewDocumentError(name, models.ErrorKindFilesystem, err))
				continue
			}
		}
		summary.FilesTouched++
		summary.Substitutions += n
		summary.Files = append(summary.Files, name)
		logger.Info("Updated document", "file", name, "substitutions", n, "dry_run", p.DryRun)
	}

	return summary, nil
}
