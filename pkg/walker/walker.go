// Package walker enumerates the documents of a course export.
package walker

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dtnitsch/lwp-links/models"
)

// Walker lists document files under the root of an fs.FS.
type Walker struct {
	fsys    fs.FS
	exts    map[string]struct{}
	exclude []string
}

// New creates a Walker for the extensions and exclude globs in cfg.
// Extensions are case-insensitive and may omit the leading dot.
func New(fsys fs.FS, cfg models.Config) *Walker {
	exts := make(map[string]struct{}, len(cfg.Extensions))
	for _, ext := range cfg.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[ext] = struct{}{}
	}
	return &Walker{fsys: fsys, exts: exts, exclude: cfg.Exclude}
}

// CheckRoot fails with models.ErrNotADirectory unless root is an existing
// directory.
func CheckRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%s: %w", root, models.ErrNotADirectory)
	}
	return nil
}

// Documents walks the tree lazily in lexical order. Each call starts a fresh
// walk. An entry below the root that cannot be read is yielded with a
// *models.DocumentError and the walk goes on past it. Any other error means
// the root itself could not be walked; it is yielded once and ends the
// sequence.
func (w *Walker) Documents() iter.Seq2[models.DocumentRef, error] {
	return func(yield func(models.DocumentRef, error) bool) {
		stopped := false
		err := fs.WalkDir(w.fsys, ".", func(p string, d fs.DirEntry, err error) error {
			if w.excluded(p) {
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if err != nil {
				if p == "." {
					return err
				}
				docErr := models.NewDocumentError(p, models.ErrorKindFilesystem, err)
				if !yield(models.DocumentRef(p), docErr) {
					stopped = true
					return fs.SkipAll
				}
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() || !w.matches(p) {
				return nil
			}
			if !yield(models.DocumentRef(p), nil) {
				stopped = true
				return fs.SkipAll
			}
			return nil
		})
		if err != nil && !stopped {
			yield("", fmt.Errorf("failed to walk documents: %w", err))
		}
	}
}

// List collects Documents into a slice. Unreadable entries below the root are
// returned separately; the error is set only when the root cannot be walked.
func (w *Walker) List() ([]models.DocumentRef, []models.DocumentError, error) {
	var docs []models.DocumentRef
	var skipped []models.DocumentError
	for doc, err := range w.Documents() {
		var docErr *models.DocumentError
		if errors.As(err, &docErr) {
			skipped = append(skipped, *docErr)
			continue
		}
		if err != nil {
			return docs, skipped, err
		}
		docs = append(docs, doc)
	}
	return docs, skipped, nil
}

func (w *Walker) matches(p string) bool {
	_, ok := w.exts[strings.ToLower(path.Ext(p))]
	return ok
}

func (w *Walker) excluded(p string) bool {
	if p == "." {
		return false
	}
	for _, pattern := range w.exclude {
		if ok, err := doublestar.Match(pattern, p); err == nil && ok {
			return true
		}
	}
	return false
}
