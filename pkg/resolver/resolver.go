// Package resolver verifies local link targets against the document tree.
package resolver

import (
	"fmt"
	"io/fs"
	"net/url"
	"path"
	"strings"
	"sync"

	"github.com/dtnitsch/lwp-links/models"
	"github.com/dtnitsch/lwp-links/pkg/classifier"
)

// Resolver checks that local targets exist, falling back to a base-name
// search in the nearest secondary asset root (web_resources in Canvas
// exports). The fallback matches on base name only, so the first file with
// the same name wins even if it is a different asset.
type Resolver struct {
	fsys       fs.FS
	classifier classifier.Classifier
	secondary  string
	maxDepth   int

	mu      sync.Mutex
	indexes map[string]map[string]string // secondary root dir -> base name -> first path
}

func New(fsys fs.FS, cfg models.Config) *Resolver {
	return &Resolver{
		fsys:       fsys,
		classifier: classifier.New(cfg.FileBaseToken),
		secondary:  cfg.SecondaryRoot,
		maxDepth:   cfg.MaxAncestorDepth,
		indexes:    make(map[string]map[string]string),
	}
}

// Resolve checks target as linked from the document at source. It never
// modifies the tree.
func (r *Resolver) Resolve(target string, source models.DocumentRef) models.ResolutionResult {
	clean := r.classifier.CleanLocal(strings.TrimSpace(target))
	if unescaped, err := url.PathUnescape(clean); err == nil {
		clean = unescaped
	}
	clean = strings.TrimPrefix(clean, "/")

	full := path.Join(path.Dir(string(source)), clean)
	if fs.ValidPath(full) {
		if _, err := fs.Stat(r.fsys, full); err == nil {
			return models.ResolutionResult{Valid: true, Detail: "File exists"}
		}
	}

	base := path.Base(clean)
	if clean == "" || base == "." || base == ".." || base == "/" {
		return models.ResolutionResult{Valid: false, Detail: fmt.Sprintf("Missing File: %s", clean)}
	}

	if root, ok := r.findSecondaryRoot(path.Dir(string(source))); ok {
		if _, found := r.index(root)[base]; found {
			return models.ResolutionResult{Valid: true, Detail: fmt.Sprintf("File exists in %s", r.secondary)}
		}
	}
	return models.ResolutionResult{Valid: false, Detail: fmt.Sprintf("Missing File: %s", base)}
}

// findSecondaryRoot climbs from dir toward the tree root, at most maxDepth
// levels, looking for a child directory named after the secondary root.
func (r *Resolver) findSecondaryRoot(dir string) (string, bool) {
	if r.secondary == "" {
		return "", false
	}
	for depth := 0; depth <= r.maxDepth; depth++ {
		candidate := path.Join(dir, r.secondary)
		if info, err := fs.Stat(r.fsys, candidate); err == nil && info.IsDir() {
			return candidate, true
		}
		if dir == "." {
			break
		}
		dir = path.Dir(dir)
	}
	return "", false
}

// index maps base names under root to the first path found in lexical walk
// order. It is built once per root.
func (r *Resolver) index(root string) map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if idx, ok := r.indexes[root]; ok {
		return idx
	}
	idx := make(map[string]string)
	_ = fs.WalkDir(r.fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if _, seen := idx[d.Name()]; !seen {
			idx[d.Name()] = p
		}
		return nil
	})
	r.indexes[root] = idx
	return idx
}
