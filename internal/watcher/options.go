package watcher

import (
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// LibraryExtensions are the file types a book directory is built from.
var LibraryExtensions = []string{".yaml", ".yml", ".md", ".markdown", ".txt", ".html", ".htm", ".jpg", ".jpeg", ".png", ".webp", ".gif"}

// Options configures the file watcher behavior.
type Options struct {
	// IgnorePatterns are matched against the base name. nil selects editor
	// and OS litter defaults and turns IgnoreHidden on.
	IgnorePatterns []string
	// Extensions limits which files can trigger a change. Paths without an
	// extension always pass since they may be directories. nil selects
	// LibraryExtensions; an empty slice accepts everything.
	Extensions []string
	// SettleDelay is how long the tree must stay quiet before a Change is emitted.
	SettleDelay  time.Duration
	IgnoreHidden bool
}

func (o *Options) setDefaults() {
	if o.SettleDelay <= 0 {
		o.SettleDelay = 750 * time.Millisecond
	}
	if o.Extensions == nil {
		o.Extensions = LibraryExtensions
	}
	if o.IgnorePatterns == nil {
		o.IgnorePatterns = []string{".DS_Store", "Thumbs.db", "*.swp", "*.tmp", "*~", "#*#"}
		o.IgnoreHidden = true
	}
}

// shouldIgnore reports whether a path relative to the watched root can be
// skipped without reloading the library.
func (o *Options) shouldIgnore(rel string) bool {
	rel = filepath.Clean(rel)
	if o.IgnoreHidden && hasHiddenPart(rel) {
		return true
	}

	base := filepath.Base(rel)
	if slices.ContainsFunc(o.IgnorePatterns, func(p string) bool {
		ok, err := filepath.Match(p, base)
		return err == nil && ok
	}) {
		return true
	}

	ext := strings.ToLower(filepath.Ext(base))
	if ext == "" || len(o.Extensions) == 0 {
		return false
	}
	return !slices.Contains(o.Extensions, ext)
}

func hasHiddenPart(rel string) bool {
	for part := range strings.SplitSeq(rel, string(filepath.Separator)) {
		if len(part) > 1 && part[0] == '.' && part != ".." {
			return true
		}
	}
	return false
}
