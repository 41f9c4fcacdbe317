// Package vault implements the document host adapter over a directory of
// markdown files. The sync engine reads and replaces full document text
// through this adapter, never touching storage directly.
package vault

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/padsync/padsync/pkg/core"
)

// DefaultPattern matches every markdown document in the vault.
const DefaultPattern = "**/*.md"

// Vault is a filesystem-backed document store rooted at a directory.
// Document paths are vault-relative, slash-separated.
type Vault struct {
	Root   string
	logger *slog.Logger

	mu            sync.RWMutex
	watcherActive bool
}

// Option configures a Vault.
type Option func(*Vault)

// WithLogger sets the logger for the vault.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Vault) { v.logger = logger }
}

// New opens the vault rooted at root. The directory must already exist.
func New(root string, opts ...Option) (*Vault, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve vault root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("vault root does not exist: %s", abs)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault root is not a directory: %s", abs)
	}

	v := &Vault{Root: abs, logger: slog.Default()}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Read returns the current text of the document at path.
func (v *Vault) Read(path string) (string, error) {
	full, err := v.resolve(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return "", core.Errorf(core.KindNoDocument, "no document at %s", path)
		}
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// Write replaces the full text of the document at path atomically,
// creating parent directories as needed.
func (v *Vault) Write(path, text string) error {
	full, err := v.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}
	if err := writeFileAtomic(full, []byte(text), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	v.logger.Debug("wrote document", "path", path, "bytes", len(text))
	return nil
}

// List returns the vault-relative paths of documents matching the glob
// pattern, sorted. An empty pattern lists every markdown document.
func (v *Vault) List(pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	matches, err := doublestar.Glob(os.DirFS(v.Root), pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}

	paths := matches[:0]
	for _, m := range matches {
		if strings.HasPrefix(filepath.Base(m), TempFilePrefix) {
			continue
		}
		paths = append(paths, m)
	}
	sort.Strings(paths)
	return paths, nil
}

// ModTime returns the filesystem modification time of the document.
func (v *Vault) ModTime(path string) (time.Time, error) {
	full, err := v.resolve(path)
	if err != nil {
		return time.Time{}, err
	}
	info, err := os.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, core.Errorf(core.KindNoDocument, "no document at %s", path)
		}
		return time.Time{}, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.ModTime(), nil
}

// Create materializes a new document named after base, appending an
// incrementing counter suffix while the name is taken. Returns the
// vault-relative path actually used.
func (v *Vault) Create(base, text string) (string, error) {
	name := sanitizeName(base)
	candidate := name + ".md"
	for i := 1; ; i++ {
		full, err := v.resolve(candidate)
		if err != nil {
			return "", err
		}
		if _, err := os.Stat(full); os.IsNotExist(err) {
			break
		}
		candidate = fmt.Sprintf("%s-%d.md", name, i)
	}

	if err := v.Write(candidate, text); err != nil {
		return "", err
	}
	return candidate, nil
}

// resolve maps a vault-relative path to an absolute one, rejecting paths
// that would escape the root.
func (v *Vault) resolve(path string) (string, error) {
	clean := filepath.FromSlash(path)
	if clean == "" || !filepath.IsLocal(clean) {
		return "", fmt.Errorf("path escapes the vault: %q", path)
	}
	return filepath.Join(v.Root, clean), nil
}

// sanitizeName turns a note title into a filesystem-safe base name.
func sanitizeName(base string) string {
	mapped := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '-'
		default:
			return r
		}
	}, base)

	mapped = strings.Trim(strings.TrimSpace(mapped), ".")
	for strings.Contains(mapped, "--") {
		mapped = strings.ReplaceAll(mapped, "--", "-")
	}
	if mapped == "" {
		return "untitled"
	}
	return mapped
}

var _ core.Vault = (*Vault)(nil)
