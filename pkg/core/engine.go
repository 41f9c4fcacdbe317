package core

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/padsync/padsync/pkg/frontmatter"
	"github.com/padsync/padsync/pkg/noteurl"
)

// DefaultMargin is the tolerance applied to conflict comparisons. It
// absorbs clock and network skew between "we just synced" and the moment
// the remote or local timestamp technically moved; without it every push
// immediately followed by a check would spuriously conflict.
const DefaultMargin = 5 * time.Second

// Engine orchestrates push, pull, delete and create-from-url flows between
// a Vault and a Remote. It resolves note identity, detects conflicts,
// merges front matter and commits results back to both sides.
type Engine struct {
	vault    Vault
	remote   Remote
	shareURL string
	margin   time.Duration
	perms    CreatePermissions
	logger   *slog.Logger
	now      func() time.Time

	mu       sync.Mutex
	inflight map[string]struct{}
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithMargin overrides the conflict tolerance margin.
func WithMargin(d time.Duration) EngineOption {
	return func(e *Engine) { e.margin = d }
}

// WithShareURL sets the host serving canonical note URLs.
func WithShareURL(u string) EngineOption {
	return func(e *Engine) { e.shareURL = u }
}

// WithPermissions sets the default sharing permissions for created notes.
func WithPermissions(p CreatePermissions) EngineOption {
	return func(e *Engine) { e.perms = p }
}

// WithLogger sets the logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger }
}

// WithClock overrides the time source. Used by tests to pin lastSync.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates a sync engine over the given vault and remote gateway.
func NewEngine(vault Vault, remote Remote, opts ...EngineOption) *Engine {
	e := &Engine{
		vault:    vault,
		remote:   remote,
		shareURL: noteurl.DefaultShareURL,
		margin:   DefaultMargin,
		perms:    DefaultPermissions(),
		logger:   slog.Default(),
		now:      time.Now,
		inflight: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// link is the sync relationship recovered from a document's front matter.
// It is rebuilt on every operation and never cached beyond it.
type link struct {
	id          string
	url         string
	lastSync    time.Time
	hasLastSync bool
}

// Push uploads the document at docPath to the pad host. An unsynced
// document creates a new remote note; a linked one updates the existing
// note's content after the conflict check (skipped when force is set).
// On success the document's header is restamped and written back.
func (e *Engine) Push(ctx context.Context, docPath string, force bool) (RemoteNote, error) {
	if err := e.acquire(docPath); err != nil {
		return RemoteNote{}, err
	}
	defer e.release(docPath)

	text, err := e.vault.Read(docPath)
	if err != nil {
		return RemoteNote{}, err
	}
	meta, body, _ := frontmatter.Split(text)
	content := frontmatter.Join(frontmatter.Strip(meta), body)

	var note RemoteNote
	lk, linked := e.linkFromMeta(meta)
	if linked {
		if !force {
			current, err := e.remote.GetNote(ctx, lk.id)
			if err != nil {
				return RemoteNote{}, err
			}
			if err := e.checkRemoteConflict(lk, current); err != nil {
				return RemoteNote{}, err
			}
		}
		note, err = e.remote.UpdateNote(ctx, lk.id, NoteOptions{Content: &content})
		if err != nil {
			return RemoteNote{}, err
		}
		e.logger.Debug("pushed update", "path", docPath, "note", note.ID)
	} else {
		title := deriveTitle(docPath, body)
		note, err = e.remote.CreateNote(ctx, NoteOptions{
			Title:             &title,
			Content:           &content,
			ReadPermission:    e.perms.Read,
			WritePermission:   e.perms.Write,
			CommentPermission: e.perms.Comment,
		})
		if err != nil {
			return RemoteNote{}, err
		}
		e.logger.Debug("pushed new note", "path", docPath, "note", note.ID)
	}

	merged := e.restamp(meta, note)
	if err := e.vault.Write(docPath, frontmatter.Join(merged, body)); err != nil {
		return RemoteNote{}, err
	}
	return note, nil
}

// Pull downloads the linked remote note and replaces the document's body
// with its content. Front matter merges right-biased: local unrelated keys
// survive, remote unrelated keys win on collision, and the sync fields are
// stamped fresh. The conflict check against the local modification time is
// skipped when force is set.
func (e *Engine) Pull(ctx context.Context, docPath string, force bool) (RemoteNote, error) {
	if err := e.acquire(docPath); err != nil {
		return RemoteNote{}, err
	}
	defer e.release(docPath)

	text, err := e.vault.Read(docPath)
	if err != nil {
		return RemoteNote{}, err
	}
	meta, _, _ := frontmatter.Split(text)

	lk, linked := e.linkFromMeta(meta)
	if !linked {
		return RemoteNote{}, NewError(KindNotLinked, "document is not linked to a remote note; push it first")
	}

	if !force {
		mtime, err := e.vault.ModTime(docPath)
		if err != nil {
			return RemoteNote{}, err
		}
		if err := e.checkLocalConflict(lk, mtime); err != nil {
			return RemoteNote{}, err
		}
	}

	note, err := e.remote.GetNote(ctx, lk.id)
	if err != nil {
		return RemoteNote{}, err
	}

	// The remote content may carry its own header, e.g. when the note was
	// exported from someone else's vault. Its reserved keys never override
	// local identity.
	remoteMeta, remoteBody, _ := frontmatter.Split(note.Content)
	merged := e.restamp(frontmatter.Merge(meta, frontmatter.Strip(remoteMeta)), note)

	if err := e.vault.Write(docPath, frontmatter.Join(merged, remoteBody)); err != nil {
		return RemoteNote{}, err
	}
	e.logger.Debug("pulled note", "path", docPath, "note", note.ID)
	return note, nil
}

// Delete removes the linked remote note after confirmation and unlinks the
// document by stripping the reserved header keys. Unrelated keys are kept.
// Returns false with a nil error when the user declines.
func (e *Engine) Delete(ctx context.Context, docPath string, confirm ConfirmFunc) (bool, error) {
	if err := e.acquire(docPath); err != nil {
		return false, err
	}
	defer e.release(docPath)

	text, err := e.vault.Read(docPath)
	if err != nil {
		return false, err
	}
	meta, body, _ := frontmatter.Split(text)

	lk, linked := e.linkFromMeta(meta)
	if !linked {
		return false, NewError(KindNotLinked, "document is not linked to a remote note")
	}

	if confirm != nil && !confirm(fmt.Sprintf("Delete remote note %s?", lk.url)) {
		return false, nil
	}

	// Idempotent by contract: the gateway treats not-found as success,
	// since the purpose is "ensure absence".
	if err := e.remote.DeleteNote(ctx, lk.id); err != nil {
		return false, err
	}

	if err := e.vault.Write(docPath, frontmatter.Join(frontmatter.Strip(meta), body)); err != nil {
		return false, err
	}
	e.logger.Debug("deleted remote note", "path", docPath, "note", lk.id)
	return true, nil
}

// Clone materializes a new vault document from a remote note URL. When a
// document already linked to that note exists, no duplicate is created and
// the existing document is surfaced instead.
func (e *Engine) Clone(ctx context.Context, rawURL string) (CloneResult, error) {
	id, ok := noteurl.IDFromURL(e.shareURL, rawURL)
	if !ok {
		return CloneResult{}, Errorf(KindInvalidURL, "not a recognized note URL: %q", rawURL)
	}

	if existing, err := e.findLinked(id); err != nil {
		return CloneResult{}, err
	} else if existing != "" {
		return CloneResult{Path: existing, Existing: true}, nil
	}

	note, err := e.remote.GetNote(ctx, id)
	if err != nil {
		return CloneResult{}, err
	}

	remoteMeta, remoteBody, _ := frontmatter.Split(note.Content)
	merged := e.restamp(frontmatter.Strip(remoteMeta), note)

	base := note.Title
	if base == "" {
		base = note.ID
	}
	created, err := e.vault.Create(base, frontmatter.Join(merged, remoteBody))
	if err != nil {
		return CloneResult{}, err
	}
	e.logger.Debug("cloned note", "path", created, "note", note.ID)
	return CloneResult{Path: created}, nil
}

// RemoteURL returns the canonical share URL of the document's linked note.
func (e *Engine) RemoteURL(docPath string) (string, error) {
	text, err := e.vault.Read(docPath)
	if err != nil {
		return "", err
	}
	meta, _, _ := frontmatter.Split(text)
	lk, linked := e.linkFromMeta(meta)
	if !linked {
		return "", NewError(KindNotLinked, "document is not linked to a remote note")
	}
	return noteurl.URLFromID(e.shareURL, lk.id), nil
}

// Whoami probes authentication and returns the current user.
func (e *Engine) Whoami(ctx context.Context) (UserInfo, error) {
	return e.remote.Authenticate(ctx)
}

// Status reports the sync state of every document matching pattern without
// touching the network.
func (e *Engine) Status(pattern string) ([]DocumentStatus, error) {
	paths, err := e.vault.List(pattern)
	if err != nil {
		return nil, err
	}

	statuses := make([]DocumentStatus, 0, len(paths))
	for _, p := range paths {
		text, err := e.vault.Read(p)
		if err != nil {
			e.logger.Warn("status: read failed", "path", p, "error", err)
			continue
		}
		meta, _, _ := frontmatter.Split(text)
		st := DocumentStatus{Path: p}
		if lk, linked := e.linkFromMeta(meta); linked {
			st.Linked = true
			st.URL = noteurl.URLFromID(e.shareURL, lk.id)
			st.LastSync = lk.lastSync
			if !lk.hasLastSync {
				st.Dirty = true
			} else if mtime, err := e.vault.ModTime(p); err == nil {
				st.Dirty = mtime.After(lk.lastSync.Add(e.margin))
			}
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}

// checkRemoteConflict rejects a push when the remote note was modified
// strictly after lastSync by more than the margin. A linked document with
// no lastSync cannot prove safety and is a conflict of its own kind.
func (e *Engine) checkRemoteConflict(lk link, note RemoteNote) error {
	if !lk.hasLastSync {
		return NewError(KindMetadataMissing, "no lastSync recorded; cannot prove the remote note is unchanged")
	}
	if mod := note.ModifiedAt(); mod.After(lk.lastSync.Add(e.margin)) {
		return Errorf(KindConflictRemote, "remote note changed at %s, after last sync at %s",
			mod.Format(time.RFC3339), lk.lastSync.Format(time.RFC3339))
	}
	return nil
}

// checkLocalConflict rejects a pull when the local file was modified
// strictly after lastSync by more than the margin.
func (e *Engine) checkLocalConflict(lk link, mtime time.Time) error {
	if !lk.hasLastSync {
		return NewError(KindMetadataMissing, "no lastSync recorded; cannot prove the document is unchanged")
	}
	if mtime.After(lk.lastSync.Add(e.margin)) {
		return Errorf(KindConflictLocal, "document changed at %s, after last sync at %s",
			mtime.Format(time.RFC3339), lk.lastSync.Format(time.RFC3339))
	}
	return nil
}

// linkFromMeta recovers the sync relationship from front matter. A missing
// or unresolvable url means the document is unsynced.
func (e *Engine) linkFromMeta(meta frontmatter.Metadata) (link, bool) {
	raw, _ := meta[frontmatter.KeyURL].(string)
	id, ok := noteurl.IDFromURL(e.shareURL, raw)
	if !ok {
		return link{}, false
	}

	lk := link{id: id, url: raw}
	switch v := meta[frontmatter.KeyLastSync].(type) {
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			lk.lastSync = t
			lk.hasLastSync = true
		}
	case time.Time:
		lk.lastSync = v
		lk.hasLastSync = true
	}
	return lk, true
}

// restamp merges the fresh sync fields for note into meta. A note that is
// not team-owned clears any stale teamPath left from a previous owner.
func (e *Engine) restamp(meta frontmatter.Metadata, note RemoteNote) frontmatter.Metadata {
	stamp := frontmatter.Metadata{
		frontmatter.KeyURL:      noteurl.URLFromID(e.shareURL, note.ID),
		frontmatter.KeyTitle:    note.Title,
		frontmatter.KeyLastSync: e.now().UTC().Format(time.RFC3339),
	}
	if note.TeamPath != "" {
		stamp[frontmatter.KeyTeamPath] = note.TeamPath
	}
	merged := frontmatter.Merge(meta, stamp)
	if note.TeamPath == "" {
		delete(merged, frontmatter.KeyTeamPath)
	}
	return merged
}

// findLinked returns the path of the first vault document linked to the
// note id, or "" when none is.
func (e *Engine) findLinked(id string) (string, error) {
	paths, err := e.vault.List("")
	if err != nil {
		return "", err
	}
	for _, p := range paths {
		text, err := e.vault.Read(p)
		if err != nil {
			continue
		}
		meta, _, _ := frontmatter.Split(text)
		raw, _ := meta[frontmatter.KeyURL].(string)
		if got, ok := noteurl.IDFromURL(e.shareURL, raw); ok && got == id {
			return p, nil
		}
	}
	return "", nil
}

// acquire treats "operation in flight for path" as a mutual-exclusion
// resource. The host environment usually serializes commands per document;
// this guard holds when it does not.
func (e *Engine) acquire(docPath string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, busy := e.inflight[docPath]; busy {
		return Errorf(KindUnknown, "an operation is already in flight for %s", docPath)
	}
	e.inflight[docPath] = struct{}{}
	return nil
}

func (e *Engine) release(docPath string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inflight, docPath)
}

// deriveTitle names a new remote note after the document's first heading,
// falling back to its base name.
func deriveTitle(docPath, body string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if after, ok := strings.CutPrefix(line, "# "); ok {
			if t := strings.TrimSpace(after); t != "" {
				return t
			}
		}
		if line != "" {
			break
		}
	}
	name := path.Base(strings.ReplaceAll(docPath, "\\", "/"))
	return strings.TrimSuffix(name, ".md")
}
