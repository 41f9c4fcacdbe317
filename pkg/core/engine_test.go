package core_test

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padsync/padsync/pkg/core"
	"github.com/padsync/padsync/pkg/frontmatter"
)

var t0 = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

// fakeVault keeps documents in memory.
type fakeVault struct {
	docs   map[string]string
	mtimes map[string]time.Time
	writes int
}

func newFakeVault() *fakeVault {
	return &fakeVault{
		docs:   make(map[string]string),
		mtimes: make(map[string]time.Time),
	}
}

func (v *fakeVault) Read(path string) (string, error) {
	text, ok := v.docs[path]
	if !ok {
		return "", core.Errorf(core.KindNoDocument, "no document at %s", path)
	}
	return text, nil
}

func (v *fakeVault) Write(path, text string) error {
	v.docs[path] = text
	v.writes++
	return nil
}

func (v *fakeVault) List(pattern string) ([]string, error) {
	var paths []string
	for p := range v.docs {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}

func (v *fakeVault) ModTime(path string) (time.Time, error) {
	t, ok := v.mtimes[path]
	if !ok {
		return time.Time{}, core.Errorf(core.KindNoDocument, "no document at %s", path)
	}
	return t, nil
}

func (v *fakeVault) Create(base, text string) (string, error) {
	name := base + ".md"
	for i := 1; ; i++ {
		if _, taken := v.docs[name]; !taken {
			break
		}
		name = fmt.Sprintf("%s-%d.md", base, i)
	}
	v.docs[name] = text
	return name, nil
}

// fakeRemote records gateway calls.
type fakeRemote struct {
	notes   map[string]core.RemoteNote
	nextID  string
	creates int
	updates int
	deletes int
	gets    int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{notes: make(map[string]core.RemoteNote), nextID: "note1"}
}

func (r *fakeRemote) Authenticate(ctx context.Context) (core.UserInfo, error) {
	return core.UserInfo{ID: "u1", Name: "Alice", UserPath: "alice"}, nil
}

func (r *fakeRemote) GetNote(ctx context.Context, id string) (core.RemoteNote, error) {
	r.gets++
	note, ok := r.notes[id]
	if !ok {
		return core.RemoteNote{}, core.NewError(core.KindNoteNotFound, "note does not exist on the server")
	}
	return note, nil
}

func (r *fakeRemote) CreateNote(ctx context.Context, opts core.NoteOptions) (core.RemoteNote, error) {
	r.creates++
	note := core.RemoteNote{ID: r.nextID, CreatedAt: t0}
	if opts.Title != nil {
		note.Title = *opts.Title
	}
	if opts.Content != nil {
		note.Content = *opts.Content
	}
	r.notes[note.ID] = note
	return note, nil
}

func (r *fakeRemote) UpdateNote(ctx context.Context, id string, opts core.NoteOptions) (core.RemoteNote, error) {
	r.updates++
	note, ok := r.notes[id]
	if !ok {
		return core.RemoteNote{}, core.NewError(core.KindNoteNotFound, "note does not exist on the server")
	}
	if opts.Title != nil {
		note.Title = *opts.Title
	}
	if opts.Content != nil {
		note.Content = *opts.Content
	}
	r.notes[id] = note
	return note, nil
}

func (r *fakeRemote) DeleteNote(ctx context.Context, id string) error {
	// Mirrors the gateway contract: absence is success.
	r.deletes++
	delete(r.notes, id)
	return nil
}

func newTestEngine(v *fakeVault, r *fakeRemote, opts ...core.EngineOption) *core.Engine {
	base := []core.EngineOption{
		core.WithMargin(4 * time.Second),
		core.WithClock(func() time.Time { return t0 }),
	}
	return core.NewEngine(v, r, append(base, opts...)...)
}

func linkedDoc(id string, lastSync time.Time, extra frontmatter.Metadata, body string) string {
	meta := frontmatter.Metadata{
		frontmatter.KeyURL:      "https://mdpad.io/" + id,
		frontmatter.KeyTitle:    "T",
		frontmatter.KeyLastSync: lastSync.Format(time.RFC3339),
	}
	for k, val := range extra {
		meta[k] = val
	}
	return frontmatter.Join(meta, body)
}

func changedAt(t time.Time) *time.Time { return &t }

// Scenario: first push of a document with no header creates a remote note
// and stamps url, title and lastSync.
func TestPushFirstTime(t *testing.T) {
	v := newFakeVault()
	r := newFakeRemote()
	v.docs["ideas.md"] = "# Big Ideas\n\nbody text\n"

	engine := newTestEngine(v, r)
	note, err := engine.Push(context.Background(), "ideas.md", false)
	require.NoError(t, err)

	assert.Equal(t, 1, r.creates)
	assert.Equal(t, 0, r.updates)
	assert.Equal(t, "Big Ideas", note.Title, "title derives from the first heading")

	meta, body, _ := frontmatter.Split(v.docs["ideas.md"])
	require.NotNil(t, meta)
	assert.Equal(t, "https://mdpad.io/note1", meta[frontmatter.KeyURL])
	assert.Equal(t, "Big Ideas", meta[frontmatter.KeyTitle])
	assert.Equal(t, t0.Format(time.RFC3339), meta[frontmatter.KeyLastSync])
	assert.Equal(t, "# Big Ideas\n\nbody text\n", body)
}

func TestPushTitleFallsBackToName(t *testing.T) {
	v := newFakeVault()
	r := newFakeRemote()
	v.docs["notes/daily.md"] = "plain text, no heading\n"

	engine := newTestEngine(v, r)
	note, err := engine.Push(context.Background(), "notes/daily.md", false)
	require.NoError(t, err)
	assert.Equal(t, "daily", note.Title)
}

// Scenario: pushing a linked document whose remote counterpart moved on
// after lastSync is rejected; --force overwrites.
func TestPushConflict(t *testing.T) {
	v := newFakeVault()
	r := newFakeRemote()
	v.docs["doc.md"] = linkedDoc("note1", t0, nil, "local body\n")
	r.notes["note1"] = core.RemoteNote{
		ID:            "note1",
		Title:         "T",
		Content:       "remote body",
		CreatedAt:     t0.Add(-time.Hour),
		LastChangedAt: changedAt(t0.Add(10 * time.Second)),
	}

	engine := newTestEngine(v, r)

	_, err := engine.Push(context.Background(), "doc.md", false)
	require.Error(t, err)
	assert.Equal(t, core.KindConflictRemote, core.KindOf(err))
	assert.Equal(t, 0, r.updates, "no partial writes on conflict")
	assert.Equal(t, linkedDoc("note1", t0, nil, "local body\n"), v.docs["doc.md"], "document unchanged on conflict")

	// Forced push skips the check and overwrites the remote content.
	_, err = engine.Push(context.Background(), "doc.md", true)
	require.NoError(t, err)
	assert.Equal(t, 1, r.updates)
	assert.Equal(t, "local body\n", r.notes["note1"].Content)
}

func TestPushConflictMarginBoundary(t *testing.T) {
	ctx := context.Background()
	margin := 4 * time.Second

	cases := []struct {
		name      string
		changed   time.Time
		wantsKind core.Kind
	}{
		{"just inside margin", t0.Add(margin - time.Second), ""},
		{"just outside margin", t0.Add(margin + time.Second), core.KindConflictRemote},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := newFakeVault()
			r := newFakeRemote()
			v.docs["doc.md"] = linkedDoc("note1", t0, nil, "body")
			r.notes["note1"] = core.RemoteNote{
				ID: "note1", Title: "T", CreatedAt: t0.Add(-time.Hour),
				LastChangedAt: changedAt(tc.changed),
			}

			engine := newTestEngine(v, r)
			_, err := engine.Push(ctx, "doc.md", false)
			if tc.wantsKind == "" {
				require.NoError(t, err)
			} else {
				assert.Equal(t, tc.wantsKind, core.KindOf(err))
			}
		})
	}
}

func TestPushMissingLastSyncIsConflict(t *testing.T) {
	v := newFakeVault()
	r := newFakeRemote()
	meta := frontmatter.Metadata{frontmatter.KeyURL: "https://mdpad.io/note1"}
	v.docs["doc.md"] = frontmatter.Join(meta, "body")
	r.notes["note1"] = core.RemoteNote{ID: "note1", Title: "T", CreatedAt: t0}

	engine := newTestEngine(v, r)

	_, err := engine.Push(context.Background(), "doc.md", false)
	assert.Equal(t, core.KindMetadataMissing, core.KindOf(err))

	_, err = engine.Push(context.Background(), "doc.md", true)
	require.NoError(t, err, "forced push bypasses the missing-metadata conflict")
}

// A url that does not resolve against the share host means the document is
// treated as unsynced: push creates a fresh note.
func TestPushUnresolvableURLCreates(t *testing.T) {
	v := newFakeVault()
	r := newFakeRemote()
	meta := frontmatter.Metadata{frontmatter.KeyURL: "https://elsewhere.example/xyz"}
	v.docs["doc.md"] = frontmatter.Join(meta, "body")

	engine := newTestEngine(v, r)
	_, err := engine.Push(context.Background(), "doc.md", false)
	require.NoError(t, err)
	assert.Equal(t, 1, r.creates)
}

// The pushed content carries unrelated front matter but never the
// reserved sync keys.
func TestPushStripsReservedKeysFromContent(t *testing.T) {
	v := newFakeVault()
	r := newFakeRemote()
	v.docs["doc.md"] = linkedDoc("note1", t0, frontmatter.Metadata{"author": "alice"}, "body\n")
	r.notes["note1"] = core.RemoteNote{ID: "note1", Title: "T", CreatedAt: t0.Add(-time.Hour)}

	engine := newTestEngine(v, r)
	_, err := engine.Push(context.Background(), "doc.md", false)
	require.NoError(t, err)

	meta, body, _ := frontmatter.Split(r.notes["note1"].Content)
	require.NotNil(t, meta)
	assert.Equal(t, "alice", meta["author"])
	assert.NotContains(t, meta, frontmatter.KeyURL)
	assert.NotContains(t, meta, frontmatter.KeyLastSync)
	assert.Equal(t, "body\n", body)
}

// Scenario: pulling over a locally modified document is rejected; --force
// overwrites the body but preserves unrelated header keys.
func TestPullConflict(t *testing.T) {
	v := newFakeVault()
	r := newFakeRemote()
	v.docs["doc.md"] = linkedDoc("note1", t0, frontmatter.Metadata{"color": "blue"}, "local body\n")
	v.mtimes["doc.md"] = t0.Add(10 * time.Second)
	r.notes["note1"] = core.RemoteNote{ID: "note1", Title: "Fresh", Content: "remote body\n", CreatedAt: t0}

	engine := newTestEngine(v, r)

	_, err := engine.Pull(context.Background(), "doc.md", false)
	require.Error(t, err)
	assert.Equal(t, core.KindConflictLocal, core.KindOf(err))

	_, err = engine.Pull(context.Background(), "doc.md", true)
	require.NoError(t, err)

	meta, body, _ := frontmatter.Split(v.docs["doc.md"])
	assert.Equal(t, "remote body\n", body)
	assert.Equal(t, "blue", meta["color"], "unrelated keys survive a forced pull")
	assert.Equal(t, "Fresh", meta[frontmatter.KeyTitle])
	assert.Equal(t, t0.Format(time.RFC3339), meta[frontmatter.KeyLastSync])
}

func TestPullWithinMarginSucceeds(t *testing.T) {
	v := newFakeVault()
	r := newFakeRemote()
	v.docs["doc.md"] = linkedDoc("note1", t0, nil, "local\n")
	v.mtimes["doc.md"] = t0.Add(3 * time.Second)
	r.notes["note1"] = core.RemoteNote{ID: "note1", Title: "T", Content: "remote\n", CreatedAt: t0}

	engine := newTestEngine(v, r)
	_, err := engine.Pull(context.Background(), "doc.md", false)
	require.NoError(t, err)
}

func TestPullUnsyncedFails(t *testing.T) {
	v := newFakeVault()
	r := newFakeRemote()
	v.docs["doc.md"] = "no header\n"

	engine := newTestEngine(v, r)
	_, err := engine.Pull(context.Background(), "doc.md", false)
	assert.Equal(t, core.KindNotLinked, core.KindOf(err))
}

// Remote content may carry a header of its own; its reserved keys must
// not override local identity, while its unrelated keys win on merge.
func TestPullMergesRemoteHeader(t *testing.T) {
	v := newFakeVault()
	r := newFakeRemote()
	v.docs["doc.md"] = linkedDoc("note1", t0, frontmatter.Metadata{"color": "blue"}, "local\n")
	v.mtimes["doc.md"] = t0

	foreign := frontmatter.Metadata{
		frontmatter.KeyURL: "https://mdpad.io/stolen",
		"color":            "red",
		"origin":           "elsewhere",
	}
	r.notes["note1"] = core.RemoteNote{
		ID: "note1", Title: "T", CreatedAt: t0,
		Content: frontmatter.Join(foreign, "remote\n"),
	}

	engine := newTestEngine(v, r)
	_, err := engine.Pull(context.Background(), "doc.md", false)
	require.NoError(t, err)

	meta, body, _ := frontmatter.Split(v.docs["doc.md"])
	assert.Equal(t, "remote\n", body)
	assert.Equal(t, "https://mdpad.io/note1", meta[frontmatter.KeyURL], "identity stays local")
	assert.Equal(t, "red", meta["color"], "incoming unrelated keys win")
	assert.Equal(t, "elsewhere", meta["origin"])
}

// Scenario: delete calls the remote exactly once, strips the reserved
// keys and keeps unrelated ones.
func TestDelete(t *testing.T) {
	v := newFakeVault()
	r := newFakeRemote()
	v.docs["doc.md"] = linkedDoc("note1", t0, frontmatter.Metadata{"author": "alice"}, "body\n")
	r.notes["note1"] = core.RemoteNote{ID: "note1"}

	engine := newTestEngine(v, r)
	deleted, err := engine.Delete(context.Background(), "doc.md", func(string) bool { return true })
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, 1, r.deletes)

	meta, body, _ := frontmatter.Split(v.docs["doc.md"])
	require.NotNil(t, meta)
	assert.Equal(t, "alice", meta["author"])
	assert.NotContains(t, meta, frontmatter.KeyURL)
	assert.NotContains(t, meta, frontmatter.KeyTitle)
	assert.NotContains(t, meta, frontmatter.KeyLastSync)
	assert.Equal(t, "body\n", body)

	// Deleting again after the remote note is gone still succeeds once
	// relinked; absence is the goal. Here the document is now unsynced.
	_, err = engine.Delete(context.Background(), "doc.md", func(string) bool { return true })
	assert.Equal(t, core.KindNotLinked, core.KindOf(err))
}

func TestDeleteDeclined(t *testing.T) {
	v := newFakeVault()
	r := newFakeRemote()
	original := linkedDoc("note1", t0, nil, "body\n")
	v.docs["doc.md"] = original
	r.notes["note1"] = core.RemoteNote{ID: "note1"}

	engine := newTestEngine(v, r)
	deleted, err := engine.Delete(context.Background(), "doc.md", func(string) bool { return false })
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Equal(t, 0, r.deletes)
	assert.Equal(t, original, v.docs["doc.md"])
}

// Scenario: clone refuses to create a duplicate for a note some document
// already links to, and surfaces the existing document instead.
func TestCloneDuplicateGuard(t *testing.T) {
	v := newFakeVault()
	r := newFakeRemote()
	v.docs["existing.md"] = linkedDoc("note1", t0, nil, "body\n")
	r.notes["note1"] = core.RemoteNote{ID: "note1", Title: "T", Content: "remote\n"}

	engine := newTestEngine(v, r)
	res, err := engine.Clone(context.Background(), "https://mdpad.io/note1")
	require.NoError(t, err)
	assert.True(t, res.Existing)
	assert.Equal(t, "existing.md", res.Path)
	assert.Len(t, v.docs, 1, "no duplicate document created")
}

func TestClone(t *testing.T) {
	v := newFakeVault()
	r := newFakeRemote()
	foreign := frontmatter.Metadata{
		frontmatter.KeyURL:      "https://mdpad.io/someone-elses",
		frontmatter.KeyLastSync: "2020-01-01T00:00:00Z",
		"topic":                 "travel",
	}
	r.notes["note9"] = core.RemoteNote{
		ID: "note9", Title: "Trip Plan", CreatedAt: t0,
		Content: frontmatter.Join(foreign, "remote body\n"),
	}

	engine := newTestEngine(v, r)
	res, err := engine.Clone(context.Background(), "https://mdpad.io/@alice/note9")
	require.NoError(t, err)
	assert.False(t, res.Existing)
	assert.Equal(t, "Trip Plan.md", res.Path)

	meta, body, _ := frontmatter.Split(v.docs[res.Path])
	assert.Equal(t, "remote body\n", body)
	assert.Equal(t, "https://mdpad.io/note9", meta[frontmatter.KeyURL], "stale reserved keys from the export are replaced")
	assert.Equal(t, t0.Format(time.RFC3339), meta[frontmatter.KeyLastSync])
	assert.Equal(t, "travel", meta["topic"])
}

func TestCloneInvalidURL(t *testing.T) {
	engine := newTestEngine(newFakeVault(), newFakeRemote())
	_, err := engine.Clone(context.Background(), "https://example.com/nope")
	assert.Equal(t, core.KindInvalidURL, core.KindOf(err))
}

func TestCloneCollisionNaming(t *testing.T) {
	v := newFakeVault()
	r := newFakeRemote()
	v.docs["Trip Plan.md"] = "unrelated document\n"
	r.notes["note9"] = core.RemoteNote{ID: "note9", Title: "Trip Plan", Content: "remote\n", CreatedAt: t0}

	engine := newTestEngine(v, r)
	res, err := engine.Clone(context.Background(), "https://mdpad.io/note9")
	require.NoError(t, err)
	assert.Equal(t, "Trip Plan-1.md", res.Path)
}

func TestRemoteURL(t *testing.T) {
	v := newFakeVault()
	v.docs["doc.md"] = linkedDoc("note1", t0, nil, "body")
	v.docs["plain.md"] = "no header"

	engine := newTestEngine(v, newFakeRemote())

	u, err := engine.RemoteURL("doc.md")
	require.NoError(t, err)
	assert.Equal(t, "https://mdpad.io/note1", u)

	_, err = engine.RemoteURL("plain.md")
	assert.Equal(t, core.KindNotLinked, core.KindOf(err))
}

func TestStatus(t *testing.T) {
	v := newFakeVault()
	v.docs["synced.md"] = linkedDoc("note1", t0, nil, "body")
	v.mtimes["synced.md"] = t0
	v.docs["dirty.md"] = linkedDoc("note2", t0, nil, "body")
	v.mtimes["dirty.md"] = t0.Add(time.Minute)
	v.docs["plain.md"] = "no header"

	engine := newTestEngine(v, newFakeRemote())
	statuses, err := engine.Status("")
	require.NoError(t, err)
	require.Len(t, statuses, 3)

	byPath := map[string]core.DocumentStatus{}
	for _, st := range statuses {
		byPath[st.Path] = st
	}

	assert.True(t, byPath["synced.md"].Linked)
	assert.False(t, byPath["synced.md"].Dirty)
	assert.True(t, byPath["dirty.md"].Dirty)
	assert.False(t, byPath["plain.md"].Linked)
}

func TestPushMissingDocument(t *testing.T) {
	engine := newTestEngine(newFakeVault(), newFakeRemote())
	_, err := engine.Push(context.Background(), "gone.md", false)
	assert.Equal(t, core.KindNoDocument, core.KindOf(err))
}
