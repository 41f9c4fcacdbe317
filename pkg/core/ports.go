package core

import (
	"context"
	"time"
)

// Vault is the document host adapter: it owns local document storage.
// The engine only ever reads and replaces a document's full text through
// this interface, never touching storage directly. Paths are
// vault-relative.
type Vault interface {
	// Read returns the current text of the document at path.
	Read(path string) (string, error)

	// Write replaces the full text of the document at path, creating it
	// if needed.
	Write(path, text string) error

	// List returns the vault-relative paths of documents matching the
	// glob pattern. An empty pattern lists every markdown document.
	List(pattern string) ([]string, error)

	// ModTime returns the filesystem modification time of the document.
	ModTime(path string) (time.Time, error)

	// Create materializes a new document under a collision-free name
	// derived from base, returning the path actually used.
	Create(base, text string) (string, error)
}

// Remote is the gateway to the pad host's REST API. Implementations
// classify every transport and HTTP failure into the Kind taxonomy.
type Remote interface {
	// Authenticate verifies the credential and returns the current user.
	Authenticate(ctx context.Context) (UserInfo, error)

	// GetNote fetches a note by ID.
	GetNote(ctx context.Context, id string) (RemoteNote, error)

	// CreateNote creates a new note.
	CreateNote(ctx context.Context, opts NoteOptions) (RemoteNote, error)

	// UpdateNote applies a partial update to an existing note and returns
	// its settled state.
	UpdateNote(ctx context.Context, id string, opts NoteOptions) (RemoteNote, error)

	// DeleteNote ensures the note is absent. Deleting an ID that no
	// longer exists is success, not failure.
	DeleteNote(ctx context.Context, id string) error
}

// ConfirmFunc asks the user to confirm a destructive action. It is an
// external collaborator; the engine never renders prompts itself.
type ConfirmFunc func(prompt string) bool
