package core

import "time"

// RemoteNote is the server-side record of a note. Its lifetime is
// controlled by the pad host, never by the local engine.
type RemoteNote struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	CreatedAt     time.Time  `json:"createdAt"`
	LastChangedAt *time.Time `json:"lastChangedAt,omitempty"`
	TeamPath      string     `json:"teamPath,omitempty"`
}

// ModifiedAt returns the note's effective last-modification time.
// A note never edited after creation has no lastChangedAt and falls back
// to createdAt.
func (n RemoteNote) ModifiedAt() time.Time {
	if n.LastChangedAt != nil {
		return *n.LastChangedAt
	}
	return n.CreatedAt
}

// UserInfo describes the authenticated user, as returned by the auth probe.
type UserInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	UserPath string `json:"userPath"`
}

// Permission is a sharing permission level understood by the pad host.
type Permission string

const (
	PermissionOwner    Permission = "owner"
	PermissionSignedIn Permission = "signed_in"
	PermissionGuest    Permission = "guest"
	PermissionEveryone Permission = "everyone"
)

// NoteOptions carries the fields of a create or update request. Nil fields
// are omitted from the request body so the server leaves them untouched.
type NoteOptions struct {
	Title             *string    `json:"title,omitempty"`
	Content           *string    `json:"content,omitempty"`
	ReadPermission    Permission `json:"readPermission,omitempty"`
	WritePermission   Permission `json:"writePermission,omitempty"`
	CommentPermission Permission `json:"commentPermission,omitempty"`
}

// CreatePermissions bundles the default sharing permissions stamped on
// newly created notes.
type CreatePermissions struct {
	Read    Permission
	Write   Permission
	Comment Permission
}

// DefaultPermissions mirror the pad host's own defaults for new notes.
func DefaultPermissions() CreatePermissions {
	return CreatePermissions{
		Read:    PermissionGuest,
		Write:   PermissionOwner,
		Comment: PermissionEveryone,
	}
}

// DocumentStatus summarizes one vault document for the status listing.
// Dirty means the file was modified after its recorded lastSync.
type DocumentStatus struct {
	Path     string    `json:"path"`
	Linked   bool      `json:"linked"`
	URL      string    `json:"url,omitempty"`
	LastSync time.Time `json:"lastSync,omitzero"`
	Dirty    bool      `json:"dirty"`
}

// CloneResult reports the outcome of a create-from-url operation.
// Existing is true when the duplicate guard found a document already
// linked to the requested note; Path then names that document and nothing
// was created.
type CloneResult struct {
	Path     string
	Existing bool
}
