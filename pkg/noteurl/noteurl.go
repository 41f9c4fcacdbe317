// Package noteurl resolves the identity relationship between canonical
// share URLs on the pad host and the opaque note IDs used by its API.
package noteurl

import (
	"net/url"
	"strings"
)

// DefaultShareURL is the public host serving canonical note URLs.
const DefaultShareURL = "https://mdpad.io"

// IDFromURL extracts the note ID from a canonical share URL.
//
// Accepted shapes are https://<host>/<id> and https://<host>/@<owner>/<id>,
// where <host> matches shareURL. Any other URL, including an empty input,
// yields ok=false: the caller treats the document as unsynced.
func IDFromURL(shareURL, raw string) (string, bool) {
	if raw == "" {
		return "", false
	}

	base, err := url.Parse(shareURL)
	if err != nil || base.Host == "" {
		return "", false
	}
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	if u.Host != base.Host {
		return "", false
	}

	segs := splitPath(u.Path)
	switch len(segs) {
	case 1:
		// https://host/<id>
	case 2:
		// https://host/@owner/<id>
		if !strings.HasPrefix(segs[0], "@") {
			return "", false
		}
		segs = segs[1:]
	default:
		return "", false
	}

	id := segs[0]
	if !validID(id) {
		return "", false
	}
	return id, true
}

// URLFromID builds the canonical share URL for a note ID.
// IDFromURL(shareURL, URLFromID(shareURL, id)) == id for any id drawn from
// the accepted character set.
func URLFromID(shareURL, id string) string {
	return strings.TrimRight(shareURL, "/") + "/" + id
}

func splitPath(p string) []string {
	var segs []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

// validID reports whether id consists solely of the accepted note ID
// character set: alphanumerics, '-' and '_'.
func validID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return false
		}
	}
	return true
}
