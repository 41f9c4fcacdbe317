// Package frontmatter reads and writes the YAML header block that padsync
// embeds at the top of a markdown document, and implements the merge
// semantics used when reconciling local metadata with a remote note.
package frontmatter

import (
	"bytes"
	"strings"

	"gopkg.in/yaml.v3"
)

// Metadata represents the flexible key-value pairs stored in a document's
// front matter.
type Metadata map[string]any

// Reserved keys managed by the sync engine. Everything else in the front
// matter belongs to the user and must survive every merge untouched.
const (
	KeyURL      = "url"
	KeyTitle    = "title"
	KeyLastSync = "lastSync"
	KeyTeamPath = "teamPath"
)

// ReservedKeys lists the keys owned by the sync engine.
var ReservedKeys = []string{KeyURL, KeyTitle, KeyLastSync, KeyTeamPath}

const delimiter = "---"

// Split separates a document's front matter from its body.
//
// A header block is recognized only when the text starts with the `---`
// delimiter at offset 0, followed by parseable YAML, followed by a closing
// delimiter. Anything else is a recoverable condition: Split returns a nil
// Metadata, the full text as body, and a header length of 0. Callers treat
// absent metadata as "never synced".
func Split(text string) (Metadata, string, int) {
	if !strings.HasPrefix(text, delimiter+"\n") && !strings.HasPrefix(text, delimiter+"\r\n") {
		return nil, text, 0
	}

	rest := text[len(delimiter):]
	idx := closingDelimiter(rest)
	if idx < 0 {
		// Header opened but never closed.
		return nil, text, 0
	}

	header := rest[:idx+1]
	tail := rest[idx+1+len(delimiter):]

	var meta Metadata
	if err := yaml.Unmarshal([]byte(header), &meta); err != nil || meta == nil {
		return nil, text, 0
	}

	headerLen := len(delimiter) + idx + 1 + len(delimiter)
	body := tail
	if strings.HasPrefix(body, "\r\n") {
		body = body[2:]
		headerLen += 2
	} else if strings.HasPrefix(body, "\n") {
		body = body[1:]
		headerLen++
	}

	return meta, body, headerLen
}

// Join serializes metadata back into header form and concatenates the body.
// An empty or nil mapping emits the body only, with no header block.
// Join is the inverse of Split for any mapping representable in YAML.
func Join(meta Metadata, body string) string {
	if len(meta) == 0 {
		return body
	}

	var buf bytes.Buffer
	buf.WriteString(delimiter + "\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(meta); err != nil {
		// Metadata maps produced by Split always re-encode; a failure here
		// means a caller handed us an unmarshalable value.
		enc.Close()
		return body
	}
	enc.Close()
	buf.WriteString(delimiter + "\n")
	buf.WriteString(body)
	return buf.String()
}

// Merge returns the right-biased shallow union of base and incoming:
// incoming keys win on conflict. After the union, any key whose value is an
// empty mapping is deleted, so vestigial empty metadata groups from older
// schema versions do not accumulate. Neither input is mutated.
func Merge(base, incoming Metadata) Metadata {
	out := make(Metadata, len(base)+len(incoming))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range incoming {
		out[k] = v
	}
	for k, v := range out {
		if isEmptyMapping(v) {
			delete(out, k)
		}
	}
	return out
}

// Strip returns a copy of meta with all reserved keys removed. Unrelated
// keys are retained. A nil input yields a nil result.
func Strip(meta Metadata) Metadata {
	if meta == nil {
		return nil
	}
	out := make(Metadata, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	for _, k := range ReservedKeys {
		delete(out, k)
	}
	return out
}

// closingDelimiter finds the offset in rest of the newline that precedes a
// line consisting solely of the delimiter. Returns -1 when no such line
// exists.
func closingDelimiter(rest string) int {
	search := 0
	for {
		idx := strings.Index(rest[search:], "\n"+delimiter)
		if idx < 0 {
			return -1
		}
		idx += search
		after := rest[idx+1+len(delimiter):]
		if after == "" || strings.HasPrefix(after, "\n") || strings.HasPrefix(after, "\r\n") {
			return idx
		}
		search = idx + 1
	}
}

func isEmptyMapping(v any) bool {
	switch m := v.(type) {
	case Metadata:
		return len(m) == 0
	case map[string]any:
		return len(m) == 0
	case map[any]any:
		return len(m) == 0
	default:
		return false
	}
}
