// Package frontmatter parses and serializes the constrained YAML-like
// metadata block at the top of Markdown documents.
//
// The grammar is deliberately small: an opening "---" line, then "key: value"
// lines or a bare "key:" followed by "- item" lines, then a closing "---"
// line. Nested mappings and inline flow sequences are not supported; the
// static-site generator never emits them.
package frontmatter

import (
	"regexp"
	"strings"
)

var blockRe = regexp.MustCompile(`(?s)^---\n(.*?)\n---`)

type value struct {
	scalar string
	list   []string
	isList bool
}

// Metadata is an ordered key→value mapping parsed from a front-matter block.
// List values keep their items; Get returns the legacy comma-joined form
// consumed elsewhere in the app.
type Metadata struct {
	keys   []string
	values map[string]value
}

func NewMetadata() *Metadata {
	return &Metadata{values: make(map[string]value)}
}

// Set stores a scalar value, overwriting any previous value for key.
func (m *Metadata) Set(key, scalar string) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value{scalar: scalar}
}

// SetList stores an ordered list value for key.
func (m *Metadata) SetList(key string, items []string) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value{list: items, isList: true}
}

// Get returns the value for key. List values are joined with commas, matching
// the legacy metadata shape.
func (m *Metadata) Get(key string) (string, bool) {
	v, ok := m.values[key]
	if !ok {
		return "", false
	}
	if v.isList {
		return strings.Join(v.list, ","), true
	}
	return v.scalar, true
}

// Keys returns the keys in document order.
func (m *Metadata) Keys() []string {
	return m.keys
}

func (m *Metadata) Len() int {
	return len(m.keys)
}

// Map flattens the metadata into the legacy map shape: list values become a
// single comma-joined string.
func (m *Metadata) Map() map[string]string {
	out := make(map[string]string, len(m.keys))
	for _, k := range m.keys {
		v, _ := m.Get(k)
		out[k] = v
	}
	return out
}

// Parse splits raw into metadata and body.
//
// The scanner runs in two states: outside the block and inside it, with a
// sub-state for accumulating list items under the most recent bare key. A
// document without the ---/--- wrapper parses to empty metadata and an
// unchanged body.
func Parse(raw string) (*Metadata, string) {
	meta := NewMetadata()

	m := blockRe.FindStringSubmatch(raw)
	if m == nil {
		return meta, raw
	}

	var (
		listKey   string
		listItems []string
	)
	flush := func() {
		if listKey != "" && len(listItems) > 0 {
			meta.SetList(listKey, listItems)
		}
		listKey = ""
		listItems = nil
	}

	for _, line := range strings.Split(m[1], "\n") {
		t := strings.TrimSpace(line)

		if strings.HasPrefix(t, "-") && listKey != "" {
			listItems = append(listItems, strings.TrimSpace(t[1:]))
			continue
		}

		if idx := strings.Index(line, ":"); idx >= 0 {
			flush()
			key := strings.TrimSpace(line[:idx])
			val := strings.TrimSpace(line[idx+1:])
			if key == "" {
				continue
			}
			if val != "" {
				meta.Set(key, val)
			} else {
				// bare key, likely followed by list items
				listKey = key
			}
			continue
		}

		// neither a list item nor a mapping line
		flush()
	}
	flush()

	body := raw[len(m[0]):]
	body = strings.TrimPrefix(body, "\n")
	body = strings.TrimPrefix(body, "\n")
	return meta, body
}

// Serialize renders metadata and body back into a document. Keys are emitted
// in their insertion order; a key holding an empty list is dropped entirely
// rather than emitted as a bare "key:" line. When nothing remains to emit,
// the body is returned alone: an empty "---\n---" block would not parse back.
func Serialize(meta *Metadata, body string) string {
	var fields strings.Builder
	for _, k := range meta.keys {
		v := meta.values[k]
		if v.isList {
			if len(v.list) == 0 {
				continue
			}
			fields.WriteString(k)
			fields.WriteString(":\n")
			for _, item := range v.list {
				fields.WriteString("  - ")
				fields.WriteString(item)
				fields.WriteString("\n")
			}
			continue
		}
		fields.WriteString(k)
		fields.WriteString(": ")
		fields.WriteString(v.scalar)
		fields.WriteString("\n")
	}
	if fields.Len() == 0 {
		return body
	}
	return "---\n" + fields.String() + "---\n\n" + body
}

// Rewrite replaces only the tags and location keys in raw's front-matter,
// leaving every other line verbatim and in its original order, and swaps in
// the new body. An empty tags slice drops the tags key and its list lines.
func Rewrite(raw string, tags []string, location string, body string) string {
	var updated []string

	if m := blockRe.FindStringSubmatch(raw); m != nil {
		inTags := false
		for _, line := range strings.Split(m[1], "\n") {
			switch {
			case strings.HasPrefix(line, "tags:"):
				if len(tags) > 0 {
					updated = append(updated, "tags:")
					for _, tag := range tags {
						updated = append(updated, "  - "+strings.TrimSpace(tag))
					}
				}
				inTags = true
			case inTags && strings.HasPrefix(strings.TrimSpace(line), "-"):
				// old tag items, replaced wholesale above
			case strings.HasPrefix(line, "location:"):
				updated = append(updated, "location: "+location)
				inTags = false
			default:
				updated = append(updated, line)
				inTags = false
			}
		}
	}

	return "---\n" + strings.Join(updated, "\n") + "\n---\n\n" + body
}
