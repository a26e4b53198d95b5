package media

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
)

// ErrNotCanonical is returned by ParseUUID for filenames that do not
// match the canonical naming pattern.
var ErrNotCanonical = errors.New("filename does not match canonical pattern")

// Episode is a single entry in the remote Up Next queue. Immutable once
// constructed; identity is the UUID, which survives reordering.
type Episode struct {
	// UUID is the stable Pocket Casts episode identifier.
	UUID string

	// Order is the zero-based position in the Up Next queue. Used only
	// for filename generation, never for sync decisions.
	Order int

	// URL is the media source locator.
	URL string

	// Title is the episode title, used for ID3 tagging.
	Title string

	// Podcast is the UUID of the owning podcast, resolved to a title
	// for the album tag.
	Podcast string
}

// Extension returns the file extension (including the dot) derived from
// the last path segment of the episode URL. Empty when the URL has no
// extension or cannot be parsed.
func (e Episode) Extension() string {
	u, err := url.Parse(e.URL)
	if err != nil {
		return ""
	}

	return path.Ext(path.Base(u.Path))
}

// Filename returns the canonical local filename for the episode:
// zero-padded order, an underscore, the UUID, and the URL's extension.
// Deterministic and stable across runs for unchanged remote state, and
// injective for distinct UUIDs since the UUID is embedded verbatim.
func (e Episode) Filename() string {
	return fmt.Sprintf("%03d_%s%s", e.Order, e.UUID, e.Extension())
}

// canonicalName is the inverse of the Filename scheme: digits, an
// underscore, the UUID charset, and an optional extension.
var canonicalName = regexp.MustCompile(`^\d+_([0-9a-fA-F-]+)(\.[^.]*)?$`)

// ParseUUID recovers the episode UUID from a canonical filename.
// Returns ErrNotCanonical (wrapped) for anything that does not match;
// callers must log and skip such files, never delete them.
func ParseUUID(name string) (string, error) {
	m := canonicalName.FindStringSubmatch(name)
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrNotCanonical, name)
	}

	return m[1], nil
}
