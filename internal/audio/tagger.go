package audio

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2"

	"shufflepod/internal/media"
)

// fallbackAlbum is used when the owning podcast is not in the account's
// subscription list (e.g. an episode shared into Up Next).
const fallbackAlbum = "Mystery podcast"

// genre applied to every synced episode so players can group them.
const genre = "Podcast"

// Tagger writes ID3 tags onto downloaded episode files so they show up
// sensibly in music players: episode title, podcast title as the album,
// and a fixed Podcast genre.
type Tagger struct {
	// albums maps podcast UUID to podcast title.
	albums map[string]string
}

// NewTagger creates a Tagger resolving album names from the given
// podcast UUID to title mapping. A nil map is allowed; every episode
// then falls back to the default album.
func NewTagger(albums map[string]string) *Tagger {
	return &Tagger{albums: albums}
}

// Taggable reports whether the file at path can carry ID3 tags.
// Only .mp3 files are tagged; other containers are left untouched.
func Taggable(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".mp3")
}

// Tag writes title, album, and genre frames to the episode file at
// path. The file must already be committed at its canonical name;
// tagging failures are the caller's to log, they never undo a download.
func (t *Tagger) Tag(path string, ep media.Episode) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("opening %s for tagging: %w", path, err)
	}
	defer tag.Close()

	tag.SetTitle(ep.Title)
	tag.SetGenre(genre)
	tag.SetAlbum(t.album(ep))

	if err := tag.Save(); err != nil {
		return fmt.Errorf("saving tags for %s: %w", path, err)
	}

	return nil
}

func (t *Tagger) album(ep media.Episode) string {
	if title, ok := t.albums[ep.Podcast]; ok && title != "" {
		return title
	}

	return fallbackAlbum
}
