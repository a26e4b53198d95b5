package e2e_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"shufflepod/internal/fetch"
	"shufflepod/internal/media"
	"shufflepod/internal/syncer"
)

// harness wires a temp music directory to a fake episode CDN and the
// real fetch/sync stack, so tests drive the whole pipeline end to end.
type harness struct {
	*httptest.Server

	lib     *media.Library
	dir     string
	content map[string][]byte
	broken  map[string]bool
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		dir:     t.TempDir(),
		content: make(map[string][]byte),
		broken:  make(map[string]bool),
	}
	h.lib = media.NewLibrary(h.dir)

	h.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.broken[r.URL.Path] {
			http.Error(w, "gone", http.StatusInternalServerError)
			return
		}

		body, ok := h.content[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write(body)
	}))
	t.Cleanup(h.Server.Close)

	return h
}

// episode registers audio content for the given uuid and returns the
// queue entry pointing at it.
func (h *harness) episode(uuid string, order int, title string) media.Episode {
	path := "/audio/" + uuid + ".mp3"
	h.content[path] = []byte("audio for " + uuid)

	return media.Episode{
		UUID:    uuid,
		Order:   order,
		URL:     h.URL + path,
		Title:   title,
		Podcast: "pod-" + uuid,
	}
}

// breakEpisode makes the CDN return a server error for the episode.
func (h *harness) breakEpisode(uuid string) {
	h.broken["/audio/"+uuid+".mp3"] = true
}

// seedFile drops a file straight into the music directory.
func (h *harness) seedFile(t *testing.T, name string) {
	t.Helper()

	require.NoError(t, os.WriteFile(filepath.Join(h.dir, name), []byte("stale "+name), 0o644))
}

// sync runs one full scan / reconcile / execute pass.
func (h *harness) sync(t *testing.T, episodes []media.Episode, workers int) *syncer.Report {
	t.Helper()

	scan, err := h.lib.Scan()
	require.NoError(t, err)

	plan := syncer.Reconcile(episodes, scan.Entries)
	executor := syncer.NewExecutor(h.lib, fetch.NewClient(), workers, quietLogger())

	return executor.Execute(context.Background(), plan)
}

// files lists the music directory contents, sorted.
func (h *harness) files(t *testing.T) []string {
	t.Helper()

	entries, err := os.ReadDir(h.dir)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	return names
}

func (h *harness) readFile(t *testing.T, name string) string {
	t.Helper()

	body, err := os.ReadFile(filepath.Join(h.dir, name))
	require.NoError(t, err)

	return string(body)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func canonical(order int, uuid string) string {
	return fmt.Sprintf("%03d_%s.mp3", order, uuid)
}
