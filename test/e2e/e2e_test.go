package e2e_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shufflepod/internal/media"
	"shufflepod/internal/syncer"
)

func TestSync_FreshLibrary(t *testing.T) {
	h := newHarness(t)

	queue := []media.Episode{
		h.episode("aaa", 0, "First"),
		h.episode("bbb", 1, "Second"),
	}

	report := h.sync(t, queue, 2)

	assert.Empty(t, report.Failed())
	assert.Equal(t, []string{canonical(0, "aaa"), canonical(1, "bbb")}, h.files(t))
	assert.Equal(t, "audio for aaa", h.readFile(t, canonical(0, "aaa")))
}

func TestSync_ReorderOnlyRenames(t *testing.T) {
	h := newHarness(t)

	queue := []media.Episode{
		h.episode("aaa", 0, "First"),
		h.episode("bbb", 1, "Second"),
	}
	h.sync(t, queue, 2)

	// Swap queue positions; the files should be renamed, not refetched.
	queue[0].Order, queue[1].Order = 1, 0

	report := h.sync(t, queue, 2)

	assert.Equal(t, 2, report.Renamed)
	assert.Empty(t, report.Downloaded())
	assert.Equal(t, []string{canonical(0, "bbb"), canonical(1, "aaa")}, h.files(t))
	assert.Equal(t, "audio for aaa", h.readFile(t, canonical(1, "aaa")))
}

func TestSync_RemovedEpisodeDeleted(t *testing.T) {
	h := newHarness(t)

	queue := []media.Episode{
		h.episode("aaa", 0, "First"),
		h.episode("bbb", 1, "Second"),
	}
	h.sync(t, queue, 2)

	report := h.sync(t, queue[:1], 2)

	assert.Equal(t, 1, report.Deleted)
	assert.Equal(t, []string{canonical(0, "aaa")}, h.files(t))
}

func TestSync_PartialDownloadFailure(t *testing.T) {
	h := newHarness(t)

	queue := []media.Episode{
		h.episode("aaa", 0, "First"),
		h.episode("bbb", 1, "Second"),
		h.episode("ccc", 2, "Third"),
	}
	h.breakEpisode("bbb")

	report := h.sync(t, queue, 2)

	require.Len(t, report.Failed(), 1)
	assert.Equal(t, "bbb", report.Failed()[0].Episode.UUID)
	assert.Equal(t, []string{canonical(0, "aaa"), canonical(2, "ccc")}, h.files(t))

	// Next run only retries the failed episode.
	h.broken = map[string]bool{}

	retry := h.sync(t, queue, 2)

	assert.Len(t, retry.Downloaded(), 1)
	assert.Equal(t, []string{canonical(0, "aaa"), canonical(1, "bbb"), canonical(2, "ccc")}, h.files(t))
}

func TestSync_IgnoresUnrecognizedFiles(t *testing.T) {
	h := newHarness(t)
	h.seedFile(t, "notes.txt")
	h.seedFile(t, "cover.jpg")

	queue := []media.Episode{h.episode("aaa", 0, "First")}

	scan, err := h.lib.Scan()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"notes.txt", "cover.jpg"}, scan.Unparsable)

	h.sync(t, queue, 1)

	assert.Equal(t, []string{canonical(0, "aaa"), "cover.jpg", "notes.txt"}, h.files(t))
}

func TestSync_StaleCanonicalFileReplaced(t *testing.T) {
	h := newHarness(t)
	h.seedFile(t, canonical(0, "dead"))

	queue := []media.Episode{h.episode("aaa", 0, "First")}

	report := h.sync(t, queue, 1)

	assert.Equal(t, 1, report.Deleted)
	assert.Equal(t, []string{canonical(0, "aaa")}, h.files(t))
}

func TestSync_SecondRunIsNoop(t *testing.T) {
	h := newHarness(t)

	queue := []media.Episode{
		h.episode("aaa", 0, "First"),
		h.episode("bbb", 1, "Second"),
	}
	h.sync(t, queue, 2)

	scan, err := h.lib.Scan()
	require.NoError(t, err)

	plan := syncer.Reconcile(queue, scan.Entries)

	assert.True(t, plan.Empty())
}
