package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitrijs2005/filekeeper/internal/client/client"
	"github.com/dmitrijs2005/filekeeper/internal/client/router"
	"github.com/dmitrijs2005/filekeeper/internal/client/services"
	"github.com/dmitrijs2005/filekeeper/internal/client/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseListArgs(t *testing.T) {
	p, err := parseListArgs(nil)
	require.NoError(t, err)
	assert.Equal(t, services.ListParams{}, p)

	p, err = parseListArgs([]string{"25", "50", "filename", "asc"})
	require.NoError(t, err)
	assert.Equal(t, services.ListParams{Limit: 25, Offset: 50, SortBy: "filename", Order: "asc"}, p)

	_, err = parseListArgs([]string{"ten"})
	assert.ErrorIs(t, err, ErrUsage)
	_, err = parseListArgs([]string{"1", "2", "3", "4", "5"})
	assert.ErrorIs(t, err, ErrUsage)
}

func TestList_Pagination(t *testing.T) {
	h := loggedInHarness(t)
	for i := 1; i <= 12; i++ {
		h.backend.addFile(fmt.Sprintf("file-%02d.txt", i), "x")
	}
	ctx := context.Background()

	require.NoError(t, h.app.List(ctx, nil))
	assert.Contains(t, h.out.String(), "ID  NAME")
	assert.Contains(t, h.out.String(), "file-01.txt")
	assert.Contains(t, h.out.String(), "Showing 1-10 of 12")

	h.out.Reset()
	require.NoError(t, h.app.Next(ctx))
	assert.Contains(t, h.out.String(), "Showing 11-12 of 12")

	h.out.Reset()
	require.NoError(t, h.app.Next(ctx))
	assert.Equal(t, "Already on the last page.\n", h.out.String())

	h.out.Reset()
	require.NoError(t, h.app.Prev(ctx))
	assert.Contains(t, h.out.String(), "Showing 1-10 of 12")

	h.out.Reset()
	require.NoError(t, h.app.Prev(ctx))
	assert.Equal(t, "Already on the first page.\n", h.out.String())
}

func TestList_Empty(t *testing.T) {
	h := loggedInHarness(t)
	require.NoError(t, h.app.List(context.Background(), nil))
	assert.Equal(t, "No files.\n", h.out.String())
}

func TestList_InvalidParamsRejectedLocally(t *testing.T) {
	h := loggedInHarness(t)
	err := h.app.List(context.Background(), []string{"10", "0", "owner"})
	assert.ErrorIs(t, err, services.ErrInvalidListParams)
	assert.Nil(t, h.app.page)
}

func TestRejectedTokenReturnsToLogin(t *testing.T) {
	h := loggedInHarness(t)
	h.backend.addFile("a.txt", "a")
	ctx := context.Background()
	require.NoError(t, h.app.List(ctx, nil))

	events := 0
	unsubscribe := h.app.session.Subscribe(func(ev session.Event) {
		if ev.Kind == session.EventInvalidated {
			events++
		}
	})
	defer unsubscribe()

	h.backend.setExpired(true)
	err := h.app.Next(ctx)
	require.NoError(t, err, "single page, nothing to fetch")

	err = h.app.List(ctx, nil)
	require.ErrorIs(t, err, client.ErrUnauthorized)

	assert.Equal(t, 1, events)
	assert.Equal(t, router.PathLogin, h.app.currentPath())
	assert.Nil(t, h.app.page)
	assert.False(t, h.app.session.IsAuthenticated())
	assert.Contains(t, h.out.String(), "Your session is no longer valid, please log in again.")

	_, ok, err := h.repo.Get(ctx, session.KeyUsername)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpload_ShowsProgressAndRefreshes(t *testing.T) {
	h := loggedInHarness(t)
	ctx := context.Background()
	require.NoError(t, h.app.List(ctx, nil))
	h.out.Reset()

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("n", 4096)), 0o600))

	require.NoError(t, h.app.Upload(ctx, []string{path}))

	out := h.out.String()
	assert.Contains(t, out, "Uploading notes.txt: 100%\n")
	assert.Contains(t, out, "Uploaded notes.txt (id 1, 4.1 kB)")
	assert.Contains(t, out, "Showing 1-1 of 1")
	assert.Equal(t, []string{"notes.txt"}, h.backend.fileNames())
}

func TestUpload_Errors(t *testing.T) {
	h := loggedInHarness(t)
	ctx := context.Background()

	assert.ErrorIs(t, h.app.Upload(ctx, nil), ErrUsage)
	assert.ErrorIs(t, h.app.Upload(ctx, []string{filepath.Join(t.TempDir(), "missing.txt")}), os.ErrNotExist)
}

func TestDownloadTarget(t *testing.T) {
	dir := t.TempDir()

	assert.Equal(t, "report.pdf", downloadTarget("", "report.pdf", 3))
	assert.Equal(t, "file-3", downloadTarget("", "", 3))
	assert.Equal(t, "passwd", downloadTarget("", "../../etc/passwd", 3))
	assert.Equal(t, filepath.Join(dir, "report.pdf"), downloadTarget(dir, "report.pdf", 3))
	assert.Equal(t, filepath.Join(dir, "file-9"), downloadTarget(dir, "", 9))
	assert.Equal(t, filepath.Join(dir, "out.bin"), downloadTarget(filepath.Join(dir, "out.bin"), "report.pdf", 3))
}

func TestDownload_SavesFile(t *testing.T) {
	h := loggedInHarness(t)
	id := h.backend.addFile("report.pdf", "%PDF-1.7 body")
	dir := t.TempDir()

	require.NoError(t, h.app.Download(context.Background(), []string{fmt.Sprint(id), dir}))

	target := filepath.Join(dir, "report.pdf")
	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 body", string(got))
	assert.Contains(t, h.out.String(), "Saved 13 B to "+target)
}

func TestDownload_Errors(t *testing.T) {
	h := loggedInHarness(t)
	ctx := context.Background()

	assert.ErrorIs(t, h.app.Download(ctx, nil), ErrUsage)
	assert.Error(t, h.app.Download(ctx, []string{"abc"}))
	assert.Error(t, h.app.Download(ctx, []string{"0"}))

	var apiErr *client.APIError
	require.ErrorAs(t, h.app.Download(ctx, []string{"77", t.TempDir()}), &apiErr)
	assert.Equal(t, "File not found", apiErr.Detail)
}

func TestRename(t *testing.T) {
	h := loggedInHarness(t)
	id := h.backend.addFile("old.txt", "x")

	require.NoError(t, h.app.Rename(context.Background(), []string{fmt.Sprint(id), "quarterly", "report.txt"}))

	assert.Contains(t, h.out.String(), fmt.Sprintf("Renamed file %d to quarterly report.txt", id))
	assert.Equal(t, []string{"quarterly report.txt"}, h.backend.fileNames())
	assert.ErrorIs(t, h.app.Rename(context.Background(), []string{"1"}), ErrUsage)
}

func TestDelete_StepsBackFromEmptiedPage(t *testing.T) {
	h := loggedInHarness(t)
	var last int64
	for i := 1; i <= 11; i++ {
		last = h.backend.addFile(fmt.Sprintf("f%d", i), "x")
	}
	ctx := context.Background()
	require.NoError(t, h.app.List(ctx, []string{"10", "10"}))
	require.Len(t, h.app.page.Files, 1)

	require.NoError(t, h.app.Delete(ctx, []string{fmt.Sprint(last)}))

	assert.Equal(t, 0, h.app.page.Offset)
	assert.Len(t, h.app.page.Files, 10)
	assert.Contains(t, h.out.String(), fmt.Sprintf("Deleted file %d", last))
}

func TestWhoAmI(t *testing.T) {
	h := loggedInHarness(t)
	require.NoError(t, h.app.WhoAmI(context.Background()))
	assert.Equal(t, "Logged in as alice\n", h.out.String())
}
