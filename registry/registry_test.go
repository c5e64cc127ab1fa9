package registry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharevault/sharevault-backend/storage"
)

// fakeStore is an in-memory stand-in for a blob-store backend.
type fakeStore struct {
	objects  map[string]storage.Object
	putCalls int
	listErr  error
	putErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string]storage.Object)}
}

func (f *fakeStore) Put(ctx context.Context, path string, r io.Reader, size int64, contentType string) error {
	f.putCalls++
	if f.putErr != nil {
		return f.putErr
	}
	if _, exists := f.objects[path]; exists {
		return storage.ErrConflict
	}
	// No creation time, like a backend that only reports names; the
	// registry falls back to the encoded timestamp.
	f.objects[path] = storage.Object{
		Path:        path,
		Size:        size,
		ContentType: contentType,
	}
	return nil
}

func (f *fakeStore) List(ctx context.Context, prefix string, limit int) ([]storage.Object, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []storage.Object
	for path, obj := range f.objects {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		obj.Name = strings.TrimPrefix(path, prefix)
		out = append(out, obj)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (f *fakeStore) Remove(ctx context.Context, paths []string) error {
	for _, p := range paths {
		delete(f.objects, p)
	}
	return nil
}

func (f *fakeStore) PublicURL(path string) string {
	return "https://blobs.example.com/user-files/" + path
}

func (f *fakeStore) Exists(ctx context.Context, path string) (bool, error) {
	_, ok := f.objects[path]
	return ok, nil
}

func newTestRegistry(store storage.Store, at time.Time) *Registry {
	r := New(store)
	r.now = func() time.Time { return at }
	return r
}

func TestUploadPathFormat(t *testing.T) {
	store := newFakeStore()
	at := time.UnixMilli(1714000000123)
	r := newTestRegistry(store, at)

	file, err := r.Upload(context.Background(), "user-1", "report.pdf", bytes.NewReader([]byte("data")), 4, "application/pdf")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(file.Path, "user-1/"), "path must start with the owner's id")
	assert.Equal(t, fmt.Sprintf("user-1/%d_report.pdf", at.UnixMilli()), file.Path)
	assert.Equal(t, "report.pdf", file.DisplayName)
	assert.Equal(t, "https://blobs.example.com/user-files/"+file.Path, file.DownloadURL)
}

func TestUploadEscapesName(t *testing.T) {
	store := newFakeStore()
	r := newTestRegistry(store, time.UnixMilli(1714000000123))

	file, err := r.Upload(context.Background(), "user-1", "q2 report?.pdf", strings.NewReader("x"), 1, "")
	require.NoError(t, err)

	secondSegment := strings.TrimPrefix(file.Path, "user-1/")
	assert.NotContains(t, secondSegment, "?")
	assert.NotContains(t, secondSegment, " ")
	assert.Equal(t, "application/octet-stream", file.ContentType)
}

func TestUploadTooLargeNeverHitsStore(t *testing.T) {
	store := newFakeStore()
	r := newTestRegistry(store, time.Now())

	_, err := r.Upload(context.Background(), "user-1", "big.bin", strings.NewReader(""), MaxFileSize+1, "")
	assert.ErrorIs(t, err, ErrFileTooLarge)
	assert.Zero(t, store.putCalls, "oversized upload must not reach the blob store")
}

func TestUploadUnauthenticated(t *testing.T) {
	r := newTestRegistry(newFakeStore(), time.Now())

	_, err := r.Upload(context.Background(), "", "a.txt", strings.NewReader("x"), 1, "")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestUploadCollisionConflicts(t *testing.T) {
	store := newFakeStore()
	// Frozen clock: two uploads of the same name land on the same path.
	r := newTestRegistry(store, time.UnixMilli(1714000000123))

	_, err := r.Upload(context.Background(), "user-1", "same.txt", strings.NewReader("a"), 1, "")
	require.NoError(t, err)

	_, err = r.Upload(context.Background(), "user-1", "same.txt", strings.NewReader("b"), 1, "")
	assert.ErrorIs(t, err, ErrUploadConflict)

	files, err := r.List(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, files, 1, "the first upload must not be overwritten")
}

func TestListScopedToOwner(t *testing.T) {
	store := newFakeStore()
	r := newTestRegistry(store, time.Now())

	for i, user := range []string{"alice", "alice", "bob"} {
		at := time.UnixMilli(int64(1714000000000 + i))
		ru := newTestRegistry(store, at)
		_, err := ru.Upload(context.Background(), user, fmt.Sprintf("f%d.txt", i), strings.NewReader("x"), 1, "")
		require.NoError(t, err)
	}

	files, err := r.List(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, files, 2)
	for _, f := range files {
		assert.True(t, strings.HasPrefix(f.Path, "alice/"))
	}
}

func TestListNewestFirst(t *testing.T) {
	store := newFakeStore()

	stamps := []int64{1714000000111, 1714000000333, 1714000000222}
	for i, millis := range stamps {
		r := newTestRegistry(store, time.UnixMilli(millis))
		_, err := r.Upload(context.Background(), "user-1", fmt.Sprintf("f%d.txt", i), strings.NewReader("x"), 1, "")
		require.NoError(t, err)
	}

	r := newTestRegistry(store, time.Now())
	files, err := r.List(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, []string{"f1.txt", "f2.txt", "f0.txt"}, []string{
		files[0].DisplayName, files[1].DisplayName, files[2].DisplayName,
	}, "files must be ordered newest first")
	for i := 1; i < len(files); i++ {
		assert.False(t, files[i].CreatedAt.After(files[i-1].CreatedAt))
	}
}

func TestListFallsBackToTimestampPrefix(t *testing.T) {
	store := newFakeStore()
	// Backend that reports no creation times, e.g. a bare listing.
	store.objects["user-1/1714000000111_old.txt"] = storage.Object{Path: "user-1/1714000000111_old.txt"}
	store.objects["user-1/1714000000999_new.txt"] = storage.Object{Path: "user-1/1714000000999_new.txt"}

	r := newTestRegistry(store, time.Now())
	files, err := r.List(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "new.txt", files[0].DisplayName)
	assert.Equal(t, "old.txt", files[1].DisplayName)
}

func TestListSurfacesStoreErrors(t *testing.T) {
	store := newFakeStore()
	store.listErr = errors.New("backend down")

	r := newTestRegistry(store, time.Now())
	_, err := r.List(context.Background(), "user-1")
	assert.Error(t, err, "listing failures must be surfaced, not swallowed")
}

func TestDisplayNameRoundTrip(t *testing.T) {
	store := newFakeStore()
	r := newTestRegistry(store, time.UnixMilli(1714000000123))

	_, err := r.Upload(context.Background(), "user-1", "report.pdf", strings.NewReader("x"), 1, "application/pdf")
	require.NoError(t, err)

	files, err := r.List(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "report.pdf", files[0].DisplayName)
}

func TestDeleteChecksOwnership(t *testing.T) {
	store := newFakeStore()
	r := newTestRegistry(store, time.UnixMilli(1714000000123))

	file, err := r.Upload(context.Background(), "alice", "doc.txt", strings.NewReader("x"), 1, "")
	require.NoError(t, err)

	err = r.Delete(context.Background(), "bob", file.Path)
	assert.ErrorIs(t, err, ErrNotOwner)

	require.NoError(t, r.Delete(context.Background(), "alice", file.Path))
	files, err := r.List(context.Background(), "alice")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestShareLink(t *testing.T) {
	store := newFakeStore()
	r := newTestRegistry(store, time.UnixMilli(1714000000123))

	file, err := r.Upload(context.Background(), "alice", "doc.txt", strings.NewReader("x"), 1, "")
	require.NoError(t, err)

	t.Run("existing file", func(t *testing.T) {
		link, err := r.ShareLink(context.Background(), "alice", file.Path)
		require.NoError(t, err)
		assert.Equal(t, file.DownloadURL, link)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := r.ShareLink(context.Background(), "alice", "alice/1714000000123_ghost.txt")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("foreign path", func(t *testing.T) {
		_, err := r.ShareLink(context.Background(), "bob", file.Path)
		assert.ErrorIs(t, err, ErrNotOwner)
	})
}

func TestCount(t *testing.T) {
	store := newFakeStore()
	for i := 0; i < 3; i++ {
		r := newTestRegistry(store, time.UnixMilli(int64(1714000000000+i)))
		_, err := r.Upload(context.Background(), "alice", fmt.Sprintf("f%d.txt", i), strings.NewReader("x"), 1, "")
		require.NoError(t, err)
	}

	r := newTestRegistry(store, time.Now())
	count, err := r.Count(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
