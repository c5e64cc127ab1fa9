package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sharevault/sharevault-backend/storage"
)

// MaxFileSize is the per-file upload cap, enforced before any store call.
const MaxFileSize = 100 * 1024 * 1024

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrFileTooLarge     = errors.New("file size exceeds the 100MB limit")
	ErrUploadConflict   = errors.New("a file already exists at this path")
	ErrNotOwner         = errors.New("path is not owned by the caller")
	ErrNotFound         = errors.New("file not found")
)

// StoredFile is one uploaded object, as presented to callers. DownloadURL is
// derived from the path on every read, never persisted.
type StoredFile struct {
	Path        string    `json:"path"`
	DisplayName string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"type"`
	CreatedAt   time.Time `json:"upload_date"`
	DownloadURL string    `json:"download_url"`
	UserID      string    `json:"user_id"`
}

// Registry mediates the file lifecycle for authenticated users. The blob
// store is the single source of truth; the registry keeps no file state of
// its own.
type Registry struct {
	store storage.Store
	now   func() time.Time
}

func New(store storage.Store) *Registry {
	return &Registry{store: store, now: time.Now}
}

// timestampPrefix strips the "{epochMillis}_" token off a stored name.
var timestampPrefix = regexp.MustCompile(`^\d+_`)

// List returns the caller's files, newest first. Store failures are returned
// to the caller rather than collapsed into an empty list, so the UI layer can
// choose between an error banner and a stale view.
func (r *Registry) List(ctx context.Context, userID string) ([]StoredFile, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	prefix := userID + "/"
	objs, err := r.store.List(ctx, prefix, 100)
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}

	files := make([]StoredFile, 0, len(objs))
	for _, obj := range objs {
		if !strings.HasPrefix(obj.Path, prefix) {
			continue
		}
		files = append(files, r.toStoredFile(userID, obj))
	}

	sort.Slice(files, func(i, j int) bool {
		if !files[i].CreatedAt.Equal(files[j].CreatedAt) {
			return files[i].CreatedAt.After(files[j].CreatedAt)
		}
		return files[i].Path > files[j].Path
	})
	return files, nil
}

// Count reports how many files the caller currently owns. Used by the quota
// check before an upload is attempted.
func (r *Registry) Count(ctx context.Context, userID string) (int, error) {
	files, err := r.List(ctx, userID)
	if err != nil {
		return 0, err
	}
	return len(files), nil
}

// Upload stores a new file under "{userID}/{epochMillis}_{escapedName}" and
// returns it with its derived download URL. Oversized files are rejected
// before the store is touched; a same-millisecond name collision surfaces as
// ErrUploadConflict instead of overwriting.
func (r *Registry) Upload(ctx context.Context, userID, originalName string, data io.Reader, size int64, contentType string) (*StoredFile, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	if size > MaxFileSize {
		return nil, ErrFileTooLarge
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	now := r.now()
	path := buildPath(userID, originalName, now)

	if err := r.store.Put(ctx, path, data, size, contentType); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, ErrUploadConflict
		}
		return nil, fmt.Errorf("uploading file: %w", err)
	}

	return &StoredFile{
		Path:        path,
		DisplayName: filepath.Base(originalName),
		Size:        size,
		ContentType: contentType,
		CreatedAt:   now,
		DownloadURL: r.store.PublicURL(path),
		UserID:      userID,
	}, nil
}

// Delete removes the object at path. Ownership is re-verified against the
// path's leading segment; the original frontend trusted any path string it
// was handed, which let one user delete another's file.
func (r *Registry) Delete(ctx context.Context, userID, path string) error {
	if userID == "" {
		return ErrNotAuthenticated
	}
	if !ownedBy(path, userID) {
		return ErrNotOwner
	}
	if err := r.store.Remove(ctx, []string{path}); err != nil {
		return fmt.Errorf("deleting file: %w", err)
	}
	return nil
}

// ShareLink derives the public download URL for path. The URL has no expiry
// and no revocation; holding it is the whole sharing mechanism. A path with
// no object behind it yields ErrNotFound rather than a dead link.
func (r *Registry) ShareLink(ctx context.Context, userID, path string) (string, error) {
	if userID == "" {
		return "", ErrNotAuthenticated
	}
	if !ownedBy(path, userID) {
		return "", ErrNotOwner
	}

	ok, err := r.store.Exists(ctx, path)
	if err != nil {
		return "", fmt.Errorf("checking file: %w", err)
	}
	if !ok {
		return "", ErrNotFound
	}

	link := r.store.PublicURL(path)
	if link == "" {
		return "", fmt.Errorf("no public url for %q", path)
	}
	return link, nil
}

func (r *Registry) toStoredFile(userID string, obj storage.Object) StoredFile {
	created := obj.CreatedAt
	if created.IsZero() {
		created = createdFromName(obj.Name)
	}
	return StoredFile{
		Path:        obj.Path,
		DisplayName: displayName(obj.Name),
		Size:        obj.Size,
		ContentType: obj.ContentType,
		CreatedAt:   created,
		DownloadURL: r.store.PublicURL(obj.Path),
		UserID:      userID,
	}
}

func buildPath(userID, originalName string, now time.Time) string {
	name := filepath.Base(originalName)
	return fmt.Sprintf("%s/%d_%s", userID, now.UnixMilli(), url.PathEscape(name))
}

// displayName recovers the original file name from a stored one: drop the
// timestamp token, then undo the path escaping.
func displayName(storedName string) string {
	name := timestampPrefix.ReplaceAllString(storedName, "")
	if decoded, err := url.PathUnescape(name); err == nil {
		return decoded
	}
	return name
}

// createdFromName falls back to the encoded timestamp when the store did not
// report a creation time.
func createdFromName(storedName string) time.Time {
	token := timestampPrefix.FindString(storedName)
	if token == "" {
		return time.Time{}
	}
	millis, err := strconv.ParseInt(strings.TrimSuffix(token, "_"), 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(millis)
}

func ownedBy(path, userID string) bool {
	return strings.HasPrefix(path, userID+"/")
}
