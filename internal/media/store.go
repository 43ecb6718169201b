// Package media stores uploaded post images and hands back the reference
// string persisted on the post.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // register WebP decoder
)

// PostsDir is the subdirectory of the media root holding post images.
const PostsDir = "posts"

const defaultMaxBytes = 5 * 1024 * 1024

var (
	// ErrNotImage is returned for uploads that are not a decodable image.
	ErrNotImage = errors.New("uploaded file is not a supported image")
	// ErrTooLarge is returned for uploads above the size limit.
	ErrTooLarge = errors.New("uploaded file is too large")
)

// Store persists image bytes and returns a reference relative to the media root.
type Store interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Delete(ctx context.Context, ref string) error
	// URL maps a stored reference to the address clients fetch it from.
	URL(ref string) string
}

var extByFormat = map[string]string{
	"jpeg": ".jpg",
	"png":  ".png",
	"gif":  ".gif",
	"webp": ".webp",
}

// LocalStore writes images under Root/posts.
type LocalStore struct {
	Root      string
	URLPrefix string
	MaxBytes  int64
}

// NewLocalStore returns a LocalStore rooted at root. maxMB <= 0 uses 5MB.
func NewLocalStore(root, urlPrefix string, maxMB int) *LocalStore {
	maxBytes := int64(defaultMaxBytes)
	if maxMB > 0 {
		maxBytes = int64(maxMB) * 1024 * 1024
	}
	return &LocalStore{Root: root, URLPrefix: urlPrefix, MaxBytes: maxBytes}
}

// Save validates r as an image and writes it as posts/<uuid><ext>. The
// client-supplied name is used only for logging by callers.
func (s *LocalStore) Save(ctx context.Context, _ string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := io.ReadAll(io.LimitReader(r, s.MaxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.MaxBytes {
		return "", ErrTooLarge
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", ErrNotImage
	}
	ext, ok := extByFormat[format]
	if !ok {
		return "", ErrNotImage
	}

	ref := path.Join(PostsDir, uuid.NewString()+ext)
	abs := filepath.Join(s.Root, filepath.FromSlash(ref))
	if err := os.MkdirAll(filepath.Dir(abs), 0o750); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}
	if err := os.WriteFile(abs, data, 0o600); err != nil {
		return "", fmt.Errorf("write media file: %w", err)
	}
	return ref, nil
}

// Delete removes the file behind ref. A missing file is not an error.
func (s *LocalStore) Delete(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	clean := path.Clean("/" + ref)
	if !strings.HasPrefix(clean, "/"+PostsDir+"/") {
		return fmt.Errorf("refusing to delete %q outside %s", ref, PostsDir)
	}
	err := os.Remove(filepath.Join(s.Root, filepath.FromSlash(clean)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove media file: %w", err)
	}
	return nil
}

// URL returns the public URL for ref, or "" when ref is empty.
func (s *LocalStore) URL(ref string) string {
	if ref == "" {
		return ""
	}
	return strings.TrimRight(s.URLPrefix, "/") + "/" + strings.TrimLeft(ref, "/")
}
