package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gov-dx-sandbox/team-roster/internal/apperrors"
)

// MaxUploadSize is the largest accepted profile image, 2 MiB
const MaxUploadSize int64 = 2 << 20

const maxNameAttempts = 5

var extensionPattern = regexp.MustCompile(`^\.[A-Za-z0-9]{1,10}$`)

// Store keeps uploaded profile images in a directory addressed by generated filenames
type Store struct {
	dir     string
	maxSize int64
	now     func() time.Time
}

// Option configures a Store
type Option func(*Store)

// WithMaxSize overrides MaxUploadSize
func WithMaxSize(n int64) Option {
	return func(s *Store) {
		s.maxSize = n
	}
}

// WithClock overrides the time source used for filenames
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates the upload directory if needed and returns a Store rooted at it
func NewStore(dir string, opts ...Option) (*Store, error) {
	if dir == "" {
		return nil, errors.New("uploads directory is required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve uploads directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}

	s := &Store{dir: abs, maxSize: MaxUploadSize, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dir returns the absolute upload directory
func (s *Store) Dir() string {
	return s.dir
}

// MaxSize returns the upload size limit in bytes
func (s *Store) MaxSize() int64 {
	return s.maxSize
}

// Save writes r under a fresh unique filename that keeps sourceExt and returns the filename.
// Non-image media types fail with UnsupportedType and uploads over the limit with TooLarge.
func (s *Store) Save(ctx context.Context, r io.Reader, mimeType, sourceExt string) (string, error) {
	if !IsImageType(mimeType) {
		return "", apperrors.UnsupportedType(mimeType)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := sanitizeExtension(sourceExt)

	var (
		f    *os.File
		name string
		err  error
	)
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		name = s.newFilename(ext)
		f, err = os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			break
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("failed to create upload file: %w", err)
		}
	}
	if err != nil {
		return "", fmt.Errorf("failed to allocate unique upload filename: %w", err)
	}

	path := f.Name()
	written, copyErr := io.Copy(f, io.LimitReader(r, s.maxSize+1))
	closeErr := f.Close()

	switch {
	case copyErr != nil:
		s.discard(path)
		return "", fmt.Errorf("failed to write upload: %w", copyErr)
	case written > s.maxSize:
		s.discard(path)
		return "", apperrors.TooLarge(s.maxSize)
	case closeErr != nil:
		s.discard(path)
		return "", fmt.Errorf("failed to close upload: %w", closeErr)
	}

	slog.Debug("Stored upload", "filename", name, "bytes", written)
	return name, nil
}

// Open returns the stored file for reading. Unknown or unsafe names yield NotFound.
func (s *Store) Open(filename string) (*os.File, fs.FileInfo, error) {
	path, ok := s.resolve(filename)
	if !ok {
		return nil, nil, apperrors.NotFound("Upload")
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, apperrors.NotFound("Upload")
		}
		return nil, nil, fmt.Errorf("failed to open upload: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("failed to stat upload: %w", err)
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, nil, apperrors.NotFound("Upload")
	}
	return f, info, nil
}

// Exists reports whether filename names a stored upload
func (s *Store) Exists(filename string) bool {
	path, ok := s.resolve(filename)
	if !ok {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Remove deletes a stored upload. Unknown or unsafe names are ignored.
func (s *Store) Remove(filename string) {
	path, ok := s.resolve(filename)
	if !ok {
		return
	}
	s.discard(path)
}

// resolve maps filename to a path inside the store, rejecting anything but a plain file name
func (s *Store) resolve(filename string) (string, bool) {
	if filename == "" || strings.HasPrefix(filename, ".") || filepath.Base(filename) != filename ||
		!filepath.IsLocal(filename) || strings.ContainsAny(filename, `/\`) {
		return "", false
	}
	return filepath.Join(s.dir, filename), true
}

func (s *Store) newFilename(ext string) string {
	return fmt.Sprintf("%d-%s%s", s.now().UnixMilli(), uuid.NewString(), ext)
}

func (s *Store) discard(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Failed to remove rejected upload", "path", path, "error", err)
	}
}

// IsImageType reports whether the media type denotes an image
func IsImageType(mimeType string) bool {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "image/")
}

func sanitizeExtension(ext string) string {
	if extensionPattern.MatchString(ext) {
		return ext
	}
	return ""
}
