package objectstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/spf13/afero"

	"agreement-radar/vars"
)

// ErrObjectExists is returned instead of overwriting an existing key.
var ErrObjectExists = errors.New("object already exists")

// Store keeps raw uploads in a bucket directory of an afero filesystem.
type Store struct {
	fs     afero.Fs
	bucket string
	now    func() time.Time
}

// NewLocalStore roots the bucket under dir on the OS filesystem.
func NewLocalStore(dir, bucket string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return NewStore(afero.NewBasePathFs(afero.NewOsFs(), dir), bucket), nil
}

func NewStore(fs afero.Fs, bucket string) *Store {
	if bucket == "" {
		bucket = vars.DEFAULT_BUCKET
	}
	return &Store{fs: fs, bucket: bucket, now: time.Now}
}

// KeyFor builds uploads/<unix-millis>-<name>. Two uploads of the same name in
// the same millisecond collide; Put refuses the second one.
func (s *Store) KeyFor(fileName string) string {
	return fmt.Sprintf("%s/%d-%s", vars.UPLOAD_PREFIX, s.now().UnixMilli(), sanitizeName(fileName))
}

// Put writes data under key without overwriting. A failed write removes the
// partial object so the call is all-or-nothing.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full := s.fullPath(key)
	if err := s.fs.MkdirAll(path.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create bucket dir: %w", err)
	}

	exists, err := afero.Exists(s.fs, full)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrObjectExists, key)
	}

	f, err := s.fs.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("open object: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(full)
		return fmt.Errorf("write object: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = s.fs.Remove(full)
		return fmt.Errorf("close object: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return afero.ReadFile(s.fs, s.fullPath(key))
}

func (s *Store) fullPath(key string) string {
	return path.Join("/", s.bucket, path.Clean("/"+key))
}

func sanitizeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "upload"
	}
	return name
}
