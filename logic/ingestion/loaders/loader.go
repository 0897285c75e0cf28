package loaders

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

type Source struct {
	URI string
}

// File is a document read from a source, ready for ingestion.
type File struct {
	Name string
	Data []byte
}

type Loader interface {
	Load(ctx context.Context, src Source) (*File, error)
}

// FileLoader reads local files through an afero filesystem.
type FileLoader struct {
	fs afero.Fs
}

func NewFileLoader(fs afero.Fs) *FileLoader {
	return &FileLoader{fs: fs}
}

func (l *FileLoader) Load(ctx context.Context, src Source) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if src.URI == "" {
		return nil, fmt.Errorf("empty source uri")
	}

	info, err := l.fs.Stat(src.URI)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", src.URI)
	}

	data, err := afero.ReadFile(l.fs, src.URI)
	if err != nil {
		return nil, err
	}
	return &File{Name: filepath.Base(src.URI), Data: data}, nil
}
