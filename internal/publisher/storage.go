package publisher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// WriteCategory tags a write for writers that route by kind.
type WriteCategory string

const (
	CategoryPage    WriteCategory = "page"
	CategoryStyles  WriteCategory = "styles"
	CategorySitemap WriteCategory = "sitemap"
)

// WriteFileRequest describes a file write routed through the artifact writer.
type WriteFileRequest struct {
	Path        string
	Content     io.Reader
	Size        int64
	Category    WriteCategory
	ContentType string
	Checksum    string
}

// ArtifactWriter abstracts where generated files land.
type ArtifactWriter interface {
	EnsureDir(ctx context.Context, path string) error
	WriteFile(ctx context.Context, req WriteFileRequest) error
	RemoveAll(ctx context.Context, path string) error
}

// ErrPathOutsideRoot is returned for artifact paths that leave the writer root.
var ErrPathOutsideRoot = errors.New("publisher: artifact path escapes output root")

// FSWriter writes artifacts below Root on an afero filesystem.
type FSWriter struct {
	fs   afero.Fs
	root string
}

// NewFSWriter creates a writer rooted at root on fs.
func NewFSWriter(fs afero.Fs, root string) *FSWriter {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &FSWriter{fs: fs, root: strings.TrimSpace(root)}
}

// NewOSWriter writes to the local disk below root.
func NewOSWriter(root string) *FSWriter {
	return NewFSWriter(afero.NewOsFs(), root)
}

// Fs exposes the underlying filesystem.
func (w *FSWriter) Fs() afero.Fs {
	return w.fs
}

func (w *FSWriter) EnsureDir(ctx context.Context, dir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := w.resolve(dir)
	if err != nil {
		return err
	}
	return w.fs.MkdirAll(target, 0o755)
}

func (w *FSWriter) WriteFile(ctx context.Context, req WriteFileRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if req.Content == nil {
		return errors.New("publisher: write requires content reader")
	}
	if strings.TrimSpace(req.Path) == "" {
		return errors.New("publisher: write requires path")
	}
	target, err := w.resolve(req.Path)
	if err != nil {
		return err
	}
	return afero.WriteReader(w.fs, target, req.Content)
}

func (w *FSWriter) RemoveAll(ctx context.Context, dir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := w.resolve(dir)
	if err != nil {
		return err
	}
	if target == "." || target == "/" {
		return errors.New("publisher: refusing to remove working directory or filesystem root")
	}
	return w.fs.RemoveAll(target)
}

// resolve maps an artifact path below the root. Paths climbing out of the
// root are refused.
func (w *FSWriter) resolve(rel string) (string, error) {
	clean := path.Clean(strings.TrimLeft(strings.TrimSpace(rel), "/"))
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q", ErrPathOutsideRoot, rel)
	}
	if w.root == "" {
		return clean, nil
	}
	return path.Join(w.root, clean), nil
}

// NoopWriter discards every artifact.
type NoopWriter struct{}

func (NoopWriter) EnsureDir(context.Context, string) error { return nil }

func (NoopWriter) WriteFile(context.Context, WriteFileRequest) error { return nil }

func (NoopWriter) RemoveAll(context.Context, string) error { return nil }

func textRequest(p, body, contentType string, category WriteCategory) WriteFileRequest {
	return WriteFileRequest{
		Path:        p,
		Content:     bytes.NewReader([]byte(body)),
		Size:        int64(len(body)),
		Category:    category,
		ContentType: contentType,
		Checksum:    checksum(body),
	}
}
