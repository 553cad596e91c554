package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/denisAlshanov/vidgrab/internal/models"
	"github.com/denisAlshanov/vidgrab/internal/utils"
)

// maxNameAttempts bounds the " (n)" suffix search.
const maxNameAttempts = 1000

// LocalSaver writes downloads into a directory and never overwrites an
// existing file.
type LocalSaver struct {
	dir string
}

func NewLocalSaver(dir string) (*LocalSaver, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating download directory %q: %w", dir, err)
	}
	return &LocalSaver{dir: dir}, nil
}

func (s *LocalSaver) Dir() string {
	return s.dir
}

func (s *LocalSaver) Save(ctx context.Context, name string, body io.Reader, contentType string) (*models.SavedFile, error) {
	f, path, err := s.create(SanitizeName(name))
	if err != nil {
		return nil, err
	}

	size, copyErr := io.Copy(f, contextReader{ctx: ctx, r: body})
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(path)
		if copyErr == nil {
			copyErr = closeErr
		}
		return nil, fmt.Errorf("writing %s: %w", path, copyErr)
	}

	utils.LogInfo(ctx, "Saved download", utils.Fields{
		"path": path,
		"size": size,
	})

	return &models.SavedFile{
		Name:        filepath.Base(path),
		Location:    path,
		Size:        size,
		ContentType: contentType,
	}, nil
}

func (s *LocalSaver) Check(ctx context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.dir)
	}
	return nil
}

// create opens name exclusively, falling back to "base (n).ext".
func (s *LocalSaver) create(name string) (*os.File, string, error) {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	for i := 0; i < maxNameAttempts; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", base, i, ext)
		}
		path := filepath.Join(s.dir, candidate)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", fmt.Errorf("creating %s: %w", path, err)
		}
	}
	return nil, "", fmt.Errorf("no free file name for %q in %s", name, s.dir)
}

// SanitizeName reduces name to a single path element.
func SanitizeName(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	name = filepath.Base(name)
	if name == "." || name == "/" || name == ".." || name == "" {
		return "download"
	}
	return name
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
