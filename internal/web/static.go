// Package web serves the browser page. Assets are embedded, minified and
// gzipped once at startup; DEV=1 serves them from disk instead.
package web

import (
	"bytes"
	"compress/gzip"
	"embed"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/minify/v2/svg"

	"github.com/denisAlshanov/vidgrab/internal/utils"
)

//go:embed static/*
var staticFS embed.FS

// asset holds a minified and gzipped version of a static file.
type asset struct {
	content     []byte // minified content
	gzipped     []byte // gzipped minified content
	contentType string
}

// Assets is the processed static tree, keyed by serving path.
type Assets struct {
	mu sync.RWMutex
	m  map[string]*asset
}

// LoadAssets processes every embedded static file.
func LoadAssets() (*Assets, error) {
	return loadAssets(staticFS, "static")
}

func loadAssets(fsys fs.FS, root string) (*Assets, error) {
	logger := utils.GetLogger()

	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/javascript", js.Minify)
	m.AddFunc("application/javascript", js.Minify)
	m.AddFunc("image/svg+xml", svg.Minify)

	a := &Assets{m: make(map[string]*asset)}

	err := fs.WalkDir(fsys, root, func(filePath string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}

		data, err := fs.ReadFile(fsys, filePath)
		if err != nil {
			return err
		}

		contentType := mime.TypeByExtension(filepath.Ext(filePath))
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		servePath := strings.TrimPrefix(filePath, root+"/")

		minified := data
		mediaType := strings.Split(contentType, ";")[0]
		if _, _, fn := m.Match(mediaType); fn != nil {
			var buf bytes.Buffer
			if err := m.Minify(mediaType, &buf, bytes.NewReader(data)); err != nil {
				logger.Warnf("[static] failed to minify %s: %v (using original)", servePath, err)
			} else {
				minified = buf.Bytes()
				logger.Debugf("[static] minified %s: %d -> %d bytes", servePath, len(data), len(minified))
			}
		}

		var gzBuf bytes.Buffer
		gz, _ := gzip.NewWriterLevel(&gzBuf, gzip.BestCompression)
		gz.Write(minified)
		gz.Close()

		a.mu.Lock()
		a.m[servePath] = &asset{
			content:     minified,
			gzipped:     gzBuf.Bytes(),
			contentType: contentType,
		}
		a.mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infof("[static] initialized %d embedded assets", a.Len())
	return a, nil
}

func (a *Assets) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.m)
}

func (a *Assets) lookup(p string) (*asset, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	as, ok := a.m[p]
	return as, ok
}

// ServeHTTP serves an asset, falling back to index.html for unknown paths.
func (a *Assets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	urlPath := path.Clean(r.URL.Path)
	if urlPath == "/" || urlPath == "." {
		urlPath = "index.html"
	} else {
		urlPath = strings.TrimPrefix(urlPath, "/")
	}

	as, ok := a.lookup(urlPath)
	if !ok {
		if as, ok = a.lookup("index.html"); !ok {
			http.NotFound(w, r)
			return
		}
	}

	w.Header().Set("Content-Type", as.contentType)
	w.Header().Set("Vary", "Accept-Encoding")
	if urlPath == "index.html" {
		w.Header().Set("Cache-Control", "no-cache")
	} else {
		w.Header().Set("Cache-Control", "public, max-age=86400")
	}

	if strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") && len(as.gzipped) > 0 {
		w.Header().Set("Content-Encoding", "gzip")
		w.Write(as.gzipped)
		return
	}

	w.Write(as.content)
}

// Handler returns the static handler: from disk in development mode,
// otherwise from the embedded cache.
func Handler(dev bool, diskDir string) (http.Handler, error) {
	if dev {
		utils.GetLogger().Infof("[static] development mode: serving from %s", diskDir)
		return http.FileServer(http.Dir(diskDir)), nil
	}
	return LoadAssets()
}
