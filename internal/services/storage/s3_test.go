package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	appconfig "github.com/denisAlshanov/vidgrab/internal/config"
)

// fakeS3 accepts PUTs and answers HEADs for what it has stored, the way a
// path-style endpoint such as LocalStack does.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]string
	types   map[string]string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		data, _ := io.ReadAll(r.Body)
		f.objects[r.URL.Path] = string(data)
		f.types[r.URL.Path] = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	case http.MethodHead:
		if _, ok := f.objects[r.URL.Path]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeS3) snapshot() (map[string]string, map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	objects := make(map[string]string, len(f.objects))
	types := make(map[string]string, len(f.types))
	for k, v := range f.objects {
		objects[k] = v
	}
	for k, v := range f.types {
		types[k] = v
	}
	return objects, types
}

func (f *fakeS3) put(key, body string) {
	f.mu.Lock()
	f.objects[key] = body
	f.mu.Unlock()
}

func newTestS3(t *testing.T) (*S3Storage, *fakeS3, string) {
	t.Helper()
	fake := &fakeS3{objects: map[string]string{}, types: map[string]string{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	s, err := NewS3Storage(&appconfig.S3Config{
		Region:          "us-east-1",
		AccessKeyID:     "test",
		SecretAccessKey: "test",
		BucketName:      "grabs",
		Prefix:          "downloads",
		EndpointURL:     srv.URL,
		PresignExpiry:   time.Hour,
	})
	if err != nil {
		t.Fatalf("NewS3Storage() error = %v", err)
	}
	return s, fake, srv.URL
}

func TestS3Save(t *testing.T) {
	s, fake, endpoint := newTestS3(t)

	saved, err := s.Save(context.Background(), "video.mp4", strings.NewReader("mp4-bytes"), "video/mp4")
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if saved.Name != "video.mp4" || saved.Size != int64(len("mp4-bytes")) {
		t.Errorf("saved = %+v", saved)
	}
	if !strings.HasPrefix(saved.Location, endpoint+"/grabs/downloads/") {
		t.Errorf("Location = %q, want a presigned URL under the bucket", saved.Location)
	}

	objects, types := fake.snapshot()
	if len(objects) != 1 {
		t.Fatalf("stored %d objects, want 1", len(objects))
	}
	for key, body := range objects {
		if !strings.HasPrefix(key, "/grabs/downloads/") || !strings.HasSuffix(key, "/video.mp4") {
			t.Errorf("key = %q", key)
		}
		if !strings.Contains(body, "mp4-bytes") {
			t.Errorf("body = %q", body)
		}
		if types[key] != "video/mp4" {
			t.Errorf("Content-Type = %q", types[key])
		}
	}
}

func TestS3SaveSameNameTwice(t *testing.T) {
	s, fake, _ := newTestS3(t)

	for i := 0; i < 2; i++ {
		if _, err := s.Save(context.Background(), "video", strings.NewReader("x"), ""); err != nil {
			t.Fatal(err)
		}
	}
	if objects, _ := fake.snapshot(); len(objects) != 2 {
		t.Errorf("stored %d objects, equal names must not overwrite", len(objects))
	}
}

func TestS3ExistsAndCheck(t *testing.T) {
	s, fake, _ := newTestS3(t)
	fake.put("/grabs/present", "x")

	ok, err := s.Exists(context.Background(), "present")
	if err != nil || !ok {
		t.Errorf("Exists(present) = %v, %v", ok, err)
	}
	ok, err = s.Exists(context.Background(), "absent")
	if err != nil || ok {
		t.Errorf("Exists(absent) = %v, %v", ok, err)
	}
	if err := s.Check(context.Background()); err != nil {
		t.Errorf("Check() error = %v", err)
	}
}
