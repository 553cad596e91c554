package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalSaverSave(t *testing.T) {
	dir := t.TempDir()
	saver, err := NewLocalSaver(dir)
	if err != nil {
		t.Fatal(err)
	}

	saved, err := saver.Save(context.Background(), "video", strings.NewReader("payload"), "video/mp4")
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if saved.Name != "video" {
		t.Errorf("Name = %q, want video", saved.Name)
	}
	if saved.Size != int64(len("payload")) {
		t.Errorf("Size = %d", saved.Size)
	}

	data, err := os.ReadFile(filepath.Join(dir, "video"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "payload" {
		t.Errorf("file content = %q", data)
	}
}

func TestLocalSaverNeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	saver, err := NewLocalSaver(dir)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"video.mp4", "video (1).mp4", "video (2).mp4"}
	for i, name := range want {
		saved, err := saver.Save(context.Background(), "video.mp4", strings.NewReader(name), "")
		if err != nil {
			t.Fatalf("Save() #%d error = %v", i, err)
		}
		if saved.Name != name {
			t.Errorf("save #%d name = %q, want %q", i, saved.Name, name)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "video.mp4"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "video.mp4" {
		t.Errorf("first file was overwritten: %q", data)
	}
}

func TestLocalSaverCanceledContext(t *testing.T) {
	dir := t.TempDir()
	saver, err := NewLocalSaver(dir)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := saver.Save(ctx, "video", strings.NewReader("payload"), ""); err == nil {
		t.Fatal("expected error for canceled context")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("expected partial file to be removed, found %d entries", len(entries))
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"video", "video"},
		{"video.mp4", "video.mp4"},
		{"../../etc/passwd", "passwd"},
		{`..\..\boot.ini`, "boot.ini"},
		{"", "download"},
		{"..", "download"},
		{"  clip.webm  ", "clip.webm"},
	}
	for _, tc := range tests {
		if got := SanitizeName(tc.in); got != tc.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLocalSaverCheck(t *testing.T) {
	saver, err := NewLocalSaver(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := saver.Check(context.Background()); err != nil {
		t.Errorf("Check() error = %v", err)
	}
}
