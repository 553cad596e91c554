package database

import (
	"context"
	"fmt"
	"testing"

	"github.com/denisAlshanov/vidgrab/internal/models"
)

func TestMemoryJournalNewestFirst(t *testing.T) {
	j := NewMemoryJournal(10)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := j.RecordDownload(ctx, models.DownloadRecord{ID: fmt.Sprint(i), SessionID: "s"}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := j.ListDownloads(ctx, "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0].ID != "2" || got[2].ID != "0" {
		t.Errorf("ListDownloads() = %+v", got)
	}
}

func TestMemoryJournalCapacityAndFilter(t *testing.T) {
	j := NewMemoryJournal(3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		session := "a"
		if i%2 == 1 {
			session = "b"
		}
		j.RecordDownload(ctx, models.DownloadRecord{ID: fmt.Sprint(i), SessionID: session})
	}

	all, _ := j.ListDownloads(ctx, "", 10)
	if len(all) != 3 || all[2].ID != "2" {
		t.Errorf("capacity not enforced: %+v", all)
	}

	onlyA, _ := j.ListDownloads(ctx, "a", 10)
	for _, r := range onlyA {
		if r.SessionID != "a" {
			t.Errorf("filter leaked record %+v", r)
		}
	}
	if len(onlyA) != 2 {
		t.Errorf("len(onlyA) = %d, want 2", len(onlyA))
	}

	limited, _ := j.ListDownloads(ctx, "", 1)
	if len(limited) != 1 || limited[0].ID != "4" {
		t.Errorf("limit not applied: %+v", limited)
	}
}

func TestClampLimit(t *testing.T) {
	tests := map[int]int{-1: 50, 0: 50, 1: 1, 120: 120, 501: 500}
	for in, want := range tests {
		if got := ClampLimit(in); got != want {
			t.Errorf("ClampLimit(%d) = %d, want %d", in, got, want)
		}
	}
}
