package store

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/movierec/core"
)

func TestMemoryStore_GetSetDelete(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !core.IsStoreNotFound(err) {
		t.Fatalf("Get(missing) err = %v, want not found", err)
	}
	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Fatalf("Get = %q, %v", got, err)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "k"); !core.IsStoreNotFound(err) {
		t.Errorf("Get after delete err = %v", err)
	}
}

func TestMemoryStore_TTL(t *testing.T) {
	s := NewMemoryStoreWithInterval(time.Hour)
	defer s.Close()
	ctx := context.Background()

	_ = s.Set(ctx, "forever", []byte("1"))
	_ = s.Set(ctx, "short", []byte("2"), 1)
	// 手动把过期时间拨到过去
	s.mu.Lock()
	s.data["short"].expire = time.Now().Add(-time.Second)
	s.mu.Unlock()

	if _, err := s.Get(ctx, "short"); !core.IsStoreNotFound(err) {
		t.Errorf("expired key err = %v", err)
	}
	if _, err := s.Get(ctx, "forever"); err != nil {
		t.Errorf("non-expiring key err = %v", err)
	}
	got, _ := s.BatchGet(ctx, []string{"forever", "short", "none"})
	if len(got) != 1 || string(got["forever"]) != "1" {
		t.Errorf("BatchGet = %v", got)
	}
}

func TestMemoryStore_Cleanup(t *testing.T) {
	s := NewMemoryStoreWithInterval(5 * time.Millisecond)
	defer s.Close()
	ctx := context.Background()

	_ = s.BatchSet(ctx, map[string][]byte{"a": []byte("1"), "b": []byte("2")}, 1)
	s.mu.Lock()
	for _, e := range s.data {
		e.expire = time.Now().Add(-time.Second)
	}
	s.mu.Unlock()

	deadline := time.Now().Add(2 * time.Second)
	for s.Len() > 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d after cleanup, want 0", s.Len())
	}
}

func TestMemoryStore_CloseTwice(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
}
