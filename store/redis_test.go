package store

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rushteam/movierec/core"
)

func TestExpiration(t *testing.T) {
	tests := []struct {
		ttl  []int
		want time.Duration
	}{
		{nil, 0},
		{[]int{0}, 0},
		{[]int{-5}, 0},
		{[]int{600}, 10 * time.Minute},
	}
	for _, tt := range tests {
		if got := expiration(tt.ttl); got != tt.want {
			t.Errorf("expiration(%v) = %v, want %v", tt.ttl, got, tt.want)
		}
	}
}

func TestRedisStore_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	s := NewRedisStoreFromClient(client)
	defer s.Close()

	ctx := context.Background()
	_, err := s.Get(ctx, "rec:A:5:3")
	if err == nil {
		t.Fatal("Get on unreachable redis should fail")
	}
	if core.IsStoreNotFound(err) {
		t.Error("connection errors must not look like a cache miss")
	}

	got, err := s.BatchGet(ctx, nil)
	if err != nil || len(got) != 0 {
		t.Errorf("BatchGet(nil) = %v, %v; want empty, nil", got, err)
	}
	if err := s.BatchSet(ctx, nil); err != nil {
		t.Errorf("BatchSet(nil) = %v", err)
	}

	if _, err := NewRedisStore(ctx, "127.0.0.1:1", "", 0); err == nil {
		t.Error("NewRedisStore should fail when ping fails")
	}
}
