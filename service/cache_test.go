package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rushteam/placekit/core"
	"github.com/rushteam/placekit/feature"
	"github.com/rushteam/placekit/store"
)

type failingStore struct{}

func (failingStore) Name() string { return "failing" }
func (failingStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}
func (failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}
func (failingStore) Delete(context.Context, string) error { return nil }
func (failingStore) Close() error                         { return nil }

func TestClassificationCache_Key(t *testing.T) {
	mem := store.NewMemoryStore(time.Minute)
	defer mem.Close()

	a := NewClassificationCache(mem, time.Minute, "lr/1000/87.5", nil, nil)
	b := NewClassificationCache(mem, time.Minute, "lr/2000/90", nil, nil)
	v := feature.EncodedVector{1, 1, 7, 0, 50, 1, 0, 0, 0, 3}
	w := v
	w[2] = 7.01

	if a.Key(v) != a.Key(v) {
		t.Error("key is not deterministic")
	}
	if a.Key(v) == a.Key(w) {
		t.Error("different vectors share a key")
	}
	if a.Key(v) == b.Key(v) {
		t.Error("different artifacts share a key")
	}
}

func TestClassificationCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore(time.Minute)
	defer mem.Close()
	c := NewClassificationCache(mem, time.Minute, "fp", nil, nil)
	v := feature.EncodedVector{1, 1, 8, 0, 70, 3, 120, 2, 1, 4}

	if _, ok := c.Get(ctx, v); ok {
		t.Fatal("unexpected hit on empty cache")
	}
	want := core.NewClassification(0.2, 0.8)
	c.Put(ctx, v, want)
	got, ok := c.Get(ctx, v)
	if !ok || got != want {
		t.Fatalf("Get() = %+v, %v; want %+v", got, ok, want)
	}
}

func TestClassificationCache_StoreFailuresAreMisses(t *testing.T) {
	ctx := context.Background()
	c := NewClassificationCache(failingStore{}, time.Minute, "fp", nil, nil)
	v := feature.EncodedVector{}
	c.Put(ctx, v, core.NewClassification(1, 0))
	if _, ok := c.Get(ctx, v); ok {
		t.Fatal("failing store should miss")
	}
}
