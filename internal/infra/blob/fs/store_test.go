package fs

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"ifad/internal/blob/core"
)

func newTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return store
}

func TestStore_PutGetHeadListDelete(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)

	info, err := store.Put(ctx, "exports/run1.gaf", bytes.NewReader([]byte("!gaf-version: 2.0\n")), core.PutOptions{ContentType: "text/plain", Metadata: map[string]string{"mode": "union"}})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "exports/run1.gaf" || info.Size != 18 {
		t.Fatalf("unexpected info %+v", info)
	}
	if info.ETag == "" {
		t.Fatalf("expected content digest etag")
	}

	if _, err := store.Put(ctx, "exports/run1.gaf", bytes.NewReader([]byte("x")), core.PutOptions{}); err == nil {
		t.Fatalf("expected duplicate failure")
	}

	h, err := store.Head(ctx, "exports/run1.gaf")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if h.Metadata["mode"] != "union" {
		t.Fatalf("expected metadata round trip, got %+v", h)
	}

	g, rc, err := store.Get(ctx, "exports/run1.gaf")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	b, _ := io.ReadAll(rc)
	if err := rc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if string(b) != "!gaf-version: 2.0\n" || g.ETag != h.ETag {
		t.Fatalf("unexpected get result")
	}

	list, err := store.List(ctx, "exports/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Key != "exports/run1.gaf" {
		t.Fatalf("unexpected list %+v", list)
	}

	url, err := store.PresignURL(ctx, "exports/run1.gaf", core.SignedURLOptions{})
	if err != nil || url == "" {
		t.Fatalf("presign url: %v %s", err, url)
	}

	ok, err := store.Delete(ctx, "exports/run1.gaf")
	if err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	ok, err = store.Delete(ctx, "exports/run1.gaf")
	if err != nil || ok {
		t.Fatalf("expected second delete to be a no-op, got %v %v", ok, err)
	}
}

func TestStore_KeySanitization(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)

	for _, key := range []string{"", "  ", "../escape", "/absolute", "nested/../../escape"} {
		if _, err := store.Put(ctx, key, strings.NewReader("x"), core.PutOptions{}); err == nil {
			t.Fatalf("expected rejection for key %q", key)
		}
	}
}

func TestStore_ListNestedKeysSorted(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)

	for _, key := range []string{"exports/b.gaf", "exports/a.csv", "other/c.json"} {
		if _, err := store.Put(ctx, key, strings.NewReader(key), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	list, err := store.List(ctx, "exports/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Key != "exports/a.csv" || list[1].Key != "exports/b.gaf" {
		t.Fatalf("unexpected list %+v", list)
	}

	all, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 artifacts, got %d", len(all))
	}
}

func TestStore_PresignRejectsNonGET(t *testing.T) {
	store := newTempStore(t)
	if _, err := store.PresignURL(context.Background(), "k", core.SignedURLOptions{Method: "PUT"}); err == nil {
		t.Fatalf("expected unsupported method error")
	}
}

func TestStore_DriverAndRoot(t *testing.T) {
	store := newTempStore(t)
	if store.Driver() != core.DriverFilesystem {
		t.Fatalf("unexpected driver %s", store.Driver())
	}
	if store.Root() == "" {
		t.Fatalf("expected root path")
	}
}
