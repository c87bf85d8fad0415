package memory

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"ifad/internal/blob/core"
)

func TestStore_PutGetHeadDelete(t *testing.T) {
	ctx := context.Background()
	store := New()

	info, err := store.Put(ctx, "exports/run.csv", bytes.NewReader([]byte("name\tgene_model_type\n")), core.PutOptions{ContentType: "text/csv"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != 21 || info.ContentType != "text/csv" {
		t.Fatalf("unexpected info %+v", info)
	}

	if _, err := store.Put(ctx, "exports/run.csv", bytes.NewReader(nil), core.PutOptions{}); err == nil {
		t.Fatalf("expected duplicate failure")
	}

	h, err := store.Head(ctx, "exports/run.csv")
	if err != nil || h.Key != "exports/run.csv" {
		t.Fatalf("head: %v %+v", err, h)
	}

	_, rc, err := store.Get(ctx, "exports/run.csv")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	b, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(b) != "name\tgene_model_type\n" {
		t.Fatalf("unexpected content %q", b)
	}

	ok, err := store.Delete(ctx, "exports/run.csv")
	if err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	if _, err := store.Head(ctx, "exports/run.csv"); err == nil {
		t.Fatalf("expected head failure after delete")
	}
}

func TestStore_ListFiltersByPrefix(t *testing.T) {
	ctx := context.Background()
	store := New()

	for _, key := range []string{"exports/a", "exports/b", "tmp/c"} {
		if _, err := store.Put(ctx, key, bytes.NewReader([]byte(key)), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	list, err := store.List(ctx, "exports/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Key != "exports/a" || list[1].Key != "exports/b" {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestStore_GetReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := New()

	if _, err := store.Put(ctx, "k", bytes.NewReader([]byte("abc")), core.PutOptions{Metadata: map[string]string{"a": "1"}}); err != nil {
		t.Fatalf("put: %v", err)
	}
	info, rc, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	_ = rc.Close()
	info.Metadata["a"] = "mutated"

	again, err := store.Head(ctx, "k")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if again.Metadata["a"] != "1" {
		t.Fatalf("expected stored metadata unchanged, got %+v", again)
	}
}

func TestStore_PresignUnsupported(t *testing.T) {
	store := New()
	if _, err := store.PresignURL(context.Background(), "k", core.SignedURLOptions{}); !errors.Is(err, core.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	if store.Driver() != core.DriverMemory {
		t.Fatalf("unexpected driver %s", store.Driver())
	}
}
