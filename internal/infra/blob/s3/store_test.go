package s3

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"ifad/internal/blob/core"
)

func TestMockStore_PutGetHeadList(t *testing.T) {
	ctx := context.Background()
	store := NewMockForTests()

	if store.Driver() != core.DriverS3 {
		t.Fatalf("unexpected driver %s", store.Driver())
	}

	info, err := store.Put(ctx, "exports/run.gaf", bytes.NewReader([]byte("!gaf-version: 2.0\n")), core.PutOptions{ContentType: "text/plain"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "exports/run.gaf" || info.Size != 18 {
		t.Fatalf("unexpected info %+v", info)
	}

	if _, err := store.Put(ctx, "exports/run.gaf", bytes.NewReader([]byte("x")), core.PutOptions{}); err == nil {
		t.Fatalf("expected duplicate failure")
	}

	h, err := store.Head(ctx, "exports/run.gaf")
	if err != nil || h.Size != 18 {
		t.Fatalf("head: %v %+v", err, h)
	}

	_, rc, err := store.Get(ctx, "exports/run.gaf")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	b, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(b) != "!gaf-version: 2.0\n" {
		t.Fatalf("unexpected content %q", b)
	}

	list, err := store.List(ctx, "exports/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Key != "exports/run.gaf" {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestMockStore_DeleteAndPresign(t *testing.T) {
	ctx := context.Background()
	store := NewMockForTests()

	if _, err := store.Put(ctx, "exports/x", bytes.NewReader([]byte("data")), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	ok, err := store.Delete(ctx, "exports/x")
	if err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	if _, err := store.Head(ctx, "exports/x"); err == nil {
		t.Fatalf("expected head failure after delete")
	}

	url, err := store.PresignURL(ctx, "exports/x", core.SignedURLOptions{})
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	if !strings.Contains(url, "exports/x") {
		t.Fatalf("expected key in presigned url, got %s", url)
	}

	if _, err := store.PresignURL(ctx, "exports/x", core.SignedURLOptions{Method: "PUT"}); err == nil {
		t.Fatalf("expected unsupported presign method error")
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatalf("expected bucket required error")
	}
}

func TestOpenFromEnvRequiresBucket(t *testing.T) {
	t.Setenv("IFAD_BLOB_S3_BUCKET", "")
	if _, err := OpenFromEnv(context.Background()); err == nil {
		t.Fatalf("expected error when bucket missing")
	}
}
