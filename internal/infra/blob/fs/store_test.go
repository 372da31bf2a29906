package fs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"corridorcore/internal/blob/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return store
}

func TestPutGetHeadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	info, err := store.Put(ctx, "reports/r1/report.json", bytes.NewReader([]byte(`{"rows":3}`)), core.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"rows": "3"},
	})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if info.Size != 10 || info.ContentType != "application/json" {
		t.Fatalf("unexpected put info: %+v", info)
	}
	if info.ETag == "" {
		t.Fatal("expected content hash etag")
	}

	head, err := store.Head(ctx, "reports/r1/report.json")
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if head.Metadata["rows"] != "3" {
		t.Fatalf("metadata lost: %+v", head)
	}

	got, rc, err := store.Get(ctx, "reports/r1/report.json")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer rc.Close()
	body, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if string(body) != `{"rows":3}` {
		t.Fatalf("unexpected body: %s", body)
	}
	if got.ETag != info.ETag {
		t.Fatalf("etag mismatch: %s vs %s", got.ETag, info.ETag)
	}
}

func TestPutCreateOnly(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	if _, err := store.Put(ctx, "k", bytes.NewReader([]byte("a")), core.PutOptions{}); err != nil {
		t.Fatalf("first put: %v", err)
	}
	if _, err := store.Put(ctx, "k", bytes.NewReader([]byte("b")), core.PutOptions{}); err == nil {
		t.Fatal("second put for same key should fail")
	}
}

func TestKeyValidation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	for _, key := range []string{"", "   ", "/abs", "../escape", "a/../../b"} {
		if _, err := store.Put(ctx, key, bytes.NewReader(nil), core.PutOptions{}); err == nil {
			t.Fatalf("key %q should be rejected", key)
		}
	}
}

func TestListPrefixAndOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	for _, key := range []string{"reports/b.csv", "reports/a.json", "other/x"} {
		if _, err := store.Put(ctx, key, bytes.NewReader([]byte("payload")), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	infos, err := store.List(ctx, "reports/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 2 || infos[0].Key != "reports/a.json" || infos[1].Key != "reports/b.csv" {
		t.Fatalf("unexpected listing: %+v", infos)
	}
}

func TestListSkipsSidecarAndTempFiles(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	if _, err := store.Put(ctx, "k", bytes.NewReader([]byte("v")), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := os.WriteFile(filepath.Join(store.root, ".tmp-left"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write temp: %v", err)
	}
	infos, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 1 || infos[0].Key != "k" {
		t.Fatalf("sidecar or temp leaked into listing: %+v", infos)
	}
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	if _, err := store.Put(ctx, "k", bytes.NewReader([]byte("v")), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	ok, err := store.Delete(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("delete existing: %v %v", ok, err)
	}
	ok, err = store.Delete(ctx, "k")
	if err != nil || ok {
		t.Fatalf("delete missing should report false: %v %v", ok, err)
	}
	if _, err := store.Head(ctx, "k"); err == nil {
		t.Fatal("head should fail after delete")
	}
}

func TestMissingSidecarStillListable(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	if err := os.WriteFile(filepath.Join(store.root, "bare"), []byte("data"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	info, err := store.Head(ctx, "bare")
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if info.Size != 4 || info.ContentType != "" {
		t.Fatalf("unexpected info for bare file: %+v", info)
	}
}

func TestPresignUnsupported(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.PresignURL(context.Background(), "k", core.SignedURLOptions{}); !errors.Is(err, core.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	if store.Driver() != core.DriverFilesystem {
		t.Fatalf("unexpected driver: %s", store.Driver())
	}
}
