package s3

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"corridorcore/internal/blob/core"
)

func TestMockStoreRoundTrip(t *testing.T) {
	store := NewMockForTests()
	ctx := context.Background()

	info, err := store.Put(ctx, "reports/r1/report.json", bytes.NewReader([]byte(`{"ok":true}`)), core.PutOptions{
		ContentType: "application/json",
	})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if info.Key != "reports/r1/report.json" {
		t.Fatalf("unexpected key: %s", info.Key)
	}

	head, err := store.Head(ctx, "reports/r1/report.json")
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if head.ContentType != "application/json" {
		t.Fatalf("content type lost: %+v", head)
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
	if string(body) != `{"ok":true}` {
		t.Fatalf("unexpected body: %s", body)
	}
	if got.Size != int64(len(body)) {
		t.Fatalf("size mismatch: %d vs %d", got.Size, len(body))
	}
}

func TestMockStoreCreateOnly(t *testing.T) {
	store := NewMockForTests()
	ctx := context.Background()
	if _, err := store.Put(ctx, "k", bytes.NewReader([]byte("a")), core.PutOptions{}); err != nil {
		t.Fatalf("first put: %v", err)
	}
	if _, err := store.Put(ctx, "k", bytes.NewReader([]byte("b")), core.PutOptions{}); err == nil {
		t.Fatal("second put for same key should fail")
	}
}

func TestMockStoreMissingObject(t *testing.T) {
	store := NewMockForTests()
	ctx := context.Background()
	if _, err := store.Head(ctx, "missing"); err == nil {
		t.Fatal("head of missing object should fail")
	}
	if _, _, err := store.Get(ctx, "missing"); err == nil {
		t.Fatal("get of missing object should fail")
	}
}

func TestMockStoreListAndDelete(t *testing.T) {
	store := NewMockForTests()
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

	if ok, err := store.Delete(ctx, "reports/a.json"); err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	if _, err := store.Head(ctx, "reports/a.json"); err == nil {
		t.Fatal("head should fail after delete")
	}
}

func TestMockStorePresign(t *testing.T) {
	store := NewMockForTests()
	ctx := context.Background()
	if _, err := store.Put(ctx, "k", bytes.NewReader([]byte("v")), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}

	url, err := store.PresignURL(ctx, "k", core.SignedURLOptions{Expiry: time.Minute})
	if err != nil {
		t.Fatalf("PresignURL: %v", err)
	}
	if !strings.Contains(url, "X-Amz-Signature") {
		t.Fatalf("expected signed URL, got %s", url)
	}

	if _, err := store.PresignURL(ctx, "k", core.SignedURLOptions{Method: "PUT"}); err == nil {
		t.Fatal("non-GET presign should be unsupported")
	}

	if store.Driver() != core.DriverS3 {
		t.Fatalf("unexpected driver: %s", store.Driver())
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatal("missing bucket should fail")
	}
}

func TestOpenFromEnvRequiresBucket(t *testing.T) {
	t.Setenv("CORRIDORCORE_BLOB_S3_BUCKET", "")
	if _, err := OpenFromEnv(context.Background()); err == nil {
		t.Fatal("missing bucket env should fail")
	}
}
