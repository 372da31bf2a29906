package testutil

import (
	"context"
	"database/sql/driver"
	"io"
	"testing"
)

func TestStubDBStoresAndQueriesBuckets(t *testing.T) {
	ctx := context.Background()
	_, conn := NewStubDB()

	if err := conn.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	_, err := conn.ExecContext(ctx,
		"INSERT INTO state(bucket,payload) VALUES($1,$2) ON CONFLICT(bucket) DO UPDATE SET payload=EXCLUDED.payload",
		[]driver.NamedValue{{Value: "layers"}, {Value: []byte(`{"a":1}`)}})
	if err != nil {
		t.Fatalf("ExecContext insert: %v", err)
	}
	if string(conn.Buckets["layers"]) != `{"a":1}` {
		t.Fatalf("unexpected stored payload: %s", conn.Buckets["layers"])
	}

	rows, err := conn.QueryContext(ctx, "SELECT payload FROM state WHERE bucket = $1",
		[]driver.NamedValue{{Value: "layers"}})
	if err != nil {
		t.Fatalf("QueryContext: %v", err)
	}
	defer func() { _ = rows.Close() }()

	dest := make([]driver.Value, 1)
	if err := rows.Next(dest); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if string(dest[0].([]byte)) != `{"a":1}` {
		t.Fatalf("unexpected row value: %v", dest[0])
	}
	if err := rows.Next(dest); err != io.EOF {
		t.Fatalf("expected EOF after single row, got %v", err)
	}
}

func TestStubDBMissingBucketYieldsNoRows(t *testing.T) {
	_, conn := NewStubDB()
	rows, err := conn.QueryContext(context.Background(), "SELECT payload FROM state WHERE bucket = $1",
		[]driver.NamedValue{{Value: "missing"}})
	if err != nil {
		t.Fatalf("QueryContext: %v", err)
	}
	dest := make([]driver.Value, 1)
	if err := rows.Next(dest); err != io.EOF {
		t.Fatalf("expected EOF for missing bucket, got %v", err)
	}
}
