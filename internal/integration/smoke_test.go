package integration

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"corridorcore/internal/adapters/dashboard"
	"corridorcore/internal/blob"
	"corridorcore/internal/core"
	"corridorcore/internal/infra/persistence/memory"
	"corridorcore/internal/infra/persistence/sqlite"
	"corridorcore/pkg/domain"
)

// TestIntegrationSmoke runs one end-to-end pass per in-process store and blob
// backend: seed segments, build profiles, evaluate a widget, export a report.
// Scope stays small so it can serve as a fast CI health check.
func TestIntegrationSmoke(t *testing.T) {
	ctx := context.Background()

	storeVariants := []struct {
		name string
		open func(t *testing.T) domain.PersistentStore
	}{
		{
			name: "memory-store",
			open: func(_ *testing.T) domain.PersistentStore {
				return memory.NewStore(core.NewDefaultRulesEngine())
			},
		},
		{
			name: "sqlite-store",
			open: func(t *testing.T) domain.PersistentStore {
				path := filepath.Join(t.TempDir(), "smoke.db")
				s, err := sqlite.NewStore(path, core.NewDefaultRulesEngine())
				if err != nil {
					t.Fatalf("new sqlite store: %v", err)
				}
				return s
			},
		},
	}

	blobVariants := []struct {
		name string
		open func(t *testing.T) blob.Store
	}{
		{
			name: "memory-blob",
			open: func(_ *testing.T) blob.Store { return blob.NewMemory() },
		},
		{
			name: "filesystem-blob",
			open: func(t *testing.T) blob.Store {
				store, err := blob.NewFilesystem(t.TempDir())
				if err != nil {
					t.Fatalf("new filesystem store: %v", err)
				}
				return store
			},
		},
		{
			name: "s3-mock-blob",
			open: func(_ *testing.T) blob.Store { return blob.NewMockS3ForTests() },
		},
	}

	segments := domain.Layer{
		Name:     "corridor_segments",
		KeyField: core.FieldHighway,
		Features: []domain.Feature{
			{
				core.FieldHighway:      "US 287",
				core.FieldSegmentMiles: 41.3,
				core.FieldCrossSection: "4D+",
				core.FieldAADT:         35000.0,
				core.FieldTruckAADT:    3500.0,
			},
			{
				core.FieldHighway:      "SH 199",
				core.FieldSegmentMiles: 27.8,
				core.FieldCrossSection: "2L",
				core.FieldAADT:         22000.0,
				core.FieldTruckAADT:    1100.0,
			},
		},
	}

	for _, sv := range storeVariants {
		for _, bv := range blobVariants {
			t.Run(sv.name+"_"+bv.name, func(t *testing.T) {
				service := core.NewService(sv.open(t))

				if _, err := service.PutLayer(ctx, segments); err != nil {
					t.Fatalf("put segments: %v", err)
				}
				profiles, _, err := service.BuildProfiles(ctx, segments.Name, "")
				if err != nil {
					t.Fatalf("build profiles: %v", err)
				}
				if len(profiles.Features) != 2 {
					t.Fatalf("profile count = %d, want 2", len(profiles.Features))
				}

				value, err := service.EvaluateWidget(ctx, "total_miles", nil)
				if err != nil {
					t.Fatalf("evaluate widget: %v", err)
				}
				if value.Value != "69.1 mi" {
					t.Fatalf("total miles = %q, want 69.1 mi", value.Value)
				}

				store := bv.open(t)
				worker := dashboard.NewWorker(service, store, nil)
				worker.Start()
				defer func() {
					stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
					defer cancel()
					_ = worker.Stop(stopCtx)
				}()

				record, err := worker.EnqueueReport(ctx, dashboard.ReportInput{Formats: []dashboard.ReportFormat{dashboard.FormatCSV}})
				if err != nil {
					t.Fatalf("enqueue report: %v", err)
				}
				final := waitForReport(t, worker, record.ID)
				if final.Status != dashboard.ReportStatusSucceeded {
					t.Fatalf("report status = %s (%s)", final.Status, final.Error)
				}
				if len(final.Artifacts) != 1 {
					t.Fatalf("artifact count = %d, want 1", len(final.Artifacts))
				}

				_, reader, err := store.Get(ctx, final.Artifacts[0].Key)
				if err != nil {
					t.Fatalf("fetch artifact: %v", err)
				}
				defer reader.Close()
				payload, err := io.ReadAll(reader)
				if err != nil {
					t.Fatalf("read artifact: %v", err)
				}
				if !strings.Contains(string(payload), "US 287") {
					t.Fatalf("artifact missing corridor row: %s", payload)
				}
			})
		}
	}
}

func waitForReport(t *testing.T, worker *dashboard.Worker, id string) dashboard.ReportRecord {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		record, ok := worker.GetReport(id)
		if !ok {
			t.Fatalf("report %s disappeared", id)
		}
		if record.Status == dashboard.ReportStatusSucceeded || record.Status == dashboard.ReportStatusFailed {
			return record
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("report %s did not finish in time", id)
	return dashboard.ReportRecord{}
}
