package dashboard

import (
	"context"
	"testing"

	"corridorcore/internal/core"
)

func TestEnqueueReportQueueFullLeavesNoOrphan(t *testing.T) {
	// Worker is never started, so the queue fills and the next enqueue is
	// rejected. The rejected request must not linger in the job map.
	worker := NewWorker(core.NewInMemoryService(), nil, nil)
	defer worker.cancel()
	ctx := context.Background()

	var err error
	attempts := 0
	for attempts = 0; attempts <= cap(worker.queue); attempts++ {
		if _, err = worker.EnqueueReport(ctx, ReportInput{}); err != nil {
			break
		}
	}
	if err == nil {
		t.Fatal("expected queue full error")
	}
	if attempts != cap(worker.queue) {
		t.Fatalf("rejected after %d enqueues, want %d", attempts, cap(worker.queue))
	}

	worker.mu.RLock()
	tracked := len(worker.jobs)
	worker.mu.RUnlock()
	if tracked != cap(worker.queue) {
		t.Fatalf("tracked jobs = %d, want %d", tracked, cap(worker.queue))
	}
}
