package dashboard

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"corridorcore/internal/blob"
	"corridorcore/internal/core"
)

// ReportFormat identifies a report artifact encoding.
type ReportFormat string

const (
	FormatJSON ReportFormat = "json"
	FormatCSV  ReportFormat = "csv"
)

// ReportStatus describes the lifecycle stage of a report request.
type ReportStatus string

const (
	ReportStatusQueued    ReportStatus = "queued"
	ReportStatusRunning   ReportStatus = "running"
	ReportStatusSucceeded ReportStatus = "succeeded"
	ReportStatusFailed    ReportStatus = "failed"
)

// ReportArtifact captures one stored report rendering.
type ReportArtifact struct {
	Key         string       `json:"key"`
	Format      ReportFormat `json:"format"`
	ContentType string       `json:"content_type"`
	SizeBytes   int64        `json:"size_bytes"`
	URL         string       `json:"url,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// ReportRecord tracks a report request and its resulting artifacts.
type ReportRecord struct {
	ID          string           `json:"id"`
	Formats     []ReportFormat   `json:"formats"`
	Status      ReportStatus     `json:"status"`
	Error       string           `json:"error,omitempty"`
	Artifacts   []ReportArtifact `json:"artifacts,omitempty"`
	RequestedBy string           `json:"requested_by,omitempty"`
	Reason      string           `json:"reason,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}

// ReportInput represents an enqueue request for the worker.
type ReportInput struct {
	Formats     []ReportFormat
	RequestedBy string
	Reason      string
}

// ReportScheduler queues report export requests and exposes status.
type ReportScheduler interface {
	EnqueueReport(ctx context.Context, input ReportInput) (ReportRecord, error)
	GetReport(id string) (ReportRecord, bool)
}

// AuditLogger records report audit entries.
type AuditLogger interface {
	Record(ctx context.Context, entry AuditEntry)
}

// AuditEntry captures audit trail metadata for report exports.
type AuditEntry struct {
	ID         string         `json:"id"`
	Action     string         `json:"action"`
	Actor      string         `json:"actor"`
	Status     ReportStatus   `json:"status"`
	Reason     string         `json:"reason,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Worker renders validation reports asynchronously and stores the artifacts.
type Worker struct {
	service *core.Service
	store   blob.Store
	audit   AuditLogger

	queue chan reportTask
	mu    sync.RWMutex
	jobs  map[string]*ReportRecord

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type reportTask struct {
	id    string
	input ReportInput
}

// NewWorker constructs a report export worker.
func NewWorker(service *core.Service, store blob.Store, audit AuditLogger) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		service: service,
		store:   store,
		audit:   audit,
		queue:   make(chan reportTask, 32),
		jobs:    make(map[string]*ReportRecord),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start begins processing report requests.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.loop()
}

// Stop signals the worker to halt and waits for completion.
func (w *Worker) Stop(ctx context.Context) error {
	w.cancel()
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case task := <-w.queue:
			w.process(task)
		}
	}
}

// EnqueueReport schedules a report job and returns the queued record.
func (w *Worker) EnqueueReport(ctx context.Context, input ReportInput) (ReportRecord, error) {
	if w.service == nil {
		return ReportRecord{}, fmt.Errorf("report service not configured")
	}

	formats := input.Formats
	if len(formats) == 0 {
		formats = []ReportFormat{FormatJSON, FormatCSV}
	}
	uniq := make([]ReportFormat, 0, len(formats))
	seen := make(map[ReportFormat]struct{})
	for _, format := range formats {
		if _, duplicate := seen[format]; duplicate {
			continue
		}
		switch format {
		case FormatJSON, FormatCSV:
		default:
			return ReportRecord{}, fmt.Errorf("unsupported report format %s", format)
		}
		uniq = append(uniq, format)
		seen[format] = struct{}{}
	}

	id := newID()
	now := time.Now().UTC()
	record := ReportRecord{
		ID:          id,
		Formats:     uniq,
		Status:      ReportStatusQueued,
		RequestedBy: input.RequestedBy,
		Reason:      input.Reason,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	w.mu.Lock()
	w.jobs[id] = &record
	queuedSnapshot := record.copy()
	w.mu.Unlock()

	w.recordAudit(ctx, input.RequestedBy, ReportStatusQueued, input.Reason, nil)

	select {
	case w.queue <- reportTask{id: id, input: input}:
	default:
		w.mu.Lock()
		delete(w.jobs, id)
		w.mu.Unlock()
		return ReportRecord{}, fmt.Errorf("report queue full")
	}

	return queuedSnapshot, nil
}

// GetReport returns a snapshot of the report record.
func (w *Worker) GetReport(id string) (ReportRecord, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	record, ok := w.jobs[id]
	if !ok {
		return ReportRecord{}, false
	}
	return record.copy(), true
}

func (w *Worker) process(task reportTask) {
	w.updateStatus(task.id, ReportStatusRunning, "")

	report, err := w.service.ValidationReport(w.ctx)
	if err != nil {
		w.fail(task.id, fmt.Sprintf("build report: %v", err))
		return
	}

	w.mu.RLock()
	formats := append([]ReportFormat(nil), w.jobs[task.id].Formats...)
	w.mu.RUnlock()

	artifacts := make([]ReportArtifact, 0, len(formats))
	for _, format := range formats {
		artifact, err := w.materialize(task.id, format, report)
		if err != nil {
			w.fail(task.id, err.Error())
			return
		}
		artifacts = append(artifacts, artifact)
	}

	w.complete(task.id, artifacts)
}

func (w *Worker) materialize(id string, format ReportFormat, report core.Report) (ReportArtifact, error) {
	var payload []byte
	var contentType string
	switch format {
	case FormatJSON:
		encoded, err := json.Marshal(report)
		if err != nil {
			return ReportArtifact{}, fmt.Errorf("marshal report json: %w", err)
		}
		payload, contentType = encoded, "application/json"
	case FormatCSV:
		encoded, err := renderCSV(report)
		if err != nil {
			return ReportArtifact{}, fmt.Errorf("render report csv: %w", err)
		}
		payload, contentType = encoded, "text/csv"
	default:
		return ReportArtifact{}, fmt.Errorf("unsupported report format %s", format)
	}

	artifact := ReportArtifact{
		Key:         fmt.Sprintf("reports/%s/report.%s", id, format),
		Format:      format,
		ContentType: contentType,
		SizeBytes:   int64(len(payload)),
		CreatedAt:   time.Now().UTC(),
	}
	if w.store == nil {
		return artifact, nil
	}

	info, err := w.store.Put(w.ctx, artifact.Key, bytes.NewReader(payload), blob.PutOptions{
		ContentType: contentType,
		Metadata:    map[string]string{"rows": fmt.Sprint(len(report.Rows))},
	})
	if err != nil {
		return ReportArtifact{}, fmt.Errorf("store artifact: %w", err)
	}
	if info.Size > 0 {
		artifact.SizeBytes = info.Size
	}
	if url, err := w.store.PresignURL(w.ctx, artifact.Key, blob.SignedURLOptions{Method: "GET"}); err == nil {
		artifact.URL = url
	} else if !errors.Is(err, blob.ErrUnsupported) {
		return ReportArtifact{}, fmt.Errorf("presign artifact: %w", err)
	}
	return artifact, nil
}

// renderCSV writes the dashboard-formatted report values, one column per
// report column and one row per corridor plus the summary row.
func renderCSV(report core.Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)

	headers := make([]string, len(report.Columns))
	for i, column := range report.Columns {
		headers[i] = column.Name
	}
	if err := writer.Write(headers); err != nil {
		return nil, err
	}
	for _, row := range report.Rows {
		record := make([]string, len(report.Columns))
		for i, column := range report.Columns {
			record[i] = row.Formatted[column.Name]
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (w *Worker) updateStatus(id string, status ReportStatus, message string) {
	now := time.Now().UTC()
	w.mu.Lock()
	var actor, reason string
	if record, ok := w.jobs[id]; ok {
		record.Status = status
		record.Error = message
		record.UpdatedAt = now
		actor, reason = record.RequestedBy, record.Reason
	}
	w.mu.Unlock()
	var metadata map[string]any
	if message != "" {
		metadata = map[string]any{"note": message}
	}
	w.recordAudit(w.ctx, actor, status, reason, metadata)
}

func (w *Worker) complete(id string, artifacts []ReportArtifact) {
	now := time.Now().UTC()
	w.mu.Lock()
	var actor, reason string
	if record, ok := w.jobs[id]; ok {
		record.Status = ReportStatusSucceeded
		record.Error = ""
		record.Artifacts = artifacts
		record.UpdatedAt = now
		record.CompletedAt = &now
		actor, reason = record.RequestedBy, record.Reason
	}
	w.mu.Unlock()
	w.recordAudit(w.ctx, actor, ReportStatusSucceeded, reason, map[string]any{"artifacts": len(artifacts)})
}

func (w *Worker) fail(id, reason string) {
	now := time.Now().UTC()
	w.mu.Lock()
	var actor, requestReason string
	if record, ok := w.jobs[id]; ok {
		record.Status = ReportStatusFailed
		record.Error = reason
		record.UpdatedAt = now
		record.CompletedAt = &now
		actor, requestReason = record.RequestedBy, record.Reason
	}
	w.mu.Unlock()
	w.recordAudit(w.ctx, actor, ReportStatusFailed, requestReason, map[string]any{"error": reason})
}

func (w *Worker) recordAudit(ctx context.Context, actor string, status ReportStatus, reason string, metadata map[string]any) {
	if w.audit == nil {
		return
	}
	w.audit.Record(ctx, AuditEntry{
		ID:         newID(),
		Action:     "validation_report",
		Actor:      actor,
		Status:     status,
		Reason:     reason,
		Metadata:   metadata,
		OccurredAt: time.Now().UTC(),
	})
}

func (r ReportRecord) copy() ReportRecord {
	dup := r
	dup.Formats = append([]ReportFormat(nil), r.Formats...)
	if len(r.Artifacts) > 0 {
		dup.Artifacts = append([]ReportArtifact(nil), r.Artifacts...)
	}
	return dup
}

func newID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return fmt.Sprintf("%x", b[:])
}
