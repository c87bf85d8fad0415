package genesapi

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"ifad/internal/blob"
	"ifad/internal/core"
	"ifad/internal/ingest"
	"ifad/internal/obs"
	"ifad/pkg/gaf"
	"ifad/pkg/runs"
)

// ExportStatus describes the lifecycle stage of an export request.
type ExportStatus string

const (
	ExportStatusQueued    ExportStatus = "queued"
	ExportStatusRunning   ExportStatus = "running"
	ExportStatusSucceeded ExportStatus = "succeeded"
	ExportStatusFailed    ExportStatus = "failed"
)

// ExportArtifact captures a stored filter result artifact.
type ExportArtifact struct {
	Key         string            `json:"key"`
	Format      runs.OutputFormat `json:"format"`
	ContentType string            `json:"content_type"`
	SizeBytes   int64             `json:"size_bytes"`
	ETag        string            `json:"etag,omitempty"`
	URL         string            `json:"url,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// ExportRecord tracks an export request and the resulting artifact.
type ExportRecord struct {
	ID          string            `json:"id"`
	Segments    []gaf.Segment     `json:"segments"`
	Mode        gaf.Mode          `json:"mode"`
	Filter      gaf.GeneFilter    `json:"filter"`
	Format      runs.OutputFormat `json:"format"`
	Status      ExportStatus      `json:"status"`
	Error       string            `json:"error,omitempty"`
	Artifact    *ExportArtifact   `json:"artifact,omitempty"`
	RunID       string            `json:"run_id,omitempty"`
	RequestedBy string            `json:"requested_by,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
}

// ExportInput represents an enqueue request for the worker. Zero-valued
// mode, filter, and format fall back to union, all, and gaf.
type ExportInput struct {
	Segments    []gaf.Segment
	Mode        gaf.Mode
	Filter      gaf.GeneFilter
	Format      runs.OutputFormat
	RequestedBy string
}

// ExportScheduler queues filter export requests and exposes status.
type ExportScheduler interface {
	EnqueueExport(ctx context.Context, input ExportInput) (ExportRecord, error)
	GetExport(id string) (ExportRecord, bool)
}

// RunRecorder archives completed filter runs.
type RunRecorder interface {
	RecordRun(ctx context.Context, run runs.FilterRun) (runs.FilterRun, error)
}

// Worker executes filter exports asynchronously.
type Worker struct {
	bundle   *ingest.Bundle
	store    blob.Store
	recorder RunRecorder
	logger   core.Logger

	queue chan exportTask
	mu    sync.RWMutex
	jobs  map[string]*ExportRecord

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type exportTask struct {
	id    string
	input ExportInput
}

type renderedArtifact struct {
	ContentType string
	Payload     []byte
}

// NewWorker constructs an export worker. Store, recorder, and logger may be
// nil; the worker then keeps artifacts in its records only and stays silent.
func NewWorker(bundle *ingest.Bundle, store blob.Store, recorder RunRecorder, logger core.Logger) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		bundle:   bundle,
		store:    store,
		recorder: recorder,
		logger:   logger,
		queue:    make(chan exportTask, 32),
		jobs:     make(map[string]*ExportRecord),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins processing export requests.
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

// EnqueueExport validates and schedules an export job, returning the queued
// record. Defaults are applied before validation so the stored record always
// reflects what the job will run.
func (w *Worker) EnqueueExport(ctx context.Context, input ExportInput) (ExportRecord, error) {
	if w.bundle == nil {
		return ExportRecord{}, fmt.Errorf("dataset bundle not configured")
	}
	if len(input.Segments) == 0 {
		return ExportRecord{}, &gaf.EmptyQueryError{}
	}

	mode := input.Mode
	if mode == "" {
		mode = gaf.ModeUnion
	}
	if _, ok := gaf.ParseMode(string(mode)); !ok {
		return ExportRecord{}, &gaf.UnknownModeError{Mode: mode}
	}
	filter := input.Filter
	if filter == "" {
		filter = gaf.GeneFilterAll
	}
	if _, ok := gaf.ParseGeneFilter(string(filter)); !ok {
		return ExportRecord{}, fmt.Errorf("unknown filter %q", filter)
	}
	format := input.Format
	if format == "" {
		format = runs.FormatGAF
	}
	if _, ok := runs.ParseOutputFormat(string(format)); !ok {
		return ExportRecord{}, fmt.Errorf("unsupported export format %q", format)
	}

	seen := make(map[gaf.Segment]struct{}, len(input.Segments))
	segments := make([]gaf.Segment, 0, len(input.Segments))
	for _, seg := range input.Segments {
		if _, duplicate := seen[seg]; duplicate {
			continue
		}
		seen[seg] = struct{}{}
		segments = append(segments, seg)
	}

	id := newID()
	now := time.Now().UTC()
	record := ExportRecord{
		ID:          id,
		Segments:    segments,
		Mode:        mode,
		Filter:      filter,
		Format:      format,
		Status:      ExportStatusQueued,
		RequestedBy: input.RequestedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	w.mu.Lock()
	w.jobs[id] = &record
	queuedSnapshot := record.copy()
	w.mu.Unlock()

	if w.logger != nil {
		w.logger.Info("export queued", "export_id", id, "format", string(format), "segments", len(segments))
	}

	normalized := input
	normalized.Segments = segments
	normalized.Mode = mode
	normalized.Filter = filter
	normalized.Format = format

	select {
	case w.queue <- exportTask{id: id, input: normalized}:
	default:
		return ExportRecord{}, fmt.Errorf("export queue full")
	}

	return queuedSnapshot, nil
}

// GetExport returns a snapshot of the export record.
func (w *Worker) GetExport(id string) (ExportRecord, bool) {
	w.mu.RLock()
	record, ok := w.jobs[id]
	if !ok {
		w.mu.RUnlock()
		return ExportRecord{}, false
	}
	snapshot := record.copy()
	w.mu.RUnlock()
	return snapshot, true
}

func (w *Worker) process(task exportTask) {
	if w.snapshot(task.id) == nil {
		return
	}

	w.updateStatus(task.id, ExportStatusRunning, "")

	result, err := gaf.Evaluate(w.bundle.Index, task.input.Segments, task.input.Mode)
	if err != nil {
		w.fail(task.id, fmt.Sprintf("evaluate query: %v", err))
		return
	}
	projection := gaf.Project(w.bundle.Genes.Table, result).Filter(task.input.Filter)

	rendered, err := materialize(task.input.Format, w.bundle, projection)
	if err != nil {
		w.fail(task.id, err.Error())
		return
	}

	key := exportKey(task.id, task.input.Format)
	artifact := ExportArtifact{
		Key:         key,
		Format:      task.input.Format,
		ContentType: rendered.ContentType,
		SizeBytes:   int64(len(rendered.Payload)),
		CreatedAt:   time.Now().UTC(),
	}
	if w.store != nil {
		info, err := w.store.Put(w.ctx, key, bytes.NewReader(rendered.Payload), blob.PutOptions{
			ContentType: rendered.ContentType,
			Metadata: map[string]string{
				"mode":   string(task.input.Mode),
				"filter": string(task.input.Filter),
				"format": string(task.input.Format),
			},
		})
		if err != nil {
			w.fail(task.id, fmt.Sprintf("store artifact: %v", err))
			return
		}
		artifact.SizeBytes = info.Size
		artifact.ETag = info.ETag
		artifact.URL = info.URL
		if !info.LastModified.IsZero() {
			artifact.CreatedAt = info.LastModified
		}
	}

	runID := ""
	if w.recorder != nil {
		recorded, err := w.recorder.RecordRun(w.ctx, runs.FilterRun{
			Source:          runs.SourceExport,
			Mode:            task.input.Mode,
			Segments:        task.input.Segments,
			Filter:          task.input.Filter,
			Format:          task.input.Format,
			GeneCount:       len(projection.Genes),
			AnnotationCount: len(projection.Annotations),
			ArtifactKey:     key,
			RequestedBy:     task.input.RequestedBy,
		})
		if err != nil {
			w.fail(task.id, fmt.Sprintf("record run: %v", err))
			return
		}
		runID = recorded.ID
	}

	w.complete(task.id, artifact, runID)
}

func (w *Worker) snapshot(id string) *ExportRecord {
	w.mu.RLock()
	record, ok := w.jobs[id]
	w.mu.RUnlock()
	if !ok {
		return nil
	}
	return record
}

func (w *Worker) updateStatus(id string, status ExportStatus, message string) {
	now := time.Now().UTC()
	w.mu.Lock()
	if record, ok := w.jobs[id]; ok {
		record.Status = status
		record.Error = message
		record.UpdatedAt = now
	}
	w.mu.Unlock()
}

func (w *Worker) complete(id string, artifact ExportArtifact, runID string) {
	now := time.Now().UTC()
	var format runs.OutputFormat
	w.mu.Lock()
	if record, ok := w.jobs[id]; ok {
		record.Status = ExportStatusSucceeded
		record.Error = ""
		record.Artifact = &artifact
		record.RunID = runID
		record.UpdatedAt = now
		record.CompletedAt = &now
		format = record.Format
	}
	w.mu.Unlock()
	obs.ObserveExport(format, nil)
	if w.logger != nil {
		w.logger.Info("export completed", "export_id", id, "artifact_key", artifact.Key, "run_id", runID)
	}
}

func (w *Worker) fail(id, reason string) {
	now := time.Now().UTC()
	var format runs.OutputFormat
	w.mu.Lock()
	if record, ok := w.jobs[id]; ok {
		record.Status = ExportStatusFailed
		record.Error = reason
		record.UpdatedAt = now
		record.CompletedAt = &now
		format = record.Format
	}
	w.mu.Unlock()
	obs.ObserveExport(format, errors.New(reason))
	if w.logger != nil {
		w.logger.Error("export failed", "export_id", id, "error", reason)
	}
}

// materialize renders the filtered projection in the requested format.
func materialize(format runs.OutputFormat, bundle *ingest.Bundle, projection gaf.Projection) (renderedArtifact, error) {
	switch format {
	case runs.FormatJSON:
		payload, err := json.Marshal(newQueryResponse(bundle, projection, ""))
		if err != nil {
			return renderedArtifact{}, fmt.Errorf("marshal json: %w", err)
		}
		return renderedArtifact{ContentType: "application/json", Payload: payload}, nil
	case runs.FormatGeneCSV:
		buf := &bytes.Buffer{}
		if _, err := bundle.Genes.Dataset(projection.Genes).WriteTo(buf); err != nil {
			return renderedArtifact{}, fmt.Errorf("render gene list: %w", err)
		}
		return renderedArtifact{ContentType: "text/tab-separated-values", Payload: buf.Bytes()}, nil
	case runs.FormatGAF:
		buf := &bytes.Buffer{}
		if _, err := bundle.Annotations.Dataset(projection.Annotations).WriteTo(buf); err != nil {
			return renderedArtifact{}, fmt.Errorf("render annotations: %w", err)
		}
		return renderedArtifact{ContentType: "text/plain; charset=utf-8", Payload: buf.Bytes()}, nil
	default:
		return renderedArtifact{}, fmt.Errorf("unsupported export format %s", format)
	}
}

// exportKey derives the blob key for a job's artifact.
func exportKey(id string, format runs.OutputFormat) string {
	switch format {
	case runs.FormatGeneCSV:
		return "exports/" + id + ".tsv"
	case runs.FormatGAF:
		return "exports/" + id + ".gaf"
	default:
		return "exports/" + id + ".json"
	}
}

func (r ExportRecord) copy() ExportRecord {
	dup := r
	dup.Segments = append([]gaf.Segment(nil), r.Segments...)
	if r.Artifact != nil {
		artifact := *r.Artifact
		dup.Artifact = &artifact
	}
	if r.CompletedAt != nil {
		completed := *r.CompletedAt
		dup.CompletedAt = &completed
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
