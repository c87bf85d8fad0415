// Package genesapi exposes the annotation filtering engine over HTTP: the
// segment query endpoint, segment discovery, async exports, and the filter
// run archive.
package genesapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ifad/internal/core"
	"ifad/internal/ingest"
	"ifad/internal/obs"
	"ifad/pkg/gaf"
	"ifad/pkg/runs"
)

// RunArchive exposes recorded filter runs to HTTP handlers. *core.Service
// satisfies it.
type RunArchive interface {
	RunRecorder
	GetRun(ctx context.Context, id string) (runs.FilterRun, error)
	ListRuns(ctx context.Context) ([]runs.FilterRun, error)
}

// Handler provides HTTP access to segment queries, exports, and the run
// archive. Runs and Exports are optional; their routes 404 when unset.
type Handler struct {
	Bundle  *ingest.Bundle
	Runs    RunArchive
	Exports ExportScheduler
}

// NewHandler constructs a query HTTP handler over a loaded dataset bundle.
func NewHandler(bundle *ingest.Bundle) *Handler {
	return &Handler{Bundle: bundle}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Bundle == nil {
		writeError(w, http.StatusInternalServerError, "dataset bundle not configured")
		return
	}

	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case path == "/healthz":
		h.handleHealth(w, r)
		return
	case path == "/api/v1/genes/query":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.handleQuery(w, r)
		return
	case path == "/api/v1/genes/segments":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.handleSegments(w, r)
		return
	case strings.HasPrefix(path, "/api/v1/exports"):
		if h.Exports == nil {
			http.NotFound(w, r)
			return
		}
		h.handleExports(w, r, path)
		return
	case strings.HasPrefix(path, "/api/v1/runs"):
		if h.Runs == nil {
			http.NotFound(w, r)
			return
		}
		h.handleRuns(w, r, path)
		return
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

type segmentPayload struct {
	Aspect string `json:"aspect"`
	Status string `json:"status"`
}

type queryRequest struct {
	Segments []segmentPayload `json:"segments"`
}

type queryResponse struct {
	RunID              string                 `json:"run_id,omitempty"`
	GeneCount          int                    `json:"gene_count"`
	AnnotationCount    int                    `json:"annotation_count"`
	GeneMetadata       string                 `json:"gene_metadata"`
	AnnotationMetadata string                 `json:"annotation_metadata"`
	Genes              []gaf.GeneRecord       `json:"genes"`
	Annotations        []gaf.AnnotationRecord `json:"annotations"`
}

func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	// An empty body is a valid no-segments request; it fails later with the
	// empty-query error rather than a decode error.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid query request payload")
		return
	}
	segments, err := parseSegments(req.Segments)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	strategy := r.URL.Query().Get("strategy")
	if strategy == "" {
		strategy = string(gaf.ModeUnion)
	}
	mode, ok := gaf.ParseMode(strategy)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown strategy %q", strategy))
		return
	}

	filterName := r.URL.Query().Get("filter")
	if filterName == "" {
		filterName = string(gaf.GeneFilterAll)
	}
	filter, ok := gaf.ParseGeneFilter(filterName)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown filter %q", filterName))
		return
	}

	format, ok := negotiateFormat(r)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown format %q", r.URL.Query().Get("format")))
		return
	}

	start := time.Now()
	result, err := gaf.Evaluate(h.Bundle.Index, segments, mode)
	obs.ObserveQuery(mode, err, time.Since(start))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	projection := gaf.Project(h.Bundle.Genes.Table, result).Filter(filter)

	runID := ""
	if h.Runs != nil {
		recorded, err := h.Runs.RecordRun(r.Context(), runs.FilterRun{
			Source:          runs.SourceAPI,
			Mode:            mode,
			Segments:        result.Segments(),
			Filter:          filter,
			Format:          format,
			GeneCount:       len(projection.Genes),
			AnnotationCount: len(projection.Annotations),
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		runID = recorded.ID
	}

	switch format {
	case runs.FormatGeneCSV:
		streamGenes(w, h.Bundle.Genes.Dataset(projection.Genes))
	case runs.FormatGAF:
		streamAnnotations(w, h.Bundle.Annotations.Dataset(projection.Annotations))
	default:
		writeJSON(w, http.StatusOK, newQueryResponse(h.Bundle, projection, runID))
	}
}

type segmentSummary struct {
	Segment         gaf.Segment `json:"segment"`
	GeneCount       int         `json:"gene_count"`
	AnnotationCount int         `json:"annotation_count"`
}

func (h *Handler) handleSegments(w http.ResponseWriter, _ *http.Request) {
	index := h.Bundle.Index
	segments := index.Segments()
	out := make([]segmentSummary, 0, len(segments))
	for _, seg := range segments {
		out = append(out, segmentSummary{
			Segment:         seg,
			GeneCount:       index.GeneCount(seg),
			AnnotationCount: index.RecordCount(seg),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"segments": out})
}

type exportRequest struct {
	Segments    []segmentPayload `json:"segments"`
	Strategy    string           `json:"strategy"`
	Filter      string           `json:"filter"`
	Format      string           `json:"format"`
	RequestedBy string           `json:"requested_by"`
}

func (h *Handler) handleExports(w http.ResponseWriter, r *http.Request, path string) {
	if path == "/api/v1/exports" {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.handleExportCreate(w, r)
		return
	}

	if !strings.HasPrefix(path, "/api/v1/exports/") {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := strings.TrimPrefix(path, "/api/v1/exports/")
	if id == "" {
		http.NotFound(w, r)
		return
	}
	record, ok := h.Exports.GetExport(id)
	if !ok {
		writeError(w, http.StatusNotFound, "export not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"export": record})
}

func (h *Handler) handleExportCreate(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid export request payload")
		return
	}
	segments, err := parseSegments(req.Segments)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	input := ExportInput{Segments: segments, RequestedBy: req.RequestedBy}
	if req.Strategy != "" {
		mode, ok := gaf.ParseMode(req.Strategy)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown strategy %q", req.Strategy))
			return
		}
		input.Mode = mode
	}
	if req.Filter != "" {
		filter, ok := gaf.ParseGeneFilter(req.Filter)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown filter %q", req.Filter))
			return
		}
		input.Filter = filter
	}
	if req.Format != "" {
		format, ok := runs.ParseOutputFormat(req.Format)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown format %q", req.Format))
			return
		}
		input.Format = format
	}

	record, err := h.Exports.EnqueueExport(r.Context(), input)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"export": record})
}

func (h *Handler) handleRuns(w http.ResponseWriter, r *http.Request, path string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if path == "/api/v1/runs" {
		list, err := h.Runs.ListRuns(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"runs": list})
		return
	}

	if !strings.HasPrefix(path, "/api/v1/runs/") {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(path, "/api/v1/runs/")
	if id == "" {
		http.NotFound(w, r)
		return
	}
	run, err := h.Runs.GetRun(r.Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrRunNotFound) {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"run": run})
}

// parseSegments validates raw segment payloads into engine segments.
func parseSegments(payloads []segmentPayload) ([]gaf.Segment, error) {
	segments := make([]gaf.Segment, 0, len(payloads))
	for _, p := range payloads {
		aspect, ok := gaf.ParseAspect(p.Aspect)
		if !ok {
			return nil, fmt.Errorf("unknown aspect %q", p.Aspect)
		}
		status, ok := gaf.ParseStatus(p.Status)
		if !ok {
			return nil, fmt.Errorf("unknown status %q", p.Status)
		}
		segments = append(segments, gaf.Segment{Aspect: aspect, Status: status})
	}
	return segments, nil
}

// negotiateFormat resolves the requested output format, defaulting to json.
func negotiateFormat(r *http.Request) (runs.OutputFormat, bool) {
	wanted := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if wanted == "" {
		return runs.FormatJSON, true
	}
	return runs.ParseOutputFormat(wanted)
}

func newQueryResponse(bundle *ingest.Bundle, projection gaf.Projection, runID string) queryResponse {
	return queryResponse{
		RunID:              runID,
		GeneCount:          len(projection.Genes),
		AnnotationCount:    len(projection.Annotations),
		GeneMetadata:       strings.Join(bundle.Genes.Metadata, "\n"),
		AnnotationMetadata: strings.Join(bundle.Annotations.Metadata, "\n"),
		Genes:              projection.Genes,
		Annotations:        projection.Annotations,
	}
}

func streamGenes(w http.ResponseWriter, dataset gaf.GeneDataset) {
	filename := fmt.Sprintf("genes-%s.tsv", time.Now().UTC().Format("20060102T150405Z"))
	w.Header().Set("Content-Type", "text/tab-separated-values")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	_, _ = dataset.WriteTo(w)
}

func streamAnnotations(w http.ResponseWriter, dataset gaf.AnnotationDataset) {
	filename := fmt.Sprintf("annotations-%s.gaf", time.Now().UTC().Format("20060102T150405Z"))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	_, _ = dataset.WriteTo(w)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
