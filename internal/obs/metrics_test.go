package obs

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"ifad/pkg/gaf"
	"ifad/pkg/runs"
)

func TestMetricsRecorderObserve(t *testing.T) {
	rec := NewMetricsRecorder()

	before := testutil.ToFloat64(operationTotal.WithLabelValues("record_run", "success"))
	rec.Observe(context.Background(), "record_run", true, 3*time.Millisecond)
	after := testutil.ToFloat64(operationTotal.WithLabelValues("record_run", "success"))
	if after != before+1 {
		t.Fatalf("expected success counter to increment, before=%v after=%v", before, after)
	}

	beforeErr := testutil.ToFloat64(operationTotal.WithLabelValues("delete_run", "error"))
	rec.Observe(context.Background(), "delete_run", false, time.Millisecond)
	afterErr := testutil.ToFloat64(operationTotal.WithLabelValues("delete_run", "error"))
	if afterErr != beforeErr+1 {
		t.Fatalf("expected error counter to increment, before=%v after=%v", beforeErr, afterErr)
	}
}

func TestObserveQueryCountsByMode(t *testing.T) {
	before := testutil.ToFloat64(queryTotal.WithLabelValues("intersection", "error"))
	ObserveQuery(gaf.ModeIntersection, context.Canceled, 2*time.Millisecond)
	after := testutil.ToFloat64(queryTotal.WithLabelValues("intersection", "error"))
	if after != before+1 {
		t.Fatalf("expected query error counter to increment, before=%v after=%v", before, after)
	}

	beforeOK := testutil.ToFloat64(queryTotal.WithLabelValues("union", "success"))
	ObserveQuery(gaf.ModeUnion, nil, time.Millisecond)
	afterOK := testutil.ToFloat64(queryTotal.WithLabelValues("union", "success"))
	if afterOK != beforeOK+1 {
		t.Fatalf("expected query success counter to increment, before=%v after=%v", beforeOK, afterOK)
	}
}

func TestObserveExportCountsByFormat(t *testing.T) {
	before := testutil.ToFloat64(exportTotal.WithLabelValues("gaf", "success"))
	ObserveExport(runs.FormatGAF, nil)
	after := testutil.ToFloat64(exportTotal.WithLabelValues("gaf", "success"))
	if after != before+1 {
		t.Fatalf("expected export counter to increment, before=%v after=%v", before, after)
	}
}

func TestMetricsHandlerServesRegistry(t *testing.T) {
	ObserveQuery(gaf.ModeUnion, nil, time.Millisecond)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	MetricsHandler().ServeHTTP(rr, req)

	if rr.Code != 200 {
		t.Fatalf("expected 200 from metrics handler, got %d", rr.Code)
	}
	if body := rr.Body.String(); !strings.Contains(body, "ifad_query_total") {
		t.Fatalf("expected ifad_query_total in scrape output")
	}
}
