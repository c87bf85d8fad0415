package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ifad/internal/adapters/genesapi"
	"ifad/internal/ingest"
)

func testMux(t *testing.T) *http.ServeMux {
	t.Helper()
	genes, err := ingest.ReadGenes(strings.NewReader(genesFixture))
	if err != nil {
		t.Fatalf("read genes: %v", err)
	}
	annotations, err := ingest.ReadAnnotations(strings.NewReader(annotationsFixture))
	if err != nil {
		t.Fatalf("read annotations: %v", err)
	}
	return newServeMux(genesapi.NewHandler(ingest.NewBundle(genes, annotations)))
}

func TestServeMuxRoutes(t *testing.T) {
	mux := testMux(t)

	resp := httptest.NewRecorder()
	mux.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	mux.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/genes/segments", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("segments status = %d", resp.Code)
	}
}

func TestServeMuxMetrics(t *testing.T) {
	mux := testMux(t)

	resp := httptest.NewRecorder()
	mux.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", resp.Code)
	}
	if body := resp.Body.String(); !strings.Contains(body, "go_goroutines") {
		t.Fatalf("metrics body missing runtime series: %.200s", body)
	}
}

func TestRunServeRequiresInputs(t *testing.T) {
	cmd, _ := newTestCommand(t)
	err := runServe(cmd, serveOptions{Addr: ":0"})
	if err == nil || !strings.Contains(err.Error(), "--genes and --annotations are required") {
		t.Fatalf("error = %v", err)
	}
}
