package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/thezakman/tapik/internal/catalog"
	"github.com/thezakman/tapik/internal/domain"
	apimw "github.com/thezakman/tapik/internal/httpapi/middleware"
	"github.com/thezakman/tapik/internal/probe"
	"github.com/thezakman/tapik/internal/report"
	"github.com/thezakman/tapik/internal/repo/memory"
	"github.com/thezakman/tapik/internal/runner"
)

// ---- test helpers ----

// fake prober: key "good" works everywhere, everything else is denied
type fakeProber struct{}

func (fakeProber) Probe(_ context.Context, key string, ep catalog.Endpoint) (domain.Outcome, error) {
	st := domain.StatusRequestDenied
	if key == "good" {
		st = domain.StatusWorked
	}
	return domain.Outcome{EndpointID: ep.ID, Key: key, Status: st, HTTPStatus: 200}, nil
}

var _ probe.Prober = fakeProber{}

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := NewServer(
		zap.NewNop(),
		runner.New(fakeProber{}, zap.NewNop(), 4),
		memory.New(),
		nil, // no notifier
		0,
	)
	keys := apimw.Keys{Readers: []string{"pub_test"}, Operators: []string{"adm_test"}}
	ts := httptest.NewServer(srv.Router(keys, 10_000, 10_000))
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url, apiKey string, body []byte) *http.Response {
	t.Helper()
	req, _ := http.NewRequest(method, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

// ---- tests ----

func TestStartRun_ReturnsReportAndStoresIt(t *testing.T) {
	ts := setupServer(t)

	body := []byte(`{"keys":["good","bad"],"selection":"1-3"}`)
	resp := do(t, http.MethodPost, ts.URL+"/api/runs", "adm_test", body)
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}

	var rep report.Report
	if err := json.NewDecoder(resp.Body).Decode(&rep); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if len(rep.Keys) != 2 {
		t.Fatalf("want 2 key reports, got %d", len(rep.Keys))
	}
	if rep.Keys[0].Key != "good" || rep.Keys[0].Summary.WorkedCount != 3 {
		t.Fatalf("good key report wrong: %+v", rep.Keys[0])
	}
	if rep.Keys[1].Summary.WorkedCount != 0 || len(rep.Keys[1].Summary.Failures) != 3 {
		t.Fatalf("bad key report wrong: %+v", rep.Keys[1])
	}

	// the run is now served as latest (public key suffices)
	resp2 := do(t, http.MethodGet, ts.URL+"/api/runs/latest", "pub_test", nil)
	defer resp2.Body.Close()
	if resp2.StatusCode != 200 {
		t.Fatalf("latest: want 200, got %d", resp2.StatusCode)
	}
	var latest report.Report
	if err := json.NewDecoder(resp2.Body).Decode(&latest); err != nil {
		t.Fatalf("decode latest: %v", err)
	}
	if latest.RunID != rep.RunID {
		t.Fatalf("latest should be the stored run: %s vs %s", latest.RunID, rep.RunID)
	}
}

func TestStartRun_BadRequests(t *testing.T) {
	ts := setupServer(t)

	// invalid selection
	resp := do(t, http.MethodPost, ts.URL+"/api/runs", "adm_test", []byte(`{"keys":["k"],"selection":"99"}`))
	resp.Body.Close()
	if resp.StatusCode != 400 {
		t.Fatalf("invalid selection: want 400, got %d", resp.StatusCode)
	}

	// empty key set is a config error, caught before any probing
	resp = do(t, http.MethodPost, ts.URL+"/api/runs", "adm_test", []byte(`{"keys":[],"selection":"1"}`))
	resp.Body.Close()
	if resp.StatusCode != 400 {
		t.Fatalf("empty keys: want 400, got %d", resp.StatusCode)
	}

	// broken JSON
	resp = do(t, http.MethodPost, ts.URL+"/api/runs", "adm_test", []byte(`{`))
	resp.Body.Close()
	if resp.StatusCode != 400 {
		t.Fatalf("broken JSON: want 400, got %d", resp.StatusCode)
	}
}

func TestStartRun_RequiresOperatorKey(t *testing.T) {
	ts := setupServer(t)

	resp := do(t, http.MethodPost, ts.URL+"/api/runs", "pub_test", []byte(`{"keys":["k"],"selection":"1"}`))
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("reader key must not start runs: got %d", resp.StatusCode)
	}
}

func TestCatalogEndpoint(t *testing.T) {
	ts := setupServer(t)

	resp := do(t, http.MethodGet, ts.URL+"/api/catalog", "pub_test", nil)
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
	var eps []catalog.Endpoint
	if err := json.NewDecoder(resp.Body).Decode(&eps); err != nil {
		t.Fatalf("decode catalog: %v", err)
	}
	if len(eps) != len(catalog.All()) {
		t.Fatalf("want full catalog, got %d entries", len(eps))
	}

	resp2 := do(t, http.MethodGet, ts.URL+"/api/catalog?provider=nope", "pub_test", nil)
	defer resp2.Body.Close()
	var none []catalog.Endpoint
	_ = json.NewDecoder(resp2.Body).Decode(&none)
	if len(none) != 0 {
		t.Fatalf("unknown provider should filter everything, got %d", len(none))
	}
}

func TestLatestRun_EmptyStore(t *testing.T) {
	ts := setupServer(t)

	resp := do(t, http.MethodGet, ts.URL+"/api/runs/latest", "pub_test", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("want 404 with no runs, got %d", resp.StatusCode)
	}
}
