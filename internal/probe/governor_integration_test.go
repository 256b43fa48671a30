package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/thezakman/tapik/internal/domain"
	"github.com/thezakman/tapik/internal/governor"
)

// End-to-end throttle feedback: a mock endpoint that keeps answering 429
// must drive the governor's delay up with every probe.
func TestExecutor_ThrottledResponsesGrowGovernorDelay(t *testing.T) {
	if testing.Short() {
		t.Skip("waits out governor penalties")
	}

	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(429)
		w.Write([]byte(`{"error":{"code":429,"message":"quota","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer s.Close()

	gov := governor.New(1000, 10)
	ex := NewExecutor(time.Second, gov, nil)

	var prev time.Duration
	for i := 0; i < 3; i++ {
		out, err := ex.Probe(context.Background(), "k", testEndpoint(s.URL))
		if err != nil {
			t.Fatalf("probe %d: %v", i, err)
		}
		if out.Status != domain.StatusRateLimited {
			t.Fatalf("probe %d: want RATE_LIMITED, got %+v", i, out)
		}
		d := gov.Delay()
		if d <= prev {
			t.Fatalf("probe %d: delay %v did not grow past %v", i, d, prev)
		}
		prev = d
	}
}
