package probe

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/thezakman/tapik/internal/catalog"
	"github.com/thezakman/tapik/internal/classify"
	"github.com/thezakman/tapik/internal/domain"
)

// maxBody bounds how much of a response we read for classification.
const maxBody = 1 << 20

// Prober issues one probe for a (key, endpoint) pair. A non-nil error means
// the probe never reached the network (run cancelled before acquisition) and
// no outcome exists for the pair.
type Prober interface {
	Probe(ctx context.Context, key string, ep catalog.Endpoint) (domain.Outcome, error)
}

// Governor gates outbound requests. Satisfied by *governor.Governor.
type Governor interface {
	Acquire(ctx context.Context) error
	ReportThrottled()
	ReportSuccess()
}

// Executor performs exactly one outbound HTTP request per Probe call.
// Transport failures become NETWORK_ERROR outcomes; retrying is the
// caller's concern.
type Executor struct {
	Client   *http.Client
	Governor Governor
	Logger   *zap.Logger
}

func NewExecutor(timeout time.Duration, g Governor, logger *zap.Logger) *Executor {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		Client:   &http.Client{Timeout: timeout},
		Governor: g,
		Logger:   logger,
	}
}

func (e *Executor) Probe(ctx context.Context, key string, ep catalog.Endpoint) (domain.Outcome, error) {
	if err := e.Governor.Acquire(ctx); err != nil {
		return domain.Outcome{}, err
	}

	start := time.Now()
	req, err := buildRequest(ctx, key, ep)
	if err != nil {
		// Catalog entries are static; a broken template is a bug, not a
		// network condition, but it still must not abort the run.
		return e.finish(domain.Outcome{
			EndpointID: ep.ID,
			Key:        key,
			Status:     domain.StatusNetworkError,
			Message:    err.Error(),
		}), nil
	}

	resp, err := e.Client.Do(req)
	latency := time.Since(start).Seconds() * 1000 // ms
	if err != nil {
		if ctx.Err() != nil {
			// The run was cancelled while the request was in flight. That
			// is not a transport failure: the pair has no outcome and the
			// runner marks the matrix incomplete.
			return domain.Outcome{}, ctx.Err()
		}
		return e.finish(domain.Outcome{
			EndpointID: ep.ID,
			Key:        key,
			Status:     domain.StatusNetworkError,
			Message:    err.Error(),
			LatencyMS:  latency,
		}), nil
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	status, msg := classify.Classify(resp.StatusCode, body)

	out := e.finish(domain.Outcome{
		EndpointID: ep.ID,
		Key:        key,
		Status:     status,
		HTTPStatus: resp.StatusCode,
		Message:    msg,
		LatencyMS:  latency,
	})

	e.Logger.Debug("probe_done",
		zap.Int("endpoint_id", ep.ID),
		zap.String("endpoint", ep.Name),
		zap.String("status", string(out.Status)),
		zap.Int("http_status", out.HTTPStatus),
		zap.Float64("latency_ms", out.LatencyMS),
	)
	return out, nil
}

// finish feeds the classification back to the governor and returns the
// outcome unchanged.
func (e *Executor) finish(o domain.Outcome) domain.Outcome {
	if o.Status == domain.StatusRateLimited {
		e.Governor.ReportThrottled()
	} else {
		e.Governor.ReportSuccess()
	}
	return o
}

func buildRequest(ctx context.Context, key string, ep catalog.Endpoint) (*http.Request, error) {
	target := strings.ReplaceAll(ep.URL, catalog.KeyPlaceholder, url.QueryEscape(key))

	var body io.Reader
	if ep.Body != "" {
		body = strings.NewReader(ep.Body)
	}
	req, err := http.NewRequestWithContext(ctx, ep.Method, target, body)
	if err != nil {
		return nil, err
	}
	if ep.Body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if ep.KeyHeader != "" {
		req.Header.Set(ep.KeyHeader, key)
	}
	return req, nil
}
