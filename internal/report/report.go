package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/thezakman/tapik/internal/catalog"
	"github.com/thezakman/tapik/internal/domain"
)

// Result is one probe outcome enriched with the endpoint's display fields,
// the shape external writers consume.
type Result struct {
	EndpointID int           `json:"endpoint_id"`
	Name       string        `json:"name"`
	Provider   string        `json:"provider"`
	Status     domain.Status `json:"status"`
	HTTPStatus int           `json:"http_status,omitempty"`
	Message    string        `json:"message,omitempty"`
	LatencyMS  float64       `json:"latency_ms"`
}

// Failure names one endpoint a key did not work against, with the reason.
type Failure struct {
	Name    string        `json:"name"`
	Status  domain.Status `json:"status"`
	Message string        `json:"message,omitempty"`
}

// KeySummary is the per-key rollup: how many probes worked, which services
// accept the key, and why the rest failed. Ordering follows the catalog.
type KeySummary struct {
	WorkedCount int       `json:"worked_count"`
	Working     []string  `json:"working"`
	Failures    []Failure `json:"failures"`
}

// KeyReport pairs a key with its summary and full outcome list.
type KeyReport struct {
	Key     string     `json:"key"`
	Summary KeySummary `json:"summary"`
	Results []Result   `json:"results"`
}

// Report is the exportable view of a whole run. Building it is a pure
// reduction over the matrix: the same matrix always yields the same report.
type Report struct {
	RunID      string      `json:"run_id"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt time.Time   `json:"finished_at"`
	Incomplete bool        `json:"incomplete"`
	Keys       []KeyReport `json:"keys"`
}

// New reduces a result matrix into a report, resolving endpoint display
// names through the catalog. Keys keep their run order; outcomes within a
// key follow catalog order.
func New(m *domain.Matrix) Report {
	r := Report{
		RunID:      m.RunID,
		StartedAt:  m.StartedAt,
		FinishedAt: m.FinishedAt,
		Incomplete: m.Incomplete,
	}
	for _, key := range m.Keys() {
		kr := KeyReport{Key: key, Summary: KeySummary{Working: []string{}, Failures: []Failure{}}}
		for _, o := range m.Outcomes(key) {
			res := Result{
				EndpointID: o.EndpointID,
				Name:       fmt.Sprintf("endpoint %d", o.EndpointID),
				Status:     o.Status,
				HTTPStatus: o.HTTPStatus,
				Message:    o.Message,
				LatencyMS:  o.LatencyMS,
			}
			if ep, ok := catalog.ByID(o.EndpointID); ok {
				res.Name = ep.Name
				res.Provider = ep.Provider
			}
			kr.Results = append(kr.Results, res)

			if o.Status.Working() {
				kr.Summary.WorkedCount++
				kr.Summary.Working = append(kr.Summary.Working, res.Name)
			} else {
				kr.Summary.Failures = append(kr.Summary.Failures, Failure{
					Name:    res.Name,
					Status:  o.Status,
					Message: o.Message,
				})
			}
		}
		r.Keys = append(r.Keys, kr)
	}
	return r
}

// Summarize returns the per-key rollups keyed by API key.
func Summarize(m *domain.Matrix) map[string]KeySummary {
	out := make(map[string]KeySummary)
	for _, kr := range New(m).Keys {
		out[kr.Key] = kr.Summary
	}
	return out
}

// JSON renders the machine-readable export.
func (r Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Parse is the inverse of JSON, for consumers re-reading an exported run.
func Parse(b []byte) (Report, error) {
	var r Report
	err := json.Unmarshal(b, &r)
	return r, err
}

// Text renders the human-readable export, one boxed section per key.
func (r Report) Text() string {
	var b strings.Builder
	for _, kr := range r.Keys {
		title := fmt.Sprintf("Testing API Key: %s", kr.Key)
		bar := strings.Repeat("─", len([]rune(title))+2)
		fmt.Fprintf(&b, "╭%s╮\n", bar)
		fmt.Fprintf(&b, "│ %s │\n", title)
		fmt.Fprintf(&b, "╰%s╯\n", bar)

		for _, res := range kr.Results {
			if res.Status.Working() {
				fmt.Fprintf(&b, "✅ [WORKED] | %s\n", res.Name)
				continue
			}
			line := fmt.Sprintf("❌ [%s] | %s", res.Status, res.Name)
			if res.Message != "" {
				line += ": " + res.Message
			}
			fmt.Fprintln(&b, line)
		}
		fmt.Fprintf(&b, "%d/%d worked\n\n", kr.Summary.WorkedCount, len(kr.Results))
	}
	if r.Incomplete {
		b.WriteString("⚠ run incomplete: cancelled or deadline hit, results are partial\n")
	}
	return b.String()
}
