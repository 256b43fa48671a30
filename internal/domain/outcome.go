package domain

// Outcome holds the result of one probe request for one (key, endpoint) pair.
// Created once by the executor and never mutated afterwards.
type Outcome struct {
	EndpointID int     `json:"endpoint_id"`
	Key        string  `json:"key"`
	Status     Status  `json:"status"`
	HTTPStatus int     `json:"http_status,omitempty"` // 0 on transport errors
	Message    string  `json:"message,omitempty"`
	LatencyMS  float64 `json:"latency_ms"`
}
