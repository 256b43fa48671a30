package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/thezakman/tapik/internal/report"
)

type Slack struct {
	Webhook string
	Client  *http.Client
}

func NewSlack(webhook string) *Slack {
	if webhook == "" {
		return nil
	}
	return &Slack{
		Webhook: webhook,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type slackBlock struct {
	Type     string      `json:"type"`
	Text     *slackText  `json:"text,omitempty"`
	Elements []slackText `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackMessage struct {
	Text   string       `json:"text"` // fallback for clients without blocks
	Blocks []slackBlock `json:"blocks,omitempty"`
}

// NotifyRun posts a summary of the run: a line per key that at least one
// service accepted, its worked count, and the accepting service names.
func (s *Slack) NotifyRun(ctx context.Context, r report.Report) error {
	if s == nil || s.Webhook == "" {
		return errors.New("slack disabled")
	}

	body, _ := json.Marshal(buildRunMessage(r))
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, s.Webhook, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return errors.New("slack non-2xx")
	}
	return nil
}

func buildRunMessage(r report.Report) slackMessage {
	var lines []string
	for _, kr := range r.Keys {
		if kr.Summary.WorkedCount == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("`%s`: %d/%d worked (%s)",
			kr.Key, kr.Summary.WorkedCount, len(kr.Results),
			strings.Join(kr.Summary.Working, ", ")))
	}

	title := fmt.Sprintf("🔑 %d key(s) accepted by at least one service", len(lines))

	footer := "run " + r.RunID
	if r.Incomplete {
		footer += " (incomplete: not every pair was probed)"
	}

	return slackMessage{
		Text: title + "\n" + strings.Join(lines, "\n") + "\n" + footer,
		Blocks: []slackBlock{
			{Type: "header", Text: &slackText{Type: "plain_text", Text: title}},
			{Type: "section", Text: &slackText{Type: "mrkdwn", Text: strings.Join(lines, "\n")}},
			{Type: "context", Elements: []slackText{{Type: "mrkdwn", Text: footer}}},
		},
	}
}
