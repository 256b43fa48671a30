package notify

import (
	"context"

	"go.uber.org/multierr"

	"github.com/thezakman/tapik/internal/report"
)

// Notifier announces a finished validation run to an external channel.
// Implementations decide how the report is rendered for their medium.
type Notifier interface {
	NotifyRun(ctx context.Context, r report.Report) error
}

type Multi []Notifier

func (m Multi) NotifyRun(ctx context.Context, r report.Report) error {
	var errs error
	for _, n := range m {
		if n == nil {
			continue
		}
		errs = multierr.Append(errs, n.NotifyRun(ctx, r))
	}
	return errs
}

// WorkingKeys forwards the report when the run found keys that at least one
// service accepts. Runs with no working keys are not worth a ping.
func WorkingKeys(ctx context.Context, n Notifier, r report.Report) error {
	if n == nil {
		return nil
	}
	for _, kr := range r.Keys {
		if kr.Summary.WorkedCount > 0 {
			return n.NotifyRun(ctx, r)
		}
	}
	return nil
}
