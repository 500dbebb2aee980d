package bulk

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/company-profiler/internal/model"
	"github.com/sells-group/company-profiler/internal/pipeline"
)

// ErrNoSuccess is returned when every row of a batch failed.
var ErrNoSuccess = eris.New("bulk: no successful rows")

// DefaultConcurrency is the number of rows processed at once.
const DefaultConcurrency = 4

const maxReportedErrors = 5

// Pipeline produces a profile for one input.
type Pipeline interface {
	Run(ctx context.Context, in model.Input) (*pipeline.Outcome, error)
}

// Result holds the profiles of the successful rows and one message per
// failed row, both in row order.
type Result struct {
	Profiles []model.Profile
	Errors   []string
}

// Runner processes upload rows through a bounded worker pool.
type Runner struct {
	pipeline    Pipeline
	concurrency int
}

// NewRunner creates a Runner. concurrency <= 0 uses DefaultConcurrency.
func NewRunner(p Pipeline, concurrency int) *Runner {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Runner{pipeline: p, concurrency: concurrency}
}

// Run processes rows in mode. A failing row never stops the batch. If no
// row succeeds the result is returned together with ErrNoSuccess.
func (r *Runner) Run(ctx context.Context, rows []Row, mode model.Mode) (*Result, error) {
	profiles := make([]*model.Profile, len(rows))
	rowErrs := make([]string, len(rows))

	var mu sync.Mutex
	done := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, row := range rows {
		if !row.Valid() {
			rowErrs[i] = fmt.Sprintf("Row %d: missing URL or Company name", row.Line)
			continue
		}
		g.Go(func() error {
			in := row.Input
			in.Mode = mode
			out, err := r.pipeline.Run(gctx, in)

			mu.Lock()
			done++
			n := done
			mu.Unlock()

			if err != nil {
				rowErrs[i] = fmt.Sprintf("Row %d: %v", row.Line, err)
				zap.L().Warn("bulk: row failed",
					zap.Int("row", row.Line),
					zap.Int("done", n),
					zap.Error(err),
				)
				return nil
			}
			profiles[i] = &out.Profile
			zap.L().Debug("bulk: row done", zap.Int("row", row.Line), zap.Int("done", n))
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "bulk: cancelled")
	}

	res := &Result{}
	for i := range rows {
		if profiles[i] != nil {
			res.Profiles = append(res.Profiles, *profiles[i])
		}
		if rowErrs[i] != "" {
			res.Errors = append(res.Errors, rowErrs[i])
		}
	}

	zap.L().Info("bulk: batch complete",
		zap.Int("rows", len(rows)),
		zap.Int("succeeded", len(res.Profiles)),
		zap.Int("failed", len(res.Errors)),
	)

	if len(res.Profiles) == 0 {
		return res, eris.Wrapf(ErrNoSuccess, "errors: %s", strings.Join(firstErrors(res.Errors), "; "))
	}
	return res, nil
}

func firstErrors(errs []string) []string {
	if len(errs) > maxReportedErrors {
		return errs[:maxReportedErrors]
	}
	return errs
}
