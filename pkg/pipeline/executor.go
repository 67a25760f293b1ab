package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"
)

// Executor runs planned steps in process.
// Steps between two wait or block steps run concurrently, a block step waits for the Approver,
// and steps uploaded while running are executed right after the segment that uploaded them.
type Executor struct {
	Runner   StepRunner
	Approver Approver

	Logger logr.Logger

	mu       sync.Mutex
	uploaded []Step
}

// UploadSteps queues steps to run after the current segment
func (e *Executor) UploadSteps(ctx context.Context, steps []Step) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.uploaded = append(e.uploaded, steps...)

	return nil
}

func (e *Executor) takeUploaded() []Step {
	e.mu.Lock()
	defer e.mu.Unlock()

	steps := e.uploaded
	e.uploaded = nil
	return steps
}

// Execute runs steps until all are done, one fails, a block is not approved, or ctx is done.
// Results of the steps that ran are returned in plan order even on failure.
func (e *Executor) Execute(ctx context.Context, steps []Step) ([]Result, error) {
	logger := loggerOrDefault(e.Logger)

	queue := append([]Step{}, steps...)

	var results []Result

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		head := queue[0]

		switch head.Action {
		case ActionWait:
			queue = queue[1:]
			continue
		case ActionBlock:
			if e.Approver == nil {
				return results, fmt.Errorf("step %q needs approval but no approver is configured", head.Name)
			}
			logger.Info("block.waiting", "step", head.Name)
			if err := e.Approver.Approve(ctx, head); err != nil {
				return results, fmt.Errorf("step %q was not approved: %w", head.Name, err)
			}
			logger.Info("block.approved", "step", head.Name)
			queue = queue[1:]
			continue
		}

		n := 0
		for n < len(queue) && !queue[n].Action.IsControl() {
			n++
		}
		segment := queue[:n]
		rest := queue[n:]

		segResults, err := e.runSegment(ctx, segment)
		results = append(results, segResults...)
		if err != nil {
			return results, err
		}

		queue = append(e.takeUploaded(), rest...)
	}

	return results, nil
}

func (e *Executor) runSegment(ctx context.Context, segment []Step) ([]Result, error) {
	results := make([]Result, len(segment))
	done := make([]bool, len(segment))

	g, gctx := errgroup.WithContext(ctx)

	for i := range segment {
		i := i
		s := segment[i]
		g.Go(func() error {
			r, err := e.Runner.Run(gctx, s)
			if err != nil {
				return fmt.Errorf("step %q: %w", s.Name, err)
			}
			results[i] = r
			done[i] = true
			return nil
		})
	}

	err := g.Wait()

	var ran []Result
	for i := range results {
		if done[i] {
			ran = append(ran, results[i])
		}
	}

	return ran, err
}
