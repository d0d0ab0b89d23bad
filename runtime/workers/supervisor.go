package workers

import (
	"chatapp/contract"
	"chatapp/errors"
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Supervisor owns the lifetime of the workers of a run:
// it starts each of them once in its own goroutine,
// recovers panics and turns them into errors,
// cancels every sibling as soon as one worker fails
// and joins all goroutines before returning.
//
// Workers are never restarted: a failure of one component is fatal to the run.
type Supervisor struct {
	log     *slog.Logger
	workers []contract.Worker
}

func NewSupervisor(log *slog.Logger) *Supervisor {
	return &Supervisor{log: log}
}

func (s *Supervisor) Add(worker ...contract.Worker) contract.ISupervisor {
	s.workers = append(s.workers, worker...)
	return s
}

// Run blocks until every worker returned.
// A worker returning nil does not stop the others.
// The first real failure cancels the shared context and is returned.
// Errors caused by that cancellation (or by the parent's) are not failures.
func (s *Supervisor) Run(ctx context.Context) error {
	g, groupCtx := errgroup.WithContext(ctx)
	for _, worker := range s.workers {
		g.Go(func() error {
			return s.supervise(groupCtx, worker)
		})
	}
	return g.Wait()
}

func (s *Supervisor) supervise(ctx context.Context, worker contract.Worker) error {
	workerName := contract.GetWorkerName(worker)
	s.log.Debug("Starting worker", "name", workerName)

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %s: %v", errors.ErrWorkerPanic, workerName, r)
			}
		}()
		return worker.Run(ctx)
	}()

	switch {
	case err == nil:
		s.log.Info("Worker finished", "name", workerName)
		return nil
	case ctx.Err() != nil:
		s.log.Info("Worker stopped (context canceled)", "name", workerName)
		return nil
	default:
		s.log.Error("Worker failed, stopping all workers", "name", workerName, "error", err)
		return err
	}
}
