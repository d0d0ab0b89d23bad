package workers

import "context"

// emit delivers evt on ch. In-process channels are reliable, so the only way
// out besides delivery is the end of the run.
func emit[T any](ctx context.Context, ch chan<- T, evt T) error {
	select {
	case ch <- evt:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
