package credential

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one run in a batch.
type Result struct {
	Output PublicOutput
	Err    error
}

// ValidateBatch validates inputs independently and in parallel, at most
// concurrency at a time (<= 0 means one per input). Results are returned in
// input order. A failing credential does not affect the others; only context
// cancellation stops the batch, in which case unscheduled runs carry ctx.Err().
func (v Validator) ValidateBatch(ctx context.Context, inputs []CredentialInput, concurrency int) []Result {
	results := make([]Result, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i := range inputs {
		if err := ctx.Err(); err != nil {
			for j := i; j < len(inputs); j++ {
				results[j] = Result{Err: err}
			}
			break
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = Result{Err: err}
				return nil
			}
			out, err := v.Validate(inputs[i])
			results[i] = Result{Output: out, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
