package zugferd

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BuildBatch renders every input concurrently with at most workers builds
// in flight. Results keep the input order. The first failure cancels the
// remaining builds and is returned with the index of its input.
func (b *Builder) BuildBatch(ctx context.Context, inputs []interface{}, workers int) ([][]byte, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	out := make([][]byte, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, raw := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			xml, err := b.BuildXML(gctx, raw)
			if err != nil {
				return fmt.Errorf("invoice %d: %w", i, err)
			}
			out[i] = xml
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		b.logger.Debug("batch failed", zap.Int("inputs", len(inputs)), zap.Error(err))
		return nil, err
	}
	b.logger.Debug("batch built", zap.Int("inputs", len(inputs)), zap.Int("workers", workers))
	return out, nil
}
