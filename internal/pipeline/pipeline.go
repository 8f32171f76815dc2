// Package pipeline runs the full ship sequence: verify the selected
// engine, build the image, push it. The order is fixed, each step blocks,
// and the first failure aborts the remainder.
package pipeline

import (
	"context"
	"fmt"

	"ferry/internal/engine"
	"ferry/pkg/logger"
)

// ShipOptions parameterizes one ship run. The same reference is used for
// the build tag and the push, so what lands in the registry is exactly
// what was built.
type ShipOptions struct {
	// Ref is the fully qualified image reference to build and push.
	Ref string

	// Build carries the build parameters. Its Tags field is ignored; the
	// pipeline tags with Ref.
	Build engine.BuildOptions

	// Push carries registry credentials and the progress sink.
	Push engine.PushOptions
}

// step pairs a name with its action so failures report which stage broke.
type step struct {
	name string
	run  func(context.Context) error
}

// Ship executes verify, build and push against eng, in that order.
func Ship(ctx context.Context, eng engine.API, opts ShipOptions) error {
	if opts.Ref == "" {
		return fmt.Errorf("ship requires an image reference")
	}

	buildOpts := opts.Build
	buildOpts.Tags = []string{opts.Ref}

	steps := []step{
		{"verify", func(ctx context.Context) error {
			return eng.Ping(ctx)
		}},
		{"build", func(ctx context.Context) error {
			return eng.Build(ctx, buildOpts)
		}},
		{"push", func(ctx context.Context) error {
			return eng.Push(ctx, opts.Ref, opts.Push)
		}},
	}

	for _, s := range steps {
		logger.Debug("pipeline step", "step", s.name, "ref", opts.Ref)
		if err := s.run(ctx); err != nil {
			return fmt.Errorf("%s step failed: %w", s.name, err)
		}
	}

	return nil
}
