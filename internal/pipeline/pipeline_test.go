package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ferry/internal/engine"
)

// recorder implements engine.API and records the order of calls.
type recorder struct {
	calls []string

	pingErr  error
	buildErr error
	pushErr  error

	builtTags []string
	pushedRef string
}

func (r *recorder) Ping(ctx context.Context) error {
	r.calls = append(r.calls, "ping")
	return r.pingErr
}

func (r *recorder) Build(ctx context.Context, opts engine.BuildOptions) error {
	r.calls = append(r.calls, "build")
	r.builtTags = opts.Tags
	return r.buildErr
}

func (r *recorder) Tag(ctx context.Context, source, target string) error {
	r.calls = append(r.calls, "tag")
	return nil
}

func (r *recorder) Push(ctx context.Context, ref string, opts engine.PushOptions) error {
	r.calls = append(r.calls, "push")
	r.pushedRef = ref
	return r.pushErr
}

func (r *recorder) Close() error {
	return nil
}

func TestShipRunsStepsInOrder(t *testing.T) {
	rec := &recorder{}

	err := Ship(context.Background(), rec, ShipOptions{
		Ref: "registry.example.com/myorg/myapp:v1",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"ping", "build", "push"}, rec.calls)
}

func TestShipBuildTagEqualsPushRef(t *testing.T) {
	rec := &recorder{}
	ref := "registry.example.com/myorg/myapp:v1.2.3"

	err := Ship(context.Background(), rec, ShipOptions{
		Ref: ref,
		// Tags set by the caller are discarded in favor of Ref.
		Build: engine.BuildOptions{Tags: []string{"something-else:latest"}},
	})
	require.NoError(t, err)

	require.Len(t, rec.builtTags, 1)
	assert.Equal(t, ref, rec.builtTags[0])
	assert.Equal(t, ref, rec.pushedRef)
}

func TestShipAbortsOnVerifyFailure(t *testing.T) {
	rec := &recorder{pingErr: errors.New("daemon unreachable")}

	err := Ship(context.Background(), rec, ShipOptions{Ref: "r.example.com/app:v1"})
	require.Error(t, err)
	assert.ErrorContains(t, err, "verify step failed")
	assert.Equal(t, []string{"ping"}, rec.calls)
}

func TestShipAbortsOnBuildFailure(t *testing.T) {
	rec := &recorder{buildErr: errors.New("compile error")}

	err := Ship(context.Background(), rec, ShipOptions{Ref: "r.example.com/app:v1"})
	require.Error(t, err)
	assert.ErrorContains(t, err, "build step failed")
	assert.Equal(t, []string{"ping", "build"}, rec.calls)
}

func TestShipPushFailureSurfaces(t *testing.T) {
	rec := &recorder{pushErr: errors.New("unauthorized")}

	err := Ship(context.Background(), rec, ShipOptions{Ref: "r.example.com/app:v1"})
	require.Error(t, err)
	assert.ErrorContains(t, err, "push step failed")
	assert.ErrorContains(t, err, "unauthorized")
}

func TestShipRequiresRef(t *testing.T) {
	rec := &recorder{}

	err := Ship(context.Background(), rec, ShipOptions{})
	require.Error(t, err)
	assert.Empty(t, rec.calls)
}
