// Package engine talks to a Docker engine selected by a ferry context.
//
// It wraps the Docker API client with the three operations ferry needs
// (build, tag, push) plus connection verification. Everything else about
// the engine's behavior — caching, layer handling, registry protocol — is
// owned by the daemon; errors are wrapped and surfaced verbatim.
package engine

import (
	"context"
	"io"
)

// API is the engine surface the commands and the pipeline run against.
// *Client implements it; tests substitute a recorder.
type API interface {
	// Ping verifies the daemon is reachable and responsive.
	Ping(ctx context.Context) error

	// Build builds an image from a local build context directory and tags
	// it on the engine.
	Build(ctx context.Context, opts BuildOptions) error

	// Tag applies an additional reference to an existing engine image.
	Tag(ctx context.Context, source, target string) error

	// Push uploads a tagged image from the engine to its registry.
	Push(ctx context.Context, ref string, opts PushOptions) error

	// Close releases the underlying connection.
	Close() error
}

// BuildOptions carries the parameters for a single image build.
type BuildOptions struct {
	// ContextDir is the build context directory to tar and upload.
	ContextDir string

	// Dockerfile is the Dockerfile path relative to ContextDir.
	// Empty means "Dockerfile".
	Dockerfile string

	// Tags are the references applied to the built image.
	Tags []string

	// BuildArgs in the Docker API's nullable form.
	BuildArgs map[string]*string

	// Labels applied to the image.
	Labels map[string]string

	// Platform is the target platform, e.g. "linux/amd64". Empty lets the
	// daemon pick.
	Platform string

	// NoCache disables the layer cache for this build.
	NoCache bool

	// Output receives the daemon's progress stream. Nil means stderr.
	Output io.Writer
}

// PushOptions carries registry credentials and the progress sink for a push.
type PushOptions struct {
	Username string
	Password string

	// Output receives the daemon's progress stream. Nil means stderr.
	Output io.Writer
}
