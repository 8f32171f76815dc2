package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/pkg/archive"
	"github.com/docker/docker/pkg/jsonmessage"
	"github.com/moby/term"

	"ferry/pkg/logger"
)

// Build tars the build context, submits it to the daemon and streams the
// build progress. The daemon owns caching and layer semantics; a build
// error from the stream is returned verbatim.
func (c *Client) Build(ctx context.Context, opts BuildOptions) error {
	if len(opts.Tags) == 0 {
		return fmt.Errorf("build requires at least one tag")
	}

	contextDir := opts.ContextDir
	if contextDir == "" {
		contextDir = "."
	}

	info, err := os.Stat(contextDir)
	if err != nil {
		return fmt.Errorf("build context is not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("build context %s is not a directory", contextDir)
	}

	dockerfile := opts.Dockerfile
	if dockerfile == "" {
		dockerfile = "Dockerfile"
	}
	if _, err := os.Stat(filepath.Join(contextDir, dockerfile)); err != nil {
		return fmt.Errorf("dockerfile not found: %w", err)
	}

	excludes, err := readDockerignore(contextDir)
	if err != nil {
		return err
	}

	buildCtx, err := archive.TarWithOptions(contextDir, &archive.TarOptions{
		ExcludePatterns: excludes,
	})
	if err != nil {
		return fmt.Errorf("failed to tar build context: %w", err)
	}
	defer buildCtx.Close()

	logger.Debug("starting build", "context", contextDir, "dockerfile", dockerfile, "tags", strings.Join(opts.Tags, ","), "no_cache", opts.NoCache)

	resp, err := c.api.ImageBuild(ctx, buildCtx, types.ImageBuildOptions{
		Tags:       opts.Tags,
		Dockerfile: dockerfile,
		NoCache:    opts.NoCache,
		BuildArgs:  opts.BuildArgs,
		Labels:     opts.Labels,
		Platform:   opts.Platform,
		Remove:     true,
	})
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	defer resp.Body.Close()

	if err := displayProgress(resp.Body, opts.Output); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	return nil
}

// readDockerignore loads exclusion patterns from the context's
// .dockerignore, if present. The Dockerfile and the ignore file itself are
// re-included so the daemon can always read them.
func readDockerignore(contextDir string) ([]string, error) {
	f, err := os.Open(filepath.Join(contextDir, ".dockerignore"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read .dockerignore: %w", err)
	}
	defer f.Close()

	var excludes []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		excludes = append(excludes, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read .dockerignore: %w", err)
	}

	if len(excludes) > 0 {
		excludes = append(excludes, "!Dockerfile", "!.dockerignore")
	}

	return excludes, nil
}

// displayProgress renders the daemon's JSON progress stream. Server-side
// failures arrive as an error frame in the stream, not as a transport
// error, so this is where build and push failures surface.
func displayProgress(body io.Reader, out io.Writer) error {
	if out == nil {
		out = os.Stderr
	}

	fd, isTerm := term.GetFdInfo(out)
	if err := jsonmessage.DisplayJSONMessagesStream(body, out, fd, isTerm, nil); err != nil {
		var jsonErr *jsonmessage.JSONError
		if errors.As(err, &jsonErr) {
			return errors.New(jsonErr.Message)
		}
		return err
	}

	return nil
}
