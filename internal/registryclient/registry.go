// Package registryclient reads from the registry directly, without going
// through an engine. It is used to list repository tags and to verify that
// a pushed reference is actually present.
package registryclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/docker/go-connections/tlsconfig"
	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/remote"

	"ferry/pkg/logger"
)

// Options configures registry access.
type Options struct {
	// Username and Password are basic credentials; empty means anonymous.
	Username string
	Password string

	// CAFile pins the registry's CA, for registries signed by the same
	// internal CA as the remote engine. Empty uses the system pool.
	CAFile string
}

// Client reads tag and manifest data from a registry.
type Client struct {
	auth      authn.Authenticator
	transport http.RoundTripper
}

// New builds a registry client from options.
func New(opts Options) (*Client, error) {
	c := &Client{
		auth:      authn.Anonymous,
		transport: remote.DefaultTransport,
	}

	if opts.Username != "" {
		c.auth = &authn.Basic{
			Username: opts.Username,
			Password: opts.Password,
		}
	}

	if opts.CAFile != "" {
		tlsConfig, err := tlsconfig.Client(tlsconfig.Options{
			CAFile: opts.CAFile,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to load registry CA: %w", err)
		}

		c.transport = &http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			TLSClientConfig: tlsConfig,
		}
	}

	return c, nil
}

// Tags lists the tags the registry holds for a repository. The repository
// must be fully qualified (registry host included).
func (c *Client) Tags(ctx context.Context, repository string) ([]string, error) {
	repo, err := name.NewRepository(repository, name.StrictValidation)
	if err != nil {
		return nil, fmt.Errorf("invalid repository %q: %w", repository, err)
	}

	tags, err := remote.List(repo,
		remote.WithContext(ctx),
		remote.WithAuth(c.auth),
		remote.WithTransport(c.transport),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags for %s: %w", repository, err)
	}

	logger.Debug("listed registry tags", "repository", repository, "count", len(tags))
	return tags, nil
}

// Digest resolves a reference to its manifest digest, proving the registry
// holds it.
func (c *Client) Digest(ctx context.Context, reference string) (string, error) {
	ref, err := name.ParseReference(reference, name.StrictValidation)
	if err != nil {
		return "", fmt.Errorf("invalid reference %q: %w", reference, err)
	}

	desc, err := remote.Head(ref,
		remote.WithContext(ctx),
		remote.WithAuth(c.auth),
		remote.WithTransport(c.transport),
	)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", reference, err)
	}

	return desc.Digest.String(), nil
}
