package engine

import (
	"context"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/docker/docker/client"

	"ferry/internal/config"
	"ferry/pkg/logger"
)

// Daemons older than this predate the API behavior ferry relies on
// (BuildKit by default, consistent push progress framing).
var minDaemonVersion = semver.MustParse("20.10.0")

// Client is the Docker-backed implementation of API.
type Client struct {
	api  *client.Client
	host string
}

// Connect builds a client for the given context and verifies the daemon:
// a ping, then a minimum version gate.
func Connect(ctx context.Context, cc config.Context) (*Client, error) {
	opts := []client.Opt{
		client.WithHost(cc.Host),
		client.WithAPIVersionNegotiation(),
	}

	if cc.TLS() {
		opts = append(opts, client.WithTLSClientConfig(cc.CA, cc.Cert, cc.Key))
	}

	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine client for %s: %w", cc.Host, err)
	}

	c := &Client{api: cli, host: cc.Host}

	if err := c.Ping(ctx); err != nil {
		cli.Close()
		return nil, err
	}

	version, err := cli.ServerVersion(ctx)
	if err != nil {
		cli.Close()
		return nil, fmt.Errorf("failed to read engine version from %s: %w", cc.Host, err)
	}

	if err := checkDaemonVersion(version.Version); err != nil {
		cli.Close()
		return nil, err
	}

	logger.Debug("engine connected", "host", cc.Host, "version", version.Version, "api_version", version.APIVersion)
	return c, nil
}

// Ping verifies the daemon is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.api.Ping(ctx); err != nil {
		return fmt.Errorf("engine at %s is not responding: %w", c.host, err)
	}
	return nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.api.Close()
}

// Host returns the engine endpoint this client talks to.
func (c *Client) Host() string {
	return c.host
}

// checkDaemonVersion gates on the minimum supported daemon version.
// Development builds report non-semver strings; those skip the gate.
func checkDaemonVersion(version string) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		logger.Debug("engine reports non-semver version, skipping gate", "version", version)
		return nil
	}

	if v.LessThan(minDaemonVersion) {
		return fmt.Errorf("engine version %s is older than the minimum supported %s", version, minDaemonVersion)
	}

	return nil
}
