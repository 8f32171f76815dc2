package engine

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/registry"

	"ferry/pkg/logger"
)

// Push uploads a tagged image through the daemon to its registry and
// streams the upload progress. Registry failures (auth, quota, unknown
// repository) surface through the progress stream.
func (c *Client) Push(ctx context.Context, ref string, opts PushOptions) error {
	authStr, err := encodeRegistryAuth(ref, opts.Username, opts.Password)
	if err != nil {
		return err
	}

	logger.Debug("starting push", "ref", ref, "authenticated", opts.Username != "")

	rd, err := c.api.ImagePush(ctx, ref, image.PushOptions{
		RegistryAuth: authStr,
	})
	if err != nil {
		return fmt.Errorf("push of %s failed: %w", ref, err)
	}
	defer rd.Close()

	if err := displayProgress(rd, opts.Output); err != nil {
		return fmt.Errorf("push of %s failed: %w", ref, err)
	}

	return nil
}

// encodeRegistryAuth builds the X-Registry-Auth header value: a base64
// JSON auth config addressed to the reference's registry host.
// Docker accepts both StdEncoding and URLEncoding; StdEncoding is used for
// compatibility with stricter daemons.
func encodeRegistryAuth(ref, username, password string) (string, error) {
	serverAddress := ref
	if idx := strings.Index(ref, "/"); idx > 0 {
		serverAddress = ref[:idx]
	}

	authConfig := registry.AuthConfig{
		Username:      username,
		Password:      password,
		ServerAddress: serverAddress,
	}

	buf, err := json.Marshal(authConfig)
	if err != nil {
		return "", fmt.Errorf("failed to marshal auth config: %w", err)
	}

	return base64.StdEncoding.EncodeToString(buf), nil
}
