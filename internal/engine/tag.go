package engine

import (
	"context"
	"fmt"

	"ferry/pkg/logger"
)

// Tag applies an additional reference to an image already present on the
// engine.
func (c *Client) Tag(ctx context.Context, source, target string) error {
	if err := c.api.ImageTag(ctx, source, target); err != nil {
		return fmt.Errorf("failed to tag %s as %s: %w", source, target, err)
	}

	logger.Debug("image tagged", "source", source, "target", target)
	return nil
}
