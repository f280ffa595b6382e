// Package ops implements the operation layer shared by the CLI and the MCP
// server. Each operation validates input, applies the storage timeout, and
// returns a typed output; no transport details leak in.
package ops

import (
	"context"
	"time"

	"github.com/tendhq/tend/internal/config"
)

// Listing limits
const (
	DefaultLogLimit = 100
	MaxLogLimit     = 500
)

// storageCtx bounds store access with the configured timeout so no
// operation blocks indefinitely on a wedged database.
func storageCtx(ctx context.Context, cfg *config.Config) (context.Context, context.CancelFunc) {
	timeout := time.Duration(cfg.StorageTimeoutMS) * time.Millisecond
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
