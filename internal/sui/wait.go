package sui

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// WaitForTransaction polls GetTransactionBlock until the digest is known to the node.
// It returns ErrTxTimeout when timeout elapses first and ErrTxFailed when the
// transaction executed with a failure status.
func (c *Client) WaitForTransaction(ctx context.Context, digest string, interval, timeout time.Duration) (*TransactionBlockResponse, error) {
	if interval <= 0 {
		interval = time.Second
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastErr error
	for {
		resp, err := c.GetTransactionBlock(waitCtx, digest, nil)
		if err == nil && resp.Effects != nil {
			if !resp.Succeeded() {
				return resp, fmt.Errorf("%w: %s: %s", ErrTxFailed, digest, resp.Effects.Status.Error)
			}
			return resp, nil
		}
		if err != nil {
			lastErr = err
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if lastErr != nil && !errors.Is(lastErr, context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: %s: %v", ErrTxTimeout, digest, lastErr)
			}
			return nil, fmt.Errorf("%w: %s", ErrTxTimeout, digest)
		case <-ticker.C:
		}
	}
}
