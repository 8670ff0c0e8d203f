package client

import (
	"context"
	"time"
)

const (
	// autoRefreshTick is how often the background refresher checks expiry.
	autoRefreshTick = 30 * time.Second
	// refreshAhead is how long before expiry a session gets refreshed.
	refreshAhead = 90 * time.Second
)

// StartAutoRefresh refreshes the session in the background shortly before
// its access token expires, until ctx is done. Refreshed sessions are
// announced as EventTokenRefreshed; a rejected refresh token as EventSignedOut.
func (c *Client) StartAutoRefresh(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(autoRefreshTick)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.refreshIfDue(ctx) //nolint:errcheck // retried on the next tick
			}
		}
	}()
}

// refreshIfDue refreshes the session if it expires within refreshAhead.
// It reports whether a refresh was attempted.
func (c *Client) refreshIfDue(ctx context.Context) (bool, error) {
	s := c.copySession()
	if s == nil || !s.ExpiresWithin(c.now(), refreshAhead) {
		return false, nil
	}
	_, err := c.RefreshSession(ctx)
	return true, err
}
