package ubeu

import (
	"context"
	"sync"
	"time"
)

// serviceProbes maps each platform service to its health endpoint
var serviceProbes = []struct {
	path string
	set  func(*ServicesStatus, bool)
}{
	{"/api/v1/identity/health", func(s *ServicesStatus, ok bool) { s.Identity = ok }},
	{"/api/v1/credential/health", func(s *ServicesStatus, ok bool) { s.Credentials = ok }},
	{"/api/v1/issuers/health", func(s *ServicesStatus, ok bool) { s.Issuer = ok }},
	{"/api/v1/enterprise/health", func(s *ServicesStatus, ok bool) { s.Enterprise = ok }},
	{"/api/v1/openid4/health", func(s *ServicesStatus, ok bool) { s.OpenID4 = ok }},
	{"/api/v1/wallet/health", func(s *ServicesStatus, ok bool) { s.Wallet = ok }},
	{"/api/v1/analytics/health", func(s *ServicesStatus, ok bool) { s.Analytics = ok }},
}

// GetStatus reports the client state and probes every platform service
// concurrently. Probes are not retried; a failed probe marks its service down.
func (c *Client) GetStatus(ctx context.Context) *SDKStatus {
	cfg := c.transport.Config()
	status := &SDKStatus{
		Initialized:   c.IsInitialized(),
		Authenticated: c.IsAuthenticated(),
		Version:       Version,
		Environment:   cfg.Environment,
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, probe := range serviceProbes {
		probe := probe
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok := c.Get(ctx, probe.path, nil, WithRetries(0)) == nil

			mu.Lock()
			probe.set(&status.Services, ok)
			mu.Unlock()
		}()
	}
	wg.Wait()

	if last := c.lastActivity.Load(); last > 0 {
		status.LastActivity = Timestamp{Time: time.Unix(0, last)}
	}
	return status
}
