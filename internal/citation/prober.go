// Package citation verifies that cited source references are reachable and
// well-formed. Probe outcomes are data, not errors: a dead link degrades a
// case's score but never fails it, and never aborts a corpus run.
package citation

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/legalgapdb/gapcheck/internal/config"
	"github.com/legalgapdb/gapcheck/internal/model"
	"github.com/legalgapdb/gapcheck/internal/resilience"
)

// Probe is the outcome of one reachability attempt.
type Probe struct {
	Status   model.CitationStatus
	HTTPCode int
	Elapsed  time.Duration
	Detail   string
}

// Prober resolves a URL and reports status and elapsed time. Implementations
// never return a Go error: network failure is a first-class status so the
// scoring stage stays pure and testable with injected results.
type Prober interface {
	Probe(ctx context.Context, rawURL string) Probe
}

// HTTPProber probes URLs with HEAD requests, per-host rate limiting and a
// single bounded retry on transient failures.
type HTTPProber struct {
	client    *http.Client
	userAgent string
	retry     resilience.RetryConfig

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	hostRate rate.Limit
}

// NewHTTPProber builds a prober from checker configuration.
func NewHTTPProber(cfg config.CheckerConfig) *HTTPProber {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	hostRate := rate.Limit(cfg.HostRateLimit)
	if hostRate <= 0 {
		hostRate = 4
	}
	retries := cfg.Retries
	if retries < 0 {
		retries = 0
	}

	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = retries + 1
	retry.OnRetry = resilience.RetryLogger("citation probe")

	return &HTTPProber{
		client: &http.Client{
			Timeout: timeout,
			// Redirects are an observation, not something to chase:
			// a 3xx is recorded as "redirected" and left alone.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		userAgent: cfg.UserAgent,
		retry:     retry,
		limiters:  make(map[string]*rate.Limiter),
		hostRate:  hostRate,
	}
}

// Probe performs a HEAD-equivalent reachability check against rawURL.
func (p *HTTPProber) Probe(ctx context.Context, rawURL string) Probe {
	start := time.Now()

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return Probe{
			Status:  model.CitationUnreachable,
			Elapsed: time.Since(start),
			Detail:  "malformed URL",
		}
	}

	if err := p.limiterFor(u.Host).Wait(ctx); err != nil {
		return Probe{
			Status:  model.CitationUnreachable,
			Elapsed: time.Since(start),
			Detail:  "cancelled before probe",
		}
	}

	var code int
	err = resilience.Do(ctx, p.retry, func(ctx context.Context) error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
		if reqErr != nil {
			return reqErr
		}
		req.Header.Set("User-Agent", p.userAgent)

		resp, doErr := p.client.Do(req)
		if doErr != nil {
			return doErr
		}
		_ = resp.Body.Close()

		code = resp.StatusCode
		if resilience.IsTransientHTTPStatus(code) {
			return resilience.NewTransientError(
				eris.Errorf("citation: http %d from %s", code, rawURL), code)
		}
		return nil
	})

	elapsed := time.Since(start)
	if err != nil && code == 0 {
		return Probe{
			Status:  model.CitationUnreachable,
			Elapsed: elapsed,
			Detail:  err.Error(),
		}
	}

	return Probe{
		Status:   classify(code),
		HTTPCode: code,
		Elapsed:  elapsed,
	}
}

func (p *HTTPProber) limiterFor(host string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	lim, ok := p.limiters[host]
	if !ok {
		lim = rate.NewLimiter(p.hostRate, int(p.hostRate))
		p.limiters[host] = lim
	}
	return lim
}

func classify(code int) model.CitationStatus {
	switch {
	case code >= 200 && code < 300:
		return model.CitationAccessible
	case code >= 300 && code < 400:
		return model.CitationRedirected
	case code >= 400 && code < 500:
		return model.CitationClientError
	case code >= 500:
		return model.CitationServerError
	default:
		return model.CitationUnreachable
	}
}
