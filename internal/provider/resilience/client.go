package resilience

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

var (
	// ErrCircuitOpen is returned when the circuit breaker refuses a request.
	ErrCircuitOpen = errors.New("circuit breaker is open")

	// ErrMaxRetriesExceeded is returned when every retry attempt has failed.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

// AttemptGate paces outbound attempts. Wait blocks until the next attempt may
// start, or returns the context error.
type AttemptGate interface {
	Wait(ctx context.Context) error
}

// ClientConfig configures a resilient HTTP client. Both upstream providers
// (the geocoder and the forecast API) are public services with no SLA, so
// every call goes through retry and circuit breaker layers.
type ClientConfig struct {
	// Name identifies the upstream provider. It names the circuit breaker
	// and keys health reporting in the Registry.
	Name string

	// Timeout bounds a single HTTP attempt. Default 10s.
	Timeout time.Duration

	// MaxRetries is the number of additional attempts after the first.
	// Default 3.
	MaxRetries uint64

	// InitialInterval is the first backoff delay. Default 100ms.
	InitialInterval time.Duration

	// MaxInterval caps the backoff delay. Default 5s.
	MaxInterval time.Duration

	// Gate, when set, is acquired before every HTTP attempt, retries
	// included, so backoff delays never undercut the provider's minimum
	// request spacing.
	Gate AttemptGate

	// CircuitBreaker overrides the breaker settings.
	// Nil means DefaultCircuitBreakerConfig(Name).
	CircuitBreaker *CircuitBreakerConfig

	// Registry, when set, receives the client on construction and gets
	// success/failure timestamps recorded after each request.
	Registry *Registry
}

// DefaultClientConfig returns the standard configuration for a provider client.
func DefaultClientConfig(name string) ClientConfig {
	cbConfig := DefaultCircuitBreakerConfig(name)
	return ClientConfig{
		Name:            name,
		Timeout:         10 * time.Second,
		MaxRetries:      3,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		CircuitBreaker:  &cbConfig,
	}
}

// Client wraps http.Client with exponential-backoff retries and a circuit
// breaker. Responses with 5xx status trip the breaker; 4xx responses are
// handed back to the caller untouched.
type Client struct {
	httpClient     *http.Client
	circuitBreaker *gobreaker.CircuitBreaker[*http.Response]
	registry       *Registry
	config         ClientConfig
}

// NewClient creates a resilient HTTP client. When cfg.Registry is set the
// client registers itself under cfg.Name so its health can be inspected.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 100 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 5 * time.Second
	}

	cbConfig := DefaultCircuitBreakerConfig(cfg.Name)
	if cfg.CircuitBreaker != nil {
		cbConfig = *cfg.CircuitBreaker
	}

	client := &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		circuitBreaker: NewCircuitBreaker[*http.Response](cbConfig), //nolint:bodyclose // type param, not a response
		registry:       cfg.Registry,
		config:         cfg,
	}

	if cfg.Registry != nil {
		cfg.Registry.Register(cfg.Name, client)
	}

	return client
}

// Name returns the provider name the client was configured with.
func (c *Client) Name() string {
	return c.config.Name
}

// Do executes the request with retries and circuit breaker protection.
// Transient failures (network errors, 5xx) are retried with exponential
// backoff; an open circuit fails fast with ErrCircuitOpen.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.DoWithContext(req.Context(), req)
}

// DoWithContext executes the request, honoring ctx across retries.
func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.config.InitialInterval
	bo.MaxInterval = c.config.MaxInterval
	bo.MaxElapsedTime = 0 // retries are bounded by MaxRetries, not wall clock

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.config.MaxRetries), ctx)

	var lastResp *http.Response

	operation := func() error {
		if c.config.Gate != nil {
			if gateErr := c.config.Gate.Wait(ctx); gateErr != nil {
				// A gate error means ctx is done; never retried.
				return backoff.Permanent(gateErr)
			}
		}

		resp, err := c.circuitBreaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // caller closes
			// Clone so a retried request does not reuse consumed state.
			r, doErr := c.httpClient.Do(req.Clone(ctx))
			if doErr != nil {
				return nil, doErr
			}

			// 5xx counts as a breaker failure.
			if r.StatusCode >= 500 {
				return r, &ServerError{StatusCode: r.StatusCode}
			}

			return r, nil
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(ErrCircuitOpen)
			}

			// Keep the 5xx response around in case retries run out.
			if resp != nil {
				lastResp = resp
			}
			return err
		}

		lastResp = resp
		return nil
	}

	err := backoff.Retry(operation, policy)
	if err != nil {
		c.recordFailure(err)
		// A 5xx that exhausted retries is still a response the caller
		// may want to inspect.
		if lastResp != nil {
			return lastResp, nil
		}
		return nil, err
	}

	c.recordSuccess()
	return lastResp, nil
}

func (c *Client) recordSuccess() {
	if c.registry != nil {
		c.registry.RecordSuccess(c.config.Name)
	}
}

func (c *Client) recordFailure(err error) {
	if c.registry != nil {
		c.registry.RecordFailure(c.config.Name, err)
	}
}

// ServerError represents an upstream 5xx response.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return "server error: " + http.StatusText(e.StatusCode)
}

// CircuitBreakerState returns the current breaker state.
func (c *Client) CircuitBreakerState() gobreaker.State {
	return c.circuitBreaker.State()
}

// CircuitBreakerCounts returns the breaker's request counters.
func (c *Client) CircuitBreakerCounts() gobreaker.Counts {
	return c.circuitBreaker.Counts()
}
