package llm

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerConfig holds circuit-breaker settings for a chat client.
type BreakerConfig struct {
	// MaxRequests allowed through while half-open.
	MaxRequests uint32 `json:"max_requests"`
	// Interval between failure-count resets while closed, in seconds.
	Interval int `json:"interval"`
	// Timeout before a tripped breaker moves to half-open, in seconds.
	Timeout int `json:"timeout"`
	// ReadyToTripRatio is the failure ratio that trips the breaker once at
	// least three requests have been observed.
	ReadyToTripRatio float64 `json:"ready_to_trip_ratio"`
}

// CircuitBreakerClient wraps a Client with circuit breaking, so a failing
// model provider fails fast instead of queueing slow calls.
type CircuitBreakerClient struct {
	client Client
	cb     *gobreaker.CircuitBreaker
}

// NewCircuitBreakerClient wraps client with a breaker named name.
func NewCircuitBreakerClient(client Client, cfg BreakerConfig, name string) *CircuitBreakerClient {
	if cfg.ReadyToTripRatio <= 0 {
		cfg.ReadyToTripRatio = 0.6
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30
	}

	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    time.Duration(cfg.Interval) * time.Second,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= cfg.ReadyToTripRatio
		},
	}

	return &CircuitBreakerClient{
		client: client,
		cb:     gobreaker.NewCircuitBreaker(st),
	}
}

// Chat proxies to the wrapped client through the breaker.
func (c *CircuitBreakerClient) Chat(ctx context.Context, messages []Message) (*Response, error) {
	result, err := c.cb.Execute(func() (interface{}, error) {
		return c.client.Chat(ctx, messages)
	})
	if err != nil {
		return nil, err
	}
	return result.(*Response), nil
}

// Close closes the wrapped client.
func (c *CircuitBreakerClient) Close() error {
	return c.client.Close()
}
