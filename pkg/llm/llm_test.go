package llm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/lodestone-ai/lodestone/pkg/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	resp  *llm.Response
	err   error
	calls int
}

func (s *stubClient) Chat(_ context.Context, _ []llm.Message) (*llm.Response, error) {
	s.calls++
	return s.resp, s.err
}

func (s *stubClient) Close() error { return nil }

func TestClientInterfaces(t *testing.T) {
	var _ llm.Client = (*llm.OpenAIClient)(nil)
	var _ llm.Client = (*llm.CircuitBreakerClient)(nil)
}

func TestCircuitBreakerPassthrough(t *testing.T) {
	stub := &stubClient{resp: &llm.Response{Content: "ok"}}
	client := llm.NewCircuitBreakerClient(stub, llm.BreakerConfig{}, "test")

	resp, err := client.Chat(context.Background(), []llm.Message{llm.NewUserMessage("hi")})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, 1, stub.calls)
}

func TestCircuitBreakerTripsAfterRepeatedFailures(t *testing.T) {
	stub := &stubClient{err: errors.New("provider down")}
	client := llm.NewCircuitBreakerClient(stub, llm.BreakerConfig{ReadyToTripRatio: 0.5}, "test")

	ctx := context.Background()
	msgs := []llm.Message{llm.NewUserMessage("hi")}

	for range 3 {
		_, err := client.Chat(ctx, msgs)
		require.Error(t, err)
	}

	// Breaker is open now: the underlying client must not be called again.
	before := stub.calls
	_, err := client.Chat(ctx, msgs)
	require.Error(t, err)
	assert.Equal(t, before, stub.calls)
}
