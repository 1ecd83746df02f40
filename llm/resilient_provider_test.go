package llm

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/BaSui01/agentflow/llm/circuitbreaker"
	"github.com/BaSui01/agentflow/llm/idempotency"
	"github.com/BaSui01/agentflow/llm/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testProvider 是用于测试的函数回调测试替身
type testProvider struct {
	name         string
	completionFn func(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
	available    bool
}

func (p *testProvider) Name() string { return p.name }

func (p *testProvider) Completion(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if p.completionFn != nil {
		return p.completionFn(ctx, req)
	}
	return nil, fmt.Errorf("completion not configured")
}

func (p *testProvider) Available(ctx context.Context) bool { return p.available }

func TestResilientProvider_Name(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	provider := &testProvider{name: "test-provider", available: true}

	rp := NewResilientProviderSimple(provider, idempotency.NewMemoryManager(logger), logger)

	assert.Equal(t, "test-provider", rp.Name())
}

func TestResilientProvider_Available_CircuitOpen(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	provider := &testProvider{name: "test-provider", available: true}

	breaker := circuitbreaker.NewCircuitBreaker(&circuitbreaker.Config{
		Threshold:        1,
		Timeout:          time.Second,
		ResetTimeout:     time.Minute,
		HalfOpenMaxCalls: 1,
	}, logger)

	rp := NewResilientProvider(provider, nil, nil, breaker, DefaultResilientProviderConfig(), logger)

	// Trip the breaker with one failing call.
	provider.completionFn = func(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
		return nil, fmt.Errorf("boom")
	}
	_, err := rp.Completion(context.Background(), &ChatRequest{Model: "m"})
	require.Error(t, err)

	assert.False(t, rp.Available(context.Background()))
}

func TestResilientProvider_Completion_RetriesThenSucceeds(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	attempts := 0
	provider := &testProvider{
		name:      "test-provider",
		available: true,
		completionFn: func(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
			attempts++
			if attempts < 2 {
				return nil, retry.WrapRetryable(fmt.Errorf("transient"))
			}
			return &ChatResponse{Model: "m", Choices: []ChatChoice{{Message: Message{Content: "ok"}}}}, nil
		},
	}

	policy := retry.DefaultRetryPolicy()
	policy.InitialDelay = 0
	policy.MaxDelay = 0
	retryer := retry.NewBackoffRetryer(policy, logger)

	rp := NewResilientProvider(provider, retryer, nil, nil, DefaultResilientProviderConfig(), logger)

	resp, err := rp.Completion(context.Background(), &ChatRequest{Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text())
	assert.Equal(t, 2, attempts)
}
