package llm

import (
	"context"
	"fmt"
	"testing"

	"github.com/BaSui01/agentflow/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeProvider struct {
	name      string
	healthy   bool
	fail      bool
	completed int
}

func (p *fakeProvider) Name() string { return p.name }
func (p *fakeProvider) Available(ctx context.Context) bool { return p.healthy }
func (p *fakeProvider) Completion(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	p.completed++
	if p.fail {
		return nil, fmt.Errorf("%s: boom", p.name)
	}
	return &ChatResponse{Model: req.Model, Choices: []ChatChoice{{Message: Message{Content: p.name}}}}, nil
}

func TestManager_FallsThroughOrderOnFailure(t *testing.T) {
	logger := zap.NewNop()
	m := NewManager(ManagerConfig{Order: []string{"a", "b", "c"}}, logger)

	a := &fakeProvider{name: "a", healthy: true, fail: true}
	b := &fakeProvider{name: "b", healthy: true, fail: true}
	c := &fakeProvider{name: "c", healthy: true, fail: false}
	m.Register("a", a)
	m.Register("b", b)
	m.Register("c", c)

	resp, err := m.Complete(context.Background(), &ChatRequest{Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, "c", resp.Text())
	assert.Equal(t, 1, a.completed)
	assert.Equal(t, 1, b.completed)
	assert.Equal(t, 1, c.completed)
}

func TestManager_PreferredProviderTriedFirst(t *testing.T) {
	logger := zap.NewNop()
	m := NewManager(ManagerConfig{Order: []string{"a", "b"}}, logger)

	a := &fakeProvider{name: "a", healthy: true, fail: false}
	b := &fakeProvider{name: "b", healthy: true, fail: false}
	m.Register("a", a)
	m.Register("b", b)

	resp, err := m.Complete(context.Background(), &ChatRequest{Model: "m", PreferredProvider: "b"})
	require.NoError(t, err)
	assert.Equal(t, "b", resp.Text())
	assert.Equal(t, 0, a.completed)
	assert.Equal(t, 1, b.completed)
}

func TestManager_AllProvidersFailed(t *testing.T) {
	logger := zap.NewNop()
	m := NewManager(ManagerConfig{Order: []string{"a", "b"}}, logger)
	m.Register("a", &fakeProvider{name: "a", healthy: true, fail: true})
	m.Register("b", &fakeProvider{name: "b", healthy: true, fail: true})

	_, err := m.Complete(context.Background(), &ChatRequest{Model: "m"})
	require.Error(t, err)
	assert.Equal(t, types.KindAllProvidersFailed, types.GetErrorKind(err))
}

func TestManager_SkipsUnhealthyProvider(t *testing.T) {
	logger := zap.NewNop()
	m := NewManager(ManagerConfig{Order: []string{"a", "b"}}, logger)

	a := &fakeProvider{name: "a", healthy: false}
	b := &fakeProvider{name: "b", healthy: true, fail: false}
	m.Register("a", a)
	m.Register("b", b)

	resp, err := m.Complete(context.Background(), &ChatRequest{Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, "b", resp.Text())
	assert.Equal(t, 0, a.completed)
}
