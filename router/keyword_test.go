package router

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/agentflow/types"
)

func TestKeywordRouter_DomainPrecedenceOverCode(t *testing.T) {
	r := NewKeywordRouter()
	d, err := r.Route(context.Background(), "what's the weather in Tokyo, 25 degrees or more?", nil)
	require.NoError(t, err)
	assert.Equal(t, types.TaskDomainWeather, d.PrimaryTask)
	assert.Equal(t, types.MethodKeyword, d.Method)
}

func TestKeywordRouter_CodeViaMathPattern(t *testing.T) {
	r := NewKeywordRouter()
	d, err := r.Route(context.Background(), "what is 12.5 * 4 - 3?", nil)
	require.NoError(t, err)
	assert.Equal(t, types.TaskCode, d.PrimaryTask)
}

func TestKeywordRouter_S1CalculateExponentIsHighConfidenceCode(t *testing.T) {
	r := NewKeywordRouter()
	d, err := r.Route(context.Background(), "Calculate 2^10", nil)
	require.NoError(t, err)
	assert.Equal(t, types.TaskCode, d.PrimaryTask)
	assert.Equal(t, types.MethodKeyword, d.Method)
	assert.GreaterOrEqual(t, d.Confidence, 0.85)
}

func TestKeywordRouter_CodeViaUnitConversion(t *testing.T) {
	r := NewKeywordRouter()
	d, err := r.Route(context.Background(), "convert 10 km to miles", nil)
	require.NoError(t, err)
	assert.Equal(t, types.TaskCode, d.PrimaryTask)
}

func TestKeywordRouter_RealTimeDowngradesCodeToResearch(t *testing.T) {
	r := NewKeywordRouter()
	d, err := r.Route(context.Background(), "what is the current exchange rate of 100 usd to eur?", nil)
	require.NoError(t, err)
	assert.Equal(t, types.TaskResearch, d.PrimaryTask)
}

func TestKeywordRouter_ResearchViaQuestionMark(t *testing.T) {
	r := NewKeywordRouter()
	d, err := r.Route(context.Background(), "why did the Roman Empire fall?", nil)
	require.NoError(t, err)
	assert.Equal(t, types.TaskResearch, d.PrimaryTask)

	d2, err := r.Route(context.Background(), "summarize the news on the Roman Empire", nil)
	require.NoError(t, err)
	assert.Equal(t, types.TaskResearch, d2.PrimaryTask)
}

func TestKeywordRouter_DefaultsToChat(t *testing.T) {
	r := NewKeywordRouter()
	d, err := r.Route(context.Background(), "tell me a joke", nil)
	require.NoError(t, err)
	assert.Equal(t, types.TaskChat, d.PrimaryTask)
}

func TestKeywordRouter_ConfidenceAlwaysInRange(t *testing.T) {
	r := NewKeywordRouter()
	queries := []string{
		"weather forecast for Paris now with rain and snow and humidity",
		"hi",
		"debug this regex for sqrt(4) calculation how many times",
	}
	for _, q := range queries {
		d, err := r.Route(context.Background(), q, nil)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, d.Confidence, 0.0)
		assert.LessOrEqual(t, d.Confidence, 1.0)
	}
}

func TestKeywordRouter_ChineseLexicon(t *testing.T) {
	r := NewKeywordRouter()
	d, err := r.Route(context.Background(), "北京今天天气怎么样", nil)
	require.NoError(t, err)
	assert.Equal(t, types.TaskDomainWeather, d.PrimaryTask)
}

func TestKeywordRouter_S2TraditionalChineseMacauHumidity(t *testing.T) {
	r := NewKeywordRouter()
	d, err := r.Route(context.Background(), "澳門現在的濕度是多少？", nil)
	require.NoError(t, err)
	assert.Equal(t, types.TaskDomainWeather, d.PrimaryTask)
	assert.Equal(t, types.MethodKeyword, d.Method)
}
