package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTokenCost 验证已知服务商的成本计算
func TestTokenCost(t *testing.T) {
	tests := []struct {
		name      string
		provider  string
		operation string
		want      int
	}{
		{"基准服务商content", "openai", OpContent, 10},
		{"基准服务商slides", "openai", OpSlides, 15},
		{"claude系数1.2", "claude", OpContent, 12},
		{"gemini系数0.8向上取整", "gemini", OpContent, 8},
		{"elevenlabs语音", "elevenlabs", OpVoice, 40},
		{"google语音", "google", OpVoice, 12},
		{"未知服务商按1.0", "unknown-provider", OpVideo, 25},
		{"未知操作按content", "openai", "bogus", 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TokenCost(tt.provider, tt.operation))
		})
	}
}

// TestTokenCostAlwaysPositive 任何输入都返回正整数
func TestTokenCostAlwaysPositive(t *testing.T) {
	ops := []string{OpContent, OpSlides, OpVoice, OpVideo, ""}
	ids := []string{"openai", "claude", "gemini", "grok", "elevenlabs", "google", "", "nope"}
	for _, op := range ops {
		for _, id := range ids {
			assert.Greater(t, TokenCost(id, op), 0, "provider=%s op=%s", id, op)
		}
	}
}

// TestTokenCostMonotonic 固定操作下成本随系数单调不减
func TestTokenCostMonotonic(t *testing.T) {
	// 语音目录按系数排序: google(0.6) <= openai(1.0) <= elevenlabs(2.0)
	low := TokenCost("google", OpVoice)
	mid := TokenCost("openai", OpVoice)
	high := TokenCost("elevenlabs", OpVoice)
	assert.LessOrEqual(t, low, mid)
	assert.LessOrEqual(t, mid, high)
}

// TestLookupVoice 目录查找
func TestLookupVoice(t *testing.T) {
	v, ok := LookupVoice("pNInz6obpgDQGcFmaJgB")
	require.True(t, ok)
	assert.Equal(t, "Adam", v.Name)
	assert.Equal(t, "elevenlabs", v.Provider)

	_, ok = LookupVoice("不存在的声音")
	assert.False(t, ok)
}

// TestCatalogsComplete 目录中的每个声音都归属于已知的语音服务商
func TestCatalogsComplete(t *testing.T) {
	for _, v := range Voices {
		_, ok := SpeechProviders[v.Provider]
		assert.True(t, ok, "声音 %s 的服务商 %s 不在目录中", v.ID, v.Provider)
	}
}
