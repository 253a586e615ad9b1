package tts

import (
	"strings"
	"testing"

	"webinar-studio/internal/providers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestResolveVoiceNative 主后端原生语音原样返回
func TestResolveVoiceNative(t *testing.T) {
	assert.Equal(t, VoiceDeepMale, ResolveVoice(VoiceDeepMale))
	assert.Equal(t, VoiceDefault, ResolveVoice(VoiceDefault))
}

// TestResolveVoiceMapping 目录中各类声音的映射规则
func TestResolveVoiceMapping(t *testing.T) {
	tests := []struct {
		name    string
		voiceID string
		want    string
	}{
		{"英音男声映射到叙事声", "en-GB-News-K", VoiceNarrativeMale},
		{"英音男声fable映射到叙事声", "fable", VoiceNarrativeMale},
		{"描述低沉的男声", "onyx", VoiceDeepMale},
		{"普通男声映射到清晰声", "alloy", VoiceClearMale},
		{"描述活力的女声", "nova", VoiceEnergeticFem},
		{"描述温暖的女声", "shimmer", VoiceWarmFemale},
		{"描述温暖的google女声", "en-US-Studio-O", VoiceWarmFemale},
		{"未知ID使用默认声音", "不存在的声音", VoiceDefault},
		{"空ID使用默认声音", "", VoiceDefault},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveVoice(tt.voiceID))
		})
	}
}

// TestResolveVoiceTotalAndDeterministic 对目录中的每个声音和任意未知输入，
// 映射都恰好产出一个原生语音ID，且重复调用结果一致
func TestResolveVoiceTotalAndDeterministic(t *testing.T) {
	inputs := []string{"", "xyz", "123", "!!!"}
	for _, v := range providers.Voices {
		inputs = append(inputs, v.ID)
	}

	for _, id := range inputs {
		first := ResolveVoice(id)
		require.True(t, nativeVoices[first], "输入 %q 映射到了非原生声音 %q", id, first)
		assert.Equal(t, first, ResolveVoice(id), "输入 %q 的映射不稳定", id)
	}
}

// TestEstimateDuration 按150词/分钟估算
func TestEstimateDuration(t *testing.T) {
	assert.Equal(t, 0, EstimateDuration(""))
	assert.Equal(t, 0, EstimateDuration("   "))
	// 150词正好1分钟
	assert.Equal(t, 60, EstimateDuration(strings.Repeat("word ", 150)))
	// 151词向上取整到61秒
	assert.Equal(t, 61, EstimateDuration(strings.Repeat("word ", 151)))
	// 1词也要向上取整
	assert.Equal(t, 1, EstimateDuration("hello"))
}

// TestChunkScriptSingle 整体不超限时返回单元素且不做句子切分
func TestChunkScriptSingle(t *testing.T) {
	script := "Short script. No splitting needed!"
	chunks := ChunkScript(script, 100)
	require.Len(t, chunks, 1)
	assert.Equal(t, script, chunks[0])
}

// TestChunkScriptReconstruction 切分后的拼接必须完整还原原文
func TestChunkScriptReconstruction(t *testing.T) {
	scripts := []string{
		"First sentence. Second sentence! Third question? Fourth and final.",
		"One. Two. Three. Four. Five. Six. Seven. Eight. Nine. Ten.",
		"No terminal punctuation at all just a long run of words going on and on",
		"Mixed! Endings? Everywhere. And a tail without punctuation",
	}
	for _, script := range scripts {
		for _, size := range []int{10, 25, 40} {
			chunks := ChunkScript(script, size)
			assert.Equal(t, script, strings.Join(chunks, ""), "size=%d", size)
		}
	}
}

// TestChunkScriptBounds 每个片段不超限，单句超长的片段除外
func TestChunkScriptBounds(t *testing.T) {
	script := "Short one. This is a noticeably longer sentence that keeps going. End!"
	maxSize := 30
	chunks := ChunkScript(script, maxSize)
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		if len(chunk) > maxSize {
			// 超限片段必须是单个无法再切的句子
			trimmed := strings.TrimSpace(chunk)
			terminals := strings.Count(trimmed, ".") + strings.Count(trimmed, "!") + strings.Count(trimmed, "?")
			assert.LessOrEqual(t, terminals, 1, "超限片段 %q 包含多个句子", chunk)
		}
	}
}

// TestChunkScriptOversizedSentence 单句超过上限时独立成片而不截断
func TestChunkScriptOversizedSentence(t *testing.T) {
	long := strings.Repeat("word ", 20) + "end."
	script := "Tiny. " + long + " Tiny again."
	chunks := ChunkScript(script, 20)

	assert.Equal(t, script, strings.Join(chunks, ""))
	found := false
	for _, chunk := range chunks {
		if strings.Contains(chunk, "end.") && len(chunk) > 20 {
			found = true
		}
	}
	assert.True(t, found, "超长句应当作为独立超限片段保留")
}
