package tts

import (
	"math"
	"strings"

	"webinar-studio/internal/providers"
)

// 主后端(ElevenLabs)的原生语音集
const (
	VoiceNarrativeMale = "JBFqnCBsd6RMkjVDRZzb" // George，叙事男声
	VoiceDeepMale      = "pNInz6obpgDQGcFmaJgB" // Adam，低沉男声
	VoiceClearMale     = "TxGEqnHWrfWFTfGW9XjX" // Josh，清晰男声
	VoiceEnergeticFem  = "jsCqWAovK2LkecY7zXl4" // Freya，活力女声
	VoiceWarmFemale    = "EXAVITQu4vr4xnSDxMaL" // Sarah，温暖女声
	VoiceDefault       = "21m00Tcm4TlvDq8ikWAM" // Rachel，默认女声
)

// nativeVoices 主后端原生语音ID集合，命中时直接透传
var nativeVoices = map[string]bool{
	VoiceNarrativeMale: true,
	VoiceDeepMale:      true,
	VoiceClearMale:     true,
	VoiceEnergeticFem:  true,
	VoiceWarmFemale:    true,
	VoiceDefault:       true,
	"onwK4e9ZLuTAKqWW03F9": true, // Daniel
}

// ResolveVoice 将目录中展示的任意声音映射到主后端的原生声音。
// 纯函数且全定义：任何输入都恰好映射到一个原生语音ID，不会失败
func ResolveVoice(voiceID string) string {
	// 已经是主后端原生语音，原样返回
	if nativeVoices[voiceID] {
		return voiceID
	}

	// 查语音目录，未知ID使用默认声音
	voice, ok := providers.LookupVoice(voiceID)
	if !ok {
		return VoiceDefault
	}

	desc := strings.ToLower(voice.Description)
	if voice.Gender == "male" {
		if strings.ToLower(voice.Accent) == "british" {
			return VoiceNarrativeMale
		}
		if strings.Contains(desc, "deep") {
			return VoiceDeepMale
		}
		return VoiceClearMale
	}

	// 女声按描述关键词匹配
	if strings.Contains(desc, "energetic") || strings.Contains(desc, "energy") {
		return VoiceEnergeticFem
	}
	if strings.Contains(desc, "warm") || strings.Contains(desc, "warmth") {
		return VoiceWarmFemale
	}
	return VoiceDefault
}

// EstimateDuration 按150词/分钟的语速估算文本的播报时长(秒)
func EstimateDuration(text string) int {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	return int(math.Ceil(float64(words) / 150.0 * 60.0))
}

// ChunkScript 将长脚本按句子边界切分成不超过maxChunkSize字符的片段。
// 不丢失任何文本；单句超长时该句独立成一个超长片段而不截断
func ChunkScript(script string, maxChunkSize int) []string {
	if maxChunkSize <= 0 || len(script) <= maxChunkSize {
		return []string{script}
	}

	sentences := splitSentences(script)

	var chunks []string
	var current strings.Builder
	for _, sentence := range sentences {
		// 加入下一句会超限且当前片段非空时，先收拢当前片段
		if current.Len() > 0 && current.Len()+len(sentence) > maxChunkSize {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		current.WriteString(sentence)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}

	return chunks
}

// splitSentences 按句末标点(. ! ?)切分文本，标点保留在句子末尾
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			sentences = append(sentences, text[start:i+1])
			start = i + 1
		}
	}
	if start < len(text) {
		sentences = append(sentences, text[start:])
	}
	return sentences
}
