package providers

import "math"

// Provider 表示一个外部生成服务商，携带相对成本系数
type Provider struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	CostFactor  float64 `json:"costFactor"` // 相对于基准服务商(1.0)的倍率
}

// Voice 表示语音目录中的一个声音
type Voice struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Gender      string `json:"gender"` // "male" / "female"
	Accent      string `json:"accent"`
	Description string `json:"description"`
	Provider    string `json:"provider"`
}

// 操作类型，用于计算token成本
const (
	OpContent = "content"
	OpSlides  = "slides"
	OpVoice   = "voice"
	OpVideo   = "video"
)

// baseCosts 各操作的基准token成本
var baseCosts = map[string]int{
	OpContent: 10,
	OpSlides:  15,
	OpVoice:   20,
	OpVideo:   25,
}

// ContentProviders 内容生成服务商目录。静态数据，运行时不可修改
var ContentProviders = map[string]Provider{
	"openai": {
		ID:          "openai",
		Name:        "OpenAI",
		Description: "GPT系列模型，速度与质量的平衡选择",
		CostFactor:  1.0,
	},
	"claude": {
		ID:          "claude",
		Name:        "Claude",
		Description: "擅长长文和结构化内容的生成",
		CostFactor:  1.2,
	},
	"gemini": {
		ID:          "gemini",
		Name:        "Gemini",
		Description: "性价比较高的多模态模型",
		CostFactor:  0.8,
	},
	"grok": {
		ID:          "grok",
		Name:        "Grok",
		Description: "实验性模型，风格更口语化",
		CostFactor:  0.9,
	},
}

// SpeechProviders 语音合成服务商目录。与内容目录的ID空间相互独立
var SpeechProviders = map[string]Provider{
	"openai": {
		ID:          "openai",
		Name:        "OpenAI TTS",
		Description: "基础语音合成",
		CostFactor:  1.0,
	},
	"elevenlabs": {
		ID:          "elevenlabs",
		Name:        "ElevenLabs",
		Description: "高保真多风格语音合成",
		CostFactor:  2.0,
	},
	"google": {
		ID:          "google",
		Name:        "Google Cloud TTS",
		Description: "价格较低的标准语音合成",
		CostFactor:  0.6,
	},
}

// Voices 对外展示的语音目录。静态数据，运行时不可修改
var Voices = []Voice{
	{ID: "JBFqnCBsd6RMkjVDRZzb", Name: "George", Gender: "male", Accent: "british", Description: "Warm narrative voice for storytelling", Provider: "elevenlabs"},
	{ID: "onwK4e9ZLuTAKqWW03F9", Name: "Daniel", Gender: "male", Accent: "british", Description: "Authoritative broadcast style", Provider: "elevenlabs"},
	{ID: "pNInz6obpgDQGcFmaJgB", Name: "Adam", Gender: "male", Accent: "american", Description: "Deep resonant voice", Provider: "elevenlabs"},
	{ID: "TxGEqnHWrfWFTfGW9XjX", Name: "Josh", Gender: "male", Accent: "american", Description: "Clear and friendly presenter", Provider: "elevenlabs"},
	{ID: "jsCqWAovK2LkecY7zXl4", Name: "Freya", Gender: "female", Accent: "american", Description: "Energetic and upbeat", Provider: "elevenlabs"},
	{ID: "EXAVITQu4vr4xnSDxMaL", Name: "Sarah", Gender: "female", Accent: "american", Description: "Soft warm delivery", Provider: "elevenlabs"},
	{ID: "21m00Tcm4TlvDq8ikWAM", Name: "Rachel", Gender: "female", Accent: "american", Description: "Calm and balanced narration", Provider: "elevenlabs"},
	{ID: "onyx", Name: "Onyx", Gender: "male", Accent: "american", Description: "Deep steady voice", Provider: "openai"},
	{ID: "alloy", Name: "Alloy", Gender: "male", Accent: "american", Description: "Neutral clear voice", Provider: "openai"},
	{ID: "fable", Name: "Fable", Gender: "male", Accent: "british", Description: "Expressive storyteller", Provider: "openai"},
	{ID: "nova", Name: "Nova", Gender: "female", Accent: "american", Description: "Bright energetic voice", Provider: "openai"},
	{ID: "shimmer", Name: "Shimmer", Gender: "female", Accent: "american", Description: "Warm gentle voice", Provider: "openai"},
	{ID: "en-GB-News-K", Name: "News K", Gender: "male", Accent: "british", Description: "Formal news reading", Provider: "google"},
	{ID: "en-US-Studio-O", Name: "Studio O", Gender: "female", Accent: "american", Description: "Studio quality narration with warm tone", Provider: "google"},
}

// LookupVoice 在语音目录中查找声音，未找到时第二个返回值为false
func LookupVoice(voiceID string) (Voice, bool) {
	for _, v := range Voices {
		if v.ID == voiceID {
			return v, true
		}
	}
	return Voice{}, false
}

// TokenCost 计算指定服务商执行某操作的token成本。
// 未知服务商按系数1.0处理，结果向上取整，永远返回正整数
func TokenCost(providerID string, operation string) int {
	base, ok := baseCosts[operation]
	if !ok {
		base = baseCosts[OpContent]
	}

	factor := 1.0
	if p, ok := ContentProviders[providerID]; ok {
		factor = p.CostFactor
	} else if p, ok := SpeechProviders[providerID]; ok {
		factor = p.CostFactor
	}

	cost := int(math.Ceil(float64(base) * factor))
	if cost < 1 {
		cost = 1
	}
	return cost
}
