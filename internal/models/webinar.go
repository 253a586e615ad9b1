package models

// Outline 表示AI生成的研讨会大纲
type Outline struct {
	Title               string               `json:"title"`
	Introduction        Introduction         `json:"introduction"`
	Sections            []Section            `json:"sections"`
	Conclusion          Conclusion           `json:"conclusion"`
	InteractiveElements []InteractiveElement `json:"interactiveElements"`
	TotalDuration       int                  `json:"totalDuration"` // 分钟
}

// Introduction 大纲的开场部分
type Introduction struct {
	Hook     string   `json:"hook"`
	Overview []string `json:"overview"`
	Duration int      `json:"duration"` // 分钟
}

// Section 大纲的一个章节
type Section struct {
	Title      string   `json:"title"`
	KeyPoints  []string `json:"keyPoints"`
	Duration   int      `json:"duration"` // 分钟
	Transition string   `json:"transition"`
}

// Conclusion 大纲的结尾部分
type Conclusion struct {
	Summary      []string `json:"summary"`
	CallToAction string   `json:"callToAction"`
	Duration     int      `json:"duration"` // 分钟
}

// InteractiveElement 互动环节（投票/测验/问答）
type InteractiveElement struct {
	Type    string `json:"type"`   // "poll", "quiz", "qa"
	Timing  int    `json:"timing"` // 距开场的分钟数
	Content string `json:"content"`
}

// 幻灯片类型
const (
	SlideTypeTitle        = "title"
	SlideTypeContent      = "content"
	SlideTypeTransition   = "transition"
	SlideTypeCallToAction = "call-to-action"
)

// Slide 表示一页幻灯片
type Slide struct {
	ID           string   `json:"id"`
	Type         string   `json:"type"`
	Title        string   `json:"title"`
	Bullets      []string `json:"bullets"` // 约定不超过5条，生成端负责
	SpeakerNotes string   `json:"speakerNotes"`
	ImagePrompt  string   `json:"imagePrompt,omitempty"`
	ImageURL     string   `json:"imageUrl,omitempty"` // 由后续配图阶段回填
	Duration     int      `json:"duration"`           // 分钟
}

// GeneratedContent 表示AI生成的内容
type GeneratedContent struct {
	Text         string `json:"text"`
	Usage        Usage  `json:"usage"`
	FinishReason string `json:"finishReason"`
}

// Usage 表示API使用情况
type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

// WebinarContent 表示一次生成运行产出的全部内容，分阶段落盘
type WebinarContent struct {
	Topic       string   `json:"topic"`
	Audience    string   `json:"audience"`
	Description string   `json:"description"`
	Outline     *Outline `json:"outline,omitempty"`
	Slides      []Slide  `json:"slides,omitempty"`
	Script      string   `json:"script,omitempty"`
	AudioURL    string   `json:"audioUrl,omitempty"`
	TokensUsed  int      `json:"tokensUsed"`
}
