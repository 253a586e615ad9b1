package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"webinar-studio/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGenerator 测试用的假AI后端
type fakeGenerator struct {
	textResult   string
	textErr      error
	objectResult json.RawMessage
	objectErr    error

	lastPrompt string
	lastModel  string
	calls      int
}

func (f *fakeGenerator) GenerateText(ctx context.Context, prompt string, model string, maxTokens int) (string, error) {
	f.calls++
	f.lastPrompt = prompt
	f.lastModel = model
	return f.textResult, f.textErr
}

func (f *fakeGenerator) GenerateObject(ctx context.Context, prompt string, model string, schemaName string, schema json.RawMessage) (json.RawMessage, error) {
	f.calls++
	f.lastPrompt = prompt
	f.lastModel = model
	return f.objectResult, f.objectErr
}

// sampleOutline 构造一份60分钟、3个章节的大纲JSON
func sampleOutline(t *testing.T) json.RawMessage {
	t.Helper()
	outline := models.Outline{
		Title: "Intro to Rust",
		Introduction: models.Introduction{
			Hook:     "Why does everyone keep talking about Rust?",
			Overview: []string{"Ownership", "Tooling", "Ecosystem"},
			Duration: 10,
		},
		Sections: []models.Section{
			{Title: "Ownership and borrowing", KeyPoints: []string{"moves", "borrows"}, Duration: 15, Transition: "With memory out of the way..."},
			{Title: "Error handling", KeyPoints: []string{"Result", "panic"}, Duration: 15, Transition: "Errors handled, on to tooling..."},
			{Title: "Cargo and tooling", KeyPoints: []string{"cargo", "clippy"}, Duration: 10, Transition: "Let's wrap up."},
		},
		Conclusion: models.Conclusion{
			Summary:      []string{"Rust is worth learning"},
			CallToAction: "Try the Rustlings exercises",
			Duration:     10,
		},
		InteractiveElements: []models.InteractiveElement{
			{Type: "poll", Timing: 5, Content: "Have you used a systems language before?"},
			{Type: "qa", Timing: 55, Content: "Open questions"},
		},
		TotalDuration: 60,
	}
	data, err := json.Marshal(outline)
	require.NoError(t, err)
	return data
}

// TestModelForProvider 服务商到模型名的映射是全函数，未知值回退到openai
func TestModelForProvider(t *testing.T) {
	assert.Equal(t, "gpt-4o-mini", ModelForProvider("openai"))
	assert.Equal(t, "claude-3-5-sonnet-20241022", ModelForProvider("claude"))
	assert.Equal(t, "gemini-1.5-pro", ModelForProvider("gemini"))
	assert.Equal(t, "grok-beta", ModelForProvider("grok"))
	assert.Equal(t, "gpt-4o-mini", ModelForProvider("某个不存在的服务商"))
	assert.Equal(t, "gpt-4o-mini", ModelForProvider(""))
}

// TestEnhanceDescriptionSuccess 润色成功时返回改进后的文本
func TestEnhanceDescriptionSuccess(t *testing.T) {
	gen := &fakeGenerator{textResult: "An improved description with a hook."}
	p := NewPipeline(gen)

	got := p.EnhanceDescription(context.Background(), "raw description", "Intro to Rust", "backend engineers", "openai")
	assert.Equal(t, "An improved description with a hook.", got)
	assert.Contains(t, gen.lastPrompt, "Intro to Rust")
	assert.Contains(t, gen.lastPrompt, "backend engineers")
}

// TestEnhanceDescriptionFailure 任何失败都原样返回输入，不向上传播
func TestEnhanceDescriptionFailure(t *testing.T) {
	gen := &fakeGenerator{textErr: errors.New("backend down")}
	p := NewPipeline(gen)

	got := p.EnhanceDescription(context.Background(), "raw description", "topic", "audience", "openai")
	assert.Equal(t, "raw description", got)
}

// TestGenerateOutline 正常生成：3-5个章节，总时长等于请求值
func TestGenerateOutline(t *testing.T) {
	gen := &fakeGenerator{objectResult: sampleOutline(t)}
	p := NewPipeline(gen)

	outline, err := p.GenerateOutline(context.Background(), "Intro to Rust", "backend engineers", 60, "desc", "openai")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(outline.Sections), 3)
	assert.LessOrEqual(t, len(outline.Sections), 5)
	assert.Equal(t, 60, outline.TotalDuration)
	assert.Contains(t, gen.lastPrompt, "60 minutes")
}

// TestGenerateOutlineToleratesDrift 章节时长之和与总时长不一致时不报错
func TestGenerateOutlineToleratesDrift(t *testing.T) {
	outline := models.Outline{
		Title:         "Drifting",
		Introduction:  models.Introduction{Hook: "h", Overview: []string{"o"}, Duration: 5},
		Sections:      []models.Section{{Title: "s", KeyPoints: []string{"k"}, Duration: 99, Transition: "t"}},
		Conclusion:    models.Conclusion{Summary: []string{"s"}, CallToAction: "c", Duration: 5},
		TotalDuration: 60,
	}
	data, err := json.Marshal(outline)
	require.NoError(t, err)

	p := NewPipeline(&fakeGenerator{objectResult: data})
	got, err := p.GenerateOutline(context.Background(), "t", "a", 60, "d", "openai")
	require.NoError(t, err)
	assert.Equal(t, 60, got.TotalDuration)
}

// TestGenerateOutlineFailure 生成失败返回面向用户的错误，不做降级
func TestGenerateOutlineFailure(t *testing.T) {
	gen := &fakeGenerator{objectErr: errors.New("schema violation")}
	p := NewPipeline(gen)

	_, err := p.GenerateOutline(context.Background(), "t", "a", 60, "d", "openai")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "schema violation") // 原始原因不暴露给用户
}

// TestGenerateOutlineMalformed 响应无法解析为大纲时视为硬失败
func TestGenerateOutlineMalformed(t *testing.T) {
	gen := &fakeGenerator{objectResult: json.RawMessage(`{"title": 42}`)}
	p := NewPipeline(gen)

	_, err := p.GenerateOutline(context.Background(), "t", "a", 60, "d", "openai")
	require.Error(t, err)
}

// TestGenerateSlides 正常生成幻灯片序列
func TestGenerateSlides(t *testing.T) {
	slides := []models.Slide{
		{ID: "s1", Type: models.SlideTypeTitle, Title: "Intro to Rust", SpeakerNotes: "welcome", Duration: 1, Bullets: []string{}},
		{ID: "s2", Type: models.SlideTypeContent, Title: "Ownership", Bullets: []string{"moves", "borrows"}, SpeakerNotes: "explain", Duration: 5},
		{ID: "s3", Type: models.SlideTypeCallToAction, Title: "Try Rustlings", SpeakerNotes: "close", Duration: 1, Bullets: []string{}},
	}
	payload, err := json.Marshal(map[string]interface{}{"slides": slides})
	require.NoError(t, err)

	var outline models.Outline
	require.NoError(t, json.Unmarshal(sampleOutline(t), &outline))

	gen := &fakeGenerator{objectResult: payload}
	p := NewPipeline(gen)

	got, err := p.GenerateSlides(context.Background(), &outline, "professional", "claude")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, models.SlideTypeTitle, got[0].Type)
	// 大纲被完整序列化进了提示词
	assert.Contains(t, gen.lastPrompt, "Ownership and borrowing")
	assert.Contains(t, gen.lastPrompt, "Try the Rustlings exercises")
	assert.Equal(t, "claude-3-5-sonnet-20241022", gen.lastModel)
}

// TestGenerateSlidesEmpty 空列表视为失败，不返回部分结果
func TestGenerateSlidesEmpty(t *testing.T) {
	var outline models.Outline
	require.NoError(t, json.Unmarshal(sampleOutline(t), &outline))

	gen := &fakeGenerator{objectResult: json.RawMessage(`{"slides": []}`)}
	p := NewPipeline(gen)

	_, err := p.GenerateSlides(context.Background(), &outline, "professional", "openai")
	require.Error(t, err)
}

// TestGenerateScript 脚本包含按顺序的[SLIDE k]标记上下文
func TestGenerateScript(t *testing.T) {
	slides := []models.Slide{
		{ID: "s1", Title: "Opening", SpeakerNotes: "say hi", Duration: 1},
		{ID: "s2", Title: "Body", SpeakerNotes: "the meat", Duration: 10},
	}
	script := "[SLIDE 1] Welcome everyone. [SLIDE 2] Now the main part."
	gen := &fakeGenerator{textResult: script}
	p := NewPipeline(gen)

	got, err := p.GenerateScript(context.Background(), slides)
	require.NoError(t, err)
	assert.Equal(t, script, got)
	// 提示词中包含每页的标题、讲稿和时长
	assert.Contains(t, gen.lastPrompt, "Opening")
	assert.Contains(t, gen.lastPrompt, "the meat")
	assert.Contains(t, gen.lastPrompt, "[SLIDE k]")
	for k := range slides {
		assert.Contains(t, gen.lastPrompt, fmt.Sprintf("Slide %d", k+1))
	}
}

// TestGenerateScriptFailure 生成失败返回面向用户的错误
func TestGenerateScriptFailure(t *testing.T) {
	gen := &fakeGenerator{textErr: errors.New("timeout")}
	p := NewPipeline(gen)

	_, err := p.GenerateScript(context.Background(), []models.Slide{{Title: "x"}})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "重试"))
}
