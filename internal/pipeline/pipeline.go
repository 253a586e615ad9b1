package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"webinar-studio/internal/models"
	"webinar-studio/internal/providers"
)

// Generator 是流水线依赖的AI生成能力，由internal/ai实现
type Generator interface {
	GenerateText(ctx context.Context, prompt string, model string, maxTokens int) (string, error)
	GenerateObject(ctx context.Context, prompt string, model string, schemaName string, schema json.RawMessage) (json.RawMessage, error)
}

// Pipeline 将用户简介逐步转化为大纲、幻灯片和旁白脚本
type Pipeline struct {
	generator Generator
}

// NewPipeline 创建一个新的内容流水线
func NewPipeline(generator Generator) *Pipeline {
	return &Pipeline{generator: generator}
}

// ModelForProvider 将内容服务商ID映射到具体的后端模型名。
// 未知服务商回退到openai的映射，永远不会失败
func ModelForProvider(providerID string) string {
	switch providerID {
	case "claude":
		return "claude-3-5-sonnet-20241022"
	case "gemini":
		return "gemini-1.5-pro"
	case "grok":
		return "grok-beta"
	default:
		return "gpt-4o-mini"
	}
}

// EnhanceDescription 润色用户的描述文本。
// 任何底层失败都不会传播给调用方：记录日志后原样返回输入，
// 保证润色环节的临时故障不阻塞研讨会创建
func (p *Pipeline) EnhanceDescription(ctx context.Context, description, topic, audience, providerID string) string {
	model := ModelForProvider(providerID)

	improved, err := p.generator.GenerateText(ctx, enhancePrompt(description, topic, audience), model, 500)
	if err != nil {
		log.Printf("润色描述失败，使用原始描述: %v", err)
		return description
	}
	if improved == "" {
		return description
	}
	return improved
}

// GenerateOutline 生成研讨会大纲。
// 下游阶段依赖大纲，失败时直接返回错误而不做降级
func (p *Pipeline) GenerateOutline(ctx context.Context, topic, audience string, duration int, description, providerID string) (*models.Outline, error) {
	model := ModelForProvider(providerID)

	raw, err := p.generator.GenerateObject(ctx, outlinePrompt(topic, audience, duration, description), model, "webinar_outline", outlineSchema)
	if err != nil {
		log.Printf("生成大纲失败: %v", err)
		return nil, fmt.Errorf("生成大纲失败，请重试")
	}

	var outline models.Outline
	if err := json.Unmarshal(raw, &outline); err != nil {
		log.Printf("解析大纲失败: %v", err)
		return nil, fmt.Errorf("生成大纲失败，请重试")
	}

	// 章节时长之和与总时长的一致性由生成端负责，这里只校验不除零即可的用量
	if sum := sumDurations(&outline); sum != outline.TotalDuration {
		log.Printf("警告: 大纲章节时长之和(%d)与总时长(%d)不一致", sum, outline.TotalDuration)
	}

	return &outline, nil
}

// GenerateSlides 根据大纲生成幻灯片序列。失败时不返回部分结果
func (p *Pipeline) GenerateSlides(ctx context.Context, outline *models.Outline, templateStyle, providerID string) ([]models.Slide, error) {
	model := ModelForProvider(providerID)

	raw, err := p.generator.GenerateObject(ctx, slidesPrompt(outline, templateStyle), model, "webinar_slides", slidesSchema)
	if err != nil {
		log.Printf("生成幻灯片失败: %v", err)
		return nil, fmt.Errorf("生成幻灯片失败，请重试")
	}

	var out struct {
		Slides []models.Slide `json:"slides"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		log.Printf("解析幻灯片失败: %v", err)
		return nil, fmt.Errorf("生成幻灯片失败，请重试")
	}
	if len(out.Slides) == 0 {
		log.Printf("AI返回了空的幻灯片列表")
		return nil, fmt.Errorf("生成幻灯片失败，请重试")
	}

	return out.Slides, nil
}

// GenerateScript 根据幻灯片生成单篇旁白脚本，内嵌[SLIDE k]切换标记
func (p *Pipeline) GenerateScript(ctx context.Context, slides []models.Slide) (string, error) {
	// 脚本生成不依赖服务商选择，使用默认映射
	model := ModelForProvider("openai")

	script, err := p.generator.GenerateText(ctx, scriptPrompt(slides), model, 2000)
	if err != nil {
		log.Printf("生成旁白脚本失败: %v", err)
		return "", fmt.Errorf("生成旁白脚本失败，请重试")
	}
	if script == "" {
		return "", fmt.Errorf("生成旁白脚本失败，请重试")
	}

	return script, nil
}

// Cost 返回指定服务商执行某操作的token成本
func Cost(providerID string, operation string) int {
	return providers.TokenCost(providerID, operation)
}

// sumDurations 计算开场、各章节与结尾的时长之和
func sumDurations(o *models.Outline) int {
	sum := o.Introduction.Duration + o.Conclusion.Duration
	for _, s := range o.Sections {
		sum += s.Duration
	}
	return sum
}
