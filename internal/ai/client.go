package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"webinar-studio/config"

	"github.com/sashabaranov/go-openai"
)

// Client 是AI生成后端的客户端，所有服务商经由兼容OpenAI协议的网关访问
type Client struct {
	client    *openai.Client
	config    *config.OpenAIConfig
	maxTokens int
}

// NewClient 创建一个新的AI客户端
func NewClient(cfg *config.OpenAIConfig) *Client {
	apiKey := cfg.APIKey
	if apiKey == "" {
		log.Println("警告: 未设置OPENAI_API_KEY环境变量")
	}

	// 创建OpenAI配置
	clientConfig := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &Client{
		client:    openai.NewClientWithConfig(clientConfig),
		config:    cfg,
		maxTokens: cfg.MaxTokens,
	}
}

// GenerateText 生成自由文本
func (c *Client) GenerateText(ctx context.Context, prompt string, model string, maxTokens int) (string, error) {
	if maxTokens <= 0 || maxTokens > c.maxTokens {
		maxTokens = c.maxTokens
	}

	// 创建聊天请求
	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens: maxTokens,
	}

	// 发送请求
	return c.generateText(ctx, req)
}

// GenerateObject 生成符合JSON Schema的结构化对象。
// 返回原始JSON供调用方解析到具体类型；不符合schema的响应视为失败，
// 不做尽力而为式的解析
func (c *Client) GenerateObject(ctx context.Context, prompt string, model string, schemaName string, schema json.RawMessage) (json.RawMessage, error) {
	// 创建带schema约束的聊天请求
	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "Return strictly valid JSON matching the provided schema. No markdown, no code fences.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens: c.maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   schemaName,
				Schema: schema,
				Strict: true,
			},
		},
	}

	// 发送请求
	content, err := c.generateText(ctx, req)
	if err != nil {
		return nil, err
	}

	// 校验响应是合法JSON
	raw := json.RawMessage(content)
	var probe interface{}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("AI响应不是合法的JSON: %w", err)
	}

	return raw, nil
}

// generateText 发送AI请求并获取生成的文本
func (c *Client) generateText(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	log.Printf("生成AI内容，模型: %s", req.Model)

	// 添加重试逻辑
	maxRetries := 3
	for i := 0; i < maxRetries; i++ {
		// 添加超时
		timeoutCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)

		// 发送请求
		resp, err := c.client.CreateChatCompletion(timeoutCtx, req)
		cancel()
		if err != nil {
			if i < maxRetries-1 {
				log.Printf("AI请求失败，正在重试 (%d/%d): %v", i+1, maxRetries, err)
				time.Sleep(time.Duration(i+1) * 2 * time.Second) // 指数退避
				continue
			}
			return "", fmt.Errorf("生成AI内容失败: %w", err)
		}

		// 检查响应是否有效
		if len(resp.Choices) == 0 {
			if i < maxRetries-1 {
				log.Printf("AI响应无效，正在重试 (%d/%d)", i+1, maxRetries)
				time.Sleep(time.Duration(i+1) * 2 * time.Second)
				continue
			}
			return "", fmt.Errorf("AI响应中没有内容")
		}

		log.Printf("AI内容生成成功，使用tokens: %d", resp.Usage.TotalTokens)
		return resp.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("超过最大重试次数")
}
