package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"webinar-studio/config"
)

// ElevenLabs 实现主语音合成后端
type ElevenLabs struct {
	apiKey       string
	model        string
	outputFormat string
	client       *http.Client
}

// NewElevenLabs 创建一个新的ElevenLabs合成服务
func NewElevenLabs(cfg config.ElevenLabsConfig) (*ElevenLabs, error) {
	return &ElevenLabs{
		apiKey:       cfg.APIKey,
		model:        cfg.Model,
		outputFormat: cfg.OutputFormat,
		client:       &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// Synthesize 将文本用指定声音转换为音频
func (e *ElevenLabs) Synthesize(ctx context.Context, text string, voiceID string) ([]byte, error) {
	log.Printf("使用ElevenLabs转换文本，语音ID: %s，长度: %d", voiceID, len(text))

	// 构建请求体
	payload := map[string]interface{}{
		"text":     text,
		"model_id": e.model,
		"voice_settings": map[string]float64{
			"stability":        0.5,
			"similarity_boost": 0.75,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("序列化请求失败: %w", err)
	}

	// 创建HTTP请求
	url := fmt.Sprintf("https://api.elevenlabs.io/v1/text-to-speech/%s?output_format=%s", voiceID, e.outputFormat)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}

	// 设置请求头
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", e.apiKey)

	// 发送请求
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("发送请求失败: %w", err)
	}
	defer resp.Body.Close()

	// 检查响应状态
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("语音合成请求失败，状态码: %d", resp.StatusCode)
	}

	// 读取响应内容
	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应内容失败: %w", err)
	}

	log.Printf("语音合成成功，音频大小: %d 字节", len(audio))
	return audio, nil
}

// Provider 返回语音服务商名称
func (e *ElevenLabs) Provider() string {
	return "elevenlabs"
}
