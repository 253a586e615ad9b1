package tts

import (
	"context"

	"webinar-studio/config"
)

// Service 定义语音合成服务接口
type Service interface {
	// Synthesize 将文本用指定声音转换为音频
	Synthesize(ctx context.Context, text string, voiceID string) ([]byte, error)

	// Provider 返回语音服务商名称
	Provider() string
}

// Factory 创建语音合成服务。
// 当前所有请求统一落到主后端(ElevenLabs)，目录中的其他服务商
// 通过声音映射归一化，而不是真正的多后端路由
func Factory(cfg *config.Config) (Service, error) {
	return NewElevenLabs(cfg.ElevenLabs)
}
