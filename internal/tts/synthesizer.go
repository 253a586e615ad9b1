package tts

import (
	"context"
	"fmt"
	"log"
	"time"
)

// maxChunkChars 单次合成请求的文本上限，超长脚本按句切分
const maxChunkChars = 4500

// previewChars 试听文本的截断长度，控制试听的成本和延迟
const previewChars = 100

// Uploader 是合成结果的存储能力，由internal/storage实现
type Uploader interface {
	UploadFile(ctx context.Context, objectName string, data []byte, contentType string) (string, error)
}

// Synthesizer 语音合成阶段：解析声音、切分脚本、合成并上传音频
type Synthesizer struct {
	service Service
	storage Uploader
}

// NewSynthesizer 创建一个新的合成阶段
func NewSynthesizer(service Service, storage Uploader) *Synthesizer {
	return &Synthesizer{service: service, storage: storage}
}

// GenerateAudio 为旁白脚本合成完整音频，返回可访问的音频URL。
// 无论请求的是哪个服务商，声音都归一化到主后端
func (s *Synthesizer) GenerateAudio(ctx context.Context, script string, voiceID string, providerID string) (string, error) {
	if script == "" {
		return "", fmt.Errorf("脚本为空")
	}

	// 解析到主后端的原生声音
	nativeVoice := ResolveVoice(voiceID)
	log.Printf("合成音频，请求服务商: %s，声音: %s -> %s，预计时长: %d秒",
		providerID, voiceID, nativeVoice, EstimateDuration(script))

	// 切分长脚本，逐段合成
	chunks := ChunkScript(script, maxChunkChars)
	var audio []byte
	for i, chunk := range chunks {
		data, err := s.service.Synthesize(ctx, chunk, nativeVoice)
		if err != nil {
			log.Printf("合成第 %d/%d 段失败: %v", i+1, len(chunks), err)
			return "", fmt.Errorf("生成音频失败，请重试")
		}
		audio = append(audio, data...)
	}

	// 上传到对象存储
	objectName := fmt.Sprintf("audio/webinar-%s.mp3", time.Now().Format("20060102-150405"))
	audioURL, err := s.storage.UploadFile(ctx, objectName, audio, "audio/mpeg")
	if err != nil {
		log.Printf("上传音频失败: %v", err)
		return "", fmt.Errorf("生成音频失败，请重试")
	}

	return audioURL, nil
}

// GeneratePreview 合成试听片段，输入文本先截断到100字符
func (s *Synthesizer) GeneratePreview(ctx context.Context, sample string, voiceID string, providerID string) (string, error) {
	if len(sample) > previewChars {
		sample = sample[:previewChars] + "..."
	}
	return s.GenerateAudio(ctx, sample, voiceID, providerID)
}
