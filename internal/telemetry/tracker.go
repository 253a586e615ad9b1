package telemetry

import (
	"context"
	"log"
	"sync"
	"time"

	"webinar-studio/internal/models"

	"github.com/google/uuid"
)

// Tracker 使用统计的直达通道：事件不入队，直接持久化，
// 临时失败只记日志，接受丢失
type Tracker struct {
	mu        sync.Mutex
	sink      Sink
	sessionID string // 进程生命周期内固定
	userID    string
	originURL string
	now       func() time.Time
}

// NewTracker 创建一个新的统计跟踪器
func NewTracker(sink Sink, originURL string) *Tracker {
	return &Tracker{
		sink:      sink,
		sessionID: uuid.NewString(),
		originURL: originURL,
		now:       time.Now,
	}
}

// SetUser 设置当前用户，之后的事件都会带上该用户ID。
// 不回溯修改已发送的事件
func (t *Tracker) SetUser(userID string) {
	t.mu.Lock()
	t.userID = userID
	t.mu.Unlock()
}

// Track 记录一条事件，合并调用方数据与时间戳/来源/会话信息
func (t *Tracker) Track(eventType string, data map[string]interface{}) {
	t.mu.Lock()
	userID := t.userID
	sessionID := t.sessionID
	t.mu.Unlock()

	eventData := map[string]interface{}{
		"timestamp": t.now().Format(time.RFC3339),
		"url":       t.originURL,
	}
	for k, v := range data {
		eventData[k] = v
	}

	event := &models.AnalyticsEvent{
		EventType: eventType,
		EventData: eventData,
		UserID:    userID,
		SessionID: sessionID,
	}

	if err := t.sink.CreateAnalyticsEvent(context.Background(), event); err != nil {
		// 统计事件的重要性低于错误报告，丢失可接受
		log.Printf("记录统计事件 %s 失败: %v", eventType, err)
	}
}

// 固定事件类型的便捷方法

// TrackWebinarCreated 研讨会创建完成
func (t *Tracker) TrackWebinarCreated(topic string, provider string) {
	t.Track("webinar_created", map[string]interface{}{"topic": topic, "provider": provider})
}

// TrackGenerationCompleted 某个生成阶段完成
func (t *Tracker) TrackGenerationCompleted(step string, provider string, tokens int) {
	t.Track("generation_completed", map[string]interface{}{"step": step, "provider": provider, "tokens": tokens})
}

// TrackAudioGenerated 音频合成完成
func (t *Tracker) TrackAudioGenerated(voiceID string, durationSeconds int) {
	t.Track("audio_generated", map[string]interface{}{"voice": voiceID, "durationSeconds": durationSeconds})
}
