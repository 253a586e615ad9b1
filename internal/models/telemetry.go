package models

import "time"

// 错误严重级别
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// ErrorReport 表示一条待持久化的错误报告
type ErrorReport struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"userId,omitempty"` // 登录后可回填
	Message   string                 `json:"message"`
	Stack     string                 `json:"stack,omitempty"`
	Context   map[string]interface{} `json:"context"`
	UserAgent string                 `json:"userAgent"`
	URL       string                 `json:"url"`
	Timestamp time.Time              `json:"timestamp"`
	Severity  string                 `json:"severity"`

	// Attempts 记录持久化失败的次数，仅在进程内使用，不落盘
	Attempts int `json:"-"`
}

// AnalyticsEvent 表示一条使用统计事件
type AnalyticsEvent struct {
	EventType string                 `json:"eventType"`
	EventData map[string]interface{} `json:"eventData"`
	UserID    string                 `json:"userId,omitempty"`
	SessionID string                 `json:"sessionId"`
}

// ErrorStats 表示一段时间窗口内的错误统计
type ErrorStats struct {
	Total      int            `json:"total"`
	BySeverity map[string]int `json:"bySeverity"`
	ByCategory map[string]int `json:"byCategory"`
	Recent     []ErrorReport  `json:"recent"` // 最近10条
}
