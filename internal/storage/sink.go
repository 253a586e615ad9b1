package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"webinar-studio/config"
	"webinar-studio/internal/models"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrorLogRecord 错误日志的数据库记录
type ErrorLogRecord struct {
	ID        string         `gorm:"primaryKey"`
	UserID    string         `gorm:"index"`
	Message   string         `gorm:"type:text"`
	Stack     string         `gorm:"type:text"`
	Context   datatypes.JSON `gorm:"type:json"`
	UserAgent string
	URL       string
	Severity  string    `gorm:"index"`
	CreatedAt time.Time `gorm:"index"`
}

// AnalyticsEventRecord 统计事件的数据库记录
type AnalyticsEventRecord struct {
	ID        uint           `gorm:"primaryKey;autoIncrement"`
	EventType string         `gorm:"index"`
	EventData datatypes.JSON `gorm:"type:json"`
	UserID    string         `gorm:"index"`
	SessionID string         `gorm:"index"`
	CreatedAt time.Time      `gorm:"index"`
}

// Sink 遥测数据的SQLite持久化实现
type Sink struct {
	db *gorm.DB
}

// NewSink 打开遥测数据库并完成建表
func NewSink(cfg *config.DatabaseConfig) (*Sink, error) {
	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("打开遥测数据库失败: %w", err)
	}

	if err := db.AutoMigrate(&ErrorLogRecord{}, &AnalyticsEventRecord{}); err != nil {
		return nil, fmt.Errorf("迁移遥测表失败: %w", err)
	}

	return &Sink{db: db}, nil
}

// CreateErrorLog 持久化一条错误报告
func (s *Sink) CreateErrorLog(ctx context.Context, report *models.ErrorReport) error {
	contextJSON, err := json.Marshal(report.Context)
	if err != nil {
		return fmt.Errorf("序列化错误上下文失败: %w", err)
	}

	record := ErrorLogRecord{
		ID:        report.ID,
		UserID:    report.UserID,
		Message:   report.Message,
		Stack:     report.Stack,
		Context:   datatypes.JSON(contextJSON),
		UserAgent: report.UserAgent,
		URL:       report.URL,
		Severity:  report.Severity,
		CreatedAt: report.Timestamp,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("写入错误日志失败: %w", err)
	}
	return nil
}

// ListErrorLogs 查询创建时间不早于since的错误报告
func (s *Sink) ListErrorLogs(ctx context.Context, since time.Time) ([]models.ErrorReport, error) {
	var records []ErrorLogRecord
	if err := s.db.WithContext(ctx).
		Where("created_at >= ?", since).
		Order("created_at desc").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("查询错误日志失败: %w", err)
	}

	reports := make([]models.ErrorReport, 0, len(records))
	for _, rec := range records {
		var contextMap map[string]interface{}
		if len(rec.Context) > 0 {
			if err := json.Unmarshal(rec.Context, &contextMap); err != nil {
				contextMap = nil
			}
		}
		reports = append(reports, models.ErrorReport{
			ID:        rec.ID,
			UserID:    rec.UserID,
			Message:   rec.Message,
			Stack:     rec.Stack,
			Context:   contextMap,
			UserAgent: rec.UserAgent,
			URL:       rec.URL,
			Timestamp: rec.CreatedAt,
			Severity:  rec.Severity,
		})
	}
	return reports, nil
}

// CreateAnalyticsEvent 持久化一条统计事件
func (s *Sink) CreateAnalyticsEvent(ctx context.Context, event *models.AnalyticsEvent) error {
	dataJSON, err := json.Marshal(event.EventData)
	if err != nil {
		return fmt.Errorf("序列化事件数据失败: %w", err)
	}

	record := AnalyticsEventRecord{
		EventType: event.EventType,
		EventData: datatypes.JSON(dataJSON),
		UserID:    event.UserID,
		SessionID: event.SessionID,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("写入统计事件失败: %w", err)
	}
	return nil
}
