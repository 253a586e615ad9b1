package telemetry

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"webinar-studio/internal/models"

	"github.com/google/uuid"
)

// Sink 是遥测数据的持久化能力，由internal/storage实现
type Sink interface {
	CreateErrorLog(ctx context.Context, report *models.ErrorReport) error
	ListErrorLogs(ctx context.Context, since time.Time) ([]models.ErrorReport, error)
	CreateAnalyticsEvent(ctx context.Context, event *models.AnalyticsEvent) error
}

// Options Reporter的可选配置，零值使用默认
type Options struct {
	FlushDelay  time.Duration    // 非紧急错误的批量刷新延迟，默认30秒
	MaxAttempts int              // 单条报告的最大持久化尝试次数，超过即丢弃，默认5
	UserAgent   string           // 记录在报告中的客户端标识
	OriginURL   string           // 记录在报告中的来源地址
	Now         func() time.Time // 时钟注入，测试用
}

// Reporter 错误报告队列：缓冲、批量刷新、失败重入队。
// 显式构造并注入到各调用方，不使用包级全局状态
type Reporter struct {
	mu       sync.Mutex
	pending  []*models.ErrorReport
	flushing bool
	timer    *time.Timer

	sink    Sink
	tracker *Tracker

	flushDelay  time.Duration
	maxAttempts int
	userAgent   string
	originURL   string
	userID      string
	now         func() time.Time
}

// NewReporter 创建一个新的错误报告队列
func NewReporter(sink Sink, tracker *Tracker, opts Options) *Reporter {
	if opts.FlushDelay <= 0 {
		opts.FlushDelay = 30 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "webinar-studio/server"
	}
	return &Reporter{
		sink:        sink,
		tracker:     tracker,
		flushDelay:  opts.FlushDelay,
		maxAttempts: opts.MaxAttempts,
		userAgent:   opts.UserAgent,
		originURL:   opts.OriginURL,
		now:         opts.Now,
	}
}

// ReportError 记录一个错误。critical级别立即触发刷新，
// 其他级别合并到至少30秒后的一次批量刷新中
func (r *Reporter) ReportError(err error, contextMap map[string]interface{}, severity string) {
	r.report(err.Error(), "", contextMap, severity)
}

// ReportPanic 记录一次panic，携带堆栈信息
func (r *Reporter) ReportPanic(message string, stack string, contextMap map[string]interface{}, severity string) {
	r.report(message, stack, contextMap, severity)
}

func (r *Reporter) report(message, stack string, contextMap map[string]interface{}, severity string) {
	if contextMap == nil {
		contextMap = map[string]interface{}{}
	}

	r.mu.Lock()
	rep := &models.ErrorReport{
		ID:        fmt.Sprintf("%d-%s", r.now().UnixMilli(), uuid.NewString()[:8]),
		UserID:    r.userID,
		Message:   message,
		Stack:     stack,
		Context:   contextMap,
		UserAgent: r.userAgent,
		URL:       r.originURL,
		Timestamp: r.now(),
		Severity:  severity,
	}
	r.pending = append(r.pending, rep)
	r.mu.Unlock()

	// 同步转发一条error_occurred统计事件，丢失可接受
	if r.tracker != nil {
		r.tracker.Track("error_occurred", map[string]interface{}{
			"message":  message,
			"severity": severity,
		})
	}

	if severity == models.SeverityCritical {
		// 紧急错误在返回前发起一次刷新
		r.Flush(context.Background())
		return
	}
	r.scheduleFlush()
}

// scheduleFlush 安排一次延迟刷新。已有计划或刷新进行中时为空操作，
// 从而把突发的低级别错误合并成一个批次
func (r *Reporter) scheduleFlush() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil || r.flushing {
		return
	}
	r.timer = time.AfterFunc(r.flushDelay, func() {
		r.mu.Lock()
		r.timer = nil
		r.mu.Unlock()
		r.Flush(context.Background())
	})
}

// Flush 尝试持久化当前所有待处理报告。
// 幂等且不可重入：已有刷新进行中或队列为空时直接返回。
// 先原子地换出当前队列，刷新期间新增的报告进入新队列；
// 单条持久化失败的报告合并回现队列的队首，等待下一次刷新
func (r *Reporter) Flush(ctx context.Context) {
	r.mu.Lock()
	if r.flushing || len(r.pending) == 0 {
		r.mu.Unlock()
		return
	}
	r.flushing = true
	batch := r.pending
	r.pending = nil
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.mu.Unlock()

	var failed []*models.ErrorReport
	for _, rep := range batch {
		if err := r.sink.CreateErrorLog(ctx, rep); err != nil {
			rep.Attempts++
			if rep.Attempts >= r.maxAttempts {
				// 超过最大尝试次数后丢弃，避免队列无限增长
				log.Printf("错误报告 %s 持久化失败 %d 次，放弃: %v", rep.ID, rep.Attempts, err)
				continue
			}
			log.Printf("警告: 持久化错误报告 %s 失败，稍后重试: %v", rep.ID, err)
			failed = append(failed, rep)
		}
	}

	r.mu.Lock()
	if len(failed) > 0 {
		r.pending = append(failed, r.pending...)
	}
	r.flushing = false
	r.mu.Unlock()
}

// SetUserContext 设置当前用户，并回填到所有尚未刷新的报告上。
// 已持久化的报告不受影响
func (r *Reporter) SetUserContext(userID string) {
	r.mu.Lock()
	r.userID = userID
	for _, rep := range r.pending {
		if rep.UserID == "" {
			rep.UserID = userID
		}
	}
	r.mu.Unlock()

	if r.tracker != nil {
		r.tracker.SetUser(userID)
	}
}

// Close 停止已安排的刷新计划
func (r *Reporter) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

// Pending 返回当前待处理报告数量
func (r *Reporter) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// 分类错误报告的便捷方法，各自绑定固定的严重级别

// ReportAuthError 认证错误，high级别
func (r *Reporter) ReportAuthError(err error) {
	r.ReportError(err, map[string]interface{}{"category": "auth"}, models.SeverityHigh)
}

// ReportAPIError API调用错误，medium级别
func (r *Reporter) ReportAPIError(err error, endpoint string) {
	r.ReportError(err, map[string]interface{}{"category": "api", "endpoint": endpoint}, models.SeverityMedium)
}

// ReportGenerationError 内容生成错误，high级别
func (r *Reporter) ReportGenerationError(err error, step string, projectID string) {
	r.ReportError(err, map[string]interface{}{"category": "generation", "step": step, "projectId": projectID}, models.SeverityHigh)
}

// ReportUIError 界面错误，low级别
func (r *Reporter) ReportUIError(err error, component string) {
	r.ReportError(err, map[string]interface{}{"category": "ui", "component": component}, models.SeverityLow)
}

// ReportPaymentError 支付错误，critical级别，总是走立即刷新路径
func (r *Reporter) ReportPaymentError(err error) {
	r.ReportError(err, map[string]interface{}{"category": "payment"}, models.SeverityCritical)
}

// Stats 统计指定时间窗口内已持久化的错误报告。
// 只读聚合，无副作用
func (r *Reporter) Stats(ctx context.Context, window string) (*models.ErrorStats, error) {
	var span time.Duration
	switch window {
	case "hour":
		span = time.Hour
	case "week":
		span = 7 * 24 * time.Hour
	case "month":
		span = 30 * 24 * time.Hour
	default:
		span = 24 * time.Hour
	}

	reports, err := r.sink.ListErrorLogs(ctx, r.now().Add(-span))
	if err != nil {
		return nil, fmt.Errorf("查询错误日志失败: %w", err)
	}

	stats := &models.ErrorStats{
		Total:      len(reports),
		BySeverity: map[string]int{},
		ByCategory: map[string]int{},
	}
	for _, rep := range reports {
		stats.BySeverity[rep.Severity]++

		category := "unknown"
		if c, ok := rep.Context["category"].(string); ok && c != "" {
			category = c
		}
		stats.ByCategory[category]++
	}

	// 最近10条原样返回
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Timestamp.After(reports[j].Timestamp)
	})
	if len(reports) > 10 {
		reports = reports[:10]
	}
	stats.Recent = reports

	return stats, nil
}
