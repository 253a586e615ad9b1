package telemetry

import (
	"fmt"
	"log"
	"runtime"
	"runtime/debug"

	"webinar-studio/internal/models"
)

// GoCapture 在新goroutine中运行fn，panic被捕获并以high级别上报，
// 上下文中带异步标记，与同步路径的捕获区分开
func GoCapture(reporter *Reporter, name string, fn func()) {
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				stack := string(debug.Stack())
				log.Printf("后台任务 %s panic: %v", name, rec)
				reporter.ReportPanic(fmt.Sprintf("%v", rec), stack, map[string]interface{}{
					"async": true,
					"task":  name,
				}, models.SeverityHigh)
			}
		}()
		fn()
	}()
}

// CaptureSync 捕获同步执行中的panic，medium级别，携带来源位置。
// 用于请求处理等同步路径的兜底
func CaptureSync(reporter *Reporter, rec interface{}) {
	stack := string(debug.Stack())
	source := "unknown"
	if _, file, line, ok := runtime.Caller(2); ok {
		source = fmt.Sprintf("%s:%d", file, line)
	}
	reporter.ReportPanic(fmt.Sprintf("%v", rec), stack, map[string]interface{}{
		"source": source,
	}, models.SeverityMedium)
}
