package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"webinar-studio/config"
	"webinar-studio/internal/api"

	"github.com/robfig/cron/v3"
)

func main() {
	// 设置日志格式
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("启动 Webinar Studio 服务")

	// 加载配置
	cfg := config.LoadConfig()

	// 创建API服务器
	server, err := api.NewServer(cfg)
	if err != nil {
		log.Fatalf("创建服务器失败: %v", err)
	}

	// 创建定时任务：每分钟兜底刷新一次遥测队列，
	// 防止低级别错误因进程长时间空闲而滞留在内存里
	c := cron.New()
	_, err = c.AddFunc("* * * * *", func() {
		server.Reporter().Flush(context.Background())
	})
	if err != nil {
		log.Printf("添加定时任务失败: %v", err)
	} else {
		c.Start()
		defer c.Stop()
		log.Println("定时任务已启动")
	}

	// 创建通道接收系统信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// 启动服务器（非阻塞）
	go func() {
		log.Printf("服务器正在监听端口 %s", cfg.Server.Port)
		if err := server.Run(); err != nil {
			log.Fatalf("服务器运行失败: %v", err)
		}
	}()

	// 等待退出信号
	<-quit
	log.Println("收到退出信号，正在关闭服务")

	// 退出前尽力刷掉剩余的错误报告
	server.Reporter().Flush(context.Background())
	server.Reporter().Close()
}
