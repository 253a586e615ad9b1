package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"webinar-studio/config"
	"webinar-studio/internal/ai"
	"webinar-studio/internal/models"
	"webinar-studio/internal/pipeline"
	"webinar-studio/internal/providers"
	"webinar-studio/internal/storage"
	"webinar-studio/internal/telemetry"
	"webinar-studio/internal/tts"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Server 是API服务器结构
type Server struct {
	config        *config.Config
	router        *gin.Engine
	pipeline      *pipeline.Pipeline
	synthesizer   *tts.Synthesizer
	minioClient   *storage.MinioClient
	reporter      *telemetry.Reporter
	tracker       *telemetry.Tracker
	isProcessing  bool
	lastProcessed time.Time
}

// NewServer 创建一个新的API服务器
func NewServer(cfg *config.Config) (*Server, error) {
	// 创建AI客户端
	aiClient := ai.NewClient(&cfg.OpenAI)

	// 创建MinIO客户端
	minioClient, err := storage.NewMinioClient(&cfg.MinIO)
	if err != nil {
		return nil, err
	}

	// 创建遥测持久化
	sink, err := storage.NewSink(&cfg.Database)
	if err != nil {
		return nil, err
	}
	tracker := telemetry.NewTracker(sink, cfg.Telemetry.OriginURL)
	reporter := telemetry.NewReporter(sink, tracker, telemetry.Options{
		FlushDelay:  time.Duration(cfg.Telemetry.FlushDelaySeconds) * time.Second,
		MaxAttempts: cfg.Telemetry.MaxPersistAttempts,
		OriginURL:   cfg.Telemetry.OriginURL,
	})

	// 创建语音合成服务
	ttsService, err := tts.Factory(cfg)
	if err != nil {
		return nil, err
	}
	synthesizer := tts.NewSynthesizer(ttsService, minioClient)

	// 创建Gin路由
	router := gin.Default()

	// 启用CORS
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// 创建服务器
	server := &Server{
		config:      cfg,
		router:      router,
		pipeline:    pipeline.NewPipeline(aiClient),
		synthesizer: synthesizer,
		minioClient: minioClient,
		reporter:    reporter,
		tracker:     tracker,
	}

	// panic兜底，同步路径的未捕获错误进入遥测
	router.Use(server.recoveryMiddleware())

	// 注册路由
	server.registerRoutes()

	return server, nil
}

// registerRoutes 注册API路由
func (s *Server) registerRoutes() {
	// 健康检查
	s.router.GET("/health", s.healthHandler)

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		// 完整生成流程（后台执行，分阶段落盘）
		v1.POST("/webinars/generate", s.generateHandler)

		// 单独调用各生成阶段
		v1.POST("/webinars/enhance", s.enhanceHandler)
		v1.POST("/webinars/outline", s.outlineHandler)
		v1.POST("/webinars/slides", s.slidesHandler)
		v1.POST("/webinars/script", s.scriptHandler)

		// 获取生成结果与处理状态
		v1.GET("/webinars", s.getWebinarHandler)
		v1.GET("/status", s.getStatusHandler)

		// 语音合成
		v1.POST("/tts", s.ttsHandler)
		v1.POST("/tts/preview", s.ttsPreviewHandler)

		// 目录与成本
		v1.GET("/voices", s.voicesHandler)
		v1.GET("/providers", s.providersHandler)
		v1.GET("/cost", s.costHandler)

		// 遥测
		v1.GET("/errors/stats", s.errorStatsHandler)
		v1.POST("/events", s.eventsHandler)
		v1.POST("/user", s.userContextHandler)
	}

	// 提供音频文件
	s.router.GET("/audio/:filename", s.serveAudioHandler)
}

// Run 启动API服务器
func (s *Server) Run() error {
	return s.router.Run(":" + s.config.Server.Port)
}

// Reporter 暴露遥测队列，供外部定时刷新
func (s *Server) Reporter() *telemetry.Reporter {
	return s.reporter
}

// recoveryMiddleware 捕获处理请求时的panic并上报遥测
func (s *Server) recoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				telemetry.CaptureSync(s.reporter, rec)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "服务器内部错误",
				})
			}
		}()
		c.Next()
	}
}

// healthHandler 健康检查处理程序
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// generateRequest 完整生成流程的请求参数
type generateRequest struct {
	Topic          string `json:"topic" binding:"required"`
	Audience       string `json:"audience" binding:"required"`
	Duration       int    `json:"duration"`
	Description    string `json:"description"`
	Provider       string `json:"provider"`
	TemplateStyle  string `json:"templateStyle"`
	VoiceID        string `json:"voiceId"`
	SpeechProvider string `json:"speechProvider"`
}

// generateHandler 启动完整的研讨会生成流程
func (s *Server) generateHandler(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "无效的请求参数",
		})
		return
	}

	if req.Duration <= 0 {
		req.Duration = 60
	}
	if req.Provider == "" {
		req.Provider = "openai"
	}
	if req.TemplateStyle == "" {
		req.TemplateStyle = "professional"
	}

	// 生成运行ID
	projectID := uuid.NewString()

	// 标记为正在处理
	s.isProcessing = true

	// 在后台处理，panic经遥测上报
	telemetry.GoCapture(s.reporter, "generate-webinar", func() {
		defer func() {
			s.isProcessing = false
			s.lastProcessed = time.Now()
		}()
		s.processWebinar(projectID, req)
	})

	c.JSON(http.StatusOK, gin.H{
		"projectId": projectID,
		"message":   "处理已开始",
	})
}

// processWebinar 研讨会生成的核心流程。
// 每个阶段完成后立即落盘，后续阶段失败不丢弃已完成的工作
func (s *Server) processWebinar(projectID string, req generateRequest) {
	log.Printf("开始生成研讨会 %s，主题: %s", projectID, req.Topic)

	ctx := context.Background()
	contentKey := s.contentKey(projectID)

	content := models.WebinarContent{
		Topic:    req.Topic,
		Audience: req.Audience,
	}

	// 步骤1: 润色描述（失败自动降级为原始描述）
	content.Description = s.pipeline.EnhanceDescription(ctx, req.Description, req.Topic, req.Audience, req.Provider)
	content.TokensUsed += pipeline.Cost(req.Provider, providers.OpContent)
	if err := s.minioClient.SaveJSON(ctx, contentKey, &content); err != nil {
		log.Printf("保存中间结果失败: %v", err)
	}

	// 步骤2: 生成大纲
	outline, err := s.pipeline.GenerateOutline(ctx, req.Topic, req.Audience, req.Duration, content.Description, req.Provider)
	if err != nil {
		s.reporter.ReportGenerationError(err, "outline", projectID)
		return
	}
	content.Outline = outline
	content.TokensUsed += pipeline.Cost(req.Provider, providers.OpContent)
	if err := s.minioClient.SaveJSON(ctx, contentKey, &content); err != nil {
		log.Printf("保存中间结果失败: %v", err)
	}
	s.tracker.TrackGenerationCompleted("outline", req.Provider, content.TokensUsed)

	// 步骤3: 生成幻灯片
	slides, err := s.pipeline.GenerateSlides(ctx, outline, req.TemplateStyle, req.Provider)
	if err != nil {
		s.reporter.ReportGenerationError(err, "slides", projectID)
		return
	}
	content.Slides = slides
	content.TokensUsed += pipeline.Cost(req.Provider, providers.OpSlides)
	if err := s.minioClient.SaveJSON(ctx, contentKey, &content); err != nil {
		log.Printf("保存中间结果失败: %v", err)
	}
	s.tracker.TrackGenerationCompleted("slides", req.Provider, content.TokensUsed)

	// 步骤4: 生成旁白脚本
	script, err := s.pipeline.GenerateScript(ctx, slides)
	if err != nil {
		s.reporter.ReportGenerationError(err, "script", projectID)
		return
	}
	content.Script = script
	content.TokensUsed += pipeline.Cost(req.Provider, providers.OpContent)
	if err := s.minioClient.SaveJSON(ctx, contentKey, &content); err != nil {
		log.Printf("保存中间结果失败: %v", err)
	}
	s.tracker.TrackGenerationCompleted("script", req.Provider, content.TokensUsed)

	// 步骤5: 合成音频（未指定声音时跳过）
	if req.VoiceID != "" {
		audioURL, err := s.synthesizer.GenerateAudio(ctx, script, req.VoiceID, req.SpeechProvider)
		if err != nil {
			s.reporter.ReportGenerationError(err, "audio", projectID)
			return
		}
		content.AudioURL = audioURL
		content.TokensUsed += pipeline.Cost(req.SpeechProvider, providers.OpVoice)
		if err := s.minioClient.SaveJSON(ctx, contentKey, &content); err != nil {
			log.Printf("保存中间结果失败: %v", err)
		}
		s.tracker.TrackAudioGenerated(req.VoiceID, tts.EstimateDuration(script))
	}

	s.tracker.TrackWebinarCreated(req.Topic, req.Provider)
	log.Printf("研讨会 %s 生成完成，消耗tokens: %d", projectID, content.TokensUsed)
}

// contentKey 构建生成结果的对象键名
func (s *Server) contentKey(projectID string) string {
	return fmt.Sprintf("content:%s:webinar:%s", s.config.Server.Env, projectID)
}

// enhanceHandler 单独调用描述润色
func (s *Server) enhanceHandler(c *gin.Context) {
	var req struct {
		Description string `json:"description" binding:"required"`
		Topic       string `json:"topic"`
		Audience    string `json:"audience"`
		Provider    string `json:"provider"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求参数"})
		return
	}

	improved := s.pipeline.EnhanceDescription(c.Request.Context(), req.Description, req.Topic, req.Audience, req.Provider)
	c.JSON(http.StatusOK, gin.H{
		"description": improved,
		"tokensUsed":  pipeline.Cost(req.Provider, providers.OpContent),
	})
}

// outlineHandler 单独调用大纲生成
func (s *Server) outlineHandler(c *gin.Context) {
	var req struct {
		Topic       string `json:"topic" binding:"required"`
		Audience    string `json:"audience" binding:"required"`
		Duration    int    `json:"duration"`
		Description string `json:"description"`
		Provider    string `json:"provider"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求参数"})
		return
	}
	if req.Duration <= 0 {
		req.Duration = 60
	}

	outline, err := s.pipeline.GenerateOutline(c.Request.Context(), req.Topic, req.Audience, req.Duration, req.Description, req.Provider)
	if err != nil {
		s.reporter.ReportGenerationError(err, "outline", "")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"outline":    outline,
		"tokensUsed": pipeline.Cost(req.Provider, providers.OpContent),
	})
}

// slidesHandler 单独调用幻灯片生成
func (s *Server) slidesHandler(c *gin.Context) {
	var req struct {
		Outline       *models.Outline `json:"outline" binding:"required"`
		TemplateStyle string          `json:"templateStyle"`
		Provider      string          `json:"provider"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求参数"})
		return
	}
	if req.TemplateStyle == "" {
		req.TemplateStyle = "professional"
	}

	slides, err := s.pipeline.GenerateSlides(c.Request.Context(), req.Outline, req.TemplateStyle, req.Provider)
	if err != nil {
		s.reporter.ReportGenerationError(err, "slides", "")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"slides":     slides,
		"tokensUsed": pipeline.Cost(req.Provider, providers.OpSlides),
	})
}

// scriptHandler 单独调用脚本生成
func (s *Server) scriptHandler(c *gin.Context) {
	var req struct {
		Slides []models.Slide `json:"slides" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求参数"})
		return
	}

	script, err := s.pipeline.GenerateScript(c.Request.Context(), req.Slides)
	if err != nil {
		s.reporter.ReportGenerationError(err, "script", "")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"script":            script,
		"estimatedDuration": tts.EstimateDuration(script),
	})
}

// getWebinarHandler 获取某次生成运行的结果
func (s *Server) getWebinarHandler(c *gin.Context) {
	projectID := c.Query("id")
	if projectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少id参数"})
		return
	}

	var content models.WebinarContent
	if err := s.minioClient.LoadJSON(c.Request.Context(), s.contentKey(projectID), &content); err != nil {
		log.Printf("获取生成结果失败: %v", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "生成结果不存在"})
		return
	}

	c.JSON(http.StatusOK, content)
}

// getStatusHandler 获取处理状态
func (s *Server) getStatusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"isProcessing":  s.isProcessing,
		"lastProcessed": s.lastProcessed.Format(time.RFC3339),
	})
}

// ttsHandler 合成完整音频
func (s *Server) ttsHandler(c *gin.Context) {
	var req struct {
		Script   string `json:"script" binding:"required"`
		VoiceID  string `json:"voiceId" binding:"required"`
		Provider string `json:"provider"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求参数"})
		return
	}

	audioURL, err := s.synthesizer.GenerateAudio(c.Request.Context(), req.Script, req.VoiceID, req.Provider)
	if err != nil {
		s.reporter.ReportGenerationError(err, "audio", "")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"audioUrl":          audioURL,
		"estimatedDuration": tts.EstimateDuration(req.Script),
		"tokensUsed":        pipeline.Cost(req.Provider, providers.OpVoice),
	})
}

// ttsPreviewHandler 合成试听片段
func (s *Server) ttsPreviewHandler(c *gin.Context) {
	var req struct {
		Text     string `json:"text" binding:"required"`
		VoiceID  string `json:"voiceId" binding:"required"`
		Provider string `json:"provider"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求参数"})
		return
	}

	audioURL, err := s.synthesizer.GeneratePreview(c.Request.Context(), req.Text, req.VoiceID, req.Provider)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"audioUrl": audioURL})
}

// voicesHandler 返回语音目录
func (s *Server) voicesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"voices": providers.Voices})
}

// providersHandler 返回服务商目录
func (s *Server) providersHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"content": providers.ContentProviders,
		"speech":  providers.SpeechProviders,
	})
}

// costHandler 查询token成本
func (s *Server) costHandler(c *gin.Context) {
	provider := c.Query("provider")
	operation := c.DefaultQuery("operation", providers.OpContent)
	c.JSON(http.StatusOK, gin.H{
		"provider":  provider,
		"operation": operation,
		"tokens":    providers.TokenCost(provider, operation),
	})
}

// errorStatsHandler 查询错误统计
func (s *Server) errorStatsHandler(c *gin.Context) {
	window := c.DefaultQuery("window", "day")
	stats, err := s.reporter.Stats(c.Request.Context(), window)
	if err != nil {
		log.Printf("查询错误统计失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询错误统计失败"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// eventsHandler 记录一条统计事件
func (s *Server) eventsHandler(c *gin.Context) {
	var req struct {
		EventType string                 `json:"eventType" binding:"required"`
		Data      map[string]interface{} `json:"data"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求参数"})
		return
	}

	s.tracker.Track(req.EventType, req.Data)
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

// userContextHandler 设置当前用户，回填到待处理的错误报告
func (s *Server) userContextHandler(c *gin.Context) {
	var req struct {
		UserID string `json:"userId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求参数"})
		return
	}

	s.reporter.SetUserContext(req.UserID)
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

// serveAudioHandler 提供音频文件
func (s *Server) serveAudioHandler(c *gin.Context) {
	filename := c.Param("filename")
	if filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "文件名不能为空"})
		return
	}

	// 统一的路径方式：audio/文件名
	audioPath := "audio/" + filename
	data, err := s.minioClient.DownloadFile(c.Request.Context(), audioPath)
	if err != nil {
		log.Printf("获取音频文件失败: %v", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "文件不存在"})
		return
	}

	c.Writer.Header().Set("Content-Type", "audio/mpeg")
	c.Writer.Header().Set("Content-Disposition", "inline")
	c.Writer.Write(data)
}
