package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

func init() {
	// 加载.env文件
	if err := godotenv.Load(); err != nil {
		log.Printf("警告: 无法加载.env文件: %v", err)
	}
}

// Config 应用配置
type Config struct {
	Server     ServerConfig
	OpenAI     OpenAIConfig
	MinIO      MinIOConfig
	ElevenLabs ElevenLabsConfig
	Database   DatabaseConfig
	Telemetry  TelemetryConfig
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port string
	Env  string
}

// OpenAIConfig AI生成后端配置（兼容OpenAI协议的网关）
type OpenAIConfig struct {
	BaseURL   string
	APIKey    string
	MaxTokens int
}

// MinIOConfig MinIO存储配置
type MinIOConfig struct {
	Endpoint        string
	BucketName      string
	AccessKeyID     string
	SecretAccessKey string
}

// ElevenLabsConfig ElevenLabs语音合成配置
type ElevenLabsConfig struct {
	APIKey       string
	Model        string
	OutputFormat string
}

// DatabaseConfig 遥测持久化数据库配置
type DatabaseConfig struct {
	Path string
}

// TelemetryConfig 遥测队列配置
type TelemetryConfig struct {
	FlushDelaySeconds  int    // 非紧急错误的批量刷新延迟
	MaxPersistAttempts int    // 单条报告持久化的最大尝试次数，超过则丢弃
	OriginURL          string // 错误报告中记录的来源地址
}

// LoadConfig 从环境变量加载配置
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnvOrDefault("APP_PORT", "3001"),
			Env:  getEnvOrDefault("WORKER_ENV", "production"),
		},
		OpenAI: OpenAIConfig{
			BaseURL:   getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			APIKey:    getEnvOrDefault("OPENAI_API_KEY", ""),
			MaxTokens: getEnvIntOrDefault("OPENAI_MAX_TOKENS", 4096),
		},
		MinIO: MinIOConfig{
			Endpoint:        getEnvOrDefault("WEBINAR_BUCKET_URL", "http://localhost:9000"),
			BucketName:      getEnvOrDefault("WEBINAR_BUCKET_NAME", "webinar-studio"),
			AccessKeyID:     getEnvOrDefault("MINIO_ACCESS_KEY", "minioadmin"),
			SecretAccessKey: getEnvOrDefault("MINIO_SECRET_KEY", "minioadmin"),
		},
		ElevenLabs: ElevenLabsConfig{
			APIKey:       getEnvOrDefault("ELEVENLABS_API_KEY", ""),
			Model:        getEnvOrDefault("ELEVENLABS_MODEL", "eleven_turbo_v2"),
			OutputFormat: getEnvOrDefault("ELEVENLABS_FORMAT", "mp3_44100_128"),
		},
		Database: DatabaseConfig{
			Path: getEnvOrDefault("TELEMETRY_DB_PATH", "telemetry.db"),
		},
		Telemetry: TelemetryConfig{
			FlushDelaySeconds:  getEnvIntOrDefault("TELEMETRY_FLUSH_DELAY", 30),
			MaxPersistAttempts: getEnvIntOrDefault("TELEMETRY_MAX_ATTEMPTS", 5),
			OriginURL:          getEnvOrDefault("TELEMETRY_ORIGIN_URL", "http://localhost:3001"),
		},
	}
}

// getEnvOrDefault 获取环境变量或默认值
func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvIntOrDefault 获取环境变量(整数)或默认值
func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}
