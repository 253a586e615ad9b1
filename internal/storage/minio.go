package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/url"
	"time"

	"webinar-studio/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioClient 是MinIO存储客户端的封装，保存音频产物和各阶段的中间结果
type MinioClient struct {
	client     *minio.Client
	bucketName string
}

// NewMinioClient 创建一个新的MinIO客户端
func NewMinioClient(cfg *config.MinIOConfig) (*MinioClient, error) {
	// 解析endpoint
	u, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("解析MinIO endpoint失败: %w", err)
	}

	secure := u.Scheme == "https"
	endpoint := u.Host
	if endpoint == "" {
		endpoint = "localhost:9000"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("创建MinIO客户端失败: %w", err)
	}

	// 确保bucket存在
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("检查bucket是否存在失败: %w", err)
	}
	if !exists {
		log.Printf("Bucket %s 不存在，正在创建...", cfg.BucketName)
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("创建bucket失败: %w", err)
		}
	}

	return &MinioClient{
		client:     client,
		bucketName: cfg.BucketName,
	}, nil
}

// UploadFile 上传文件到MinIO，返回带7天有效期的预签名URL
func (c *MinioClient) UploadFile(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	reader := bytes.NewReader(data)

	info, err := c.client.PutObject(ctx, c.bucketName, objectName, reader, int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("上传文件失败: %w", err)
	}

	log.Printf("文件 %s 上传成功，大小: %d", objectName, info.Size)

	presignedURL, err := c.GetPresignedURL(ctx, objectName, 7*24*time.Hour)
	if err != nil {
		log.Printf("生成预签名URL失败: %v", err)
		// 返回相对路径
		return fmt.Sprintf("/%s/%s", c.bucketName, objectName), nil
	}

	return presignedURL, nil
}

// DownloadFile 从MinIO下载文件
func (c *MinioClient) DownloadFile(ctx context.Context, objectName string) ([]byte, error) {
	obj, err := c.client.GetObject(ctx, c.bucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("获取对象失败: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("读取对象数据失败: %w", err)
	}

	return data, nil
}

// GetPresignedURL 生成预签名URL
func (c *MinioClient) GetPresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	presignedURL, err := c.client.PresignedGetObject(ctx, c.bucketName, objectName, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("生成预签名URL失败: %w", err)
	}
	return presignedURL.String(), nil
}

// SaveJSON 序列化对象并上传，用于各生成阶段之间的中间结果落盘，
// 后续阶段失败时不丢弃已完成的工作
func (c *MinioClient) SaveJSON(ctx context.Context, objectName string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("序列化内容失败: %w", err)
	}
	if _, err := c.UploadFile(ctx, objectName, data, "application/json"); err != nil {
		return err
	}
	return nil
}

// LoadJSON 下载对象并反序列化
func (c *MinioClient) LoadJSON(ctx context.Context, objectName string, v interface{}) error {
	data, err := c.DownloadFile(ctx, objectName)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("解析内容失败: %w", err)
	}
	return nil
}

// ObjectExists 检查对象是否存在
func (c *MinioClient) ObjectExists(ctx context.Context, objectName string) (bool, error) {
	obj, err := c.client.GetObject(ctx, c.bucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return false, fmt.Errorf("获取对象失败: %w", err)
	}

	stat, err := obj.Stat()
	if err != nil {
		// 对象不存在
		return false, nil
	}
	return stat.Size > 0, nil
}
