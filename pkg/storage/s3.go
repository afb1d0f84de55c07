package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"studyhub/config"
	"studyhub/pkg/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// S3 兼容 S3/R2/MinIO 的对象存储
type S3 struct {
	client    *s3.Client
	bucket    string
	publicURL string // 对外访问地址前缀，例如 CDN
	basePath  string // 所有对象的键前缀
}

// NewS3 创建S3存储客户端
func NewS3(cfg config.S3Bucket) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket未配置")
	}

	client := s3.New(s3.Options{}, func(o *s3.Options) {
		o.Region = cfg.Region
		o.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	logger.Info("S3存储已初始化",
		zap.String("bucket", cfg.Bucket),
		zap.String("endpoint", cfg.Endpoint),
	)

	return &S3{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		basePath:  cfg.BasePath,
	}, nil
}

func (s *S3) Put(ctx context.Context, key string, body io.Reader, contentType string, size int64) (*Object, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	fullKey := s.basePath + cleaned

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(fullKey),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return nil, fmt.Errorf("s3 upload failed: %w", err)
	}

	return &Object{
		Key:         fullKey,
		URL:         s.objectURL(fullKey),
		ContentType: contentType,
		Size:        size,
	}, nil
}

// Delete 删除对象，key 为 Put 返回的完整键
func (s *S3) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete failed: %w", err)
	}
	return nil
}

func (s *S3) objectURL(key string) string {
	if s.publicURL != "" {
		return s.publicURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key)
}
