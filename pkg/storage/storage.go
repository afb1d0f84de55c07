// Package storage 图片等二进制对象的存储后端
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"studyhub/config"

	"github.com/google/uuid"
)

// ErrInvalidKey 对象键非法（为空、绝对路径或包含 ..）
var ErrInvalidKey = errors.New("invalid object key")

// Object 上传完成的对象
type Object struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// Storage 对象存储
type Storage interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string, size int64) (*Object, error)
	Delete(ctx context.Context, key string) error
}

// New 根据配置创建存储后端
func New(cfg config.StorageConfig) (Storage, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocal(cfg.Local.Dir, cfg.Local.URLPrefix)
	case "s3":
		return NewS3(cfg.S3)
	default:
		return nil, fmt.Errorf("不支持的存储后端: %s", cfg.Backend)
	}
}

// GenerateKey 生成唯一对象键：prefix/yyyy/mm/dd/<uuid><ext>
// 只保留原文件名的扩展名
func GenerateKey(prefix, filename string) string {
	now := time.Now()
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(filename, "\\", "/"))))
	if len(ext) > 10 {
		ext = ""
	}
	return fmt.Sprintf("%s/%d/%02d/%02d/%s%s",
		strings.Trim(prefix, "/"), now.Year(), now.Month(), now.Day(),
		uuid.NewString(), ext)
}

// cleanKey 规范化对象键，拒绝越出根目录的键
func cleanKey(key string) (string, error) {
	key = strings.ReplaceAll(key, "\\", "/")
	if key == "" || strings.HasPrefix(key, "/") {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}
