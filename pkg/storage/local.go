package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Local 本地文件系统存储，文件通过 urlPrefix 对外提供
type Local struct {
	dir       string
	urlPrefix string
}

// NewLocal 创建本地存储，目录不存在时自动创建
func NewLocal(dir, urlPrefix string) (*Local, error) {
	if dir == "" {
		dir = "uploads"
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("解析存储目录失败: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("创建存储目录失败: %w", err)
	}
	return &Local{dir: abs, urlPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

// Dir 存储根目录
func (l *Local) Dir() string { return l.dir }

// resolve 将对象键转换为文件路径，并确保路径在根目录内
func (l *Local) resolve(key string) (string, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	full := filepath.Join(l.dir, filepath.FromSlash(cleaned))
	if !strings.HasPrefix(full, l.dir+string(filepath.Separator)) {
		return "", ErrInvalidKey
	}
	return full, nil
}

func (l *Local) Put(ctx context.Context, key string, body io.Reader, contentType string, size int64) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := l.resolve(key)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return nil, fmt.Errorf("创建目录失败: %w", err)
	}

	out, err := os.Create(full)
	if err != nil {
		return nil, fmt.Errorf("创建文件失败: %w", err)
	}
	written, err := io.Copy(out, body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(full)
		return nil, fmt.Errorf("写入文件失败: %w", err)
	}

	cleaned, _ := cleanKey(key)
	return &Object{
		Key:         cleaned,
		URL:         l.urlPrefix + "/" + cleaned,
		ContentType: contentType,
		Size:        written,
	}, nil
}

// Delete 删除对象，对象不存在时不报错
func (l *Local) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := l.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("删除文件失败: %w", err)
	}
	return nil
}
