package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Source 模型产物来源
// 支持从不同来源读取产物文件（本地目录、HTTP 接口等）
type Source interface {
	// Name 返回来源描述（用于日志）
	Name() string

	// Open 打开名为 name 的产物，调用方负责 Close
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// ErrNotExist 产物不存在
var ErrNotExist = errors.New("artifact does not exist")

// FileSource 本地目录产物来源
type FileSource struct {
	Dir string
}

// NewFileSource 创建本地目录产物来源
func NewFileSource(dir string) *FileSource {
	return &FileSource{Dir: dir}
}

func (s *FileSource) Name() string { return "file:" + s.Dir }

// Open 打开目录下的文件
func (s *FileSource) Open(_ context.Context, name string) (io.ReadCloser, error) {
	if name == "" || strings.Contains(name, "..") {
		return nil, fmt.Errorf("invalid artifact name %q", name)
	}
	f, err := os.Open(filepath.Join(s.Dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", name, ErrNotExist)
		}
		return nil, fmt.Errorf("打开产物文件失败: %w", err)
	}
	return f, nil
}

// HTTPSource HTTP 接口产物来源
//
// 用法：
//
//	src := artifact.NewHTTPSource("http://models.example.com/placement/v3", 10*time.Second)
//	rc, err := src.Open(ctx, "scaler.json") // GET http://models.example.com/placement/v3/scaler.json
type HTTPSource struct {
	BaseURL string
	client  *http.Client
}

// NewHTTPSource 创建 HTTP 接口产物来源
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return NewHTTPSourceWithClient(baseURL, &http.Client{Timeout: timeout})
}

// NewHTTPSourceWithClient 使用自定义 HTTP 客户端创建来源
func NewHTTPSourceWithClient(baseURL string, client *http.Client) *HTTPSource {
	return &HTTPSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

func (s *HTTPSource) Name() string { return "http:" + s.BaseURL }

// Open 下载产物，返回响应体
func (s *HTTPSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"/"+name, nil)
	if err != nil {
		return nil, fmt.Errorf("创建 HTTP 请求失败: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP 请求失败: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, fmt.Errorf("%s: %w", name, ErrNotExist)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("HTTP 请求失败: status=%d, body=%s", resp.StatusCode, string(body))
	}
	return resp.Body, nil
}

// readAll 打开并读取完整产物，保证每条路径都会关闭
func readAll(ctx context.Context, src Source, name string) ([]byte, error) {
	rc, err := src.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("读取产物 %s 失败: %w", name, err)
	}
	return data, nil
}
