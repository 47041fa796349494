package utils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

var downloadClient = &http.Client{Timeout: 2 * time.Minute}

// DownloadFile 下载文件到指定目录，返回本地路径和大小
func DownloadFile(ctx context.Context, url, dir string) (string, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", 0, fmt.Errorf("下载文件失败: %w", err)
	}
	resp, err := downloadClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("下载文件失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("下载文件失败，状态码: %d", resp.StatusCode)
	}

	out, err := os.CreateTemp(dir, "asset-*"+FileExt(url))
	if err != nil {
		return "", 0, fmt.Errorf("创建文件失败: %w", err)
	}
	defer out.Close()

	n, err := io.Copy(out, resp.Body)
	if err != nil {
		os.Remove(out.Name())
		return "", 0, fmt.Errorf("保存文件失败: %w", err)
	}
	return out.Name(), n, nil
}

// FileExt returns the lower-case extension of a URL or path, ignoring any
// query string.
func FileExt(u string) string {
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	if strings.Contains(u, "://") {
		return strings.ToLower(path.Ext(u))
	}
	return strings.ToLower(filepath.Ext(u))
}
