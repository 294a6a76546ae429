package imageio

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// IsURL checks if the given string is a URL.
func IsURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// DownloadToTemp downloads a remote image to a temporary file and returns
// its path. The caller owns cleanup of the file.
func DownloadToTemp(url string) (string, error) {
	client := &http.Client{Timeout: 60 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return "", fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bad status: %s", resp.Status)
	}
	if resp.ContentLength > MaxFileBytes {
		return "", fmt.Errorf("file too large (max %d bytes)", int64(MaxFileBytes))
	}

	name := fmt.Sprintf("screencheck_download_%d%s", time.Now().UnixNano(), filepath.Ext(url))
	tempPath := filepath.Join(os.TempDir(), name)

	out, err := os.Create(tempPath)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, io.LimitReader(resp.Body, MaxFileBytes+1)); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to save downloaded file: %w", err)
	}
	return tempPath, nil
}
