// Package fetch downloads a winning artifact to local storage.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"
)

// Download streams the artifact at rawURL into outDir, named from the
// URL's final path segment. Returns the local file path.
func Download(ctx context.Context, client *http.Client, rawURL, outDir string) (string, error) {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse artifact url: %w", err)
	}
	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		return "", fmt.Errorf("artifact url %q has no file name", rawURL)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create out dir: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("build download request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download artifact: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("artifact download returned %s", resp.Status)
	}

	dest := filepath.Join(outDir, name)
	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("create artifact file: %w", err)
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(dest)
		return "", fmt.Errorf("write artifact file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("close artifact file: %w", err)
	}
	return dest, nil
}
