package secrets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileProvider reads secrets mounted as files, the way Kubernetes projects
// a Secret into a pod. A directory path yields one key per file; a file path
// yields its content under "value".
type FileProvider struct {
	base string
}

// NewFileProvider creates a provider rooted at base
func NewFileProvider(base string) (*FileProvider, error) {
	info, err := os.Stat(base)
	if err != nil {
		return nil, fmt.Errorf("secrets: mount %s not accessible: %w", base, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("secrets: mount %s is not a directory", base)
	}
	return &FileProvider{base: base}, nil
}

// Name implements Provider
func (p *FileProvider) Name() string { return "file" }

// Fetch implements Provider
func (p *FileProvider) Fetch(ctx context.Context, path string) (map[string]string, error) {
	target := filepath.Join(p.base, filepath.Clean("/"+path))

	info, err := os.Stat(target)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		content, err := os.ReadFile(target)
		if err != nil {
			return nil, err
		}
		return map[string]string{"value": strings.TrimSpace(string(content))}, nil
	}

	entries, err := os.ReadDir(target)
	if err != nil {
		return nil, err
	}
	data := make(map[string]string, len(entries))
	for _, e := range entries {
		// projected secrets keep their payload in ..data symlinks
		if e.IsDir() || strings.HasPrefix(e.Name(), "..") {
			continue
		}
		content, err := os.ReadFile(filepath.Join(target, e.Name()))
		if err != nil {
			return nil, err
		}
		data[e.Name()] = strings.TrimSpace(string(content))
	}
	return data, nil
}
