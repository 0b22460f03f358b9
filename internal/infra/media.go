package infra

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
)

// MediaCache downloads and caches collection logo images, producing a
// uniform thumbnail for gallery/feed consumers. Purely advisory: trading
// never depends on media availability.
type MediaCache struct {
	basePath string
	client   *http.Client
}

// NewMediaCache creates a cache rooted at dir.
func NewMediaCache(dir string) (*MediaCache, error) {
	if dir == "" {
		dir = filepath.Join("media", "collections")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}

	// Bound connection reuse to prevent leaks on flaky CDN hosts.
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = 100
	transport.MaxConnsPerHost = 10
	transport.IdleConnTimeout = 30 * time.Second

	return &MediaCache{
		basePath: dir,
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: transport,
		},
	}, nil
}

// FetchLogo downloads the logo for a collection contract if not cached,
// resizes it to a 64x64 thumbnail and returns the local path.
func (m *MediaCache) FetchLogo(contract, url string) (string, error) {
	safe := sanitizeContract(contract)
	if safe == "" {
		return "", fmt.Errorf("invalid contract address: %s", contract)
	}

	filePath := filepath.Join(m.basePath, safe+".png")
	if _, err := os.Stat(filePath); err == nil {
		return filePath, nil // Cache hit
	}

	resp, err := m.client.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bad status: %s", resp.Status)
	}

	srcImg, err := imaging.Decode(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	thumb := imaging.Resize(srcImg, 64, 64, imaging.Lanczos)
	if err := imaging.Save(thumb, filePath); err != nil {
		return "", fmt.Errorf("failed to save thumbnail: %w", err)
	}
	return filePath, nil
}

// LogoPath returns the local cache path for a contract's logo.
func (m *MediaCache) LogoPath(contract string) string {
	return filepath.Join(m.basePath, sanitizeContract(contract)+".png")
}

// sanitizeContract strips anything that could traverse the filesystem.
func sanitizeContract(contract string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(contract) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
