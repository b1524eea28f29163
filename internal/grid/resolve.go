package grid

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	getter "github.com/hashicorp/go-getter"
	"go.uber.org/zap"

	"github.com/Faultbox/chunklod/internal/logger"
)

// Resolve returns a local path for src. Existing local files are returned
// as is; anything else is treated as a go-getter source (http(s)://, s3::,
// gcs::, git::, ...) and downloaded into cacheDir, reusing an earlier
// download of the same source. An empty cacheDir uses the user cache
// directory.
func Resolve(ctx context.Context, src, cacheDir string) (string, error) {
	if _, err := os.Stat(src); err == nil {
		return src, nil
	}

	if cacheDir == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			return "", fmt.Errorf("locating cache directory: %w", err)
		}
		cacheDir = filepath.Join(dir, "chunklod")
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return "", err
	}

	dst := filepath.Join(cacheDir, cacheName(src))
	if _, err := os.Stat(dst); err == nil {
		logger.Debug("using cached input", zap.String("src", src), zap.String("path", dst))
		return dst, nil
	}

	logger.Info("downloading input", zap.String("src", src), zap.String("path", dst))

	// An interrupted download leaves only the .part file behind.
	tmp := dst + ".part"
	if err := getter.GetFile(tmp, src, getter.WithContext(ctx)); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("fetching %s: %w", src, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// cacheName derives a stable file name for src, keeping its extension.
func cacheName(src string) string {
	sum := sha256.Sum256([]byte(src))
	name := hex.EncodeToString(sum[:8])

	raw := src
	if i := strings.Index(raw, "::"); i >= 0 {
		raw = raw[i+2:]
	}
	if u, err := url.Parse(raw); err == nil {
		raw = u.Path
	}
	if ext := path.Ext(raw); ext != "" && len(ext) <= 5 {
		name += strings.ToLower(ext)
	}
	return name
}
