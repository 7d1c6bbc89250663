package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// fileStore writes images below a local directory served at baseURL.
type fileStore struct {
	dir     string
	baseURL string
	logger  zerolog.Logger
}

// NewFileStore creates a store rooted at dir.
func NewFileStore(dir, baseURL string, logger zerolog.Logger) ImageStore {
	return &fileStore{
		dir:     dir,
		baseURL: baseURL,
		logger:  logger.With().Str("component", "file-image-store").Logger(),
	}
}

func (s *fileStore) Put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	target := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create image directory: %w", err)
	}

	file, err := os.Create(target)
	if err != nil {
		s.logger.Error().Err(err).Str("file", target).Msg("failed to create image file")
		return "", fmt.Errorf("failed to create image file %s: %w", target, err)
	}
	defer file.Close()

	n, err := io.Copy(file, body)
	if err != nil {
		_ = os.Remove(target)
		return "", fmt.Errorf("failed to write image file %s: %w", target, err)
	}

	s.logger.Info().
		Str("file", target).
		Str("content_type", contentType).
		Int64("bytes", n).
		Msg("image stored")

	return joinURL(s.baseURL, key), nil
}
