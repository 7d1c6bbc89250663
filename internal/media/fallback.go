package media

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"flora-kart/internal/config"

	"github.com/rs/zerolog"
)

// fallbackStore tries the primary store first and falls back to the local one.
type fallbackStore struct {
	primary ImageStore
	local   ImageStore
	logger  zerolog.Logger
}

// NewFallbackStore wraps primary so failed uploads land in local instead.
// A nil primary stores everything locally.
func NewFallbackStore(primary, local ImageStore, logger zerolog.Logger) ImageStore {
	return &fallbackStore{
		primary: primary,
		local:   local,
		logger:  logger.With().Str("component", "fallback-image-store").Logger(),
	}
}

func (s *fallbackStore) Put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	if s.primary == nil {
		return s.local.Put(ctx, key, contentType, body)
	}

	// Buffer so the body can be replayed into the local store.
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("failed to read image body: %w", err)
	}

	url, err := s.primary.Put(ctx, key, contentType, bytes.NewReader(data))
	if err == nil {
		return url, nil
	}

	s.logger.Warn().
		Err(err).
		Str("key", key).
		Msg("primary image store failed, falling back to local file system")

	return s.local.Put(ctx, key, contentType, bytes.NewReader(data))
}

// NewImageStore builds the configured store. S3 is used when enabled and
// initialisable; otherwise images go to the local directory.
func NewImageStore(ctx context.Context, s3Cfg config.S3Config, mediaCfg config.MediaConfig, logger zerolog.Logger) ImageStore {
	local := NewFileStore(mediaCfg.LocalDir, mediaCfg.BaseURL, logger)

	if !s3Cfg.Enabled {
		logger.Debug().Msg("S3 disabled, storing images on local file system")
		return local
	}

	primary, err := NewS3Store(ctx, s3Cfg, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("S3 image store unavailable, storing images on local file system")
		return local
	}

	return NewFallbackStore(primary, local, logger)
}
