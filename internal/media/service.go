package media

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/receipt-api/internal/platform/logger"
)

// Upload describes a stored logo.
type Upload struct {
	LogoURL  string `json:"logo_url"`
	Filename string `json:"filename"`
}

// Service processes and stores logo uploads.
type Service struct {
	processor *Processor
	store     MediaStore
	logger    *slog.Logger
}

// NewService creates a new media Service.
func NewService(processor *Processor, store MediaStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		processor: processor,
		store:     store,
		logger:    logger.With(slog.String("component", "media_service")),
	}
}

// UploadLogo normalizes an uploaded logo and stores it as
// logos/{userID}_{random}.jpg.
func (s *Service) UploadLogo(ctx context.Context, userID uuid.UUID, filename string, data []byte) (*Upload, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	processed, err := s.processor.Process(filename, data)
	if err != nil {
		log.Debug("rejected logo upload",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}

	suffix, err := randomHex(4)
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("%s_%s.jpg", userID, suffix)

	url, err := s.store.Store(ctx, "logos/"+name, processed, "image/jpeg")
	if err != nil {
		log.Error("failed to store logo",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to store logo: %w", err)
	}

	log.Info("logo uploaded",
		slog.String("user_id", userID.String()),
		slog.Int("bytes", len(processed)))
	return &Upload{LogoURL: url, Filename: name}, nil
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate file name: %w", err)
	}
	return hex.EncodeToString(b), nil
}
