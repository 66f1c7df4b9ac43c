// Package upload is the one place that knows how files reach the static
// upload endpoint and what comes back.
package upload

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/bountip-console/apiclient"
	apperrors "github.com/jrsteele09/bountip-console/internal/errors"
)

const sniffLen = 512

// Asset is an uploaded file: where it lives and its content fingerprint.
type Asset struct {
	URL   string `json:"url"`
	PHash string `json:"phash"`
}

type Service struct {
	client *apiclient.Client
	logger zerolog.Logger
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(client *apiclient.Client, options ...ServiceOption) (*Service, error) {
	if client == nil {
		return nil, errors.New("[NewUploadService] client is required")
	}
	s := &Service{
		client: client,
		logger: log.Logger,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Upload sends file to the static upload endpoint under the credential scope
// cookieName. Both url and phash must come back populated.
func (s *Service) Upload(ctx context.Context, file apiclient.File, cookieName string) (Asset, error) {
	env, err := apiclient.Upload[Asset](ctx, s.client, apiclient.UploadPath, file, cookieName)
	if err != nil {
		return Asset{}, err
	}
	if !env.HasData() || env.Data.URL == "" || env.Data.PHash == "" {
		return Asset{}, fmt.Errorf("upload %s: %w", file.Name, apperrors.ErrIncompleteUpload)
	}

	s.logger.Info().
		Str("file", file.Name).
		Str("url", env.Data.URL).
		Str("phash", env.Data.PHash).
		Msg("file uploaded")
	return *env.Data, nil
}

// UploadFile opens a local file, sniffs its content type and uploads it.
func (s *Service) UploadFile(ctx context.Context, path, cookieName string) (Asset, error) {
	f, err := os.Open(path)
	if err != nil {
		return Asset{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReaderSize(f, sniffLen)
	head, err := r.Peek(sniffLen)
	if err != nil && len(head) == 0 {
		return Asset{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return s.Upload(ctx, apiclient.File{
		Name:        filepath.Base(path),
		ContentType: http.DetectContentType(head),
		Reader:      r,
	}, cookieName)
}
