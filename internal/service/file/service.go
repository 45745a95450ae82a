package file

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sitepulse/attendance-backend-go/internal/pkg/storage"

	"github.com/google/uuid"
)

type FileService interface {
	// UploadSelfie decodes a selfie data URI and stores it under the
	// user's attendance folder. Returns the public URL.
	UploadSelfie(ctx context.Context, userID string, date time.Time, dataURI string, action string) (string, error)

	DeleteFile(ctx context.Context, path string) error
}

type fileServiceImpl struct {
	storage storage.FileStorage
}

func NewFileService(storage storage.FileStorage) FileService {
	return &fileServiceImpl{
		storage: storage,
	}
}

// parseImageDataURI splits "data:image/jpeg;base64,<payload>" into its
// content type and decoded bytes.
func parseImageDataURI(dataURI string) (string, []byte, error) {
	if !strings.HasPrefix(dataURI, "data:image/") {
		return "", nil, fmt.Errorf("not an image data URI")
	}

	meta, payload, found := strings.Cut(dataURI, ",")
	if !found {
		return "", nil, fmt.Errorf("malformed data URI")
	}

	contentType := strings.TrimPrefix(meta, "data:")
	contentType = strings.TrimSuffix(contentType, ";base64")

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode data URI payload: %w", err)
	}

	return contentType, raw, nil
}

func (s *fileServiceImpl) UploadSelfie(ctx context.Context, userID string, date time.Time, dataURI string, action string) (string, error) {
	contentType, raw, err := parseImageDataURI(dataURI)
	if err != nil {
		return "", err
	}

	ext := ".jpg"
	if strings.Contains(contentType, "png") {
		ext = ".png"
	}

	filename := fmt.Sprintf("%s-%s-%s%s", date.Format("2006-01-02"), action, uuid.New().String(), ext)
	path := filepath.Join("selfies", userID, filename)

	uploadedPath, err := s.storage.Upload(ctx, bytes.NewReader(raw), path, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to upload selfie: %w", err)
	}

	url, err := s.storage.GetURL(ctx, uploadedPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve selfie URL: %w", err)
	}

	return url, nil
}

func (s *fileServiceImpl) DeleteFile(ctx context.Context, path string) error {
	return s.storage.Delete(ctx, path)
}
