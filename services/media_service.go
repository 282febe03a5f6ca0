package services

import (
	"fmt"
	"log/slog"
	"os"
	"wa-gateway/domain"
	"wa-gateway/domain/mimetypes"
	"wa-gateway/errors"
)

// MediaIngestor turns an upload into a verified envelope.
type MediaIngestor struct {
	log *slog.Logger
}

func NewMediaIngestor(log *slog.Logger) *MediaIngestor {
	return &MediaIngestor{log: log.With("component", "media")}
}

func (m *MediaIngestor) Ingest(upload domain.Upload) (domain.MediaEnvelope, error) {
	contentType := upload.ContentType
	declared := !mimetypes.IsUndeclared(contentType)

	// The declared size is checked before any bytes are read.
	if declared && upload.DeclaredSize > 0 {
		if err := domain.CheckUploadSize(contentType, upload.DeclaredSize); err != nil {
			return domain.MediaEnvelope{}, err
		}
	}

	data, err := m.resolve(upload)
	if err != nil {
		return domain.MediaEnvelope{}, err
	}

	if !declared {
		contentType = mimetypes.Sniff(data)
		m.log.Debug("Content type sniffed", "filename", upload.Filename, "content_type", contentType)
	}
	if repaired := mimetypes.Repair(upload.Filename, contentType); repaired != contentType {
		m.log.Debug("Content type repaired", "filename", upload.Filename, "from", contentType, "to", repaired)
		contentType = repaired
	}

	envelope, err := domain.NewMediaEnvelope(contentType, data, upload.Filename)
	if err != nil {
		return domain.MediaEnvelope{}, err
	}
	m.log.Info("Media ingested",
		"filename", envelope.Filename(),
		"content_type", envelope.ContentType(),
		"size", envelope.SizeBytes(),
		"category", envelope.Category())
	return envelope, nil
}

// resolve prefers the in memory payload and falls back to the temp file.
func (m *MediaIngestor) resolve(upload domain.Upload) ([]byte, error) {
	if len(upload.Data) > 0 {
		return upload.Data, nil
	}
	if upload.TempFilePath == "" {
		return nil, errors.ErrEmptyUpload
	}
	data, err := os.ReadFile(upload.TempFilePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrEmptyUpload, err)
	}
	if len(data) == 0 {
		return nil, errors.ErrEmptyUpload
	}
	return data, nil
}
