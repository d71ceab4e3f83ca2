package repository

import (
	"context"
	"fmt"
	"io"

	"chat_sync_service/internal/chat/domain"
	"chat_sync_service/pkg/database"

	"github.com/google/uuid"
)

// AttachmentRepository definition the opaque URL-returning upload store
type AttachmentRepository interface {
	Upload(ctx context.Context, name, contentType string, r io.Reader, size int64) (domain.Attachment, error)
}

type minioAttachmentRepository struct {
	client *database.MinIOClient
}

// NewMinIOAttachmentRepository create an AttachmentRepository backed by minio
func NewMinIOAttachmentRepository(client *database.MinIOClient) AttachmentRepository {
	return &minioAttachmentRepository{client: client}
}

func (r *minioAttachmentRepository) Upload(ctx context.Context, name, contentType string, reader io.Reader, size int64) (domain.Attachment, error) {
	objectName := fmt.Sprintf("%s_%s", uuid.New().String(), name)
	url, err := r.client.UploadStream(ctx, objectName, reader, size, contentType)
	if err != nil {
		return domain.Attachment{}, err
	}
	return domain.Attachment{
		URL:         url,
		Name:        name,
		ContentType: contentType,
	}, nil
}
