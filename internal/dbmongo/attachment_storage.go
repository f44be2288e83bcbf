package dbmongo

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"agromarket/internal/common"
)

// maxAttachmentSize caps uploads at 25 MiB.
const maxAttachmentSize = 25 << 20

// AttachmentStorage persists message attachments in GridFS. MySQL messages
// carry only the hex id.
type AttachmentStorage struct {
	bucket *gridfs.Bucket
}

func NewAttachmentStorage(mongoClient *MongoClient) *AttachmentStorage {
	return &AttachmentStorage{bucket: mongoClient.GridFS}
}

type Attachment struct {
	ID         string                `json:"id"`
	Filename   string                `json:"filename"`
	Size       int64                 `json:"size"`
	Kind       common.AttachmentKind `json:"kind"`
	MimeType   string                `json:"mime_type"`
	UploadedBy string                `json:"uploaded_by"`
	UploadedAt time.Time             `json:"uploaded_at"`
}

func (s *AttachmentStorage) Upload(ctx context.Context, filename, mimeType, uploaderID string, content io.Reader) (*Attachment, error) {
	kind := common.DetectAttachmentKind(mimeType)
	if kind == common.AttachmentUnknown {
		return nil, common.InvalidArg("unsupported attachment type")
	}

	metadata := bson.M{
		"kind":        kind.String(),
		"mime_type":   mimeType,
		"uploaded_by": uploaderID,
		"uploaded_at": time.Now(),
	}

	stream, err := s.bucket.OpenUploadStream(filename, options.GridFSUpload().SetMetadata(metadata))
	if err != nil {
		return nil, fmt.Errorf("attachment upload failed: %w", err)
	}
	defer stream.Close()

	size, err := io.Copy(stream, io.LimitReader(content, maxAttachmentSize+1))
	if err != nil {
		return nil, fmt.Errorf("attachment write failed: %w", err)
	}
	if size > maxAttachmentSize {
		stream.Close()
		_ = s.bucket.Delete(stream.FileID)
		return nil, common.InvalidArg("attachment exceeds the size limit")
	}

	return &Attachment{
		ID:         stream.FileID.(primitive.ObjectID).Hex(),
		Filename:   filename,
		Size:       size,
		Kind:       kind,
		MimeType:   mimeType,
		UploadedBy: uploaderID,
		UploadedAt: time.Now(),
	}, nil
}

func (s *AttachmentStorage) Download(ctx context.Context, attachmentID string) (io.ReadCloser, *Attachment, error) {
	objectID, err := primitive.ObjectIDFromHex(attachmentID)
	if err != nil {
		return nil, nil, common.InvalidArg("invalid attachment id")
	}

	stream, err := s.bucket.OpenDownloadStream(objectID)
	if err != nil {
		if err == gridfs.ErrFileNotFound {
			return nil, nil, common.NotFound("attachment not found")
		}
		return nil, nil, fmt.Errorf("attachment download failed: %w", err)
	}

	fileInfo := stream.GetFile()
	var metadata bson.M
	if fileInfo.Metadata != nil {
		_ = bson.Unmarshal(fileInfo.Metadata, &metadata)
	}

	attachment := &Attachment{
		ID:         attachmentID,
		Filename:   fileInfo.Name,
		Size:       fileInfo.Length,
		Kind:       kindFromString(metaString(metadata, "kind")),
		MimeType:   metaString(metadata, "mime_type"),
		UploadedBy: metaString(metadata, "uploaded_by"),
		UploadedAt: fileInfo.UploadDate,
	}

	return stream, attachment, nil
}

func (s *AttachmentStorage) Delete(ctx context.Context, attachmentID string) error {
	objectID, err := primitive.ObjectIDFromHex(attachmentID)
	if err != nil {
		return common.InvalidArg("invalid attachment id")
	}
	return s.bucket.Delete(objectID)
}

func kindFromString(s string) common.AttachmentKind {
	switch s {
	case "image":
		return common.AttachmentImage
	case "video":
		return common.AttachmentVideo
	case "document":
		return common.AttachmentDocument
	default:
		return common.AttachmentUnknown
	}
}

func metaString(m bson.M, key string) string {
	if m == nil {
		return ""
	}
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
