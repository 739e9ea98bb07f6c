// Package s3 issues attachment URLs: a deterministic public read URL and a
// short-lived presigned upload URL, both keyed by the todo id.
package s3

import (
	"context"
	"fmt"
	"time"

	"todobackend/application/ports"
	apperrors "todobackend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// PresignAPI is the part of the S3 presign client the store uses
type PresignAPI interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// AttachmentStore implements ports.AttachmentStore against an S3 bucket
type AttachmentStore struct {
	presigner PresignAPI
	bucket    string
	expires   time.Duration
	logger    *zap.Logger
}

// NewAttachmentStore creates a new AttachmentStore
func NewAttachmentStore(presigner PresignAPI, bucket string, expires time.Duration, logger *zap.Logger) ports.AttachmentStore {
	return &AttachmentStore{
		presigner: presigner,
		bucket:    bucket,
		expires:   expires,
		logger:    logger,
	}
}

// PublicURL derives the public read URL for a todo's attachment object.
// Pure string construction; the object may not exist yet.
func (s *AttachmentStore) PublicURL(todoID string) string {
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, todoID)
}

// UploadURL requests a presigned PUT URL for the attachment object
func (s *AttachmentStore) UploadURL(ctx context.Context, todoID string) (string, error) {
	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(todoID),
	}, s3.WithPresignExpires(s.expires))
	if err != nil {
		s.logger.Error("Failed to presign upload URL",
			zap.String("todoId", todoID),
			zap.String("bucket", s.bucket),
			zap.Error(err),
		)
		return "", apperrors.NewExternalError("s3", err)
	}

	s.logger.Debug("Issued upload URL",
		zap.String("todoId", todoID),
		zap.Duration("expires", s.expires),
	)

	return req.URL, nil
}
