// This file contains the StorageService, which keeps uploaded asset files in an S3 bucket. Clients never stream files
// through the web server: they receive a presigned PUT URL and upload directly to the bucket. Files are addressed by
// keys of the form assets/<uuid>.<ext> and served from the bucket's public URL.

package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/adhvyk/ar-studio/webserver/internal/log"
)

// AssetKeyPrefix is the folder every uploaded asset lives under.
const AssetKeyPrefix = "assets/"

type uploadPresigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type objectDeleter interface {
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type StorageService struct {
	bucket    string
	region    string
	uploadTTL time.Duration
	presigner uploadPresigner
	deleter   objectDeleter
	newID     func() string
	logger    *log.Logger
}

// NewStorageService creates a StorageService for bucket. Credentials are resolved by the default AWS chain
// (AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY, shared config, instance role).
func NewStorageService(ctx context.Context, region, bucket string, uploadTTL time.Duration, logger *log.Logger) (*StorageService, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return newStorageService(client, s3.NewPresignClient(client), region, bucket, uploadTTL, logger), nil
}

func newStorageService(deleter objectDeleter, presigner uploadPresigner, region, bucket string, uploadTTL time.Duration, logger *log.Logger) *StorageService {
	return &StorageService{
		bucket:    bucket,
		region:    region,
		uploadTTL: uploadTTL,
		presigner: presigner,
		deleter:   deleter,
		newID:     uuid.NewString,
		logger:    logger,
	}
}

// NewKey returns a fresh storage key for a file with the given extension.
func (s *StorageService) NewKey(extension string) string {
	return AssetKeyPrefix + s.newID() + "." + extension
}

// PresignUpload returns a URL that accepts a single PUT of key with the given content type until the upload TTL runs out.
func (s *StorageService) PresignUpload(ctx context.Context, key, contentType string) (string, error) {
	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(s.uploadTTL))
	if err != nil {
		return "", err
	}
	s.logger.Debugf("Signed upload for %s, valid %s", key, s.uploadTTL)
	return req.URL, nil
}

// PublicURL returns the address the stored file is served from.
func (s *StorageService) PublicURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

// DeleteObject removes key from the bucket. Deleting a key that does not exist succeeds.
func (s *StorageService) DeleteObject(ctx context.Context, key string) error {
	_, err := s.deleter.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return err
	}
	s.logger.Infof("Deleted %s from bucket %s", key, s.bucket)
	return nil
}

// KeyFromURL recovers the storage key from a public asset URL. Returns "" if url is not a bucket URL.
func KeyFromURL(url string) string {
	_, key, found := strings.Cut(url, ".com/")
	if !found {
		return ""
	}
	return key
}
