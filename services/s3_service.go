package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	appConfig "github.com/soilq/soilq-api/config"
	"github.com/soilq/soilq-api/utils"
)

// ReportStorage stores uploaded lab report files
type ReportStorage interface {
	Store(ctx context.Context, key string, fileHeader *multipart.FileHeader) error
	URL(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// S3Service stores reports in an S3 bucket
type S3Service struct {
	client *s3.Client
	bucket string
}

var storageInstance ReportStorage

// NewS3Service creates an S3 backed store with the configured AWS credentials
func NewS3Service(ctx context.Context, cfg *appConfig.Config) (*S3Service, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.AWSRegion)}
	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		)))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3Service{
		client: s3.NewFromConfig(awsConfig),
		bucket: cfg.AWSS3Bucket,
	}, nil
}

// InitStorage picks S3 when a bucket is configured and local disk otherwise
func InitStorage(ctx context.Context, cfg *appConfig.Config) (ReportStorage, error) {
	if !cfg.UsesS3() {
		zap.L().Info("AWS_S3_BUCKET not set, storing reports on local disk", zap.String("dir", utils.UploadDir))
		storageInstance = NewLocalStorage(utils.UploadDir)
		return storageInstance, nil
	}

	svc, err := NewS3Service(ctx, cfg)
	if err != nil {
		return nil, err
	}
	storageInstance = svc
	return storageInstance, nil
}

// GetStorage returns the initialized report storage
func GetStorage() ReportStorage {
	if storageInstance == nil {
		return NewLocalStorage(utils.UploadDir)
	}
	return storageInstance
}

// SetStorage sets the report storage (primarily for testing)
func SetStorage(storage ReportStorage) {
	storageInstance = storage
}

// Store uploads a report to S3 under key
func (s *S3Service) Store(ctx context.Context, key string, fileHeader *multipart.FileHeader) error {
	// Open the uploaded file
	file, err := fileHeader.Open()
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			zap.L().Warn("failed to close file", zap.Error(closeErr))
		}
	}()

	// Read file content
	content, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	contentType, ok := utils.ReportContentType(fileHeader.Filename)
	if !ok {
		contentType = "application/octet-stream"
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}

	return nil
}

// URL generates a presigned URL for a private report. The URL expires after 1 hour
func (s *S3Service) URL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}

	presignClient := s3.NewPresignClient(s.client)
	request, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = time.Hour
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	zap.L().Debug("generated presigned URL", zap.String("key", key))
	return request.URL, nil
}

// Delete removes a report from S3
func (s *S3Service) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}

	return nil
}
